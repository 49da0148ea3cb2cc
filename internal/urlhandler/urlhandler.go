package urlhandler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
)

// NormalizeURL normalizes a URL string, ensuring it has a scheme, a valid
// host, and no surrounding whitespace.
func NormalizeURL(rawURL string) (string, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return "", errors.New("URL is empty or only whitespace")
	}

	// Add scheme if missing
	if !strings.Contains(trimmedURL, "://") && !strings.HasPrefix(trimmedURL, "//") {
		trimmedURL = "http://" + trimmedURL
	}

	parsedURL, err := url.Parse(trimmedURL)
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", trimmedURL, err)
	}

	if parsedURL.Host == "" {
		return "", errors.New("URL lacks a valid hostname")
	}

	return parsedURL.String(), nil
}

// ResolveURL resolves a (possibly relative) URL string against a base URL.
// The returned URL is also normalized.
func ResolveURL(href string, base *url.URL) (string, error) {
	trimmedHref := strings.TrimSpace(href)
	if trimmedHref == "" {
		return "", fmt.Errorf("href is empty")
	}

	var resolvedURL *url.URL

	if base == nil {
		// If no base, href must be an absolute URL.
		parsedHref, parseErr := url.Parse(trimmedHref)
		if parseErr != nil {
			return "", fmt.Errorf("error parsing base-less href '%s': %w", trimmedHref, parseErr)
		}
		if !parsedHref.IsAbs() {
			return "", fmt.Errorf("cannot process relative URL '%s' without a base URL", trimmedHref)
		}
		resolvedURL = parsedHref
	} else {
		resolved, resolveErr := base.Parse(trimmedHref)
		if resolveErr != nil {
			return "", fmt.Errorf("error resolving href '%s' with base '%s': %w", trimmedHref, base.String(), resolveErr)
		}
		resolvedURL = resolved
	}

	return NormalizeURL(resolvedURL.String())
}

// HostWithoutWWW extracts the hostname of a URL with any leading "www."
// stripped. Returns an empty string when the URL cannot be parsed.
func HostWithoutWWW(rawURL string) string {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := parsedURL.Hostname()
	return strings.TrimPrefix(host, "www.")
}

// Origin returns the scheme://host[:port] portion of a URL.
func Origin(rawURL string) (string, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", rawURL, err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", fmt.Errorf("URL '%s' lacks scheme or host", rawURL)
	}
	return parsedURL.Scheme + "://" + parsedURL.Host, nil
}

// ValidateImageURL parses an image URL and checks that it carries an
// http(s) scheme and a host. Any failure is a MalformedURLError: the
// declaration itself is broken, as opposed to a fetch that failed.
func ValidateImageURL(rawURL string) error {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return errorwrapper.NewMalformedURLError(rawURL, errors.New("image URL is empty"))
	}
	parsedURL, err := url.Parse(trimmed)
	if err != nil {
		return errorwrapper.NewMalformedURLError(trimmed, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errorwrapper.NewMalformedURLError(trimmed, fmt.Errorf("unsupported scheme '%s'", parsedURL.Scheme))
	}
	if parsedURL.Host == "" {
		return errorwrapper.NewMalformedURLError(trimmed, errors.New("missing host"))
	}
	return nil
}
