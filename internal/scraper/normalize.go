package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aleister1102/metascope/internal/models"
	"github.com/aleister1102/metascope/internal/urlhandler"
)

// BuildDocument turns a validated scrape payload into the immutable
// RawMetadataDocument for one extraction run: field precedence applied,
// icon hrefs resolved to absolute URLs, synthetic icon defaults appended.
func BuildDocument(payload *models.RawScrapePayload, identity models.PageIdentity) (*models.RawMetadataDocument, error) {
	if identity.IsZero() {
		identity = models.PageIdentity(payload.URL)
	}

	base, err := url.Parse(identity.String())
	if err != nil {
		return nil, fmt.Errorf("unusable page identity '%s': %w", identity, err)
	}

	icons := normalizeIcons(payload.Icons, base)
	icons = appendDefaultIcons(icons, identity.String())

	doc := &models.RawMetadataDocument{
		Title:              firstNonEmpty(payload.OGTitle, payload.DocumentTitle),
		Description:        firstNonEmpty(payload.OGDescription, payload.MetaDescription),
		OGTitle:            strings.TrimSpace(payload.OGTitle),
		OGDescription:      strings.TrimSpace(payload.OGDescription),
		OGImage:            resolveMaybeRelative(payload.OGImage, base),
		OGImageAlt:         strings.TrimSpace(payload.OGImageAlt),
		TwitterTitle:       firstNonEmpty(payload.TwitterTitle, payload.OGTitle, payload.DocumentTitle),
		TwitterDescription: firstNonEmpty(payload.TwitterDescription, payload.OGDescription, payload.MetaDescription),
		TwitterImage:       resolveMaybeRelative(firstNonEmpty(payload.TwitterImage, payload.TwitterImageSrc, payload.OGImage), base),
		TwitterImageAlt:    strings.TrimSpace(payload.TwitterImageAlt),
		Icons:              icons,
		CanonicalURL:       resolveMaybeRelative(payload.Canonical, base),
		Robots:             firstNonEmpty(payload.Robots, payload.Googlebot),
		Keywords:           strings.TrimSpace(payload.Keywords),
		Generator:          strings.TrimSpace(payload.Generator),
		Language:           strings.TrimSpace(payload.Language),
		HasManifest:        payload.HasManifest,
		HasViewport:        payload.HasViewport,
		BackgroundColor:    firstNonEmpty(payload.BackgroundColor, "#FFFFFF"),
		PageIdentity:       identity,
	}

	// The icon set is never empty after defaulting, so the favicon field is
	// always the first declaration in page order.
	doc.Favicon = icons[0].URL

	return doc, nil
}

// normalizeIcons resolves relative hrefs against the page base, preserving
// page order. A href that cannot be resolved keeps its raw value; the
// resolver classifies it as malformed later.
func normalizeIcons(tags []models.RawIconTag, base *url.URL) []models.IconDeclaration {
	icons := make([]models.IconDeclaration, 0, len(tags))
	for _, tag := range tags {
		iconURL := tag.Href
		if resolved, err := urlhandler.ResolveURL(tag.Href, base); err == nil {
			iconURL = resolved
		}
		icons = append(icons, models.IconDeclaration{
			URL:    iconURL,
			Sizes:  tag.Sizes,
			Rel:    tag.Rel,
			RawTag: tag.RawTag,
		})
	}
	return icons
}

// appendDefaultIcons injects the well-known default declarations for any
// icon category the page did not declare, so the icon set is never empty.
func appendDefaultIcons(icons []models.IconDeclaration, pageURL string) []models.IconDeclaration {
	origin, err := urlhandler.Origin(pageURL)
	if err != nil {
		return icons
	}

	hasFavicon := false
	hasAppleTouch := false
	for _, icon := range icons {
		if icon.IsAppleTouch() {
			hasAppleTouch = true
		} else {
			hasFavicon = true
		}
	}

	if !hasFavicon {
		iconURL := origin + "/favicon.ico"
		icons = append(icons, models.IconDeclaration{
			URL:       iconURL,
			Rel:       models.RelShortcutIcon,
			RawTag:    fmt.Sprintf(`<link rel="shortcut icon" href="%s">`, iconURL),
			Synthetic: true,
		})
	}
	if !hasAppleTouch {
		iconURL := origin + "/apple-touch-icon.png"
		icons = append(icons, models.IconDeclaration{
			URL:       iconURL,
			Sizes:     "180x180",
			Rel:       models.RelAppleTouchIcon,
			RawTag:    fmt.Sprintf(`<link rel="apple-touch-icon" href="%s" sizes="180x180">`, iconURL),
			Synthetic: true,
		})
	}
	return icons
}

// resolveMaybeRelative resolves a possibly-relative URL against the page
// base, falling back to the raw value when resolution fails.
func resolveMaybeRelative(raw string, base *url.URL) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if resolved, err := urlhandler.ResolveURL(trimmed, base); err == nil {
		return resolved
	}
	return trimmed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
