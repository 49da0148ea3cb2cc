package errorwrapper

import (
	"errors"
	"fmt"
)

// ErrScrapeFailed indicates the in-page scrape produced no usable result.
// Callers match it with errors.Is to treat the run as silently failed.
var ErrScrapeFailed = errors.New("scrape failed")

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NetworkError represents network-related errors
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for URL '%s': %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

// NewNetworkError creates a new network error
func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{
		URL:     url,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// HTTPError represents an HTTP response with a non-success status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d for URL '%s'", e.StatusCode, e.URL)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, url string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
	}
}

// MalformedURLError marks a URL that could not be parsed at all. It is kept
// distinct from NetworkError so callers can surface a different hint for a
// bad declaration than for a fetch that merely failed.
type MalformedURLError struct {
	Raw     string
	Wrapped error
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("malformed URL '%s'", e.Raw)
}

func (e *MalformedURLError) Unwrap() error {
	return e.Wrapped
}

// NewMalformedURLError creates a new malformed URL error
func NewMalformedURLError(raw string, wrapped error) *MalformedURLError {
	return &MalformedURLError{
		Raw:     raw,
		Wrapped: wrapped,
	}
}

// IsMalformedURL reports whether err is (or wraps) a MalformedURLError.
func IsMalformedURL(err error) bool {
	var target *MalformedURLError
	return errors.As(err, &target)
}
