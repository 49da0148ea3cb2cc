package models

import (
	"encoding/json"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
)

// CurrentScrapeSchemaVersion is the payload schema both sides of the script
// boundary agree on. The in-page script stamps it into every payload; the
// host rejects anything else as a scrape failure.
const CurrentScrapeSchemaVersion = 1

// RawIconTag is one icon-like link tag exactly as the page declared it.
// The href may still be relative; resolution happens host-side.
type RawIconTag struct {
	Href   string `json:"href"`
	Sizes  string `json:"sizes"`
	Rel    string `json:"rel"`
	RawTag string `json:"rawTag"`
}

// RawScrapePayload is the versioned wire shape returned by the scrape
// script. Fields hold the page's raw declarations; precedence fallbacks are
// applied host-side so the two sides can evolve independently.
type RawScrapePayload struct {
	SchemaVersion int    `json:"schemaVersion"`
	URL           string `json:"url"`

	DocumentTitle   string `json:"documentTitle"`
	MetaDescription string `json:"metaDescription"`

	OGTitle       string `json:"ogTitle"`
	OGDescription string `json:"ogDescription"`
	OGImage       string `json:"ogImage"`
	OGImageAlt    string `json:"ogImageAlt"`

	TwitterTitle       string `json:"twitterTitle"`
	TwitterDescription string `json:"twitterDescription"`
	TwitterImage       string `json:"twitterImage"`
	TwitterImageSrc    string `json:"twitterImageSrc"`
	TwitterImageAlt    string `json:"twitterImageAlt"`

	Icons []RawIconTag `json:"icons"`

	Canonical       string `json:"canonical"`
	Robots          string `json:"robots"`
	Googlebot       string `json:"googlebot"`
	Keywords        string `json:"keywords"`
	Generator       string `json:"generator"`
	Language        string `json:"language"`
	HasManifest     bool   `json:"hasManifest"`
	HasViewport     bool   `json:"hasViewport"`
	BackgroundColor string `json:"backgroundColor"`
}

// ParseScrapePayload decodes and validates a scrape script result. Any
// schema violation is reported as an error and the caller treats it as a
// scrape failure.
func ParseScrapePayload(raw string) (*RawScrapePayload, error) {
	if raw == "" {
		return nil, errorwrapper.WrapError(errorwrapper.ErrScrapeFailed, "empty scrape result")
	}

	var payload RawScrapePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, errorwrapper.WrapError(err, "malformed scrape JSON")
	}

	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Validate checks the schema invariants the aggregation side depends on.
func (p *RawScrapePayload) Validate() error {
	if p.SchemaVersion != CurrentScrapeSchemaVersion {
		return errorwrapper.NewError("unsupported scrape schema version %d (want %d)", p.SchemaVersion, CurrentScrapeSchemaVersion)
	}
	if p.URL == "" {
		return errorwrapper.NewValidationError("url", p.URL, "scrape payload missing page URL")
	}
	return nil
}
