package scraper

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
	"github.com/aleister1102/metascope/internal/models"
	"github.com/aleister1102/metascope/internal/renderer"
)

// StaticScraper builds the same document as the script scraper from the
// serialized page HTML. It covers contexts where running extraction logic
// inside the page is not wanted; live-only signals (computed background
// color, window-global framework fingerprints) degrade to their defaults.
type StaticScraper struct {
	executor renderer.ScriptExecutor
	logger   zerolog.Logger
}

// NewStaticScraper creates a StaticScraper.
func NewStaticScraper(executor renderer.ScriptExecutor, logger zerolog.Logger) *StaticScraper {
	return &StaticScraper{
		executor: executor,
		logger:   logger.With().Str("component", "StaticScraper").Logger(),
	}
}

// Scrape serializes the live document and extracts metadata from the HTML.
func (s *StaticScraper) Scrape(ctx context.Context, identity models.PageIdentity) (*models.RawMetadataDocument, error) {
	htmlStr, err := s.executor.ExecuteScript(ctx, htmlDumpScript)
	if err != nil {
		s.logger.Debug().Err(err).Str("page", identity.String()).Msg("Document serialization failed")
		return nil, errorwrapper.WrapError(errorwrapper.ErrScrapeFailed, err.Error())
	}

	payload, err := ExtractPayload(strings.NewReader(htmlStr), "", identity.String())
	if err != nil {
		return nil, err
	}
	return BuildDocument(payload, identity)
}

// ExtractPayload parses HTML into the raw scrape payload. contentType, when
// known, drives charset detection for non-UTF-8 documents.
func ExtractPayload(r io.Reader, contentType, pageURL string) (*models.RawScrapePayload, error) {
	decoded, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "charset detection failed")
	}

	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "HTML parse failed")
	}

	meta := func(name string) string {
		return doc.Find(`meta[name="` + name + `"]`).AttrOr("content", "")
	}
	prop := func(p string) string {
		return doc.Find(`meta[property="` + p + `"]`).AttrOr("content", "")
	}

	payload := &models.RawScrapePayload{
		SchemaVersion:      models.CurrentScrapeSchemaVersion,
		URL:                pageURL,
		DocumentTitle:      strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription:    meta("description"),
		OGTitle:            prop("og:title"),
		OGDescription:      prop("og:description"),
		OGImage:            prop("og:image"),
		OGImageAlt:         prop("og:image:alt"),
		TwitterTitle:       firstNonEmpty(meta("twitter:title"), prop("twitter:title")),
		TwitterDescription: firstNonEmpty(meta("twitter:description"), prop("twitter:description")),
		TwitterImage:       firstNonEmpty(meta("twitter:image"), prop("twitter:image")),
		TwitterImageSrc:    firstNonEmpty(meta("twitter:image:src"), prop("twitter:image:src")),
		TwitterImageAlt:    firstNonEmpty(meta("twitter:image:alt"), prop("twitter:image:alt")),
		Canonical:          doc.Find(`link[rel="canonical"]`).AttrOr("href", ""),
		Robots:             meta("robots"),
		Googlebot:          meta("googlebot"),
		Keywords:           meta("keywords"),
		Generator:          staticGenerator(doc),
		Language:           doc.Find("html").AttrOr("lang", ""),
		HasManifest:        doc.Find(`link[rel="manifest"]`).Length() > 0,
		HasViewport:        doc.Find(`meta[name="viewport"]`).Length() > 0,
		// Computed styles need a live page; static extraction reports the
		// opaque-white default.
		BackgroundColor: "#FFFFFF",
	}

	doc.Find(`link[rel~="icon"], link[rel="shortcut icon"], link[rel^="apple-touch-icon"]`).Each(func(_ int, sel *goquery.Selection) {
		rawTag, _ := goquery.OuterHtml(sel)
		payload.Icons = append(payload.Icons, models.RawIconTag{
			Href:   sel.AttrOr("href", ""),
			Sizes:  sel.AttrOr("sizes", ""),
			Rel:    sel.AttrOr("rel", ""),
			RawTag: strings.TrimSpace(rawTag),
		})
	})

	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

// staticGenerator mirrors the in-page fingerprint ordering using only DOM
// markers. Fingerprints that need window globals cannot fire here.
func staticGenerator(doc *goquery.Document) string {
	if generator := doc.Find(`meta[name="generator"]`).AttrOr("content", ""); generator != "" {
		return generator
	}

	markers := []struct {
		selector string
		name     string
	}{
		{"script#__NEXT_DATA__", "Next.js"},
		{"#__nuxt", "Nuxt"},
		{"#___gatsby", "Gatsby"},
		{`[class*="svelte-"]`, "Svelte"},
		{"[ng-version]", "Angular"},
		{"[data-v-app]", "Vue"},
		{"[data-reactroot]", "React"},
	}
	for _, m := range markers {
		if doc.Find(m.selector).Length() > 0 {
			return m.name
		}
	}
	return ""
}
