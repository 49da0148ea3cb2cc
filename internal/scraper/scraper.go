package scraper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
	"github.com/aleister1102/metascope/internal/config"
	"github.com/aleister1102/metascope/internal/models"
	"github.com/aleister1102/metascope/internal/renderer"
)

// Scraper produces one RawMetadataDocument for the page identified by
// identity. A failure means the extraction run yields no result; the caller
// never retries within the same run.
type Scraper interface {
	Scrape(ctx context.Context, identity models.PageIdentity) (*models.RawMetadataDocument, error)
}

// ScriptScraper runs the scrape script inside the page context through the
// renderer's script executor.
type ScriptScraper struct {
	executor renderer.ScriptExecutor
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewScriptScraper creates a ScriptScraper.
func NewScriptScraper(executor renderer.ScriptExecutor, cfg *config.ScraperConfig, logger zerolog.Logger) *ScriptScraper {
	return &ScriptScraper{
		executor: executor,
		timeout:  time.Duration(cfg.ScriptTimeoutSecs) * time.Second,
		logger:   logger.With().Str("component", "ScriptScraper").Logger(),
	}
}

// Scrape executes one synchronous round-trip into the page context and
// normalizes the returned payload.
func (s *ScriptScraper) Scrape(ctx context.Context, identity models.PageIdentity) (*models.RawMetadataDocument, error) {
	scrapeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.executor.ExecuteScript(scrapeCtx, scrapeScript)
	if err != nil {
		s.logger.Debug().Err(err).Str("page", identity.String()).Msg("Scrape script execution failed")
		return nil, errorwrapper.WrapError(errorwrapper.ErrScrapeFailed, err.Error())
	}

	payload, err := models.ParseScrapePayload(raw)
	if err != nil {
		s.logger.Debug().Err(err).Str("page", identity.String()).Msg("Scrape payload rejected")
		return nil, err
	}

	return BuildDocument(payload, identity)
}
