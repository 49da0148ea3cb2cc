package resolver

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
	"github.com/aleister1102/metascope/internal/config"
)

// Fetcher performs single-shot image fetches. Every fetch is fire-once;
// a new extraction run is the only retry mechanism.
type Fetcher struct {
	httpClient *http.Client
	logger     zerolog.Logger
	cfg        *config.ResolverConfig
}

// NewFetcher creates a new Fetcher.
func NewFetcher(cfg *config.ResolverConfig, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.FetchTimeoutSecs) * time.Second,
		},
		logger: logger.With().Str("component", "ImageFetcher").Logger(),
		cfg:    cfg,
	}
}

// FetchImageResult holds the payload of one successful image fetch.
type FetchImageResult struct {
	Data        []byte
	ContentType string
	StatusCode  int
}

// FetchImage downloads one image. Default redirect following applies; no
// auth headers are sent.
func (f *Fetcher) FetchImage(ctx context.Context, url string) (*FetchImageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "creating request for "+url)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Debug().Err(err).Str("url", url).Msg("Image fetch failed")
		return nil, errorwrapper.NewNetworkError(url, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Debug().Str("url", url).Int("status_code", resp.StatusCode).Msg("Image fetch returned non-OK status")
		return nil, errorwrapper.NewHTTPError(resp.StatusCode, url)
	}

	maxSize := int64(f.cfg.MaxImageSizeBytes)
	if resp.ContentLength > 0 && resp.ContentLength > maxSize {
		return nil, errorwrapper.NewError("image too large: %d bytes (max: %d bytes)", resp.ContentLength, maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read image body from "+url)
	}
	if int64(len(data)) > maxSize {
		return nil, errorwrapper.NewError("image too large: exceeds %d bytes", maxSize)
	}

	f.logger.Debug().Str("url", url).Int("size", len(data)).Str("content_type", resp.Header.Get("Content-Type")).Msg("Image fetched")
	return &FetchImageResult{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}
