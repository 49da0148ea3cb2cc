package resolver

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aleister1102/metascope/internal/common/errorwrapper"
	"github.com/aleister1102/metascope/internal/config"
	"github.com/aleister1102/metascope/internal/models"
	"github.com/aleister1102/metascope/internal/rslimiter"
	"github.com/aleister1102/metascope/internal/urlhandler"
)

// ImageOutcome is the immutable per-URL result of one prefetch slot.
type ImageOutcome struct {
	URL         string
	Status      models.ResolveStatus
	Data        []byte
	ContentType string
	Width       *int
	Height      *int
}

// Resolver fans out concurrent fetches for every unique image URL of an
// extraction run and joins all outcomes before returning. There is no
// concurrency cap; one page declares a bounded handful of images.
type Resolver struct {
	fetcher *Fetcher
	limiter *rslimiter.Limiter
	logger  zerolog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(cfg *config.ResolverConfig, limiter *rslimiter.Limiter, logger zerolog.Logger) *Resolver {
	return &Resolver{
		fetcher: NewFetcher(cfg, logger),
		limiter: limiter,
		logger:  logger.With().Str("component", "ImageResolver").Logger(),
	}
}

// ResolveAll fetches every unique, non-empty URL concurrently and waits for
// all outcomes, success or failure, before returning. Failures stay
// localized to their slot and are never escalated.
func (r *Resolver) ResolveAll(ctx context.Context, urls []string) map[string]ImageOutcome {
	unique := dedupe(urls)
	outcomes := make([]ImageOutcome, len(unique))

	var group errgroup.Group
	for i, imageURL := range unique {
		if err := urlhandler.ValidateImageURL(imageURL); err != nil {
			status := models.ResolveStatusFailed
			if errorwrapper.IsMalformedURL(err) {
				status = models.ResolveStatusMalformed
				r.logger.Debug().Err(err).Str("url", imageURL).Msg("Skipping malformed image URL")
			}
			outcomes[i] = ImageOutcome{URL: imageURL, Status: status}
			continue
		}

		group.Go(func() error {
			outcomes[i] = r.resolveOne(ctx, imageURL)
			return nil
		})
	}

	// Join barrier: workers never return errors, so Wait is purely the
	// all-outcomes rendezvous.
	_ = group.Wait()

	results := make(map[string]ImageOutcome, len(unique))
	for _, outcome := range outcomes {
		if outcome.URL != "" {
			results[outcome.URL] = outcome
		}
	}
	return results
}

func (r *Resolver) resolveOne(ctx context.Context, imageURL string) ImageOutcome {
	fetched, err := r.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return ImageOutcome{URL: imageURL, Status: models.ResolveStatusFailed}
	}

	outcome := ImageOutcome{
		URL:         imageURL,
		Status:      models.ResolveStatusResolved,
		Data:        fetched.Data,
		ContentType: fetched.ContentType,
	}

	if !r.limiter.AllowDecode(len(fetched.Data)) {
		return outcome
	}

	width, height, err := DecodeDimensions(fetched.Data, fetched.ContentType)
	if err != nil {
		// Undecodable bytes count as a fetch failure for this slot.
		r.logger.Debug().Err(err).Str("url", imageURL).Msg("Image payload undecodable")
		return ImageOutcome{URL: imageURL, Status: models.ResolveStatusFailed}
	}
	if width > 0 && height > 0 {
		outcome.Width = &width
		outcome.Height = &height
	}
	return outcome
}

// dedupe keeps first occurrences of non-empty URLs in order.
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	unique := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		unique = append(unique, u)
	}
	return unique
}
