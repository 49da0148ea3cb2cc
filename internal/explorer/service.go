package explorer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aleister1102/metascope/internal/common/timeutils"
	"github.com/aleister1102/metascope/internal/config"
	"github.com/aleister1102/metascope/internal/differ"
	"github.com/aleister1102/metascope/internal/history"
	"github.com/aleister1102/metascope/internal/models"
	"github.com/aleister1102/metascope/internal/renderer"
	"github.com/aleister1102/metascope/internal/resolver"
	"github.com/aleister1102/metascope/internal/scraper"
	"github.com/aleister1102/metascope/internal/urlhandler"
	"github.com/aleister1102/metascope/internal/watcher"
)

// Service coordinates the whole extraction pipeline: it reacts to page
// lifecycle events, runs scrape+prefetch rounds, guards results against
// staleness, and publishes accepted snapshots through the store.
//
// All coordination state lives on a single goroutine (Run); extraction
// workers communicate with it exclusively through channels.
type Service struct {
	renderer renderer.Renderer
	scraper  scraper.Scraper
	resolver *resolver.Resolver
	watcher  *watcher.Watcher
	store    *MetadataStore
	pub      *LoadGatedPublisher
	differ   *differ.MetadataDiffer
	history  *history.Store

	triggers  chan struct{}
	completed chan *models.OGMetadata

	urlDebouncer    *timeutils.Debouncer
	lastObservedURL string

	logger zerolog.Logger
}

// NewService wires the coordination service. The history store may be nil
// when visit history is disabled.
func NewService(
	rend renderer.Renderer,
	scr scraper.Scraper,
	res *resolver.Resolver,
	hist *history.Store,
	cfg *config.ExplorerConfig,
	watcherCfg *config.WatcherConfig,
	logger zerolog.Logger,
) *Service {
	s := &Service{
		renderer:     rend,
		scraper:      scr,
		resolver:     res,
		store:        NewMetadataStore(cfg, logger),
		pub:          NewLoadGatedPublisher(logger),
		differ:       differ.NewMetadataDiffer(logger),
		history:      hist,
		triggers:     make(chan struct{}, 1),
		completed:    make(chan *models.OGMetadata, 4),
		urlDebouncer: timeutils.NewDebouncer(time.Duration(cfg.URLChangeDelayMs) * time.Millisecond),
		logger:       logger.With().Str("component", "ExplorerService").Logger(),
	}
	s.watcher = watcher.NewWatcher(rend, watcherCfg, s.requestExtraction, logger)
	return s
}

// Store exposes the snapshot store for subscribers.
func (s *Service) Store() *MetadataStore {
	return s.store
}

// Navigate normalizes the input (bare hosts get a scheme) and loads it.
func (s *Service) Navigate(ctx context.Context, rawURL string) error {
	normalized, err := urlhandler.NormalizeURL(rawURL)
	if err != nil {
		return err
	}
	return s.renderer.Load(ctx, normalized)
}

// Reload reloads the current page.
func (s *Service) Reload(ctx context.Context) error {
	return s.renderer.Reload(ctx)
}

// GoBack navigates one history entry back.
func (s *Service) GoBack(ctx context.Context) error {
	return s.renderer.GoBack(ctx)
}

// GoForward navigates one history entry forward.
func (s *Service) GoForward(ctx context.Context) error {
	return s.renderer.GoForward(ctx)
}

// StopLoading aborts the in-flight page load.
func (s *Service) StopLoading(ctx context.Context) error {
	return s.renderer.StopLoading(ctx)
}

// CanGoBack reports whether a back history entry exists.
func (s *Service) CanGoBack(ctx context.Context) bool {
	return s.renderer.CanGoBack(ctx)
}

// CanGoForward reports whether a forward history entry exists.
func (s *Service) CanGoForward(ctx context.Context) bool {
	return s.renderer.CanGoForward(ctx)
}

// RecentVisits lists recent visit history, newest first. Returns nil when
// history is disabled.
func (s *Service) RecentVisits(ctx context.Context, limit int) ([]history.Visit, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.RecentVisits(ctx, limit)
}

// Run is the coordination loop. It owns all mutable coordination state and
// returns when ctx is cancelled or the renderer event stream closes.
func (s *Service) Run(ctx context.Context) {
	s.logger.Info().Msg("Explorer service started")
	defer s.urlDebouncer.Cancel()
	defer s.watcher.CancelPending()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Explorer service stopped")
			return
		case event, ok := <-s.renderer.Events():
			if !ok {
				s.logger.Info().Msg("Renderer event stream closed")
				return
			}
			s.handleEvent(ctx, event)
		case <-s.triggers:
			s.startRun(ctx)
		case snapshot := <-s.completed:
			s.finishRun(snapshot)
		}
	}
}

// requestExtraction coalesces extraction requests: a request arriving while
// one is already pending is absorbed by it.
func (s *Service) requestExtraction() {
	select {
	case s.triggers <- struct{}{}:
	default:
	}
}

func (s *Service) handleEvent(ctx context.Context, event renderer.Event) {
	switch event.Kind {
	case renderer.EventLoadingChanged:
		if flushed := s.pub.SetLoading(event.Loading); flushed != nil {
			// A buffered snapshot can outlive the page that produced it
			// when a navigation lands before the old page settles, so it
			// re-enters through the staleness check rather than publishing
			// directly.
			s.finishRun(flushed)
		}

	case renderer.EventNavigationFinished:
		// A full navigation supersedes any pending mutation burst or
		// buffered snapshot from the previous page.
		s.watcher.CancelPending()
		s.urlDebouncer.Cancel()
		s.pub.Discard()
		s.lastObservedURL = event.URL

		if err := s.watcher.Install(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to install mutation watcher")
		}
		s.requestExtraction()

	case renderer.EventURLChanged:
		if event.URL == s.lastObservedURL {
			return
		}
		s.lastObservedURL = event.URL
		// Anything buffered belongs to the previous URL now.
		s.pub.Discard()
		// SPA routers flip the URL before the DOM settles; wait out the
		// churn before re-extracting.
		s.urlDebouncer.Schedule(s.requestExtraction)
	}
}

// startRun captures the page identity and spawns one extraction worker. The
// worker never touches coordination state; it reports back on completed.
func (s *Service) startRun(ctx context.Context) {
	identity := models.PageIdentity(s.renderer.CurrentURL())
	if identity.IsZero() {
		return
	}
	runID := uuid.New().String()

	s.logger.Debug().Str("run_id", runID).Str("url", identity.String()).Msg("Extraction run started")

	go func() {
		doc, err := s.scraper.Scrape(ctx, identity)
		if err != nil {
			s.logger.Warn().Err(err).Str("run_id", runID).Msg("Extraction run failed")
			return
		}

		outcomes := s.resolver.ResolveAll(ctx, imageURLs(doc))
		snapshot := BuildSnapshot(doc, outcomes, runID)

		select {
		case s.completed <- snapshot:
		case <-ctx.Done():
		}
	}()
}

// finishRun applies the staleness guard: a completed run is accepted only if
// the page identity it was issued for still matches the live page. Stale
// results are discarded without side effects.
func (s *Service) finishRun(snapshot *models.OGMetadata) {
	liveURL := s.renderer.CurrentURL()
	if snapshot.SourceURL.String() != liveURL {
		s.logger.Debug().
			Str("run_id", snapshot.RunID).
			Str("run_url", snapshot.SourceURL.String()).
			Str("live_url", liveURL).
			Msg("Discarding stale extraction result")
		return
	}

	if accepted := s.pub.Offer(snapshot); accepted != nil {
		s.accept(accepted)
	}
}

// accept publishes one snapshot atomically and records the downstream
// effects: change summary logging and visit history.
func (s *Service) accept(snapshot *models.OGMetadata) {
	previous := s.store.Current()
	s.store.Publish(snapshot)

	summary := s.differ.Summarize(previous, snapshot)
	if summary.HasChanges() {
		s.logger.Info().
			Str("run_id", snapshot.RunID).
			Str("url", snapshot.SourceURL.String()).
			Strs("changed_fields", summary.ChangedFields).
			Int("added_icons", len(summary.AddedIcons)).
			Int("removed_icons", len(summary.RemovedIcons)).
			Msg("Published metadata snapshot")
	}

	if s.history != nil && (summary.FirstPublish || summary.NavigatedAway) {
		recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.history.RecordVisit(recordCtx, snapshot.SourceURL.String(), snapshot.Host, snapshot.Title); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to record visit")
		}
	}
}
