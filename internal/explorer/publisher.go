package explorer

import (
	"github.com/rs/zerolog"

	"github.com/aleister1102/metascope/internal/models"
)

// LoadGatedPublisher holds completed snapshots back while the page is still
// loading and releases the newest one when it settles. It keeps at most one
// buffered snapshot; a newer candidate replaces an older buffered one
// outright.
//
// All methods must be called from the coordination goroutine; the type
// carries no locking on purpose.
type LoadGatedPublisher struct {
	loading  bool
	buffered *models.OGMetadata
	logger   zerolog.Logger
}

// NewLoadGatedPublisher creates a publisher in the settled state.
func NewLoadGatedPublisher(logger zerolog.Logger) *LoadGatedPublisher {
	return &LoadGatedPublisher{
		logger: logger.With().Str("component", "LoadGatedPublisher").Logger(),
	}
}

// Offer submits one completed snapshot. The return value is the snapshot to
// publish now, or nil when the page is loading and the snapshot was buffered
// instead.
func (p *LoadGatedPublisher) Offer(snapshot *models.OGMetadata) *models.OGMetadata {
	if !p.loading {
		return snapshot
	}
	if p.buffered != nil {
		p.logger.Debug().
			Str("replaced_run", p.buffered.RunID).
			Str("buffered_run", snapshot.RunID).
			Msg("Newer snapshot replaced buffered one")
	}
	p.buffered = snapshot
	return nil
}

// SetLoading records a loading-state transition. On the transition to
// settled it returns the buffered snapshot, if any, for immediate publish.
func (p *LoadGatedPublisher) SetLoading(loading bool) *models.OGMetadata {
	wasLoading := p.loading
	p.loading = loading
	if !wasLoading || loading {
		return nil
	}
	flushed := p.buffered
	p.buffered = nil
	return flushed
}

// Discard drops any buffered snapshot, e.g. when a new navigation makes it
// stale before the page ever settled.
func (p *LoadGatedPublisher) Discard() {
	p.buffered = nil
}
