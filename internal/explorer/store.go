package explorer

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/aleister1102/metascope/internal/config"
	"github.com/aleister1102/metascope/internal/models"
)

// MetadataStore holds the current published snapshot and fans it out to
// subscribers. Snapshots are immutable once published; subscribers receive
// pointers and must not mutate them.
type MetadataStore struct {
	mu          sync.RWMutex
	current     *models.OGMetadata
	subscribers map[int]chan *models.OGMetadata
	nextID      int
	buffer      int
	logger      zerolog.Logger
}

// NewMetadataStore creates an empty store.
func NewMetadataStore(cfg *config.ExplorerConfig, logger zerolog.Logger) *MetadataStore {
	return &MetadataStore{
		subscribers: make(map[int]chan *models.OGMetadata),
		buffer:      cfg.SubscriberBuffer,
		logger:      logger.With().Str("component", "MetadataStore").Logger(),
	}
}

// Current returns the latest published snapshot, nil before the first
// publish.
func (s *MetadataStore) Current() *models.OGMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Publish replaces the current snapshot in one step and notifies every
// subscriber. A subscriber with a full channel misses this update; it will
// still observe the next one.
func (s *MetadataStore) Publish(snapshot *models.OGMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snapshot
	for id, ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			s.logger.Warn().Int("subscriber", id).Msg("Subscriber channel full, dropping snapshot")
		}
	}
}

// Subscribe registers a new snapshot listener. The returned cancel function
// unregisters it and closes the channel.
func (s *MetadataStore) Subscribe() (<-chan *models.OGMetadata, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan *models.OGMetadata, s.buffer)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(existing)
		}
	}
	return ch, cancel
}
