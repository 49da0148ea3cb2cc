package explorer

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/metascope/internal/config"
	"github.com/aleister1102/metascope/internal/models"
)

func newTestStore(t *testing.T) *MetadataStore {
	t.Helper()
	cfg := config.NewDefaultExplorerConfig()
	return NewMetadataStore(&cfg, zerolog.Nop())
}

func TestMetadataStore_CurrentStartsNil(t *testing.T) {
	store := newTestStore(t)
	assert.Nil(t, store.Current())
}

func TestMetadataStore_PublishReplacesAndNotifies(t *testing.T) {
	store := newTestStore(t)
	ch, cancel := store.Subscribe()
	defer cancel()

	first := &models.OGMetadata{RunID: "1"}
	second := &models.OGMetadata{RunID: "2"}
	store.Publish(first)
	store.Publish(second)

	assert.Same(t, second, store.Current())
	require.Len(t, ch, 2)
	assert.Same(t, first, <-ch)
	assert.Same(t, second, <-ch)
}

func TestMetadataStore_FullSubscriberDropsNotLatest(t *testing.T) {
	cfg := config.NewDefaultExplorerConfig()
	cfg.SubscriberBuffer = 1
	store := NewMetadataStore(&cfg, zerolog.Nop())

	ch, cancel := store.Subscribe()
	defer cancel()

	store.Publish(&models.OGMetadata{RunID: "1"})
	store.Publish(&models.OGMetadata{RunID: "2"})

	// The second publish is dropped for this slow subscriber, but Current
	// always reflects it.
	require.Len(t, ch, 1)
	assert.Equal(t, "1", (<-ch).RunID)
	assert.Equal(t, "2", store.Current().RunID)
}

func TestMetadataStore_CancelClosesChannel(t *testing.T) {
	store := newTestStore(t)
	ch, cancel := store.Subscribe()

	cancel()
	cancel() // idempotent

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic.
	store.Publish(&models.OGMetadata{RunID: "1"})
}
