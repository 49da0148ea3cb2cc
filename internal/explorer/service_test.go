package explorer

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/metascope/internal/config"
	"github.com/aleister1102/metascope/internal/models"
	"github.com/aleister1102/metascope/internal/renderer"
	"github.com/aleister1102/metascope/internal/resolver"
	"github.com/aleister1102/metascope/internal/rslimiter"
	"github.com/aleister1102/metascope/internal/watcher"
)

type fakeRenderer struct {
	mu         sync.Mutex
	currentURL string
	events     chan renderer.Event
	handlers   map[string]func(string)
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		events:   make(chan renderer.Event, 16),
		handlers: make(map[string]func(string)),
	}
}

func (r *fakeRenderer) setURL(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentURL = url
}

func (r *fakeRenderer) push(event renderer.Event) {
	r.events <- event
}

func (r *fakeRenderer) handler(name string) func(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlers[name]
}

func (r *fakeRenderer) ExecuteScript(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (r *fakeRenderer) Load(_ context.Context, url string) error {
	r.setURL(url)
	return nil
}

func (r *fakeRenderer) Reload(context.Context) error { return nil }

func (r *fakeRenderer) StopLoading(context.Context) error { return nil }

func (r *fakeRenderer) GoBack(context.Context) error { return nil }

func (r *fakeRenderer) GoForward(context.Context) error { return nil }

func (r *fakeRenderer) CurrentURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentURL
}

func (r *fakeRenderer) IsLoading() bool { return false }

func (r *fakeRenderer) CanGoBack(context.Context) bool { return false }

func (r *fakeRenderer) CanGoForward(context.Context) bool { return false }

func (r *fakeRenderer) RegisterMessageChannel(name string, handler func(payload string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
	return nil
}

func (r *fakeRenderer) Events() <-chan renderer.Event { return r.events }

func (r *fakeRenderer) Close() error { return nil }

type fakeScraper struct {
	mu    sync.Mutex
	calls int
	gate  chan struct{}
	build func(models.PageIdentity) *models.RawMetadataDocument
}

func (f *fakeScraper) Scrape(_ context.Context, identity models.PageIdentity) (*models.RawMetadataDocument, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.build(identity), nil
}

func (f *fakeScraper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func plainDoc(identity models.PageIdentity) *models.RawMetadataDocument {
	return &models.RawMetadataDocument{
		Title:        "Example Page",
		PageIdentity: identity,
	}
}

func newTestService(t *testing.T, rend *fakeRenderer, scr *fakeScraper) *Service {
	t.Helper()

	explorerCfg := config.NewDefaultExplorerConfig()
	explorerCfg.URLChangeDelayMs = 20
	watcherCfg := config.NewDefaultWatcherConfig()
	watcherCfg.DebounceMs = 20
	resolverCfg := config.NewDefaultResolverConfig()
	limiterCfg := config.NewDefaultResourceLimiterConfig()

	res := resolver.NewResolver(&resolverCfg, rslimiter.NewLimiter(&limiterCfg, zerolog.Nop()), zerolog.Nop())
	svc := NewService(rend, scr, res, nil, &explorerCfg, &watcherCfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return svc
}

func waitSnapshot(t *testing.T, ch <-chan *models.OGMetadata) *models.OGMetadata {
	t.Helper()
	select {
	case snapshot := <-ch:
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published snapshot")
		return nil
	}
}

func assertNoSnapshot(t *testing.T, ch <-chan *models.OGMetadata, wait time.Duration) {
	t.Helper()
	select {
	case snapshot := <-ch:
		t.Fatalf("unexpected snapshot published: run %s for %s", snapshot.RunID, snapshot.SourceURL)
	case <-time.After(wait):
	}
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestService_NavigationPublishesJoinedSnapshot(t *testing.T) {
	icon := pngBytes(t, 32, 32)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/icon.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(icon)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	scr := &fakeScraper{build: func(identity models.PageIdentity) *models.RawMetadataDocument {
		return &models.RawMetadataDocument{
			Title: "Example Page",
			Icons: []models.IconDeclaration{
				{URL: server.URL + "/icon.png", Rel: models.RelIcon},
				{URL: server.URL + "/broken.png", Rel: models.RelAppleTouchIcon},
			},
			PageIdentity: identity,
		}
	}}
	rend := newFakeRenderer()
	svc := newTestService(t, rend, scr)

	ch, cancel := svc.Store().Subscribe()
	defer cancel()

	rend.setURL("https://example.com/")
	rend.push(renderer.Event{Kind: renderer.EventNavigationFinished, URL: "https://example.com/"})

	snapshot := waitSnapshot(t, ch)
	assert.Equal(t, models.PageIdentity("https://example.com/"), snapshot.SourceURL)
	assert.Equal(t, "Example Page", snapshot.Title)
	assert.NotEmpty(t, snapshot.RunID)

	// Every prefetch slot has settled before publish.
	require.Len(t, snapshot.Icons, 2)
	assert.Equal(t, models.ResolveStatusResolved, snapshot.Icons[0].Status)
	assert.Equal(t, 32, *snapshot.Icons[0].Width)
	assert.Equal(t, models.ResolveStatusFailed, snapshot.Icons[1].Status)

	// The navigation also installed the mutation watcher.
	assert.NotNil(t, rend.handler(watcher.HeadChangedChannel))
}

func TestService_StaleResultDiscarded(t *testing.T) {
	gate := make(chan struct{})
	scr := &fakeScraper{gate: gate, build: plainDoc}
	rend := newFakeRenderer()
	svc := newTestService(t, rend, scr)

	ch, cancel := svc.Store().Subscribe()
	defer cancel()

	rend.setURL("https://old.example.com/")
	rend.push(renderer.Event{Kind: renderer.EventNavigationFinished, URL: "https://old.example.com/"})

	require.Eventually(t, func() bool { return scr.callCount() == 1 },
		time.Second, 5*time.Millisecond)

	// The page moved on while the extraction was in flight.
	rend.setURL("https://new.example.com/")
	close(gate)

	assertNoSnapshot(t, ch, 150*time.Millisecond)
	assert.Nil(t, svc.Store().Current())
}

func TestService_LoadGateHoldsUntilSettled(t *testing.T) {
	scr := &fakeScraper{build: plainDoc}
	rend := newFakeRenderer()
	svc := newTestService(t, rend, scr)

	ch, cancel := svc.Store().Subscribe()
	defer cancel()

	rend.setURL("https://example.com/")
	rend.push(renderer.Event{Kind: renderer.EventLoadingChanged, Loading: true})
	rend.push(renderer.Event{Kind: renderer.EventNavigationFinished, URL: "https://example.com/"})

	require.Eventually(t, func() bool { return scr.callCount() == 1 },
		time.Second, 5*time.Millisecond)
	assertNoSnapshot(t, ch, 150*time.Millisecond)

	rend.push(renderer.Event{Kind: renderer.EventLoadingChanged, Loading: false})

	snapshot := waitSnapshot(t, ch)
	assert.Equal(t, "Example Page", snapshot.Title)
	assert.Equal(t, models.PageIdentity("https://example.com/"), snapshot.SourceURL)
}

func TestService_BufferedSnapshotDroppedWhenNavigationSupersedes(t *testing.T) {
	scr := &fakeScraper{build: plainDoc}
	rend := newFakeRenderer()
	svc := newTestService(t, rend, scr)

	ch, cancel := svc.Store().Subscribe()
	defer cancel()

	// Page A starts loading; its extraction completes and sits buffered
	// behind the load gate.
	rend.setURL("https://a.example/")
	rend.push(renderer.Event{Kind: renderer.EventLoadingChanged, Loading: true})
	rend.push(renderer.Event{Kind: renderer.EventURLChanged, URL: "https://a.example/"})

	require.Eventually(t, func() bool { return scr.callCount() == 1 },
		time.Second, 5*time.Millisecond)
	// Let the completed result reach the publisher before navigating away.
	time.Sleep(50 * time.Millisecond)

	// The user navigates to B before A ever settles. The settle event for
	// B must not flush A's buffered snapshot.
	rend.setURL("https://b.example/")
	rend.push(renderer.Event{Kind: renderer.EventURLChanged, URL: "https://b.example/"})
	rend.push(renderer.Event{Kind: renderer.EventLoadingChanged, Loading: false})

	snapshot := waitSnapshot(t, ch)
	assert.Equal(t, models.PageIdentity("https://b.example/"), snapshot.SourceURL)

	// Nothing from A may ever surface, including via Current.
	assert.Equal(t, models.PageIdentity("https://b.example/"), svc.Store().Current().SourceURL)
}

func TestService_URLChangeBurstCollapses(t *testing.T) {
	scr := &fakeScraper{build: plainDoc}
	rend := newFakeRenderer()
	svc := newTestService(t, rend, scr)

	ch, cancel := svc.Store().Subscribe()
	defer cancel()

	rend.setURL("https://example.com/")
	rend.push(renderer.Event{Kind: renderer.EventNavigationFinished, URL: "https://example.com/"})
	first := waitSnapshot(t, ch)
	assert.Equal(t, models.PageIdentity("https://example.com/"), first.SourceURL)

	// SPA router churn: several URL flips in quick succession.
	rend.setURL("https://example.com/final")
	for _, u := range []string{
		"https://example.com/step1",
		"https://example.com/step2",
		"https://example.com/final",
	} {
		rend.push(renderer.Event{Kind: renderer.EventURLChanged, URL: u})
	}

	second := waitSnapshot(t, ch)
	assert.Equal(t, models.PageIdentity("https://example.com/final"), second.SourceURL)

	// The burst produced exactly one re-extraction.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, scr.callCount())
}

func TestService_HeadMutationTriggersReExtraction(t *testing.T) {
	scr := &fakeScraper{build: plainDoc}
	rend := newFakeRenderer()
	svc := newTestService(t, rend, scr)

	ch, cancel := svc.Store().Subscribe()
	defer cancel()

	rend.setURL("https://example.com/")
	rend.push(renderer.Event{Kind: renderer.EventNavigationFinished, URL: "https://example.com/"})
	waitSnapshot(t, ch)

	signal := rend.handler(watcher.HeadChangedChannel)
	require.NotNil(t, signal)
	signal("childList")
	signal("attributes")
	signal("childList")

	waitSnapshot(t, ch)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, scr.callCount())
}

func TestService_RepeatedURLEventForSameURLIgnored(t *testing.T) {
	scr := &fakeScraper{build: plainDoc}
	rend := newFakeRenderer()
	svc := newTestService(t, rend, scr)

	ch, cancel := svc.Store().Subscribe()
	defer cancel()

	rend.setURL("https://example.com/")
	rend.push(renderer.Event{Kind: renderer.EventNavigationFinished, URL: "https://example.com/"})
	waitSnapshot(t, ch)

	rend.push(renderer.Event{Kind: renderer.EventURLChanged, URL: "https://example.com/"})

	assertNoSnapshot(t, ch, 150*time.Millisecond)
	assert.Equal(t, 1, scr.callCount())
}
