package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/metascope/internal/config"
	"github.com/aleister1102/metascope/internal/models"
	"github.com/aleister1102/metascope/internal/rslimiter"
)

func newTestResolver() *Resolver {
	cfg := config.NewDefaultResolverConfig()
	limiterCfg := config.NewDefaultResourceLimiterConfig()
	return NewResolver(&cfg, rslimiter.NewLimiter(&limiterCfg, zerolog.Nop()), zerolog.Nop())
}

func TestResolveAll_JoinWaitsForAllOutcomes(t *testing.T) {
	var hits atomic.Int32
	png := encodePNG(t, 16, 16)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/broken.png":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png)
		}
	}))
	defer server.Close()

	urls := []string{
		server.URL + "/a.png",
		server.URL + "/b.png",
		server.URL + "/broken.png",
	}

	results := newTestResolver().ResolveAll(context.Background(), urls)

	// All three outcomes present: the failure is an unresolved slot, not a
	// missing or run-aborting one.
	require.Len(t, results, 3)
	assert.Equal(t, int32(3), hits.Load())

	ok := results[server.URL+"/a.png"]
	assert.Equal(t, models.ResolveStatusResolved, ok.Status)
	require.NotNil(t, ok.Width)
	assert.Equal(t, 16, *ok.Width)

	failed := results[server.URL+"/broken.png"]
	assert.Equal(t, models.ResolveStatusFailed, failed.Status)
	assert.Nil(t, failed.Data)
	assert.Nil(t, failed.Width)
	assert.Nil(t, failed.Height)
}

func TestResolveAll_NetworkFailureIsLocalized(t *testing.T) {
	// Unroutable port: the fetch errors without aborting other slots.
	dead := "http://127.0.0.1:1/icon.png"

	png := encodePNG(t, 8, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(png)
	}))
	defer server.Close()

	results := newTestResolver().ResolveAll(context.Background(), []string{dead, server.URL + "/ok.png"})
	require.Len(t, results, 2)
	assert.Equal(t, models.ResolveStatusFailed, results[dead].Status)
	assert.Equal(t, models.ResolveStatusResolved, results[server.URL+"/ok.png"].Status)
}

func TestResolveAll_MalformedURLClassifiedWithoutFetch(t *testing.T) {
	results := newTestResolver().ResolveAll(context.Background(), []string{"::not-a-url::", "/relative/only.png"})

	require.Len(t, results, 2)
	for _, outcome := range results {
		assert.Equal(t, models.ResolveStatusMalformed, outcome.Status)
		assert.Nil(t, outcome.Data)
	}
}

func TestResolveAll_DeduplicatesURLs(t *testing.T) {
	var hits atomic.Int32
	png := encodePNG(t, 4, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(png)
	}))
	defer server.Close()

	url := server.URL + "/shared.png"
	results := newTestResolver().ResolveAll(context.Background(), []string{url, url, url, ""})

	assert.Len(t, results, 1)
	assert.Equal(t, int32(1), hits.Load(), "aliased slots must share one fetch")
}

func TestResolveAll_UndecodableBytesAreFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not an image"))
	}))
	defer server.Close()

	results := newTestResolver().ResolveAll(context.Background(), []string{server.URL + "/fake.png"})
	outcome := results[server.URL+"/fake.png"]
	assert.Equal(t, models.ResolveStatusFailed, outcome.Status)
}

func TestResolveAll_SVGLogicalSizeFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24"></svg>`))
	}))
	defer server.Close()

	results := newTestResolver().ResolveAll(context.Background(), []string{server.URL + "/icon.svg"})
	outcome := results[server.URL+"/icon.svg"]
	assert.Equal(t, models.ResolveStatusResolved, outcome.Status)
	require.NotNil(t, outcome.Width)
	require.NotNil(t, outcome.Height)
	assert.Equal(t, 24, *outcome.Width)
	assert.Equal(t, 24, *outcome.Height)
}

func TestResolveAll_OversizedPayloadFails(t *testing.T) {
	cfg := config.NewDefaultResolverConfig()
	cfg.MaxImageSizeBytes = 64
	limiterCfg := config.NewDefaultResourceLimiterConfig()
	r := NewResolver(&cfg, rslimiter.NewLimiter(&limiterCfg, zerolog.Nop()), zerolog.Nop())

	big := make([]byte, 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write(big)
	}))
	defer server.Close()

	results := r.ResolveAll(context.Background(), []string{server.URL + "/huge.png"})
	assert.Equal(t, models.ResolveStatusFailed, results[server.URL+"/huge.png"].Status)
}
