package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/metascope/internal/models"
	"github.com/aleister1102/metascope/internal/resolver"
)

func intPtr(v int) *int { return &v }

func TestBuildSnapshot_JoinsOutcomesIntoIcons(t *testing.T) {
	doc := &models.RawMetadataDocument{
		Title:        "Example",
		OGImage:      "https://example.com/og.png",
		TwitterImage: "https://example.com/tw.png",
		Icons: []models.IconDeclaration{
			{URL: "https://example.com/icon.png", Rel: models.RelIcon},
			{URL: "https://example.com/missing.png", Rel: models.RelIcon},
		},
		PageIdentity: models.PageIdentity("https://www.example.com/page"),
	}
	outcomes := map[string]resolver.ImageOutcome{
		"https://example.com/icon.png": {
			URL:    "https://example.com/icon.png",
			Status: models.ResolveStatusResolved,
			Data:   []byte{1, 2},
			Width:  intPtr(32),
			Height: intPtr(32),
		},
		"https://example.com/missing.png": {
			URL:    "https://example.com/missing.png",
			Status: models.ResolveStatusFailed,
		},
		"https://example.com/og.png": {
			URL:    "https://example.com/og.png",
			Status: models.ResolveStatusResolved,
			Data:   []byte{3},
			Width:  intPtr(1200),
			Height: intPtr(630),
		},
	}

	snapshot := BuildSnapshot(doc, outcomes, "run-1")

	assert.Equal(t, "Example", snapshot.Title)
	assert.Equal(t, "example.com", snapshot.Host)
	assert.Equal(t, models.PageIdentity("https://www.example.com/page"), snapshot.SourceURL)
	assert.Equal(t, "run-1", snapshot.RunID)

	require.Len(t, snapshot.Icons, 2)
	assert.Equal(t, models.ResolveStatusResolved, snapshot.Icons[0].Status)
	assert.Equal(t, 32, *snapshot.Icons[0].Width)
	assert.Equal(t, models.ResolveStatusFailed, snapshot.Icons[1].Status)
	assert.Nil(t, snapshot.Icons[1].Width)

	assert.Equal(t, models.ResolveStatusResolved, snapshot.ImageStatus)
	assert.Equal(t, 1200, *snapshot.ImageWidth)
	// No outcome for the twitter image leaves its slot pending.
	assert.Equal(t, models.ResolveStatusPending, snapshot.TwitterImageStatus)
}

func TestBuildSnapshot_EmptyImageSlotsStayUnset(t *testing.T) {
	doc := &models.RawMetadataDocument{
		Title:        "Plain",
		PageIdentity: models.PageIdentity("https://example.com/"),
	}

	snapshot := BuildSnapshot(doc, map[string]resolver.ImageOutcome{}, "run-1")

	assert.Empty(t, snapshot.ImageURL)
	assert.Equal(t, models.ResolveStatus(""), snapshot.ImageStatus)
	assert.Empty(t, snapshot.Icons)
}

func TestImageURLs_CollectsIconsAndPreviewSlots(t *testing.T) {
	doc := &models.RawMetadataDocument{
		OGImage:      "https://example.com/og.png",
		TwitterImage: "https://example.com/tw.png",
		Icons: []models.IconDeclaration{
			{URL: "https://example.com/a.png"},
			{URL: "https://example.com/b.png"},
		},
	}

	urls := imageURLs(doc)
	assert.Equal(t, []string{
		"https://example.com/a.png",
		"https://example.com/b.png",
		"https://example.com/og.png",
		"https://example.com/tw.png",
	}, urls)
}
