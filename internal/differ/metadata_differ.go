package differ

import (
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/aleister1102/metascope/internal/models"
)

// MetadataDiffer compares consecutive published snapshots so the sidebar
// can animate only what changed and the log shows real deltas instead of
// full dumps.
type MetadataDiffer struct {
	dmp    *diffmatchpatch.DiffMatchPatch
	logger zerolog.Logger
}

// NewMetadataDiffer creates a MetadataDiffer.
func NewMetadataDiffer(logger zerolog.Logger) *MetadataDiffer {
	return &MetadataDiffer{
		dmp:    diffmatchpatch.New(),
		logger: logger.With().Str("component", "MetadataDiffer").Logger(),
	}
}

// Summarize builds the change summary between the previous snapshot (nil on
// first publish) and the next one.
func (d *MetadataDiffer) Summarize(prev, next *models.OGMetadata) *models.ChangeSummary {
	summary := &models.ChangeSummary{}
	if next == nil {
		return summary
	}
	if prev == nil {
		summary.FirstPublish = true
		return summary
	}

	summary.NavigatedAway = prev.SourceURL != next.SourceURL

	compare := func(field, before, after string) {
		if before != after {
			summary.ChangedFields = append(summary.ChangedFields, field)
		}
	}
	compare("title", prev.Title, next.Title)
	compare("description", prev.Description, next.Description)
	compare("twitter_title", prev.TwitterTitle, next.TwitterTitle)
	compare("twitter_description", prev.TwitterDescription, next.TwitterDescription)
	compare("image_url", prev.ImageURL, next.ImageURL)
	compare("twitter_image_url", prev.TwitterImageURL, next.TwitterImageURL)
	compare("favicon", prev.Favicon, next.Favicon)
	compare("canonical_url", prev.CanonicalURL, next.CanonicalURL)
	compare("robots", prev.Robots, next.Robots)
	compare("keywords", prev.Keywords, next.Keywords)
	compare("generator", prev.Generator, next.Generator)
	compare("language", prev.Language, next.Language)
	compare("background_color", prev.BackgroundColor, next.BackgroundColor)

	if prev.Title != next.Title {
		summary.TitleDiff = d.inlineDiff(prev.Title, next.Title)
	}
	if prev.Description != next.Description {
		summary.DescriptionDiff = d.inlineDiff(prev.Description, next.Description)
	}

	summary.AddedIcons, summary.RemovedIcons, summary.KeptIcons = diffIcons(prev.Icons, next.Icons)
	return summary
}

// inlineDiff renders a compact semantic text diff.
func (d *MetadataDiffer) inlineDiff(before, after string) string {
	diffs := d.dmp.DiffMain(before, after, false)
	d.dmp.DiffCleanupSemantic(diffs)
	return d.dmp.DiffPrettyText(diffs)
}

// diffIcons applies the declaration equality contract: prefetch payloads
// and resolved dimensions never affect icon identity.
func diffIcons(prev, next []models.ResolvedIcon) (added, removed []models.IconDeclaration, kept int) {
	matchedPrev := make([]bool, len(prev))

	for _, nextIcon := range next {
		found := false
		for i, prevIcon := range prev {
			if !matchedPrev[i] && prevIcon.SameDeclaration(nextIcon.IconDeclaration) {
				matchedPrev[i] = true
				found = true
				break
			}
		}
		if found {
			kept++
		} else {
			added = append(added, nextIcon.IconDeclaration)
		}
	}

	for i, prevIcon := range prev {
		if !matchedPrev[i] {
			removed = append(removed, prevIcon.IconDeclaration)
		}
	}
	return added, removed, kept
}
