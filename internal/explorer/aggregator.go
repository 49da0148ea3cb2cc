package explorer

import (
	"github.com/aleister1102/metascope/internal/models"
	"github.com/aleister1102/metascope/internal/resolver"
	"github.com/aleister1102/metascope/internal/urlhandler"
)

// BuildSnapshot joins one extraction run's normalized document with its
// prefetch outcomes into the canonical published model. Every icon and
// preview-image slot is filled from the outcome map; slots with no outcome
// stay pending.
func BuildSnapshot(doc *models.RawMetadataDocument, outcomes map[string]resolver.ImageOutcome, runID string) *models.OGMetadata {
	snapshot := &models.OGMetadata{
		Title:              doc.Title,
		Description:        doc.Description,
		OGTitle:            doc.OGTitle,
		OGDescription:      doc.OGDescription,
		TwitterTitle:       doc.TwitterTitle,
		TwitterDescription: doc.TwitterDescription,

		ImageURL:        doc.OGImage,
		TwitterImageURL: doc.TwitterImage,

		Favicon:         doc.Favicon,
		CanonicalURL:    doc.CanonicalURL,
		Robots:          doc.Robots,
		Keywords:        doc.Keywords,
		Generator:       doc.Generator,
		Language:        doc.Language,
		HasManifest:     doc.HasManifest,
		HasViewport:     doc.HasViewport,
		BackgroundColor: doc.BackgroundColor,

		Host:      urlhandler.HostWithoutWWW(doc.PageIdentity.String()),
		SourceURL: doc.PageIdentity,
		RunID:     runID,
	}

	snapshot.ImageStatus, snapshot.ImageData, snapshot.ImageWidth, snapshot.ImageHeight =
		imageSlot(doc.OGImage, outcomes)
	snapshot.TwitterImageStatus, _, snapshot.TwitterImageWidth, snapshot.TwitterImageHeight =
		imageSlot(doc.TwitterImage, outcomes)

	snapshot.Icons = make([]models.ResolvedIcon, 0, len(doc.Icons))
	for _, decl := range doc.Icons {
		icon := models.ResolvedIcon{
			IconDeclaration: decl,
			Status:          models.ResolveStatusPending,
		}
		if outcome, ok := outcomes[decl.URL]; ok {
			icon.Status = outcome.Status
			icon.Data = outcome.Data
			icon.Width = outcome.Width
			icon.Height = outcome.Height
		}
		snapshot.Icons = append(snapshot.Icons, icon)
	}

	return snapshot
}

// imageURLs collects every URL one run should prefetch: all icon
// declarations plus both preview-image slots.
func imageURLs(doc *models.RawMetadataDocument) []string {
	urls := make([]string, 0, len(doc.Icons)+2)
	for _, decl := range doc.Icons {
		urls = append(urls, decl.URL)
	}
	urls = append(urls, doc.OGImage, doc.TwitterImage)
	return urls
}

func imageSlot(url string, outcomes map[string]resolver.ImageOutcome) (models.ResolveStatus, []byte, *int, *int) {
	if url == "" {
		return "", nil, nil, nil
	}
	outcome, ok := outcomes[url]
	if !ok {
		return models.ResolveStatusPending, nil, nil, nil
	}
	return outcome.Status, outcome.Data, outcome.Width, outcome.Height
}
