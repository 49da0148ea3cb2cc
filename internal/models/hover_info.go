package models

import "fmt"

// Hover warnings shown in place of a size string
const (
	HoverWarningFailedToLoad = "Failed to load"
	HoverWarningMalformedURL = "Malformed URL"
)

// HoverInfo is the per-icon / per-image detail shown on demand by the
// presentation layer. Derived, never persisted.
type HoverInfo struct {
	TypeLabel string
	SizeText  string
	Warning   string
	RawTag    string
	Image     []byte
}

// NewIconHoverInfo derives hover detail for one resolved icon.
func NewIconHoverInfo(icon ResolvedIcon) HoverInfo {
	info := HoverInfo{
		TypeLabel: iconTypeLabel(icon.IconDeclaration),
		RawTag:    icon.RawTag,
		Image:     icon.Data,
	}
	fillSizeOrWarning(&info, icon.Status, icon.Width, icon.Height, icon.Sizes)
	return info
}

// NewImageHoverInfo derives hover detail for a preview image slot (OG or
// Twitter image).
func NewImageHoverInfo(typeLabel string, status ResolveStatus, width, height *int, data []byte) HoverInfo {
	info := HoverInfo{
		TypeLabel: typeLabel,
		Image:     data,
	}
	fillSizeOrWarning(&info, status, width, height, "")
	return info
}

func fillSizeOrWarning(info *HoverInfo, status ResolveStatus, width, height *int, declaredSizes string) {
	switch status {
	case ResolveStatusMalformed:
		info.Warning = HoverWarningMalformedURL
	case ResolveStatusFailed:
		info.Warning = HoverWarningFailedToLoad
	default:
		if width != nil && height != nil {
			info.SizeText = fmt.Sprintf("%d×%d", *width, *height)
		} else if declaredSizes != "" && declaredSizes != "any" {
			info.SizeText = declaredSizes
		}
	}
}

func iconTypeLabel(decl IconDeclaration) string {
	if decl.IsAppleTouch() {
		return "Apple Touch Icon"
	}
	if containsToken(decl.Rel, RelIcon) || decl.Rel == RelShortcutIcon {
		return "Favicon"
	}
	return "Icon"
}
