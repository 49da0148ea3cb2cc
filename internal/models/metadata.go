package models

// PageIdentity is the fully-resolved URL an extraction run was issued for.
// It is captured once when the scrape is invoked and threaded, immutable,
// through every asynchronous stage so results can be checked for staleness
// at the aggregation boundary.
type PageIdentity string

// String returns the identity as a plain URL string.
func (p PageIdentity) String() string {
	return string(p)
}

// IsZero reports whether the identity was never captured.
func (p PageIdentity) IsZero() bool {
	return p == ""
}

// Icon rel categories
const (
	RelShortcutIcon   = "shortcut icon"
	RelIcon           = "icon"
	RelAppleTouchIcon = "apple-touch-icon"
)

// IconDeclaration is one icon-like link tag, with its href already resolved
// to an absolute URL. Declarations are positional: page order first, then
// any synthesized defaults.
type IconDeclaration struct {
	URL    string `json:"url"`
	Sizes  string `json:"sizes"`
	Rel    string `json:"rel"`
	RawTag string `json:"raw_tag"`
	// Synthetic marks a declaration injected for a missing default
	// (/favicon.ico, /apple-touch-icon.png) rather than found in the page.
	Synthetic bool `json:"synthetic,omitempty"`
}

// IsAppleTouch reports whether the declaration belongs to the
// apple-touch-icon category.
func (d IconDeclaration) IsAppleTouch() bool {
	return containsToken(d.Rel, RelAppleTouchIcon)
}

// SameDeclaration reports declaration-level equality: url, sizes, rel and
// raw tag only. Prefetched payload and resolved dimensions are deliberately
// excluded so re-extractions of an unchanged page keep icon identity stable
// for UI diffing regardless of fetch outcomes.
func (d IconDeclaration) SameDeclaration(other IconDeclaration) bool {
	return d.URL == other.URL &&
		d.Sizes == other.Sizes &&
		d.Rel == other.Rel &&
		d.RawTag == other.RawTag
}

// ResolveStatus classifies the outcome of one image prefetch slot
type ResolveStatus string

const (
	// ResolveStatusPending means no fetch has been attempted yet.
	ResolveStatusPending ResolveStatus = "pending"
	// ResolveStatusResolved means the payload was fetched and decoded;
	// dimensions may still be unset for vectors with no intrinsic size.
	ResolveStatusResolved ResolveStatus = "resolved"
	// ResolveStatusFailed means the fetch errored, returned a non-success
	// status, or the bytes were undecodable.
	ResolveStatusFailed ResolveStatus = "failed"
	// ResolveStatusMalformed means the URL itself could not be parsed so no
	// fetch was attempted.
	ResolveStatusMalformed ResolveStatus = "malformed"
)

// ResolvedIcon is an IconDeclaration plus its prefetch outcome. Width and
// Height stay nil until a fetch yields usable dimensions.
type ResolvedIcon struct {
	IconDeclaration
	Status ResolveStatus `json:"status"`
	Data   []byte        `json:"-"`
	Width  *int          `json:"width,omitempty"`
	Height *int          `json:"height,omitempty"`
}

// HasDimensions reports whether both pixel dimensions were resolved.
func (r ResolvedIcon) HasDimensions() bool {
	return r.Width != nil && r.Height != nil
}

// RawMetadataDocument is the scraper's direct output after normalization:
// field precedence applied, icon hrefs absolute, synthetic defaults
// appended. Created once per extraction run, immutable, and discarded after
// aggregation.
type RawMetadataDocument struct {
	Title              string
	Description        string
	OGTitle            string
	OGDescription      string
	OGImage            string
	OGImageAlt         string
	TwitterTitle       string
	TwitterDescription string
	TwitterImage       string
	TwitterImageAlt    string
	Favicon            string
	Icons              []IconDeclaration
	CanonicalURL       string
	Robots             string
	Keywords           string
	Generator          string
	Language           string
	HasManifest        bool
	HasViewport        bool
	BackgroundColor    string
	PageIdentity       PageIdentity
}

// OGMetadata is the canonical published model: the aggregate of one accepted
// extraction run. SourceURL always equals the PageIdentity of the most
// recently accepted run, never a stale one.
type OGMetadata struct {
	Title              string
	Description        string
	OGTitle            string
	OGDescription      string
	TwitterTitle       string
	TwitterDescription string

	ImageURL           string
	ImageWidth         *int
	ImageHeight        *int
	ImageData          []byte
	ImageStatus        ResolveStatus
	TwitterImageURL    string
	TwitterImageWidth  *int
	TwitterImageHeight *int
	TwitterImageStatus ResolveStatus

	Favicon string
	Icons   []ResolvedIcon

	CanonicalURL    string
	Robots          string
	Keywords        string
	Generator       string
	Language        string
	HasManifest     bool
	HasViewport     bool
	BackgroundColor string

	Host      string
	SourceURL PageIdentity
	RunID     string
}

// containsToken reports whether a space-separated token list (link rel
// attribute values) contains a token with the given prefix. Matching by
// prefix covers variants like apple-touch-icon-precomposed.
func containsToken(list, prefix string) bool {
	start := 0
	for i := 0; i <= len(list); i++ {
		if i == len(list) || list[i] == ' ' {
			if i > start {
				token := list[start:i]
				if len(token) >= len(prefix) && token[:len(prefix)] == prefix {
					return true
				}
			}
			start = i + 1
		}
	}
	return false
}
