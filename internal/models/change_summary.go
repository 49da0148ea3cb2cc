package models

// ChangeSummary describes how one published snapshot differs from the
// previous one. The sidebar uses it to animate only what actually changed;
// the service logs it on every publish.
type ChangeSummary struct {
	// FirstPublish is true when there was no previous snapshot to compare.
	FirstPublish bool
	// NavigatedAway is true when the source URL itself changed.
	NavigatedAway bool
	// ChangedFields lists the scalar field names whose values differ.
	ChangedFields []string
	// TitleDiff and DescriptionDiff are human-readable inline diffs,
	// empty when the field did not change.
	TitleDiff       string
	DescriptionDiff string
	// Icon identity follows the declaration equality contract: prefetch
	// results never affect membership.
	AddedIcons   []IconDeclaration
	RemovedIcons []IconDeclaration
	KeptIcons    int
}

// HasChanges reports whether anything observable differs.
func (c *ChangeSummary) HasChanges() bool {
	return c.FirstPublish ||
		c.NavigatedAway ||
		len(c.ChangedFields) > 0 ||
		len(c.AddedIcons) > 0 ||
		len(c.RemovedIcons) > 0
}
