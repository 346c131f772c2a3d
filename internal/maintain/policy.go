package maintain

// MergePolicy describes how pull requests are merged.
// It is created once at startup and immutable for the whole run.
type MergePolicy struct {
	// Method is the merge method that is used when CountAsPersonal is
	// disabled. Must be one of merge, rebase or squash.
	Method string

	// CountAsPersonal attributes merge commits to the configured author.
	// It forces squash merges and appends a co-author trailer to the
	// commit message, which GitHub recognizes in its contribution
	// accounting.
	CountAsPersonal bool

	AuthorName  string
	AuthorEmail string
}
