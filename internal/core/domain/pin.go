package domain

// RevisionPin identifies an exact snapshot of an external source tree.
// It is read once from the pin file at the start of an evaluation and
// never mutated.
type RevisionPin struct {
	// Owner is the repository owner (e.g., "NixOS").
	Owner string

	// Repo is the repository name (e.g., "nixpkgs").
	Repo string

	// Rev is the pinned revision (commit SHA or tag).
	Rev string

	// SHA256 is the hex-encoded content hash of the archive at Rev.
	SHA256 string

	// URL optionally overrides the constructed archive URL.
	URL string
}

// Archive returns the pin as a fetchable archive source.
func (p RevisionPin) Archive() ArchiveSource {
	return ArchiveSource{
		Owner:  p.Owner,
		Repo:   p.Repo,
		Rev:    p.Rev,
		SHA256: p.SHA256,
		URL:    p.URL,
	}
}

// ArchiveURL returns the remote archive URL for the pinned revision.
func (p RevisionPin) ArchiveURL() string {
	return p.Archive().ArchiveURL()
}
