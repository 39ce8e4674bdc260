package domain

import "fmt"

// ArchiveSource identifies a remote source archive pinned to an exact,
// content-verified revision.
type ArchiveSource struct {
	// Owner is the repository owner (e.g., "NixOS").
	Owner string

	// Repo is the repository name.
	Repo string

	// Rev is the pinned revision.
	Rev string

	// SHA256 is the hex-encoded hash the fetched archive must match.
	SHA256 string

	// URL optionally overrides the constructed archive URL. When set, Owner
	// and Repo are informational only.
	URL string
}

// ArchiveURL returns the remote URL of the source archive.
func (s ArchiveSource) ArchiveURL() string {
	if s.URL != "" {
		return s.URL
	}
	return fmt.Sprintf("https://github.com/%s/%s/archive/%s.tar.gz", s.Owner, s.Repo, s.Rev)
}

// Slug returns a short human-readable identifier for logging.
func (s ArchiveSource) Slug() string {
	if s.Owner != "" && s.Repo != "" {
		return s.Owner + "/" + s.Repo
	}
	return s.URL
}

// VendorArchive pins the language-level dependencies of a build recipe.
type VendorArchive struct {
	// URL is the remote location of the dependency archive.
	URL string

	// SHA256 is the hex-encoded hash the fetched archive must match.
	SHA256 string
}

// Recipe fully determines a reproducible build of one package artifact.
type Recipe struct {
	// Name is the attribute the built package is published under.
	Name string

	// Source is the pinned source archive of the package.
	Source ArchiveSource

	// Vendor optionally pins the fetched build dependencies.
	Vendor *VendorArchive
}

// Reexport copies an attribute from another pinned, already-resolved
// collection into the composed set.
type Reexport struct {
	// Name is the attribute the copied package is published under.
	Name string

	// From is the pinned collection the attribute is copied out of.
	From ArchiveSource

	// Attr is the attribute to look up in the source collection.
	Attr string
}

// OverlayEntry is one package definition within an overlay. Exactly one of
// Build and Reexport is set; the manifest loader enforces this.
type OverlayEntry struct {
	Build    *Recipe
	Reexport *Reexport
}

// Name returns the attribute the entry publishes.
func (e OverlayEntry) Name() string {
	if e.Build != nil {
		return e.Build.Name
	}
	if e.Reexport != nil {
		return e.Reexport.Name
	}
	return ""
}

// Overlay is an ordered set of package definitions applied on top of an
// existing collection. Entries are independent of one another.
type Overlay struct {
	Name    string
	Entries []OverlayEntry
}

// RollingSource identifies the unpinned, rolling overlay repository. It is
// fetched at its default branch tip and is not content-verified.
type RollingSource struct {
	// URL is the git remote of the rolling overlay repository.
	URL string

	// Ref optionally names the branch to fetch instead of the remote default.
	Ref string
}

// Manifest is the declarative input of one composition run.
type Manifest struct {
	// PinFile is the path of the revision pin for the base collection. It is
	// written relative to the manifest; the loader resolves it before the
	// manifest reaches the engine.
	PinFile string

	// Overlays are applied in order on top of the base collection.
	Overlays []Overlay

	// Rolling optionally declares the rolling overlay appended when the
	// toggle is enabled.
	Rolling *RollingSource
}
