package domain

import "slices"

// Package is one resolved entry of a composed collection.
type Package struct {
	// Attr is the attribute the package is published under.
	Attr string `json:"attr"`

	// Rev is the revision the package content was taken from.
	Rev string `json:"rev"`

	// SourceHash is the hex-encoded hash of the verified source archive.
	SourceHash string `json:"source_hash"`

	// StorePath is the local path of the package content or staged output.
	StorePath string `json:"store_path"`

	// Origin names the layer that contributed the package ("base", an
	// overlay name, or "rolling").
	Origin string `json:"origin"`
}

// PackageSet is a collection of packages keyed by attribute. Inserting an
// attribute that already exists replaces it, which is how later overlays
// override earlier ones.
type PackageSet struct {
	packages map[string]Package
}

// NewPackageSet creates an empty package set.
func NewPackageSet() *PackageSet {
	return &PackageSet{packages: make(map[string]Package)}
}

// Insert adds or replaces the package under its attribute.
func (s *PackageSet) Insert(pkg Package) {
	s.packages[pkg.Attr] = pkg
}

// Lookup returns the package under the given attribute.
func (s *PackageSet) Lookup(attr string) (Package, bool) {
	pkg, ok := s.packages[attr]
	return pkg, ok
}

// Attrs returns all attributes in sorted order.
func (s *PackageSet) Attrs() []string {
	attrs := make([]string, 0, len(s.packages))
	for attr := range s.packages {
		attrs = append(attrs, attr)
	}
	slices.Sort(attrs)
	return attrs
}

// Len returns the number of packages in the set.
func (s *PackageSet) Len() int {
	return len(s.packages)
}
