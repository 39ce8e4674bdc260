package domain

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Composition is the final result of one evaluation run.
type Composition struct {
	// Packages is the composed collection.
	Packages *PackageSet

	// Layers lists the applied layers in order: the base collection first,
	// then each overlay, with the rolling overlay (if enabled) last.
	Layers []string

	// Fingerprint is a stable digest of the composed collection.
	Fingerprint string
}

// Fingerprint computes a stable digest over the sorted (attr, rev, hash,
// store path) tuples of a package set. Two compositions with identical
// content yield identical fingerprints regardless of evaluation order.
func Fingerprint(set *PackageSet) string {
	h := xxhash.New()
	for _, attr := range set.Attrs() {
		pkg, _ := set.Lookup(attr)
		_, _ = h.WriteString(pkg.Attr)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(pkg.Rev)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(pkg.SourceHash)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(pkg.StorePath)
		_, _ = h.WriteString("\n")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
