package ports

import "go.trai.ch/strata/internal/core/domain"

// ManifestLoader defines the interface for loading the composition manifest.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest_loader.go -destination=mocks/mock_manifest_loader.go -package=mocks
type ManifestLoader interface {
	// Load reads and validates the manifest at the given path.
	Load(path string) (*domain.Manifest, error)
}

// OverlayParser parses a standalone overlay manifest, as found at the root of
// a rolling overlay repository.
type OverlayParser interface {
	// ParseOverlay reads the overlay manifest at the given path.
	ParseOverlay(path string) (domain.Overlay, error)
}
