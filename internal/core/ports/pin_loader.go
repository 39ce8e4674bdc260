package ports

import "go.trai.ch/strata/internal/core/domain"

// PinLoader reads a revision pin from a file.
//
//go:generate go run go.uber.org/mock/mockgen -source=pin_loader.go -destination=mocks/mock_pin_loader.go -package=mocks
type PinLoader interface {
	// Load reads and validates the pin file at the given path. It performs a
	// single one-shot read per evaluation with no retries and no caching.
	Load(path string) (domain.RevisionPin, error)
}
