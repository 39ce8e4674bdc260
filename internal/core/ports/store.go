package ports

import "go.trai.ch/strata/internal/core/domain"

// ResultStore defines the interface for storing and retrieving composed
// package records.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ResultStore interface {
	// Get retrieves the stored record for a given attribute.
	// Returns nil, nil if not found.
	Get(root, attr string) (*domain.Package, error)

	// Put stores the package record.
	Put(root string, pkg domain.Package) error
}
