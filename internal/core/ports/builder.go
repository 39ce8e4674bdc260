package ports

import (
	"context"

	"go.trai.ch/strata/internal/core/domain"
)

// ArtifactBuilder turns a verified recipe into a package. The build procedure
// stages the verified inputs into a deterministic output path; it performs no
// compilation of its own.
//
//go:generate go run go.uber.org/mock/mockgen -source=builder.go -destination=mocks/mock_builder.go -package=mocks
type ArtifactBuilder interface {
	// Build produces the package for the recipe. srcDir holds the verified
	// source archive; vendorDir holds the verified dependency archive, or is
	// empty when the recipe pins no vendor archive.
	Build(ctx context.Context, recipe domain.Recipe, srcDir, vendorDir string) (domain.Package, error)
}
