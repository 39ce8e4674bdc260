// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/strata/internal/core/domain"
)

// ArchiveFetcher downloads, verifies, and unpacks pinned source archives.
//
// Implementations are responsible for:
//   - Constructing the remote URL from the archive source
//   - Verifying the downloaded bytes against the pinned hash (fail-closed:
//     a mismatch must abort, never fall through to unverified content)
//   - Unpacking the archive into a content-addressed local directory
//
//go:generate go run go.uber.org/mock/mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type ArchiveFetcher interface {
	// Fetch returns the local directory holding the verified, unpacked
	// archive. cached reports whether the content was already present and
	// the network was not touched.
	Fetch(ctx context.Context, src domain.ArchiveSource) (dir string, cached bool, err error)
}

// RollingFetcher fetches the unpinned rolling overlay repository at its
// branch tip. The result is deliberately not content-verified.
type RollingFetcher interface {
	// Fetch clones the rolling repository and returns the checkout directory.
	Fetch(ctx context.Context, src domain.RollingSource) (dir string, err error)
}
