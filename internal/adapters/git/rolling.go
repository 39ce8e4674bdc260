// Package git implements the RollingFetcher port using go-git.
package git

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// RollingFetcher clones the unpinned rolling overlay repository. Each fetch
// discards any previous checkout: rolling means the branch tip, not whatever
// happened to be on disk.
type RollingFetcher struct {
	baseDir string
}

// NewRollingFetcher creates a RollingFetcher using the default checkout location.
func NewRollingFetcher() (*RollingFetcher, error) {
	return newRollingFetcherWithPath(domain.DefaultRollingPath())
}

// newRollingFetcherWithPath creates a RollingFetcher with a custom base path (used for testing).
func newRollingFetcherWithPath(path string) (*RollingFetcher, error) {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(cleanPath, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	return &RollingFetcher{baseDir: cleanPath}, nil
}

// Fetch clones the rolling repository and returns the checkout directory.
func (r *RollingFetcher) Fetch(ctx context.Context, src domain.RollingSource) (string, error) {
	dir := filepath.Join(r.baseDir, checkoutName(src))

	if err := os.RemoveAll(dir); err != nil {
		cleanErr := zerr.Wrap(err, domain.ErrFetchFailed.Error())
		return "", zerr.With(cleanErr, "dir", dir)
	}

	opts := &gogit.CloneOptions{
		URL:          src.URL,
		Depth:        1,
		SingleBranch: true,
	}
	if src.Ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(src.Ref)
	}

	if _, err := gogit.PlainCloneContext(ctx, dir, false, opts); err != nil {
		cloneErr := zerr.Wrap(err, domain.ErrFetchFailed.Error())
		cloneErr = zerr.With(cloneErr, "url", src.URL)
		return "", zerr.With(cloneErr, "ref", src.Ref)
	}
	return dir, nil
}

// checkoutName derives a stable directory name from the remote URL and ref.
func checkoutName(src domain.RollingSource) string {
	hash := sha256.Sum256([]byte(src.URL + "#" + src.Ref))
	return hex.EncodeToString(hash[:])[:12]
}
