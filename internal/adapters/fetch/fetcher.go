// Package fetch implements the ArchiveFetcher port over HTTP with fail-closed
// hash verification and a content-addressed local store.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	httpClientTimeout = 5 * time.Minute

	// storePrefixLen is how many hash characters name a store entry.
	storePrefixLen = 12
)

// Fetcher implements ports.ArchiveFetcher.
type Fetcher struct {
	storeDir   string
	httpClient *http.Client
}

// NewFetcher creates a new Fetcher using the default store location.
func NewFetcher() (*Fetcher, error) {
	return newFetcherWithPath(domain.DefaultStorePath())
}

// newFetcherWithPath creates a Fetcher with a custom store path (used for testing).
func newFetcherWithPath(path string) (*Fetcher, error) {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(cleanPath, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	return &Fetcher{
		storeDir: cleanPath,
		httpClient: &http.Client{
			Timeout: httpClientTimeout,
		},
	}, nil
}

// newFetcherWithClient creates a Fetcher with a custom http client (used for testing).
func newFetcherWithClient(path string, client *http.Client) (*Fetcher, error) {
	f, err := newFetcherWithPath(path)
	if err != nil {
		return nil, err
	}
	f.httpClient = client
	return f, nil
}

// Fetch downloads, verifies, and unpacks the archive, returning the local
// store directory. A store entry that already exists is trusted: its name is
// derived from the pinned hash, so presence implies prior verification.
func (f *Fetcher) Fetch(ctx context.Context, src domain.ArchiveSource) (string, bool, error) {
	dest := f.entryPath(src.SHA256)
	if _, err := os.Stat(dest); err == nil {
		return dest, true, nil
	}

	body, err := f.download(ctx, src)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = body.Close() }()

	// Spool to a temp file while hashing, so verification completes before
	// any archive content is interpreted.
	tmpFile, err := os.CreateTemp(f.storeDir, "fetch-*.tar.gz")
	if err != nil {
		return "", false, zerr.Wrap(err, domain.ErrFetchFailed.Error())
	}
	tmpName := tmpFile.Name()
	defer func() { _ = os.Remove(tmpName) }()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmpFile, hasher), body); err != nil {
		_ = tmpFile.Close()
		netErr := zerr.Wrap(err, domain.ErrFetchFailed.Error())
		return "", false, zerr.With(netErr, "url", src.ArchiveURL())
	}
	if err := tmpFile.Close(); err != nil {
		return "", false, zerr.Wrap(err, domain.ErrFetchFailed.Error())
	}

	actual := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(actual, src.SHA256) {
		mismatchErr := zerr.With(domain.ErrHashMismatch, "url", src.ArchiveURL())
		mismatchErr = zerr.With(mismatchErr, "expected", src.SHA256)
		return "", false, zerr.With(mismatchErr, "actual", actual)
	}

	if err := f.unpack(tmpName, dest); err != nil {
		return "", false, err
	}
	return dest, false, nil
}

// download opens the remote archive stream.
func (f *Fetcher) download(ctx context.Context, src domain.ArchiveSource) (io.ReadCloser, error) {
	url := src.ArchiveURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		netErr := zerr.Wrap(err, domain.ErrFetchFailed.Error())
		return nil, zerr.With(netErr, "url", url)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		netErr := zerr.Wrap(err, domain.ErrFetchFailed.Error())
		return nil, zerr.With(netErr, "url", url)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		statusErr := zerr.With(domain.ErrUnexpectedStatus, "status_code", resp.StatusCode)
		return nil, zerr.With(statusErr, "url", url)
	}

	return resp.Body, nil
}

// unpack extracts the verified archive into the store, atomically renaming
// the finished directory into place.
func (f *Fetcher) unpack(archivePath, dest string) error {
	tmpDir, err := os.MkdirTemp(f.storeDir, "unpack-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveCorrupt.Error())
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	if err := extractTarGz(archivePath, tmpDir); err != nil {
		return err
	}

	if err := os.Rename(tmpDir, dest); err != nil {
		// A concurrent fetch of the same hash may have won the rename. The
		// existing entry is equivalent content, so treat it as success.
		if _, statErr := os.Stat(dest); statErr == nil {
			return nil
		}
		return zerr.Wrap(err, domain.ErrArchiveCorrupt.Error())
	}
	return nil
}

// entryPath returns the store directory for a given content hash.
func (f *Fetcher) entryPath(sha string) string {
	prefix := strings.ToLower(sha)
	if len(prefix) > storePrefixLen {
		prefix = prefix[:storePrefixLen]
	}
	return filepath.Join(f.storeDir, "src-"+prefix)
}
