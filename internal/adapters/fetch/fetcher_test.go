package fetch

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/core/domain"
)

// makeArchive builds a gzipped tarball with a single root component, the way
// forge archive endpoints lay them out, and returns the bytes and their hash.
func makeArchive(t *testing.T, root string, files map[string]string) ([]byte, string) {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     root + "/",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
	}))
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     root + "/" + name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	sum := sha256.Sum256(buf.Bytes())
	return buf.Bytes(), hex.EncodeToString(sum[:])
}

func serveArchive(t *testing.T, archive []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_Fetch(t *testing.T) {
	archive, hash := makeArchive(t, "nixpkgs-abc123", map[string]string{
		"hello/default.nix": "hello",
		"zlib/default.nix":  "zlib",
	})
	srv := serveArchive(t, archive)

	fetcher, err := newFetcherWithPath(t.TempDir())
	require.NoError(t, err)

	src := domain.ArchiveSource{URL: srv.URL + "/archive.tar.gz", SHA256: hash}

	dir, cached, err := fetcher.Fetch(t.Context(), src)
	require.NoError(t, err)
	assert.False(t, cached)

	// Leading root component is stripped.
	content, err := os.ReadFile(filepath.Join(dir, "hello", "default.nix"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	content, err = os.ReadFile(filepath.Join(dir, "zlib", "default.nix"))
	require.NoError(t, err)
	assert.Equal(t, "zlib", string(content))
}

func TestFetcher_Fetch_CacheHit(t *testing.T) {
	archive, hash := makeArchive(t, "nixpkgs-abc123", map[string]string{
		"hello/default.nix": "hello",
	})
	srv := serveArchive(t, archive)

	fetcher, err := newFetcherWithPath(t.TempDir())
	require.NoError(t, err)

	src := domain.ArchiveSource{URL: srv.URL + "/archive.tar.gz", SHA256: hash}

	first, cached, err := fetcher.Fetch(t.Context(), src)
	require.NoError(t, err)
	require.False(t, cached)

	// Second fetch must not touch the network at all.
	srv.Close()

	second, cached, err := fetcher.Fetch(t.Context(), src)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first, second)
}

func TestFetcher_Fetch_HashMismatch(t *testing.T) {
	archive, _ := makeArchive(t, "nixpkgs-abc123", map[string]string{
		"hello/default.nix": "hello",
	})
	srv := serveArchive(t, archive)

	storeDir := t.TempDir()
	fetcher, err := newFetcherWithPath(storeDir)
	require.NoError(t, err)

	wrong := "9999999999999999999999999999999999999999999999999999999999999999"
	src := domain.ArchiveSource{URL: srv.URL + "/archive.tar.gz", SHA256: wrong}

	_, _, err = fetcher.Fetch(t.Context(), src)
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrHashMismatch.Error())

	// Fail-closed: nothing was unpacked into the store.
	entries, err := os.ReadDir(storeDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetcher_Fetch_HashCaseInsensitive(t *testing.T) {
	archive, hash := makeArchive(t, "nixpkgs-abc123", map[string]string{
		"hello/default.nix": "hello",
	})
	srv := serveArchive(t, archive)

	fetcher, err := newFetcherWithPath(t.TempDir())
	require.NoError(t, err)

	src := domain.ArchiveSource{URL: srv.URL + "/archive.tar.gz", SHA256: strings.ToUpper(hash)}

	_, _, err = fetcher.Fetch(t.Context(), src)
	require.NoError(t, err)
}

func TestFetcher_Fetch_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	fetcher, err := newFetcherWithPath(t.TempDir())
	require.NoError(t, err)

	src := domain.ArchiveSource{URL: srv.URL + "/archive.tar.gz", SHA256: "1111"}

	_, _, err = fetcher.Fetch(t.Context(), src)
	require.ErrorContains(t, err, domain.ErrUnexpectedStatus.Error())
}

func TestFetcher_Fetch_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	fetcher, err := newFetcherWithPath(t.TempDir())
	require.NoError(t, err)

	src := domain.ArchiveSource{URL: url + "/archive.tar.gz", SHA256: "1111"}

	_, _, err = fetcher.Fetch(t.Context(), src)
	require.ErrorContains(t, err, domain.ErrFetchFailed.Error())
}

func TestFetcher_Fetch_CorruptArchive(t *testing.T) {
	payload := []byte("this is not a tarball")
	sum := sha256.Sum256(payload)
	srv := serveArchive(t, payload)

	fetcher, err := newFetcherWithPath(t.TempDir())
	require.NoError(t, err)

	src := domain.ArchiveSource{URL: srv.URL + "/archive.tar.gz", SHA256: hex.EncodeToString(sum[:])}

	_, _, err = fetcher.Fetch(t.Context(), src)
	require.ErrorContains(t, err, domain.ErrArchiveCorrupt.Error())
}

func TestStripRoot(t *testing.T) {
	tests := []struct {
		name   string
		entry  string
		want   string
		wantOK bool
	}{
		{name: "Nested File", entry: "repo-rev/hello/default.nix", want: "hello/default.nix", wantOK: true},
		{name: "Top Level File", entry: "repo-rev/README.md", want: "README.md", wantOK: true},
		{name: "Root Dir Only", entry: "repo-rev/", wantOK: false},
		{name: "Bare Name", entry: "repo-rev", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := stripRoot(tt.entry)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSecurePath_RejectsEscape(t *testing.T) {
	dest := t.TempDir()

	_, err := securePath(dest, "../outside")
	require.ErrorContains(t, err, domain.ErrArchiveCorrupt.Error())

	inside, err := securePath(dest, "a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "a", "b"), inside)
}
