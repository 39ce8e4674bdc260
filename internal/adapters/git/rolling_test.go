package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/core/domain"
)

// initOverlayRepo creates a local git repository carrying an overlay manifest.
func initOverlayRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), domain.FilePerm))
		_, err = wt.Add(name)
		require.NoError(t, err)
	}

	_, err = wt.Commit("add overlay", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "overlay bot",
			Email: "bot@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return dir
}

func TestRollingFetcher_Fetch(t *testing.T) {
	remote := initOverlayRepo(t, map[string]string{
		domain.OverlayFileName: "packages: []\n",
	})

	fetcher, err := newRollingFetcherWithPath(t.TempDir())
	require.NoError(t, err)

	dir, err := fetcher.Fetch(t.Context(), domain.RollingSource{URL: remote})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, domain.OverlayFileName))
	require.NoError(t, err)
	assert.Equal(t, "packages: []\n", string(content))
}

func TestRollingFetcher_Fetch_DiscardsPreviousCheckout(t *testing.T) {
	remote := initOverlayRepo(t, map[string]string{
		domain.OverlayFileName: "packages: []\n",
	})

	fetcher, err := newRollingFetcherWithPath(t.TempDir())
	require.NoError(t, err)

	src := domain.RollingSource{URL: remote}
	dir, err := fetcher.Fetch(t.Context(), src)
	require.NoError(t, err)

	// A stale file in the checkout must not survive a re-fetch.
	stale := filepath.Join(dir, "stale.txt")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), domain.FilePerm))

	again, err := fetcher.Fetch(t.Context(), src)
	require.NoError(t, err)
	require.Equal(t, dir, again)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestRollingFetcher_Fetch_BadRemote(t *testing.T) {
	fetcher, err := newRollingFetcherWithPath(t.TempDir())
	require.NoError(t, err)

	_, err = fetcher.Fetch(t.Context(), domain.RollingSource{
		URL: filepath.Join(t.TempDir(), "not-a-repo"),
	})
	require.ErrorContains(t, err, domain.ErrFetchFailed.Error())
}

func TestCheckoutName(t *testing.T) {
	a := checkoutName(domain.RollingSource{URL: "https://github.com/example/rolling-overlay.git"})
	b := checkoutName(domain.RollingSource{URL: "https://github.com/example/rolling-overlay.git"})
	c := checkoutName(domain.RollingSource{URL: "https://github.com/example/rolling-overlay.git", Ref: "main"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 12)
}
