package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/core/domain"
)

func testRecipe() domain.Recipe {
	return domain.Recipe{
		Name: "mytool",
		Source: domain.ArchiveSource{
			Owner:  "example",
			Repo:   "mytool",
			Rev:    "deadbeef",
			SHA256: "4444444444444444444444444444444444444444444444444444",
		},
	}
}

func TestStager_Build(t *testing.T) {
	stager, err := newStagerWithPath(t.TempDir())
	require.NoError(t, err)

	srcDir := t.TempDir()
	pkg, err := stager.Build(t.Context(), testRecipe(), srcDir, "")
	require.NoError(t, err)

	assert.Equal(t, "mytool", pkg.Attr)
	assert.Equal(t, "deadbeef", pkg.Rev)
	assert.Equal(t, "4444444444444444444444444444444444444444444444444444", pkg.SourceHash)

	// The staged output records its derivation.
	data, err := os.ReadFile(filepath.Join(pkg.StorePath, derivationFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "mytool"`)
	assert.Contains(t, string(data), `"rev": "deadbeef"`)
	assert.Contains(t, string(data), srcDir)
}

func TestStager_Build_Deterministic(t *testing.T) {
	storeDir := t.TempDir()

	a, err := newStagerWithPath(storeDir)
	require.NoError(t, err)
	b, err := newStagerWithPath(storeDir)
	require.NoError(t, err)

	first, err := a.Build(t.Context(), testRecipe(), t.TempDir(), "")
	require.NoError(t, err)
	second, err := b.Build(t.Context(), testRecipe(), t.TempDir(), "")
	require.NoError(t, err)

	// Identical pins land on the identical output path; the second build
	// reuses the existing staging.
	assert.Equal(t, first.StorePath, second.StorePath)
}

func TestStager_Build_VendorChangesOutput(t *testing.T) {
	stager, err := newStagerWithPath(t.TempDir())
	require.NoError(t, err)

	plain, err := stager.Build(t.Context(), testRecipe(), t.TempDir(), "")
	require.NoError(t, err)

	vendored := testRecipe()
	vendored.Vendor = &domain.VendorArchive{
		URL:    "https://example.com/deps.tar.gz",
		SHA256: "5555555555555555555555555555555555555555555555555555",
	}
	withVendor, err := stager.Build(t.Context(), vendored, t.TempDir(), t.TempDir())
	require.NoError(t, err)

	assert.NotEqual(t, plain.StorePath, withVendor.StorePath)
}

func TestStager_Build_RevChangesOutput(t *testing.T) {
	stager, err := newStagerWithPath(t.TempDir())
	require.NoError(t, err)

	first, err := stager.Build(t.Context(), testRecipe(), t.TempDir(), "")
	require.NoError(t, err)

	bumped := testRecipe()
	bumped.Source.Rev = "cafef00d"
	second, err := stager.Build(t.Context(), bumped, t.TempDir(), "")
	require.NoError(t, err)

	assert.NotEqual(t, first.StorePath, second.StorePath)
}
