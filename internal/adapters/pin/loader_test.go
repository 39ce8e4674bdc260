package pin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/pin"
	"go.trai.ch/strata/internal/core/domain"
)

func writePin(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pin.json")
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func TestLoader_Load(t *testing.T) {
	loader := pin.NewLoader()

	path := writePin(t, `{
  "owner": "NixOS",
  "repo": "nixpkgs",
  "rev": "abc123",
  "sha256": "1111111111111111111111111111111111111111111111111111"
}`)

	got, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "NixOS", got.Owner)
	assert.Equal(t, "nixpkgs", got.Repo)
	assert.Equal(t, "abc123", got.Rev)
	assert.Equal(t, "1111111111111111111111111111111111111111111111111111", got.SHA256)
	assert.Equal(t, "https://github.com/NixOS/nixpkgs/archive/abc123.tar.gz", got.ArchiveURL())
}

func TestLoader_Load_Comments(t *testing.T) {
	loader := pin.NewLoader()

	// Pin files written by humans carry comments and trailing commas.
	path := writePin(t, `{
  // bumped 2026-08-12
  "owner": "NixOS",
  "repo": "nixpkgs",
  "rev": "def456",
  "sha256": "2222222222222222222222222222222222222222222222222222",
}`)

	got, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "def456", got.Rev)
}

func TestLoader_Load_ExplicitURL(t *testing.T) {
	loader := pin.NewLoader()

	path := writePin(t, `{
  "rev": "abc123",
  "sha256": "3333333333333333333333333333333333333333333333333333",
  "url": "https://mirror.example.com/nixpkgs-abc123.tar.gz"
}`)

	got, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/nixpkgs-abc123.tar.gz", got.ArchiveURL())
}

func TestLoader_Load_FileMissing(t *testing.T) {
	loader := pin.NewLoader()

	_, err := loader.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorContains(t, err, domain.ErrPinReadFailed.Error())
}

func TestLoader_Load_Malformed(t *testing.T) {
	loader := pin.NewLoader()

	path := writePin(t, `{"rev": `)
	_, err := loader.Load(path)
	require.ErrorContains(t, err, domain.ErrPinMalformed.Error())
}

func TestLoader_Load_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "No Rev",
			content: `{"owner": "NixOS", "repo": "nixpkgs", "sha256": "1111"}`,
		},
		{
			name:    "No SHA256",
			content: `{"owner": "NixOS", "repo": "nixpkgs", "rev": "abc123"}`,
		},
		{
			name:    "No Owner And No URL",
			content: `{"repo": "nixpkgs", "rev": "abc123", "sha256": "1111"}`,
		},
		{
			name:    "No Repo And No URL",
			content: `{"owner": "NixOS", "rev": "abc123", "sha256": "1111"}`,
		},
	}

	loader := pin.NewLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(writePin(t, tt.content))
			require.ErrorContains(t, err, domain.ErrPinFieldMissing.Error())
		})
	}
}
