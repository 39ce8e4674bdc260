// Package builder implements the ArtifactBuilder port. The build procedure
// stages verified inputs into a deterministic output path and records a
// derivation; it performs no compilation.
package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// derivationFileName is the record written into every staged output.
const derivationFileName = "derivation.json"

// Stager implements ports.ArtifactBuilder.
type Stager struct {
	storeDir string
}

// NewStager creates a Stager using the default store location.
func NewStager() (*Stager, error) {
	return newStagerWithPath(domain.DefaultStorePath())
}

// newStagerWithPath creates a Stager with a custom store path (used for testing).
func newStagerWithPath(path string) (*Stager, error) {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(cleanPath, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	return &Stager{storeDir: cleanPath}, nil
}

// derivation is the on-disk record of one staged build.
type derivation struct {
	Name       string `json:"name"`
	Rev        string `json:"rev"`
	SourceHash string `json:"source_hash"`
	VendorHash string `json:"vendor_hash,omitempty"`
	SourcePath string `json:"source_path"`
	VendorPath string `json:"vendor_path,omitempty"`
}

// Build stages the recipe's verified inputs. The output path is a pure
// function of the recipe pins, so re-running a build with identical pins
// reuses the existing output.
func (s *Stager) Build(_ context.Context, recipe domain.Recipe, srcDir, vendorDir string) (domain.Package, error) {
	outDir := filepath.Join(s.storeDir, "out-"+outputDigest(recipe))

	pkg := domain.Package{
		Attr:       recipe.Name,
		Rev:        recipe.Source.Rev,
		SourceHash: recipe.Source.SHA256,
		StorePath:  outDir,
	}

	if _, err := os.Stat(outDir); err == nil {
		return pkg, nil
	}

	drv := derivation{
		Name:       recipe.Name,
		Rev:        recipe.Source.Rev,
		SourceHash: recipe.Source.SHA256,
		SourcePath: srcDir,
		VendorPath: vendorDir,
	}
	if recipe.Vendor != nil {
		drv.VendorHash = recipe.Vendor.SHA256
	}

	data, err := json.MarshalIndent(drv, "", "  ")
	if err != nil {
		return domain.Package{}, zerr.Wrap(err, domain.ErrBuildFailed.Error())
	}

	tmpDir, err := os.MkdirTemp(s.storeDir, "stage-*")
	if err != nil {
		return domain.Package{}, zerr.Wrap(err, domain.ErrBuildFailed.Error())
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	if err := os.WriteFile(filepath.Join(tmpDir, derivationFileName), data, domain.FilePerm); err != nil {
		return domain.Package{}, zerr.Wrap(err, domain.ErrBuildFailed.Error())
	}

	if err := os.Rename(tmpDir, outDir); err != nil {
		// A concurrent build of the same recipe may have won the rename.
		if _, statErr := os.Stat(outDir); statErr == nil {
			return pkg, nil
		}
		buildErr := zerr.Wrap(err, domain.ErrBuildFailed.Error())
		return domain.Package{}, zerr.With(buildErr, "package", recipe.Name)
	}
	return pkg, nil
}

// outputDigest derives the output path from everything that pins the build.
func outputDigest(recipe domain.Recipe) string {
	h := xxhash.New()
	_, _ = h.WriteString(recipe.Name)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(recipe.Source.Rev)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(recipe.Source.SHA256)
	_, _ = h.WriteString("\x00")
	if recipe.Vendor != nil {
		_, _ = h.WriteString(recipe.Vendor.SHA256)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
