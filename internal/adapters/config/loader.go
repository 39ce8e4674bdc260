// Package config provides the manifest loader for strata.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ManifestLoader and ports.OverlayParser using YAML
// files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new manifest Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads and validates the manifest at the given path.
func (l *Loader) Load(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		readErr := zerr.Wrap(err, domain.ErrManifestReadFailed.Error())
		return nil, zerr.With(readErr, "path", path)
	}

	var dto manifestDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		parseErr := zerr.Wrap(err, domain.ErrManifestParseFailed.Error())
		return nil, zerr.With(parseErr, "path", path)
	}

	if dto.Pin == "" {
		return nil, invalid(path, "pin file path is required")
	}

	// The pin path is written relative to the manifest, not to the process
	// working directory.
	pinFile := dto.Pin
	if !filepath.IsAbs(pinFile) {
		pinFile = filepath.Join(filepath.Dir(path), pinFile)
	}
	manifest := &domain.Manifest{PinFile: pinFile}

	seen := make(map[string]bool)
	for _, o := range dto.Overlays {
		if o.Name == "" {
			return nil, invalid(path, "overlay name is required")
		}
		if seen[o.Name] {
			return nil, zerr.With(invalid(path, "duplicate overlay name"), "overlay", o.Name)
		}
		seen[o.Name] = true

		overlay, err := convertOverlay(path, o.Name, o.Packages)
		if err != nil {
			return nil, err
		}
		manifest.Overlays = append(manifest.Overlays, overlay)
	}

	if dto.Rolling != nil {
		if dto.Rolling.URL == "" {
			return nil, invalid(path, "rolling overlay requires a url")
		}
		if dto.Rolling.Ref == "" {
			l.Logger.Info(fmt.Sprintf("rolling overlay %s has no ref, tracking the remote default branch", dto.Rolling.URL))
		}
		manifest.Rolling = &domain.RollingSource{
			URL: dto.Rolling.URL,
			Ref: dto.Rolling.Ref,
		}
	}

	return manifest, nil
}

// ParseOverlay reads a standalone overlay manifest, as carried by a rolling
// overlay repository.
func (l *Loader) ParseOverlay(path string) (domain.Overlay, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is inside a fetched checkout
	if err != nil {
		readErr := zerr.Wrap(err, domain.ErrOverlayManifestMissing.Error())
		return domain.Overlay{}, zerr.With(readErr, "path", path)
	}

	var dto overlayFileDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		parseErr := zerr.Wrap(err, domain.ErrManifestParseFailed.Error())
		return domain.Overlay{}, zerr.With(parseErr, "path", path)
	}

	name := dto.Name
	if name == "" {
		name = "rolling"
	}
	return convertOverlay(path, name, dto.Packages)
}

func convertOverlay(path, name string, entries []entryDTO) (domain.Overlay, error) {
	overlay := domain.Overlay{Name: name}
	for _, e := range entries {
		entry, err := convertEntry(path, e)
		if err != nil {
			return domain.Overlay{}, zerr.With(err, "overlay", name)
		}
		overlay.Entries = append(overlay.Entries, entry)
	}
	return overlay, nil
}

//nolint:cyclop // Validation of mutually exclusive entry shapes is inherently branchy
func convertEntry(path string, e entryDTO) (domain.OverlayEntry, error) {
	if e.Name == "" {
		return domain.OverlayEntry{}, invalid(path, "package name is required")
	}
	if (e.Build == nil) == (e.Reexport == nil) {
		err := invalid(path, "exactly one of build and reexport must be set")
		return domain.OverlayEntry{}, zerr.With(err, "package", e.Name)
	}

	if e.Build != nil {
		src, err := convertSource(path, e.Name, e.Build.Owner, e.Build.Repo, e.Build.Rev, e.Build.SHA256, e.Build.URL)
		if err != nil {
			return domain.OverlayEntry{}, err
		}
		recipe := &domain.Recipe{Name: e.Name, Source: src}
		if e.Build.Vendor != nil {
			if e.Build.Vendor.URL == "" || e.Build.Vendor.SHA256 == "" {
				err := invalid(path, "vendor archive requires url and sha256")
				return domain.OverlayEntry{}, zerr.With(err, "package", e.Name)
			}
			recipe.Vendor = &domain.VendorArchive{
				URL:    e.Build.Vendor.URL,
				SHA256: e.Build.Vendor.SHA256,
			}
		}
		return domain.OverlayEntry{Build: recipe}, nil
	}

	if e.Reexport.Attr == "" {
		err := invalid(path, "reexport requires an attr")
		return domain.OverlayEntry{}, zerr.With(err, "package", e.Name)
	}
	src, err := convertSource(path, e.Name, e.Reexport.Owner, e.Reexport.Repo, e.Reexport.Rev, e.Reexport.SHA256, e.Reexport.URL)
	if err != nil {
		return domain.OverlayEntry{}, err
	}
	return domain.OverlayEntry{
		Reexport: &domain.Reexport{Name: e.Name, From: src, Attr: e.Reexport.Attr},
	}, nil
}

func convertSource(path, pkg, owner, repo, rev, sha, url string) (domain.ArchiveSource, error) {
	if rev == "" {
		err := invalid(path, "source rev is required")
		return domain.ArchiveSource{}, zerr.With(err, "package", pkg)
	}
	// Every pinned source carries a hash. A recipe without one cannot be
	// verified and is rejected up front rather than at fetch time.
	if sha == "" {
		err := invalid(path, "source sha256 is required")
		return domain.ArchiveSource{}, zerr.With(err, "package", pkg)
	}
	if url == "" && (owner == "" || repo == "") {
		err := invalid(path, "source requires owner and repo, or url")
		return domain.ArchiveSource{}, zerr.With(err, "package", pkg)
	}
	return domain.ArchiveSource{Owner: owner, Repo: repo, Rev: rev, SHA256: sha, URL: url}, nil
}

func invalid(path, reason string) error {
	// The reason goes into the message; zerr fields do not show up in Error().
	return zerr.With(zerr.Wrap(domain.ErrManifestInvalid, reason), "path", path)
}
