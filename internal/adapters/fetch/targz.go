package fetch

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// extractTarGz unpacks a gzipped tarball into dest. The leading path
// component is stripped, matching the repo-rev/ prefix that forge-generated
// archives carry.
func extractTarGz(archivePath, dest string) error {
	file, err := os.Open(archivePath) //nolint:gosec // archivePath is a temp file created by us
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveCorrupt.Error())
	}
	defer func() { _ = file.Close() }()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveCorrupt.Error())
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, domain.ErrArchiveCorrupt.Error())
		}

		rel, ok := stripRoot(header.Name)
		if !ok {
			continue
		}
		target, err := securePath(dest, rel)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, domain.DirPerm); err != nil {
				return zerr.Wrap(err, domain.ErrArchiveCorrupt.Error())
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, header.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// Symlinks and other special entries are not materialized; a
			// package collection archive is plain files and directories.
			continue
		}
	}
}

// stripRoot removes the leading path component of a tar entry name.
func stripRoot(name string) (string, bool) {
	name = filepath.ToSlash(name)
	parts := strings.SplitN(name, "/", 2)
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// securePath joins rel onto dest, rejecting entries that escape it.
func securePath(dest, rel string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		corruptErr := zerr.With(domain.ErrArchiveCorrupt, "entry", rel)
		return "", zerr.With(corruptErr, "reason", "path escapes archive root")
	}
	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrArchiveCorrupt.Error())
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode) //nolint:gosec // target is validated by securePath
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveCorrupt.Error())
	}
	if _, err := io.Copy(out, r); err != nil { //nolint:gosec // archive content is hash-verified before extraction
		_ = out.Close()
		return zerr.Wrap(err, domain.ErrArchiveCorrupt.Error())
	}
	return out.Close()
}
