// Package cas implements composition result storage with one record per
// composed package.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.ResultStore using a file-per-package strategy.
// Records live under <root>/.strata/results, named by the hash of the
// attribute so arbitrary attribute names stay filesystem-safe.
type Store struct{}

// NewStore creates a new ResultStore.
func NewStore() (*Store, error) {
	return &Store{}, nil
}

// Get retrieves the stored record for a given attribute.
func (s *Store) Get(root, attr string) (*domain.Package, error) {
	filename := s.getFilename(root, attr)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var pkg domain.Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error())
	}
	return &pkg, nil
}

// Put stores the package record.
func (s *Store) Put(root string, pkg domain.Package) error {
	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	filename := s.getFilename(root, pkg.Attr)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

func (s *Store) getFilename(root, attr string) string {
	hash := sha256.Sum256([]byte(attr))
	hexHash := hex.EncodeToString(hash[:])
	resultsDir := filepath.Join(root, domain.DefaultResultsPath())
	return filepath.Join(resultsDir, hexHash+".json")
}
