package domain

import (
	"os"
	"path/filepath"
)

const (
	// StrataDirName is the name of the internal metadata directory.
	StrataDirName = ".strata"

	// StoreDirName is the name of the verified-archive store directory.
	StoreDirName = "store"

	// ResultsDirName is the name of the composition result directory.
	ResultsDirName = "results"

	// RollingDirName is the name of the rolling overlay checkout directory.
	RollingDirName = "rolling"

	// ManifestFileName is the name of the composition manifest file.
	ManifestFileName = "strata.yaml"

	// OverlayFileName is the name of the overlay manifest expected at the root
	// of a rolling overlay repository.
	OverlayFileName = "overlay.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// StrataEnvVar overrides the metadata root when set.
const StrataEnvVar = "STRATA_DIR"

// DefaultStrataPath returns the root directory for strata metadata.
func DefaultStrataPath() string {
	if dir := os.Getenv(StrataEnvVar); dir != "" {
		return dir
	}
	return StrataDirName
}

// DefaultStorePath returns the default path for the verified-archive store.
func DefaultStorePath() string {
	return filepath.Join(DefaultStrataPath(), StoreDirName)
}

// DefaultResultsPath returns the default path for composition result records.
func DefaultResultsPath() string {
	return filepath.Join(DefaultStrataPath(), ResultsDirName)
}

// DefaultRollingPath returns the default path for rolling overlay checkouts.
func DefaultRollingPath() string {
	return filepath.Join(DefaultStrataPath(), RollingDirName)
}
