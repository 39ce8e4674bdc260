package domain

import "go.trai.ch/zerr"

var (
	// ErrPinReadFailed is returned when the pin file cannot be read.
	ErrPinReadFailed = zerr.New("failed to read pin file")

	// ErrPinMalformed is returned when the pin file is not valid JSON.
	ErrPinMalformed = zerr.New("malformed pin file")

	// ErrPinFieldMissing is returned when a required pin field is absent or empty.
	ErrPinFieldMissing = zerr.New("missing required pin field")

	// ErrManifestReadFailed is returned when the manifest file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrManifestParseFailed is returned when the manifest file is not valid YAML.
	ErrManifestParseFailed = zerr.New("failed to parse manifest")

	// ErrManifestInvalid is returned when the manifest is structurally invalid.
	ErrManifestInvalid = zerr.New("invalid manifest")

	// ErrHashMismatch is returned when fetched content does not match its pinned hash.
	// Verification is fail-closed: a mismatch aborts the whole composition.
	ErrHashMismatch = zerr.New("content hash mismatch")

	// ErrMissingAttribute is returned when a re-exported attribute does not exist
	// in the source collection.
	ErrMissingAttribute = zerr.New("attribute not found in source collection")

	// ErrFetchFailed is returned when an archive cannot be downloaded.
	ErrFetchFailed = zerr.New("failed to fetch archive")

	// ErrUnexpectedStatus is returned when a fetch completes with a non-OK HTTP status.
	ErrUnexpectedStatus = zerr.New("unexpected HTTP status")

	// ErrArchiveCorrupt is returned when a fetched archive cannot be unpacked.
	ErrArchiveCorrupt = zerr.New("failed to unpack archive")

	// ErrNoRollingOverlay is returned when the rolling toggle is enabled but the
	// manifest declares no rolling source.
	ErrNoRollingOverlay = zerr.New("manifest declares no rolling overlay")

	// ErrOverlayManifestMissing is returned when a rolling overlay repository does
	// not carry an overlay manifest at its root.
	ErrOverlayManifestMissing = zerr.New("overlay manifest not found in rolling repository")

	// ErrStoreCreateFailed is returned when the result store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create result store directory")

	// ErrStoreReadFailed is returned when a stored package record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read package record")

	// ErrStoreUnmarshalFailed is returned when a stored package record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal package record")

	// ErrStoreMarshalFailed is returned when a package record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal package record")

	// ErrStoreWriteFailed is returned when a package record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write package record")

	// ErrBuildFailed is returned when staging a build output fails.
	ErrBuildFailed = zerr.New("failed to stage build output")
)
