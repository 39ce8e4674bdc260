// Package pin implements the PinLoader port over a small JSON pin file.
package pin

import (
	"encoding/json"
	"os"

	"github.com/tidwall/jsonc"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/zerr"
)

// Loader reads revision pins from JSON files. Comments and trailing commas
// in the pin file are tolerated.
type Loader struct{}

// NewLoader creates a new pin Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// pinDTO mirrors the on-disk pin record.
type pinDTO struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Rev    string `json:"rev"`
	SHA256 string `json:"sha256"`
	URL    string `json:"url"`
}

// Load reads and validates the pin file at the given path.
func (l *Loader) Load(path string) (domain.RevisionPin, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the manifest
	if err != nil {
		readErr := zerr.Wrap(err, domain.ErrPinReadFailed.Error())
		return domain.RevisionPin{}, zerr.With(readErr, "path", path)
	}

	var dto pinDTO
	if err := json.Unmarshal(jsonc.ToJSON(data), &dto); err != nil {
		parseErr := zerr.Wrap(err, domain.ErrPinMalformed.Error())
		return domain.RevisionPin{}, zerr.With(parseErr, "path", path)
	}

	if dto.Rev == "" {
		return domain.RevisionPin{}, missingField(path, "rev")
	}
	if dto.SHA256 == "" {
		return domain.RevisionPin{}, missingField(path, "sha256")
	}
	// Without an explicit URL the archive location is constructed from
	// owner and repo, so both must be present.
	if dto.URL == "" && (dto.Owner == "" || dto.Repo == "") {
		return domain.RevisionPin{}, missingField(path, "owner/repo or url")
	}

	return domain.RevisionPin{
		Owner:  dto.Owner,
		Repo:   dto.Repo,
		Rev:    dto.Rev,
		SHA256: dto.SHA256,
		URL:    dto.URL,
	}, nil
}

func missingField(path, field string) error {
	err := zerr.With(domain.ErrPinFieldMissing, "field", field)
	return zerr.With(err, "path", path)
}
