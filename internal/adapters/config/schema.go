package config

// manifestDTO mirrors the strata.yaml manifest file.
type manifestDTO struct {
	Version  string       `yaml:"version"`
	Pin      string       `yaml:"pin"`
	Overlays []overlayDTO `yaml:"overlays"`
	Rolling  *rollingDTO  `yaml:"rolling"`
}

// overlayDTO represents one overlay definition in the manifest.
type overlayDTO struct {
	Name     string     `yaml:"name"`
	Packages []entryDTO `yaml:"packages"`
}

// entryDTO represents one package definition. Exactly one of Build and
// Reexport must be set.
type entryDTO struct {
	Name     string       `yaml:"name"`
	Build    *buildDTO    `yaml:"build"`
	Reexport *reexportDTO `yaml:"reexport"`
}

// buildDTO pins one source build.
type buildDTO struct {
	Owner  string     `yaml:"owner"`
	Repo   string     `yaml:"repo"`
	Rev    string     `yaml:"rev"`
	SHA256 string     `yaml:"sha256"`
	URL    string     `yaml:"url"`
	Vendor *vendorDTO `yaml:"vendor"`
}

// vendorDTO pins the fetched build dependencies of a recipe.
type vendorDTO struct {
	URL    string `yaml:"url"`
	SHA256 string `yaml:"sha256"`
}

// reexportDTO copies an attribute out of another pinned collection.
type reexportDTO struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Rev    string `yaml:"rev"`
	SHA256 string `yaml:"sha256"`
	URL    string `yaml:"url"`
	Attr   string `yaml:"attr"`
}

// rollingDTO declares the optional rolling overlay source.
type rollingDTO struct {
	URL string `yaml:"url"`
	Ref string `yaml:"ref"`
}

// overlayFileDTO mirrors the standalone overlay.yaml carried by a rolling
// overlay repository.
type overlayFileDTO struct {
	Name     string     `yaml:"name"`
	Packages []entryDTO `yaml:"packages"`
}
