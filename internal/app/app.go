// Package app implements the application layer for strata.
package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/composer"
	"go.trai.ch/zerr"
)

// Options control one application run.
type Options struct {
	// ManifestPath is the manifest file to evaluate.
	ManifestPath string

	// Root is the directory result records are written under.
	Root string

	// WithRolling enables the optional rolling overlay.
	WithRolling bool
}

// Runner is the narrow composer surface the app depends on.
type Runner interface {
	Run(ctx context.Context, manifest *domain.Manifest, opts composer.Options) (*domain.Composition, error)
}

// App represents the main application logic.
type App struct {
	manifests ports.ManifestLoader
	composer  Runner
	watcher   ports.Watcher
	logger    ports.Logger
}

// New creates a new App instance.
func New(manifests ports.ManifestLoader, runner Runner, watcher ports.Watcher, logger ports.Logger) *App {
	return &App{
		manifests: manifests,
		composer:  runner,
		watcher:   watcher,
		logger:    logger,
	}
}

// Compose evaluates the manifest once and returns the composed collection.
func (a *App) Compose(ctx context.Context, opts Options) (*domain.Composition, error) {
	manifest, err := a.loadManifest(opts)
	if err != nil {
		return nil, err
	}

	composition, err := a.composer.Run(ctx, manifest, composer.Options{
		Root:        opts.Root,
		WithRolling: opts.WithRolling,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "composition failed")
	}

	a.logger.Info(fmt.Sprintf("composed %d packages across %d layers (fingerprint %s)",
		composition.Packages.Len(), len(composition.Layers), composition.Fingerprint))
	return composition, nil
}

// Show evaluates the manifest and renders the composed collection to w.
func (a *App) Show(ctx context.Context, w io.Writer, opts Options) error {
	composition, err := a.Compose(ctx, opts)
	if err != nil {
		return err
	}
	return Render(w, composition)
}

// Render writes a human-readable listing of a composition.
func Render(w io.Writer, composition *domain.Composition) error {
	if _, err := fmt.Fprintf(w, "fingerprint: %s\n", composition.Fingerprint); err != nil {
		return zerr.Wrap(err, "failed to render composition")
	}
	if _, err := fmt.Fprintf(w, "layers:"); err != nil {
		return zerr.Wrap(err, "failed to render composition")
	}
	for _, layer := range composition.Layers {
		if _, err := fmt.Fprintf(w, " %s", layer); err != nil {
			return zerr.Wrap(err, "failed to render composition")
		}
	}
	if _, err := fmt.Fprintf(w, "\npackages: %d\n", composition.Packages.Len()); err != nil {
		return zerr.Wrap(err, "failed to render composition")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, attr := range composition.Packages.Attrs() {
		pkg, _ := composition.Packages.Lookup(attr)
		if _, err := fmt.Fprintf(tw, "  %s\t%s\t%s\n", pkg.Attr, pkg.Origin, pkg.StorePath); err != nil {
			return zerr.Wrap(err, "failed to render composition")
		}
	}
	if err := tw.Flush(); err != nil {
		return zerr.Wrap(err, "failed to render composition")
	}
	return nil
}

func (a *App) loadManifest(opts Options) (*domain.Manifest, error) {
	path := opts.ManifestPath
	if path == "" {
		path = domain.ManifestFileName
	}
	manifest, err := a.manifests.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load manifest")
	}
	return manifest, nil
}
