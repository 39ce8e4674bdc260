// Package composer implements the evaluation engine: it turns a manifest into
// a composed package collection.
package composer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// baseLayerName is the layer name of the pinned base collection.
const baseLayerName = "base"

// Options control one composition run.
type Options struct {
	// Root is the directory composition result records are written under.
	Root string

	// WithRolling appends the manifest's rolling overlay after the primary
	// overlays. This is the only conditional in the whole evaluation.
	WithRolling bool
}

// Composer evaluates manifests. Evaluation is single-pass: any fetch, parse,
// or verification failure aborts the run with no retry and no partial result.
type Composer struct {
	pins      ports.PinLoader
	fetcher   ports.ArchiveFetcher
	rolling   ports.RollingFetcher
	parser    ports.OverlayParser
	builder   ports.ArtifactBuilder
	store     ports.ResultStore
	telemetry ports.Telemetry
}

// NewComposer creates a new Composer.
func NewComposer(
	pins ports.PinLoader,
	fetcher ports.ArchiveFetcher,
	rolling ports.RollingFetcher,
	parser ports.OverlayParser,
	builder ports.ArtifactBuilder,
	store ports.ResultStore,
	telemetry ports.Telemetry,
) *Composer {
	return &Composer{
		pins:      pins,
		fetcher:   fetcher,
		rolling:   rolling,
		parser:    parser,
		builder:   builder,
		store:     store,
		telemetry: telemetry,
	}
}

// Run evaluates the manifest and returns the composed collection.
func (c *Composer) Run(ctx context.Context, manifest *domain.Manifest, opts Options) (*domain.Composition, error) {
	pin, err := c.pins.Load(manifest.PinFile)
	if err != nil {
		return nil, err
	}

	overlays := slices.Clone(manifest.Overlays)
	if opts.WithRolling {
		rollingOverlay, err := c.fetchRollingOverlay(ctx, manifest)
		if err != nil {
			return nil, err
		}
		// The rolling overlay is appended after every primary overlay, so
		// its attributes win.
		overlays = append(overlays, rollingOverlay)
	}

	if err := c.prefetch(ctx, pin, overlays); err != nil {
		return nil, err
	}

	set, err := c.evaluateBase(ctx, pin)
	if err != nil {
		return nil, err
	}

	layers := []string{baseLayerName}
	for _, overlay := range overlays {
		if err := c.applyOverlay(ctx, set, overlay); err != nil {
			return nil, err
		}
		layers = append(layers, overlay.Name)
	}

	composition := &domain.Composition{
		Packages:    set,
		Layers:      layers,
		Fingerprint: domain.Fingerprint(set),
	}

	if err := c.persist(opts.Root, set); err != nil {
		return nil, err
	}
	return composition, nil
}

// fetchRollingOverlay clones the rolling repository and parses the overlay
// manifest at its root.
func (c *Composer) fetchRollingOverlay(ctx context.Context, manifest *domain.Manifest) (domain.Overlay, error) {
	if manifest.Rolling == nil {
		return domain.Overlay{}, domain.ErrNoRollingOverlay
	}

	_, vertex := c.telemetry.Record(ctx, "fetch rolling overlay")
	dir, err := c.rolling.Fetch(ctx, *manifest.Rolling)
	if err != nil {
		vertex.Complete(err)
		return domain.Overlay{}, err
	}

	overlay, err := c.parser.ParseOverlay(filepath.Join(dir, domain.OverlayFileName))
	vertex.Complete(err)
	if err != nil {
		return domain.Overlay{}, err
	}
	return overlay, nil
}

// prefetch downloads every pinned archive the run will need, deduplicated by
// content hash. Parallelism here is the engine's own concern; entries stay
// independent of one another.
func (c *Composer) prefetch(ctx context.Context, pin domain.RevisionPin, overlays []domain.Overlay) error {
	sources := map[string]domain.ArchiveSource{
		pin.SHA256: pin.Archive(),
	}
	for _, overlay := range overlays {
		for _, entry := range overlay.Entries {
			switch {
			case entry.Build != nil:
				sources[entry.Build.Source.SHA256] = entry.Build.Source
				if entry.Build.Vendor != nil {
					sources[entry.Build.Vendor.SHA256] = domain.ArchiveSource{
						URL:    entry.Build.Vendor.URL,
						SHA256: entry.Build.Vendor.SHA256,
					}
				}
			case entry.Reexport != nil:
				sources[entry.Reexport.From.SHA256] = entry.Reexport.From
			}
		}
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, src := range sources {
		g.Go(func() error {
			_, vertex := c.telemetry.Record(groupCtx, "fetch "+src.Slug()+"@"+shortRev(src.Rev))
			dir, cached, err := c.fetcher.Fetch(groupCtx, src)
			if err != nil {
				vertex.Complete(err)
				return err
			}
			if cached {
				vertex.Cached()
			}
			vertex.Log(domain.LogLevelDebug, "unpacked at "+dir)
			vertex.Complete(nil)
			return nil
		})
	}
	return g.Wait()
}

// evaluateBase turns the pinned base archive into the base package set:
// one attribute per top-level directory of the extracted tree.
func (c *Composer) evaluateBase(ctx context.Context, pin domain.RevisionPin) (*domain.PackageSet, error) {
	_, vertex := c.telemetry.Record(ctx, "evaluate base collection")

	dir, cached, err := c.fetcher.Fetch(ctx, pin.Archive())
	if err != nil {
		vertex.Complete(err)
		return nil, err
	}
	if cached {
		vertex.Cached()
	}

	set, err := setFromTree(dir, pin.Rev, pin.SHA256, baseLayerName)
	vertex.Complete(err)
	return set, err
}

// applyOverlay evaluates each entry and inserts the result, replacing any
// attribute an earlier layer defined. The overlay stamps its own name as the
// Origin of everything it contributes, re-exports included.
func (c *Composer) applyOverlay(ctx context.Context, set *domain.PackageSet, overlay domain.Overlay) error {
	_, vertex := c.telemetry.Record(ctx, "apply overlay "+overlay.Name)

	for _, entry := range overlay.Entries {
		pkg, err := c.evaluateEntry(ctx, entry)
		if err != nil {
			entryErr := zerr.With(err, "overlay", overlay.Name)
			vertex.Complete(entryErr)
			return entryErr
		}
		pkg.Origin = overlay.Name
		set.Insert(pkg)
	}

	vertex.Complete(nil)
	return nil
}

func (c *Composer) evaluateEntry(ctx context.Context, entry domain.OverlayEntry) (domain.Package, error) {
	if entry.Build != nil {
		return c.evaluateBuild(ctx, *entry.Build)
	}
	return c.evaluateReexport(ctx, *entry.Reexport)
}

// evaluateBuild fetches the recipe's verified inputs and invokes the build
// procedure.
func (c *Composer) evaluateBuild(ctx context.Context, recipe domain.Recipe) (domain.Package, error) {
	_, vertex := c.telemetry.Record(ctx, "build "+recipe.Name)

	srcDir, _, err := c.fetcher.Fetch(ctx, recipe.Source)
	if err != nil {
		vertex.Complete(err)
		return domain.Package{}, zerr.With(err, "package", recipe.Name)
	}

	var vendorDir string
	if recipe.Vendor != nil {
		vendorDir, _, err = c.fetcher.Fetch(ctx, domain.ArchiveSource{
			URL:    recipe.Vendor.URL,
			SHA256: recipe.Vendor.SHA256,
		})
		if err != nil {
			vertex.Complete(err)
			return domain.Package{}, zerr.With(err, "package", recipe.Name)
		}
	}

	pkg, err := c.builder.Build(ctx, recipe, srcDir, vendorDir)
	vertex.Complete(err)
	if err != nil {
		return domain.Package{}, err
	}
	return pkg, nil
}

// evaluateReexport resolves the source collection and copies the attribute
// value unchanged: rev, hash, and store path are those of the collection it
// came from.
func (c *Composer) evaluateReexport(ctx context.Context, re domain.Reexport) (domain.Package, error) {
	_, vertex := c.telemetry.Record(ctx, "reexport "+re.Name)

	dir, _, err := c.fetcher.Fetch(ctx, re.From)
	if err != nil {
		vertex.Complete(err)
		return domain.Package{}, zerr.With(err, "package", re.Name)
	}

	srcSet, err := setFromTree(dir, re.From.Rev, re.From.SHA256, re.From.Slug())
	if err != nil {
		vertex.Complete(err)
		return domain.Package{}, err
	}

	pkg, ok := srcSet.Lookup(re.Attr)
	if !ok {
		missErr := zerr.With(domain.ErrMissingAttribute, "attr", re.Attr)
		missErr = zerr.With(missErr, "source", re.From.Slug())
		vertex.Complete(missErr)
		return domain.Package{}, missErr
	}

	vertex.Complete(nil)
	return pkg, nil
}

// persist writes one record per composed package.
func (c *Composer) persist(root string, set *domain.PackageSet) error {
	if root == "" {
		root = "."
	}
	for _, attr := range set.Attrs() {
		pkg, _ := set.Lookup(attr)
		if err := c.store.Put(root, pkg); err != nil {
			return err
		}
	}
	return nil
}

// setFromTree builds a package set from an extracted archive: every
// top-level directory becomes one attribute.
func setFromTree(dir, rev, sourceHash, origin string) (*domain.PackageSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		readErr := zerr.Wrap(err, domain.ErrArchiveCorrupt.Error())
		return nil, zerr.With(readErr, "dir", dir)
	}

	set := domain.NewPackageSet()
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}
		set.Insert(domain.Package{
			Attr:       entry.Name(),
			Rev:        rev,
			SourceHash: sourceHash,
			StorePath:  filepath.Join(dir, entry.Name()),
			Origin:     origin,
		})
	}
	return set, nil
}

func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
