package app

import (
	"context"
	"fmt"

	"go.trai.ch/strata/internal/adapters/watcher"
	"go.trai.ch/strata/internal/core/domain"
)

// Watch re-evaluates the manifest whenever it or the pin file changes, until
// the context is cancelled. Each pass reports Started and then either
// Completed or Failure; a failing composition keeps the loop alive so the
// next edit gets another chance.
func (a *App) Watch(ctx context.Context, opts Options) error {
	manifestPath := opts.ManifestPath
	if manifestPath == "" {
		manifestPath = domain.ManifestFileName
	}

	// The pin path is only known once the manifest parses; watch both so an
	// edit to either re-triggers evaluation.
	manifest, err := a.loadManifest(opts)
	if err != nil {
		return err
	}
	pinFile := manifest.PinFile

	if err := a.watcher.Start(ctx, manifestPath, pinFile); err != nil {
		return err
	}
	defer func() { _ = a.watcher.Stop() }()

	reload := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		for _, path := range paths {
			a.logger.Info("change detected: " + path)
		}
		select {
		case reload <- struct{}{}:
		default:
		}
	})
	defer debouncer.Flush()

	// Grabbing the event sequence before spawning keeps the pump wired even
	// when the context is already cancelled on entry.
	events := a.watcher.Events()
	go func() {
		for event := range events {
			debouncer.Add(event.Path)
		}
	}()

	for {
		a.logger.Info("evaluation started")
		if _, err := a.Compose(ctx, opts); err != nil {
			// Recoverable in the watch sense: the evaluation failed, the
			// loop did not.
			a.logger.Error(fmt.Errorf("evaluation failed: %w", err))
		} else {
			a.logger.Info("evaluation completed")
		}

		// An edit may have moved the pin reference; extend the watch set so
		// changes to the new file keep triggering evaluation.
		if m, err := a.loadManifest(opts); err == nil && m.PinFile != pinFile {
			pinFile = m.PinFile
			if err := a.watcher.Start(ctx, pinFile); err != nil {
				a.logger.Error(fmt.Errorf("failed to watch pin file: %w", err))
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-reload:
		}
	}
}
