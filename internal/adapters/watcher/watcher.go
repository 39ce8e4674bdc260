// Package watcher implements file system watching for the evaluation's input files.
package watcher

import (
	"context"
	"iter"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 100

// Watcher implements watching of a set of files using fsnotify. The parent
// directories are watched rather than the files themselves, so that editors
// which replace files via rename are still observed.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	mu        sync.Mutex
	watched   map[string]bool
	started   bool
	events    chan ports.WatchEvent
}

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		watched:   make(map[string]bool),
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}, nil
}

// Start begins watching the given files. Calling it again extends the watch
// set; the event pump runs once.
func (w *Watcher) Start(ctx context.Context, paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve watch path"), "path", path)
		}
		w.watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "dir", dir)
		}
	}

	if !w.started {
		w.started = true
		go w.processEvents(ctx)
	}
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// processEvents filters raw fsnotify events down to the watched files and
// converts them to ports.WatchEvent.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isWatched(event.Name) {
				continue
			}
			watchEvent := convertEvent(event)
			if watchEvent == nil {
				continue
			}
			select {
			case w.events <- *watchEvent:
			case <-ctx.Done():
				return
			}
		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) isWatched(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watched[name]
}

func convertEvent(event fsnotify.Event) *ports.WatchEvent {
	var op ports.WatchOp
	switch {
	case event.Op.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Op.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Op.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Op.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		// Chmod-only events do not change content.
		return nil
	}
	return &ports.WatchEvent{Path: event.Name, Operation: op}
}
