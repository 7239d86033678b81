package handler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce coalesces bursts of file changes into one reload.
const DefaultWatchDebounce = 500 * time.Millisecond

// Watch reloads the registry whenever the handler directories change, until
// ctx is done. Changes arriving within debounce of each other trigger a
// single reload.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(r.opts.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", r.opts.Dir, err)
	}
	namedDir := r.opts.NamedDir()
	if err := w.Add(namedDir); err != nil {
		r.log.Debug("Named handler directory not watched", "dir", namedDir, "error", err)
	}

	r.log.Info("Watching handler directories", "dir", r.opts.Dir, "debounce", debounce)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && filepath.Clean(ev.Name) == filepath.Clean(namedDir) {
				if err := w.Add(namedDir); err != nil {
					r.log.Warn("Failed to watch named handler directory", "dir", namedDir, "error", err)
				}
			}
			r.log.Debug("Handler directory changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("Handler watcher error", "error", err)

		case <-timer.C:
			snap, err := r.Reload(ctx)
			if err != nil {
				r.log.Error("Handler reload failed", "error", err)
				continue
			}
			r.log.Info("Handlers reloaded after change", "generation", snap.Generation(), "handlers", snap.Len())
		}
	}
}
