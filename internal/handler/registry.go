package handler

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Registry publishes handler snapshots. Readers never block: Current returns
// whatever snapshot was last swapped in, and Reload builds a new one before
// swapping it.
type Registry struct {
	opts       Options
	log        *slog.Logger
	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
	reloads    singleflight.Group
}

// NewRegistry creates a registry. Nothing is loaded until Reload is called.
func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, log: opts.withDefaults().Logger}
}

// Current returns the active snapshot. Before the first completed load it
// returns an empty snapshot with generation zero.
func (r *Registry) Current() *Snapshot {
	if s := r.current.Load(); s != nil {
		return s
	}
	return emptySnapshot()
}

// Reload runs discovery and atomically publishes the result. Concurrent
// calls share a single discovery pass. Once started, a reload runs to
// completion even if ctx is cancelled.
func (r *Registry) Reload(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := r.reloads.Do("reload", func() (interface{}, error) {
		snap, err := Load(context.WithoutCancel(ctx), r.opts)
		if err != nil {
			return nil, err
		}
		snap.generation = r.generation.Add(1)
		r.current.Store(snap)
		r.log.Debug("Handler snapshot published", "snapshot", snap.id, "generation", snap.generation)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Ping reports ErrRegistryUnavailable until the first load completes.
func (r *Registry) Ping(context.Context) error {
	if !r.Current().Loaded() {
		return ErrRegistryUnavailable
	}
	return nil
}
