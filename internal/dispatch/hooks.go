package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/chook-lab/chook/internal/handler"
)

// OnLaunchFunc is called in the handler's task just before it runs.
type OnLaunchFunc func(ctx context.Context, eventID string, desc handler.Descriptor)

// OnCompleteFunc is called once a handler's outcome is final.
type OnCompleteFunc func(ctx context.Context, eventID string, out Outcome)

type hooks struct {
	onLaunch   []OnLaunchFunc
	onComplete []OnCompleteFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithOnLaunch adds a hook called before every handler invocation.
// Multiple hooks are called in order.
func WithOnLaunch(fn OnLaunchFunc) Option {
	return func(e *Engine) {
		e.hooks.onLaunch = append(e.hooks.onLaunch, fn)
	}
}

// WithOnComplete adds a hook called after every handler invocation.
// Multiple hooks are called in order.
func WithOnComplete(fn OnCompleteFunc) Option {
	return func(e *Engine) {
		e.hooks.onComplete = append(e.hooks.onComplete, fn)
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithInternalTimeout bounds each internal handler invocation. Zero means
// unbounded.
func WithInternalTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.internalTimeout = d
	}
}
