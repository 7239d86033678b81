package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chook-lab/chook/internal/event"
	"github.com/chook-lab/chook/internal/handler"
)

// DefaultInternalTimeout bounds an internal handler invocation.
const DefaultInternalTimeout = 30 * time.Second

// SnapshotSource provides the handler snapshot a dispatch reads from.
type SnapshotSource interface {
	Current() *handler.Snapshot
}

// Engine fans events out to their handlers. Every handler runs in its own
// goroutine; failures are logged and recorded in the Result, never returned.
type Engine struct {
	source          SnapshotSource
	spawner         Spawner
	internalTimeout time.Duration
	hooks           hooks
	logger          *slog.Logger

	tasks     sync.WaitGroup
	launched  atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	timedOut  atomic.Uint64
	running   atomic.Int64
	leaked    atomic.Int64
}

// New creates an engine reading snapshots from source and starting external
// handlers with spawner.
func New(source SnapshotSource, spawner Spawner, opts ...Option) *Engine {
	e := &Engine{
		source:          source,
		spawner:         spawner,
		internalTimeout: DefaultInternalTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "dispatch")
	return e
}

// Dispatch runs every general handler bound to the event's type and returns
// once they are launched. An event type without handlers is not an error.
func (e *Engine) Dispatch(ctx context.Context, ev *event.Event) *Result {
	snap := e.snapshot(ev.ID())
	res := &Result{
		EventID:    ev.ID(),
		Key:        ev.Type(),
		Binding:    handler.General,
		Generation: snap.Generation(),
	}

	descs := snap.General(ev.Type())
	if len(descs) == 0 {
		e.logger.Debug("No handlers for event type", "event_id", ev.ID(), "event_type", ev.Type())
		return res
	}

	// Each handler gets its own copy of the payload.
	for _, d := range descs {
		e.launch(ctx, res, d, handler.Input{Event: ev, Payload: ev.Raw()})
	}
	e.logger.Info("Event dispatched",
		"event_id", ev.ID(),
		"event_type", ev.Type(),
		"webhook", ev.WebhookName(),
		"handlers", res.HandlersInvoked,
	)
	return res
}

// DispatchNamed runs the named handler id with the raw payload. It fails with
// handler.ErrHandlerNotFound when no such handler is loaded.
func (e *Engine) DispatchNamed(ctx context.Context, id string, raw []byte) (*Result, error) {
	eventID := event.NewID(time.Now())
	snap := e.snapshot(eventID)

	d, ok := snap.Named(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", handler.ErrHandlerNotFound, id)
	}

	res := &Result{
		EventID:    eventID,
		Key:        id,
		Binding:    handler.Named,
		Generation: snap.Generation(),
	}
	e.launch(ctx, res, d, handler.Input{Payload: bytes.Clone(raw)})
	e.logger.Info("Named handler dispatched", "event_id", eventID, "handler", id)
	return res, nil
}

func (e *Engine) snapshot(eventID string) *handler.Snapshot {
	snap := e.source.Current()
	if !snap.Loaded() {
		e.logger.Warn("Dispatching with no loaded handlers", "event_id", eventID, "error", handler.ErrRegistryUnavailable)
	}
	return snap
}

// launch starts one handler task. The task outlives ctx's cancellation.
func (e *Engine) launch(ctx context.Context, res *Result, d handler.Descriptor, in handler.Input) {
	t := newTask(d)
	res.tasks = append(res.tasks, t)
	res.HandlersInvoked++
	e.launched.Add(1)

	e.tasks.Add(1)
	go e.run(context.WithoutCancel(ctx), res.EventID, t, in)
}

func (e *Engine) run(ctx context.Context, eventID string, t *task, in handler.Input) {
	defer e.tasks.Done()

	for _, fn := range e.hooks.onLaunch {
		e.hook("launch", eventID, t.desc.Identity, func() { fn(ctx, eventID, t.desc) })
	}

	start := time.Now()
	var (
		status Status
		err    error
	)
	switch t.desc.Origin {
	case handler.External:
		status, err = e.spawn(ctx, t.desc, in.Payload)
	case handler.Internal:
		status, err = e.invoke(ctx, t.desc, in)
	default:
		status, err = Failed, fmt.Errorf("unknown handler origin %q", t.desc.Origin)
	}
	if err != nil {
		err = &InvocationError{Identity: t.desc.Identity, EventID: eventID, Err: err}
	}
	out := t.finish(status, err, time.Since(start))

	switch status {
	case Succeeded:
		e.succeeded.Add(1)
		e.logger.Debug("Handler finished", "event_id", eventID, "handler", out.Identity, "origin", out.Origin, "duration", out.Duration)
	case TimedOut:
		e.timedOut.Add(1)
		e.logger.Error("Handler timed out", "event_id", eventID, "handler", out.Identity, "timeout", e.internalTimeout)
	default:
		e.failed.Add(1)
		e.logger.Error("Handler failed", "event_id", eventID, "handler", out.Identity, "origin", out.Origin, "error", err)
	}

	for _, fn := range e.hooks.onComplete {
		e.hook("complete", eventID, out.Identity, func() { fn(ctx, eventID, out) })
	}
}

// hook runs one hook; a panic is logged and does not end the task.
func (e *Engine) hook(kind, eventID, identity string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Dispatch hook panicked", "hook", kind, "event_id", eventID, "handler", identity, "panic", r)
		}
	}()
	fn()
}

func (e *Engine) spawn(ctx context.Context, d handler.Descriptor, payload []byte) (Status, error) {
	if e.spawner == nil {
		return Failed, errors.New("no spawner configured for external handlers")
	}
	if err := e.spawner.Spawn(ctx, d.Identity, payload); err != nil {
		return Failed, err
	}
	return Succeeded, nil
}

// invoke runs an internal handler within the engine's time budget. A handler
// still running when the budget expires is counted as leaked until it returns.
func (e *Engine) invoke(ctx context.Context, d handler.Descriptor, in handler.Input) (Status, error) {
	if d.Call == nil {
		return Failed, errors.New("internal handler has no callable")
	}

	e.running.Add(1)
	if e.internalTimeout <= 0 {
		defer e.running.Add(-1)
		if err := call(ctx, d.Call, in); err != nil {
			return Failed, err
		}
		return Succeeded, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.internalTimeout)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		defer e.running.Add(-1)
		errc <- call(ctx, d.Call, in)
	}()

	select {
	case err := <-errc:
		switch {
		case err == nil:
			return Succeeded, nil
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
			return TimedOut, fmt.Errorf("%w after %s", ErrTimedOut, e.internalTimeout)
		default:
			return Failed, err
		}
	case <-ctx.Done():
		e.leaked.Add(1)
		go func() {
			<-errc
			e.leaked.Add(-1)
			e.logger.Info("Timed out handler returned", "handler", d.Identity)
		}()
		return TimedOut, fmt.Errorf("%w after %s", ErrTimedOut, e.internalTimeout)
	}
}

// call runs c, converting a panic into an error.
func call(ctx context.Context, c handler.Callable, in handler.Input) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return c(ctx, in)
}

// Stats is a point-in-time view of the engine's counters.
type Stats struct {
	Launched        uint64 `json:"launched"`
	Succeeded       uint64 `json:"succeeded"`
	Failed          uint64 `json:"failed"`
	TimedOut        uint64 `json:"timed_out"`
	RunningInternal int64  `json:"running_internal"`
	LeakedInternal  int64  `json:"leaked_internal"`
	LiveExternal    int64  `json:"live_external"`
}

// Stats returns the engine's counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Launched:        e.launched.Load(),
		Succeeded:       e.succeeded.Load(),
		Failed:          e.failed.Load(),
		TimedOut:        e.timedOut.Load(),
		RunningInternal: e.running.Load(),
		LeakedInternal:  e.leaked.Load(),
	}
	if l, ok := e.spawner.(interface{ Live() int64 }); ok {
		s.LiveExternal = l.Live()
	}
	return s
}

// Shutdown waits for launched handler tasks to finish or ctx to be done.
// Timed out handlers and running external processes are not waited for.
func (e *Engine) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
