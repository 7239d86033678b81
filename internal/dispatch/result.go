package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/chook-lab/chook/internal/handler"
)

// Status is the state of one handler invocation.
type Status string

const (
	Launched  Status = "launched"
	Succeeded Status = "succeeded"
	Failed    Status = "failed"
	TimedOut  Status = "timed_out"
)

// Outcome reports one handler invocation. For external handlers Succeeded
// means the process started and received its payload; the exit status is
// never examined.
type Outcome struct {
	Identity string         `json:"identity"`
	Origin   handler.Origin `json:"origin"`
	Status   Status         `json:"status"`
	Err      error          `json:"-"`
	Duration time.Duration  `json:"duration"`
}

// Reason returns the failure message, or "".
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Result summarizes one dispatch. It is returned as soon as every handler has
// been launched; Outcomes and Wait observe completion afterwards.
type Result struct {
	EventID         string
	Key             string
	Binding         handler.Binding
	Generation      uint64
	HandlersInvoked int

	tasks []*task
}

// Outcomes returns the current state of every invocation, in launch order.
func (r *Result) Outcomes() []Outcome {
	out := make([]Outcome, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = t.outcome()
	}
	return out
}

// Wait blocks until every invocation has finished or ctx is done, and
// returns the outcomes observed at that point.
func (r *Result) Wait(ctx context.Context) ([]Outcome, error) {
	for _, t := range r.tasks {
		select {
		case <-t.done:
		case <-ctx.Done():
			return r.Outcomes(), ctx.Err()
		}
	}
	return r.Outcomes(), nil
}

// Count returns how many invocations currently have status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes() {
		if o.Status == s {
			n++
		}
	}
	return n
}

type task struct {
	desc handler.Descriptor
	done chan struct{}

	mu  sync.Mutex
	out Outcome
}

func newTask(desc handler.Descriptor) *task {
	return &task{
		desc: desc,
		done: make(chan struct{}),
		out:  Outcome{Identity: desc.Identity, Origin: desc.Origin, Status: Launched},
	}
}

func (t *task) outcome() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out
}

func (t *task) finish(status Status, err error, d time.Duration) Outcome {
	t.mu.Lock()
	t.out.Status = status
	t.out.Err = err
	t.out.Duration = d
	out := t.out
	t.mu.Unlock()
	close(t.done)
	return out
}
