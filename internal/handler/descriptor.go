package handler

import (
	"context"

	"github.com/chook-lab/chook/internal/event"
)

// Origin says where a handler's code lives.
type Origin string

const (
	// External handlers are executables that receive the raw payload on stdin.
	External Origin = "external"
	// Internal handlers are in-process callables compiled by a Format.
	Internal Origin = "internal"
)

// Binding says how a handler is selected for dispatch.
type Binding string

const (
	// General handlers run for every event of their bound event type.
	General Binding = "general"
	// Named handlers run only when called by identifier.
	Named Binding = "named"
)

// Input is what an internal handler receives. General handlers get the decoded
// Event and its raw payload; named handlers get only Payload.
type Input struct {
	Event   *event.Event
	Payload []byte
}

// Callable is an internal handler. A returned error or a panic marks the
// invocation as failed.
type Callable func(ctx context.Context, in Input) error

// Descriptor is one loaded handler.
type Descriptor struct {
	// Identity is the handler's file path; it is unique within a snapshot.
	Identity string
	// Name is the file's base name.
	Name    string
	Origin  Origin
	Binding Binding

	// Format names the Format that compiled an internal handler.
	Format string
	// Call is set for internal handlers only.
	Call Callable

	// EventType is set for general handlers.
	EventType string
	// NamedID is set for named handlers.
	NamedID string
}

// Key returns the event type or named identifier the handler is bound to.
func (d Descriptor) Key() string {
	if d.Binding == Named {
		return d.NamedID
	}
	return d.EventType
}
