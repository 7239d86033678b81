package builtin

import (
	"context"
	"log/slog"

	"github.com/chook-lab/chook/internal/handler"
)

// Defaults returns the builtins shipped with the server.
func Defaults() map[string]handler.Callable {
	return map[string]handler.Callable{
		"log":  logEvent,
		"noop": func(context.Context, handler.Input) error { return nil },
	}
}

// logEvent writes a one-line summary of what it received.
func logEvent(_ context.Context, in handler.Input) error {
	if in.Event == nil {
		slog.Info("Named handler payload received", "bytes", len(in.Payload))
		return nil
	}
	subject := in.Event.Subject()
	slog.Info("Event received",
		"event_id", in.Event.ID(),
		"event_type", in.Event.Type(),
		"webhook", in.Event.WebhookName(),
		"fields", subject.Keys(),
	)
	return nil
}
