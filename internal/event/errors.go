package event

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload is returned for empty or unparseable payloads.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrUnknownEventType is returned when the source sends an event-type name
	// the registry was never told about.
	ErrUnknownEventType = errors.New("unknown event type")
)

// DecodeError is returned by Decoder.Decode. Kind is one of the sentinels above,
// so callers can use errors.Is(err, ErrUnknownEventType).
type DecodeError struct {
	Kind      error
	EventType string
	Err       error
}

func (e *DecodeError) Error() string {
	switch {
	case e.EventType != "" && e.Err != nil:
		return fmt.Sprintf("%s %q: %v", e.Kind, e.EventType, e.Err)
	case e.EventType != "":
		return fmt.Sprintf("%s %q", e.Kind, e.EventType)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(err error) *DecodeError {
	return &DecodeError{Kind: ErrMalformedPayload, Err: err}
}
