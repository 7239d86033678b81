package event

import (
	"bytes"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cast"
)

// Subject holds the decoded fields of the thing an event happened to, keyed
// by field name. Only fields declared by the subject schema are present.
type Subject map[string]any

// Get returns the raw value of a field.
func (s Subject) Get(name string) (any, bool) {
	v, ok := s[name]
	return v, ok
}

// Has reports whether the payload carried the field.
func (s Subject) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// String returns the field as a string, or "" when absent.
func (s Subject) String(name string) string {
	return cast.ToString(s[name])
}

// Int returns the field as an int64, or 0 when absent or not numeric.
func (s Subject) Int(name string) int64 {
	return cast.ToInt64(s[name])
}

// Bool returns the field as a bool, or false when absent.
func (s Subject) Bool(name string) bool {
	return cast.ToBool(s[name])
}

// Time returns the field as a time.Time, or the zero time.
func (s Subject) Time(name string) time.Time {
	return cast.ToTime(s[name])
}

// Keys returns the present field names, sorted.
func (s Subject) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Event is one decoded webhook notification. It is immutable: accessors
// return copies of mutable parts.
type Event struct {
	id          string
	typeName    string
	subjectKind string
	webhookID   int64
	webhookName string
	subject     Subject
	raw         []byte
	receivedAt  time.Time
}

// ID is the decode-time token used for log correlation.
func (e *Event) ID() string { return e.id }

// Type is the event-type name, e.g. "ComputerAdded".
func (e *Event) Type() string { return e.typeName }

// SubjectKind is the kind of the subject carried by this event type.
func (e *Event) SubjectKind() string { return e.subjectKind }

// WebhookID is the source-assigned id of the webhook that fired.
func (e *Event) WebhookID() int64 { return e.webhookID }

// WebhookName is the name of the webhook that fired.
func (e *Event) WebhookName() string { return e.webhookName }

// ReceivedAt is when the payload was decoded.
func (e *Event) ReceivedAt() time.Time { return e.receivedAt }

// Subject returns a deep copy of the subject fields.
func (e *Event) Subject() Subject {
	if e.subject == nil {
		return nil
	}
	out := make(Subject, len(e.subject))
	for k, v := range e.subject {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the containers a JSON value can hold.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// Raw returns a copy of the original JSON payload.
func (e *Event) Raw() []byte {
	return bytes.Clone(e.raw)
}

// LogValue implements slog.LogValuer.
func (e *Event) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", e.id),
		slog.String("type", e.typeName),
		slog.Int64("webhook_id", e.webhookID),
		slog.String("webhook_name", e.webhookName),
	)
}
