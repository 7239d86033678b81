package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	v1 "github.com/chook-lab/chook/internal/api/v1"
	"github.com/tidwall/gjson"
)

// Decoder turns raw webhook payloads into Events.
// It is safe for concurrent use.
type Decoder struct {
	types  *Registry
	now    func() time.Time
	logger *slog.Logger
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithClock overrides the clock used for ids and ReceivedAt.
func WithClock(now func() time.Time) DecoderOption {
	return func(d *Decoder) { d.now = now }
}

// WithLogger sets the logger used for conversion warnings.
func WithLogger(l *slog.Logger) DecoderOption {
	return func(d *Decoder) { d.logger = l }
}

// NewDecoder creates a decoder over the given event type registry.
func NewDecoder(types *Registry, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		types:  types,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Types returns the event type registry the decoder resolves names against.
func (d *Decoder) Types() *Registry {
	return d.types
}

// Decode parses one webhook payload. Subject field values are extracted but
// never validated; fields the subject schema does not declare are dropped.
func (d *Decoder) Decode(raw []byte) (*Event, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, malformed(errors.New("empty payload"))
	}

	var env v1.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, malformed(err)
	}
	if err := env.Validate(); err != nil {
		return nil, malformed(err)
	}

	spec, err := d.types.Lookup(env.Webhook.WebhookEvent)
	if err != nil {
		return nil, err
	}

	now := d.now()
	ev := &Event{
		id:          NewID(now),
		typeName:    spec.Name,
		subjectKind: spec.SubjectKind,
		webhookID:   env.Webhook.ID,
		webhookName: env.Webhook.Name,
		subject:     make(Subject, len(spec.Schema.FieldNames())),
		raw:         bytes.Clone(raw),
		receivedAt:  now,
	}

	gjson.ParseBytes(env.Event).ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		field, ok := spec.Schema.Field(name)
		if !ok {
			return true
		}

		v := jsonValue(value)
		if field.ConvertOnDecode != nil && v != nil {
			converted, err := field.ConvertOnDecode(v)
			if err != nil {
				d.logger.Warn("Subject field conversion failed, keeping raw value",
					"event_id", ev.id, "event_type", spec.Name, "field", name, "error", err)
			} else {
				v = converted
			}
		}
		ev.subject[name] = v
		return true
	})

	return ev, nil
}

// jsonValue maps a gjson value to a Go value. Integral numbers become int64,
// everything else follows encoding/json's defaults.
func jsonValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.True, gjson.False:
		return r.Bool()
	case gjson.String:
		return r.String()
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if n, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return n
			}
		}
		return r.Float()
	default:
		return r.Value()
	}
}
