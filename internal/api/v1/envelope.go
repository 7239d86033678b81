package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the wire shape of one webhook notification:
//
//	{"webhook": {"id": 1, "name": "...", "webhookEvent": "ComputerAdded"}, "event": {...}}
//
// Event is kept raw; the decoder extracts only the fields the subject schema declares.
type Envelope struct {
	Webhook *Webhook        `json:"webhook"`
	Event   json.RawMessage `json:"event"`
}

// Webhook identifies the webhook definition on the event source that fired.
type Webhook struct {
	// ID is the source-assigned webhook id.
	ID int64 `json:"id"`

	// Name is the human-readable webhook name configured on the source.
	Name string `json:"name"`

	// WebhookEvent is the event-type name, e.g. "ComputerAdded".
	WebhookEvent string `json:"webhookEvent"`

	// EventTimestamp is epoch milliseconds; newer servers send it, older ones don't.
	EventTimestamp int64 `json:"eventTimestamp,omitempty"`
}

// Validate ensures the envelope has the structure the decoder relies on.
func (e *Envelope) Validate() error {
	if e.Webhook == nil {
		return fmt.Errorf("webhook is required")
	}
	if e.Webhook.WebhookEvent == "" {
		return fmt.Errorf("webhook.webhookEvent is required")
	}

	event := bytes.TrimSpace(e.Event)
	if len(event) == 0 || bytes.Equal(event, []byte("null")) {
		return fmt.Errorf("event is required")
	}
	if event[0] != '{' {
		return fmt.Errorf("event must be a JSON object")
	}
	return nil
}
