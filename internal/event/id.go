package event

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns an event id of the form "<unix seconds>-<random suffix>".
// Ids are unique, not unpredictable; they only correlate log lines.
func NewID(now time.Time) string {
	suffix, err := gonanoid.Generate(idAlphabet, 10)
	if err != nil {
		// crypto/rand failure; fall back to the clock alone.
		suffix = fmt.Sprintf("%09d", now.Nanosecond())
	}
	return fmt.Sprintf("%d-%s", now.Unix(), suffix)
}
