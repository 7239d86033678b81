package handler

import "strings"

// InferEventType derives the event type a general handler file binds to: the
// filename's first token (split on '.', '-' or '_'), matched case-insensitively
// against known. It returns the canonical name or false.
func InferEventType(filename string, known []string) (string, bool) {
	token := filename
	if i := strings.IndexAny(filename, ".-_"); i >= 0 {
		token = filename[:i]
	}
	if token == "" {
		return "", false
	}
	for _, name := range known {
		if strings.EqualFold(token, name) {
			return name, true
		}
	}
	return "", false
}
