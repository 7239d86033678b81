package schema

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"
)

// ValidationRule decides whether a value is acceptable for a field.
type ValidationRule interface {
	Name() string
	Valid(value any) bool
}

type rule struct {
	name string
	fn   func(any) bool
}

func (r rule) Name() string         { return r.name }
func (r rule) Valid(value any) bool { return r.fn(value) }

// NewRule wraps a predicate as a named ValidationRule.
func NewRule(name string, fn func(any) bool) ValidationRule {
	return rule{name: name, fn: fn}
}

var (
	macAddressRe = regexp.MustCompile(`(?i)^([a-f\d]{2}:){5}[a-f\d]{2}$`)
	emailRe      = regexp.MustCompile(`^[a-zA-Z]([\w .+-]*[a-zA-Z0-9])?@[\w-]+(\.[\w-]+)+$`)
	serialRe     = regexp.MustCompile(`^[A-Z0-9]{8,14}$`)
)

// Built-in rules.
var (
	Any = NewRule("any", func(any) bool { return true })

	String = NewRule("string", func(v any) bool {
		_, ok := v.(string)
		return ok
	})

	Integer = NewRule("integer", isInteger)

	Boolean = NewRule("boolean", func(v any) bool {
		_, ok := v.(bool)
		return ok
	})

	Time = NewRule("time", func(v any) bool {
		_, ok := v.(time.Time)
		return ok
	})

	// Nil accepts only an absent value; the source always sends null for it.
	Nil = NewRule("nil", func(v any) bool { return v == nil })

	MACAddress = NewRule("mac_address", func(v any) bool {
		s, ok := v.(string)
		return ok && macAddressRe.MatchString(s)
	})

	Email = NewRule("email", func(v any) bool {
		s, ok := v.(string)
		return ok && emailRe.MatchString(s)
	})

	URL = NewRule("url", func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	})

	IMEI = NewRule("imei", func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		n := len(strings.ReplaceAll(s, " ", ""))
		return n >= 15 && n < 17
	})

	ICCID = NewRule("iccid", func(v any) bool {
		s, ok := v.(string)
		return ok && len(strings.ReplaceAll(s, " ", "")) < 23
	})

	SerialNumber = NewRule("serial_number", func(v any) bool {
		s, ok := v.(string)
		return ok && serialRe.MatchString(s)
	})
)

// OneOf accepts strings from a fixed vocabulary.
func OneOf(name string, allowed ...string) ValidationRule {
	return NewRule(name, func(v any) bool {
		s, ok := v.(string)
		return ok && slices.Contains(allowed, s)
	})
}

// Optional lets a rule also accept nil.
func Optional(r ValidationRule) ValidationRule {
	return NewRule(r.Name()+"?", func(v any) bool {
		return v == nil || r.Valid(v)
	})
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == math.Trunc(n) && !math.IsInf(n, 0)
	case json.Number:
		_, err := n.Int64()
		return err == nil
	default:
		return false
	}
}
