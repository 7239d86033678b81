package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	// ErrUnknownSubjectKind is returned when a subject kind was never registered.
	ErrUnknownSubjectKind = errors.New("unknown subject kind")
	ErrAlreadyRegistered  = errors.New("subject kind already registered")
	ErrDuplicateField     = errors.New("duplicate field")
)

// ValidationError represents a subject field validation failure.
type ValidationError struct {
	Subject       string   `json:"subject"`
	Message       string   `json:"message"`
	Field         string   `json:"field,omitempty"`
	Rule          string   `json:"rule,omitempty"`
	ActualType    string   `json:"actual_type,omitempty"`
	UnknownFields []string `json:"unknown_fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.UnknownFields) > 0 {
		return fmt.Sprintf("unknown field(s) %v not declared by subject %s",
			e.UnknownFields, e.Subject)
	}
	if e.Field != "" {
		return fmt.Sprintf("field '%s': %s (subject %s)", e.Field, e.Message, e.Subject)
	}
	return fmt.Sprintf("%s (subject %s)", e.Message, e.Subject)
}

// MultiValidationError aggregates multiple validation errors.
type MultiValidationError struct {
	Errors []*ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// ValidationDetailer surfaces structured validation details for API error responses.
type ValidationDetailer interface {
	Details() map[string]interface{}
}

// Details returns the structured fields from this single validation error.
func (e *ValidationError) Details() map[string]interface{} {
	d := make(map[string]interface{})
	if len(e.UnknownFields) > 0 {
		d["unknown_fields"] = e.UnknownFields
	}
	if e.Field != "" {
		d["field"] = e.Field
	}
	return d
}

// Details aggregates the failed field names from all child errors.
func (e *MultiValidationError) Details() map[string]interface{} {
	d := make(map[string]interface{})
	var fields []string
	for _, ve := range e.Errors {
		if ve.Field != "" {
			fields = append(fields, ve.Field)
		}
	}
	if len(fields) > 0 {
		d["fields"] = fields
	}
	return d
}

// NewUnknownFieldsError creates an error for undeclared fields.
func NewUnknownFieldsError(subject string, fields []string) *ValidationError {
	return &ValidationError{
		Subject:       subject,
		Message:       fmt.Sprintf("unknown field(s) not allowed: %v", fields),
		UnknownFields: fields,
	}
}

// NewRuleError creates an error for a value rejected by its field rule.
func NewRuleError(subject, field, rule string, value any) *ValidationError {
	return &ValidationError{
		Subject:    subject,
		Message:    fmt.Sprintf("value does not satisfy rule %s", rule),
		Field:      field,
		Rule:       rule,
		ActualType: fmt.Sprintf("%T", value),
	}
}
