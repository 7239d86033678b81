package schema

import (
	"fmt"
	"slices"
)

// Subject kinds known to the event source's protocol.
const (
	KindComputer      = "Computer"
	KindDEPDevice     = "DEPDevice"
	KindJSS           = "JSS"
	KindMobileDevice  = "MobileDevice"
	KindPatchUpdate   = "PatchSoftwareTitleUpdated"
	KindPolicy        = "PolicyFinished"
	KindPush          = "Push"
	KindRestAPI       = "RestAPIOperation"
	KindSCEPChallenge = "SCEPChallenge"
	KindSmartGroup    = "SmartGroup"
)

// Converter transforms a raw decoded value into its runtime representation
// (e.g. epoch milliseconds into a time.Time).
type Converter func(value any) (any, error)

// FieldSpec describes one field of a subject.
type FieldSpec struct {
	// Name is the JSON key of the field inside the "event" object.
	Name string `json:"name"`

	// Validate is the write-time rule for the field's value.
	// Decoding never applies it.
	Validate ValidationRule `json:"-"`

	// Generator names the sample-value rule used by the test event generator.
	Generator string `json:"generator,omitempty"`

	// ConvertOnDecode is applied by the decoder when set.
	ConvertOnDecode Converter `json:"-"`
}

// RuleName returns the validation rule's name, or "any" when the field has none.
func (f FieldSpec) RuleName() string {
	if f.Validate == nil {
		return Any.Name()
	}
	return f.Validate.Name()
}

// Schema is the ordered field set of one subject kind. It is immutable once
// registered.
type Schema struct {
	kind   string
	fields []FieldSpec
	index  map[string]int
}

func newSchema(kind string, fields []FieldSpec) (*Schema, error) {
	if kind == "" {
		return nil, fmt.Errorf("subject kind is required")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("subject %s: at least one field is required", kind)
	}

	s := &Schema{
		kind:   kind,
		fields: make([]FieldSpec, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("subject %s: field name cannot be empty", kind)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("subject %s: %w: %s", kind, ErrDuplicateField, f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// Kind returns the subject kind name.
func (s *Schema) Kind() string {
	return s.kind
}

// Fields returns a copy of the field specs in declaration order.
func (s *Schema) Fields() []FieldSpec {
	return slices.Clone(s.fields)
}

// FieldNames returns the declared field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a field spec by name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Validate checks values against the field rules. Unknown keys are reported;
// missing keys are not, since every subject field is optional on the wire.
func (s *Schema) Validate(values map[string]any) error {
	var (
		errs    []*ValidationError
		unknown []string
	)

	for key := range values {
		if _, ok := s.index[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		errs = append(errs, NewUnknownFieldsError(s.kind, unknown))
	}

	for _, f := range s.fields {
		v, present := values[f.Name]
		if !present || f.Validate == nil {
			continue
		}
		if !f.Validate.Valid(v) {
			errs = append(errs, NewRuleError(s.kind, f.Name, f.Validate.Name(), v))
		}
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &MultiValidationError{Errors: errs}
	}
}
