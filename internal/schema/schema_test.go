package schema_test

import (
	"errors"
	"testing"
	"time"

	"github.com/chook-lab/chook/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		fields  []schema.FieldSpec
		wantErr error
		errMsg  string
	}{
		{
			name:   "valid subject",
			kind:   "Widget",
			fields: []schema.FieldSpec{{Name: "id", Validate: schema.Integer}},
		},
		{
			name:   "missing kind",
			kind:   "",
			fields: []schema.FieldSpec{{Name: "id"}},
			errMsg: "subject kind is required",
		},
		{
			name:   "no fields",
			kind:   "Widget",
			errMsg: "subject Widget: at least one field is required",
		},
		{
			name:    "duplicate field",
			kind:    "Widget",
			fields:  []schema.FieldSpec{{Name: "id"}, {Name: "id"}},
			wantErr: schema.ErrDuplicateField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := schema.NewRegistry()
			err := reg.Register(tt.kind, tt.fields...)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.EqualError(t, err, tt.errMsg)
			default:
				require.NoError(t, err)
				s, err := reg.Lookup(tt.kind)
				require.NoError(t, err)
				require.Equal(t, tt.kind, s.Kind())
			}
		})
	}
}

func TestRegistry_RegisterTwiceFails(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register("Widget", schema.FieldSpec{Name: "id"}))

	err := reg.Register("Widget", schema.FieldSpec{Name: "other"})
	require.ErrorIs(t, err, schema.ErrAlreadyRegistered)
}

func TestRegistry_LookupUnknownKind(t *testing.T) {
	reg := schema.NewRegistry()

	_, err := reg.Lookup("Toaster")
	require.ErrorIs(t, err, schema.ErrUnknownSubjectKind)
	require.Contains(t, err.Error(), "Toaster")
}

func TestDefaultRegistry_CoversEverySubject(t *testing.T) {
	reg, err := schema.NewDefaultRegistry()
	require.NoError(t, err)

	kinds := reg.Kinds()
	require.Len(t, kinds, len(schema.Subjects()))
	for _, kind := range kinds {
		s, err := reg.Lookup(kind)
		require.NoError(t, err)
		require.NotEmpty(t, s.FieldNames(), "subject %s has no fields", kind)
	}

	computer, err := reg.Lookup(schema.KindComputer)
	require.NoError(t, err)
	require.Equal(t, "udid", computer.FieldNames()[0])

	patch, err := reg.Lookup(schema.KindPatchUpdate)
	require.NoError(t, err)
	lastUpdate, ok := patch.Field("lastUpdate")
	require.True(t, ok)
	require.NotNil(t, lastUpdate.ConvertOnDecode)
}

func TestSchema_FieldsReturnsCopy(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register("Widget", schema.FieldSpec{Name: "id"}))
	s, err := reg.Lookup("Widget")
	require.NoError(t, err)

	fields := s.Fields()
	fields[0].Name = "mutated"

	require.Equal(t, []string{"id"}, s.FieldNames())
}

func TestSchema_Validate(t *testing.T) {
	reg, err := schema.NewDefaultRegistry()
	require.NoError(t, err)
	s, err := reg.Lookup(schema.KindRestAPI)
	require.NoError(t, err)

	t.Run("valid values", func(t *testing.T) {
		err := s.Validate(map[string]any{
			"operationSuccessful":  true,
			"objectID":             float64(42),
			"objectName":           "",
			"restAPIOperationType": "PUT",
		})
		require.NoError(t, err)
	})

	t.Run("single rule failure", func(t *testing.T) {
		err := s.Validate(map[string]any{"objectID": "forty-two"})

		var ve *schema.ValidationError
		require.True(t, errors.As(err, &ve))
		require.Equal(t, "objectID", ve.Field)
		require.Equal(t, "integer", ve.Rule)
		require.Equal(t, "string", ve.ActualType)
	})

	t.Run("unknown and invalid fields aggregate", func(t *testing.T) {
		err := s.Validate(map[string]any{
			"bogus":                1,
			"restAPIOperationType": "PATCH",
		})

		var multi *schema.MultiValidationError
		require.True(t, errors.As(err, &multi))
		require.Len(t, multi.Errors, 2)
		require.Equal(t, []string{"bogus"}, multi.Errors[0].UnknownFields)
		require.Equal(t, map[string]interface{}{"fields": []string{"restAPIOperationType"}}, multi.Details())
	})
}

func TestRules(t *testing.T) {
	tests := []struct {
		rule  schema.ValidationRule
		value any
		want  bool
	}{
		{schema.String, "x", true},
		{schema.String, 1, false},
		{schema.Integer, float64(3), true},
		{schema.Integer, 3.5, false},
		{schema.Integer, int64(7), true},
		{schema.Boolean, false, true},
		{schema.Boolean, "true", false},
		{schema.Time, time.Now(), true},
		{schema.Nil, nil, true},
		{schema.Nil, "", false},
		{schema.MACAddress, "0a:1B:2c:3d:4e:5f", true},
		{schema.MACAddress, "0a:1b:2c:3d:4e", false},
		{schema.Email, "jane.doe@example.com", true},
		{schema.Email, "not-an-email", false},
		{schema.URL, "https://jss.example.com:8443/", true},
		{schema.URL, "ftp://jss.example.com", false},
		{schema.IMEI, "35 209900 176148 1", true},
		{schema.IMEI, "1234", false},
		{schema.ICCID, "8901 2600 0000 0000 000", true},
		{schema.SerialNumber, "C02XK1ZZJGH5", true},
		{schema.SerialNumber, "lowercase", false},
		{schema.Optional(schema.String), nil, true},
		{schema.OneOf("color", "red", "blue"), "red", true},
		{schema.OneOf("color", "red", "blue"), "green", false},
	}

	for _, tt := range tests {
		t.Run(tt.rule.Name(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Valid(tt.value), "value %#v", tt.value)
		})
	}
}

func TestJSSEpochToTime(t *testing.T) {
	want := time.Date(2017, 10, 10, 22, 18, 58, 0, time.UTC)

	for _, in := range []any{float64(1507673938000), int64(1507673938000), "1507673938000"} {
		got, err := schema.JSSEpochToTime(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := schema.JSSEpochToTime("yesterday")
	require.Error(t, err)
}
