package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	gate := NewGate()
	require.NoError(t, gate.Register(DefaultSchemas()...))
	return gate
}

func fieldNames(err error) []string {
	verr, ok := err.(*Error)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestGateRejectsDuplicateSchema(t *testing.T) {
	gate := NewGate()
	s := Schema{Name: "login"}
	require.NoError(t, gate.Register(s))
	assert.Error(t, gate.Register(s))
}

func TestGateUnknownSchemaIsNotAFieldError(t *testing.T) {
	gate := newTestGate(t)
	_, err := gate.Validate("nope", map[string]interface{}{})
	require.Error(t, err)
	_, isFieldError := err.(*Error)
	assert.False(t, isFieldError)
}

func TestGateRequiredFields(t *testing.T) {
	gate := newTestGate(t)

	_, err := gate.Validate(SchemaLogin, map[string]interface{}{})
	require.Error(t, err)
	assert.Equal(t, []string{"email", "password"}, fieldNames(err))

	// An explicit null counts as missing.
	_, err = gate.Validate(SchemaLogin, map[string]interface{}{
		"email":    "user@example.com",
		"password": nil,
	})
	require.Error(t, err)
	assert.Equal(t, []string{"password"}, fieldNames(err))
}

func TestGateCollectsAllFieldErrors(t *testing.T) {
	gate := newTestGate(t)

	_, err := gate.Validate(SchemaSignup, map[string]interface{}{
		"email":    "not-an-email",
		"password": "short",
	})
	require.Error(t, err)
	assert.Equal(t, []string{"email", "password"}, fieldNames(err))
}

func TestGateRejectsUnknownFields(t *testing.T) {
	gate := newTestGate(t)

	_, err := gate.Validate(SchemaLogin, map[string]interface{}{
		"email":    "user@example.com",
		"password": "secret",
		"admin":    true,
	})
	require.Error(t, err)
	assert.Equal(t, []string{"admin"}, fieldNames(err))
}

func TestGateTypeErrors(t *testing.T) {
	gate := newTestGate(t)

	tests := []struct {
		name    string
		payload map[string]interface{}
		bad     string
	}{
		{
			name:    "email must be a string",
			payload: map[string]interface{}{"email": 42.0, "password": "longenough"},
			bad:     "email",
		},
		{
			name:    "weight must be a number",
			payload: map[string]interface{}{"weight": "heavy"},
			bad:     "weight",
		},
		{
			name:    "intolerances must be whole numbers",
			payload: map[string]interface{}{"intolerances": []interface{}{1.5}},
			bad:     "intolerances",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := SchemaSignup
			if tt.bad != "email" {
				schema = SchemaProfile
			}
			_, err := gate.Validate(schema, tt.payload)
			require.Error(t, err)
			assert.Contains(t, fieldNames(err), tt.bad)
		})
	}
}

func TestGateCoercesNumericStrings(t *testing.T) {
	gate := newTestGate(t)

	got, err := gate.Validate(SchemaProfile, map[string]interface{}{
		"weight": "72.5",
		"height": 180.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 72.5, got["weight"])
	assert.Equal(t, 180.0, got["height"])
}

func TestGateCoercesTimestamps(t *testing.T) {
	gate := newTestGate(t)

	got, err := gate.Validate(SchemaNewMeals, map[string]interface{}{
		"start_date": "2026-08-03T00:00:00Z",
	})
	require.NoError(t, err)

	start, ok := got["start_date"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), start)

	_, err = gate.Validate(SchemaNewMeals, map[string]interface{}{
		"start_date": "03/08/2026",
	})
	assert.Error(t, err)
}

func TestGateCoercesIntLists(t *testing.T) {
	gate := newTestGate(t)

	got, err := gate.Validate(SchemaProfile, map[string]interface{}{
		"intolerances": []interface{}{1.0, 3.0, 5.0},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, got["intolerances"])

	// Element rules apply per element: intolerance ids start at 1.
	_, err = gate.Validate(SchemaProfile, map[string]interface{}{
		"intolerances": []interface{}{0.0},
	})
	assert.Error(t, err)
}

func TestGateRangeRules(t *testing.T) {
	gate := newTestGate(t)

	_, err := gate.Validate(SchemaProfile, map[string]interface{}{"weight": 10.0})
	require.Error(t, err)
	assert.Equal(t, []string{"weight"}, fieldNames(err))

	_, err = gate.Validate(SchemaProfile, map[string]interface{}{"height": 500.0})
	require.Error(t, err)
	assert.Equal(t, []string{"height"}, fieldNames(err))
}

func TestGateDoesNotMutateInput(t *testing.T) {
	gate := newTestGate(t)

	payload := map[string]interface{}{"weight": "72.5"}
	got, err := gate.Validate(SchemaProfile, payload)
	require.NoError(t, err)

	assert.Equal(t, "72.5", payload["weight"])
	assert.Equal(t, 72.5, got["weight"])
}
