// Package validation, the gate itself: schema registry, coercion and
// constraint checking. Validation is pure — it either returns a normalized
// copy of the payload or a structured list of field errors, and touches
// nothing else.
package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected field: which one and why. The reasons are
// written to be safe to surface to the client verbatim.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error aggregates every field failure found in one payload. Reporting all of
// them at once saves the client a fix-resubmit round trip per field.
type Error struct {
	Schema string
	Fields []FieldError
}

// Error satisfies the error interface with a single readable line.
func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s %s", f.Field, f.Reason)
	}
	return fmt.Sprintf("the passed object doesn't fit the required format: %s", strings.Join(parts, "; "))
}

// Gate validates payloads against named schemas. Schemas are registered once
// at startup; after that the gate is read-only and safe for concurrent use.
type Gate struct {
	validate *validator.Validate
	schemas  map[string]Schema
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{
		validate: validator.New(),
		schemas:  make(map[string]Schema),
	}
}

// Register adds a schema to the gate. Registering two schemas under the same
// name is a wiring bug and fails loudly.
func (g *Gate) Register(schemas ...Schema) error {
	for _, s := range schemas {
		if _, exists := g.schemas[s.Name]; exists {
			return fmt.Errorf("schema %q registered twice", s.Name)
		}
		g.schemas[s.Name] = s
	}
	return nil
}

// Validate checks a decoded payload against the named schema. On success it
// returns a fresh normalized map (declared fields only, values coerced to
// their declared kinds); the input map is never modified. On failure it
// returns a *Error listing every offending field.
func (g *Gate) Validate(schemaName string, payload map[string]interface{}) (map[string]interface{}, error) {
	schema, ok := g.schemas[schemaName]
	if !ok {
		return nil, fmt.Errorf("unknown validation schema %q", schemaName)
	}

	var fieldErrs []FieldError
	normalized := make(map[string]interface{}, len(schema.Fields))

	for _, field := range schema.Fields {
		raw, present := payload[field.Name]
		if !present || raw == nil {
			if field.Required {
				fieldErrs = append(fieldErrs, FieldError{Field: field.Name, Reason: "is required"})
			}
			continue
		}

		value, err := coerce(raw, field.Kind)
		if err != nil {
			fieldErrs = append(fieldErrs, FieldError{Field: field.Name, Reason: err.Error()})
			continue
		}

		if field.Rules != "" {
			if err := g.checkRules(value, field.Rules); err != nil {
				fieldErrs = append(fieldErrs, FieldError{Field: field.Name, Reason: err.Error()})
				continue
			}
		}

		normalized[field.Name] = value
	}

	// Unknown keys are rejected rather than silently dropped; a typoed field
	// name would otherwise look like a missing optional field.
	for key := range payload {
		if _, declared := schema.fieldByName(key); !declared {
			fieldErrs = append(fieldErrs, FieldError{Field: key, Reason: "is not allowed"})
		}
	}

	if len(fieldErrs) > 0 {
		// Deterministic ordering keeps the error message stable across calls.
		sort.Slice(fieldErrs, func(i, j int) bool { return fieldErrs[i].Field < fieldErrs[j].Field })
		return nil, &Error{Schema: schemaName, Fields: fieldErrs}
	}

	return normalized, nil
}

// checkRules evaluates validator constraint tags against a single value.
func (g *Gate) checkRules(value interface{}, rules string) error {
	// time.Time values have no meaningful validator tags in our schemas;
	// elements of lists are checked individually.
	if list, ok := value.([]int); ok {
		for _, v := range list {
			if err := g.validate.Var(v, rules); err != nil {
				return fmt.Errorf("must satisfy %q", rules)
			}
		}
		return nil
	}
	if err := g.validate.Var(value, rules); err != nil {
		return fmt.Errorf("must satisfy %q", rules)
	}
	return nil
}

// coerce converts a raw decoded JSON value to the field's declared kind.
// JSON numbers arrive as float64; numeric strings are accepted for number
// kinds because HTML form data often serializes them that way.
func coerce(raw interface{}, kind Kind) (interface{}, error) {
	switch kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		return s, nil

	case KindNumber:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("must be a number")
			}
			return f, nil
		default:
			return nil, fmt.Errorf("must be a number")
		}

	case KindInt:
		switch v := raw.(type) {
		case float64:
			if v != float64(int(v)) {
				return nil, fmt.Errorf("must be a whole number")
			}
			return int(v), nil
		case string:
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("must be a whole number")
			}
			return i, nil
		default:
			return nil, fmt.Errorf("must be a whole number")
		}

	case KindTime:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be an RFC 3339 timestamp")
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("must be an RFC 3339 timestamp")
		}
		return t, nil

	case KindIntList:
		list, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("must be a list of whole numbers")
		}
		out := make([]int, 0, len(list))
		for _, elem := range list {
			coerced, err := coerce(elem, KindInt)
			if err != nil {
				return nil, fmt.Errorf("must be a list of whole numbers")
			}
			out = append(out, coerced.(int))
		}
		return out, nil

	default:
		return nil, fmt.Errorf("has an unsupported kind")
	}
}
