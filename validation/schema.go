// Package validation implements the validation gate of the request pipeline:
// every inbound body on a validated route is decoded once, checked against a
// named schema and normalized before the handler (or any persistence) runs.
// A failed check stops the request with a 400-class envelope and no side effect.
//
// This file defines the declarative schema model. Schemas are built at process
// start, registered on the gate, and never mutated afterwards, so they may be
// read concurrently without synchronization.
package validation

// Kind is the declared type of a schema field. Declaring the kind lets the
// gate coerce compatible inputs (a numeric string for a number field) instead
// of rejecting them, while still refusing genuinely mistyped values.
type Kind int

const (
	// KindString accepts JSON strings.
	KindString Kind = iota
	// KindNumber accepts JSON numbers and numeric strings, normalized to float64.
	KindNumber
	// KindInt accepts whole JSON numbers and integer strings, normalized to int.
	KindInt
	// KindTime accepts RFC 3339 timestamps, normalized to time.Time.
	KindTime
	// KindIntList accepts arrays whose elements coerce like KindInt.
	KindIntList
)

// Field describes one expected property of a payload.
type Field struct {
	// Name is the JSON key.
	Name string
	// Kind is the declared type the raw value must coerce to.
	Kind Kind
	// Required fields must be present and non-null.
	Required bool
	// Rules holds go-playground/validator constraint tags evaluated against the
	// coerced value, e.g. "email" or "gte=1,lte=500". Empty means no constraint
	// beyond the kind itself.
	Rules string
}

// Schema is a named, immutable description of a route's expected input.
type Schema struct {
	Name   string
	Fields []Field
}

// fieldByName returns the declared field for a JSON key, if any.
func (s Schema) fieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
