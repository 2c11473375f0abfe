package feed

import (
	"errors"
	"fmt"
)

// Parse failures. Every error returned by a parser wraps one of these.
var (
	ErrPatternMismatch = errors.New("pattern mismatch")
	ErrUnknownToken    = errors.New("unknown token")
	ErrMalformedField  = errors.New("malformed field")
	ErrMissingField    = errors.New("missing field")
)

// FieldError describes which field of a record could not be read
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ParseError is a record-level failure. The batch continues without it.
type ParseError struct {
	Kind   Kind
	URL    string
	Record Record
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s record %s: %v", e.Kind, e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func fieldErr(field, value string, err error) error {
	return &FieldError{Field: field, Value: value, Err: err}
}

// invalidCombination keeps both ErrMalformedField and the model's reason in
// the chain
func invalidCombination(field, value string, err error) error {
	return fieldErr(field, value, fmt.Errorf("%w: %w", ErrMalformedField, err))
}
