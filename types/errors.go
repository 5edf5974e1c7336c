package types

import (
	"errors"
	"fmt"
)

// ValidationError indicates that a value was rejected by a Type's constraints.
// It is always returned before any I/O takes place.
type ValidationError struct {
	// Type is the name of the rejecting type
	Type string

	// Value is the offending value
	Value any

	// Reason describes the violated constraint
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s value %v: %s", e.Type, e.Value, e.Reason)
}

// ParseError indicates that response text could not be converted into a value.
type ParseError struct {
	// Type is the name of the decoding type
	Type string

	// Text is the token (or raw response) that failed to parse
	Text string

	// Reason describes why the text was rejected
	Reason string

	// Err is the underlying cause, if any
	Err error
}

func (e *ParseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("cannot parse response %q: %s", e.Text, e.Reason)
	}
	return fmt.Sprintf("cannot parse %q as %s: %s", e.Text, e.Type, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsParseError returns true if err is or wraps a ParseError.
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

func invalid(t Type, v any, format string, args ...any) error {
	return &ValidationError{Type: Name(t), Value: v, Reason: fmt.Sprintf(format, args...)}
}

func unparsable(t Type, text string, err error, format string, args ...any) error {
	return &ParseError{Type: Name(t), Text: text, Reason: fmt.Sprintf(format, args...), Err: err}
}
