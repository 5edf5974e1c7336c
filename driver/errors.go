package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrNotQueryable is returned when querying a command without a query header.
	ErrNotQueryable = errors.New("command is not queryable")

	// ErrNotWritable is returned when writing a command without a write header.
	ErrNotWritable = errors.New("command is not writable")

	// ErrUnknownCommand is returned when a path does not name a command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrIndexOutOfRange is returned when a sequence index is out of range.
	ErrIndexOutOfRange = errors.New("sequence index out of range")
)

// DeclarationError indicates a malformed command or group declaration.
type DeclarationError struct {
	// Name identifies the declaration, a header or a path
	Name string

	// Reason describes what is wrong
	Reason string

	// Err is the underlying error, if any
	Err error
}

func (e *DeclarationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid declaration %q: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid declaration %q: %s", e.Name, e.Reason)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// IsDeclarationError returns true if err is or wraps a DeclarationError.
func IsDeclarationError(err error) bool {
	var target *DeclarationError
	return errors.As(err, &target)
}
