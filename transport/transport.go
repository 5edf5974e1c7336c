package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/moffa90/go-slave/protocol"
	"github.com/moffa90/go-slave/types"
)

// Operation names used in TransportError.
const (
	OpAsk   = "ask"
	OpWrite = "write"
)

// ErrClosed is returned by transports used after Close.
var ErrClosed = errors.New("transport closed")

// Transport sends message units to an instrument.
type Transport interface {
	// Ask sends req.Message and returns the response text.
	Ask(ctx context.Context, req *Request) (string, error)

	// Write sends req.Message without reading a response.
	Write(ctx context.Context, req *Request) error
}

// Request describes one message unit.
type Request struct {
	// Key is the identity of the command that built the message
	Key string

	// Header is the query header for Ask and the write header for Write
	Header string

	// Message is the complete outbound text, terminator included
	Message string

	// Data are the encoded program data units contained in Message
	Data []string

	// Response are the declared response types of the command
	Response []types.Type

	// Config is the formatting used to build Message
	Config protocol.Config

	// Queryable reports whether the command has a query header
	Queryable bool

	// Writable reports whether the command has a write header
	Writable bool
}

// TransportError wraps a failure at the transport boundary.
type TransportError struct {
	// Op is OpAsk or OpWrite
	Op string

	// Err is the underlying failure
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}
