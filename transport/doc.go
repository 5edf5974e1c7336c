// Package transport defines the boundary between commands and instruments.
//
// A Transport sends one message unit and, for queries, returns the reply.
// The package does not interpret messages; formatting and parsing belong to
// the protocol package.
//
//	type Transport interface {
//	    Ask(ctx context.Context, req *Request) (string, error)
//	    Write(ctx context.Context, req *Request) error
//	}
//
// Request.Message holds the exact outbound text. The other Request fields
// describe the command that produced it, which real transports ignore and
// the Simulated transport uses to fabricate replies.
//
// # Implementations
//
//   - Stream: line-oriented ask/write over any io.ReadWriter (serial port,
//     net.Conn, USB-TMC device file)
//   - Locked: serializes access to another Transport
//   - Async: runs another Transport on its own goroutine; callers can stop
//     waiting through their context
//   - Simulated: answers from the declared response types, no hardware
//
// # Concurrency
//
// Instrument buses are half-duplex: at most one request may be in flight per
// physical connection. Stream and Simulated serialize their own calls.
// Wrap other transports with NewLocked, sharing one lock between handles
// that reach the same device:
//
//	var gpib0 sync.Mutex
//	amp := transport.NewLocked(ampConn, &gpib0)
//	meter := transport.NewLocked(meterConn, &gpib0)
//
// # Errors
//
// Failures raised by the transports in this package are *TransportError
// values, distinguishable from protocol-level parse errors. Nothing is
// retried.
package transport
