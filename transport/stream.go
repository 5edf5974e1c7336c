package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/moffa90/go-slave/protocol"
)

// DefaultMaxResponseSize bounds a single response read by Stream.
const DefaultMaxResponseSize = 64 * 1024

// ErrResponseTooLarge is returned when no response terminator is seen within
// the configured maximum response size.
var ErrResponseTooLarge = errors.New("response exceeds maximum size")

// deadliner is implemented by net.Conn and *os.File.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// StatusHandler receives the status bytes that follow the response to req,
// e.g. the status and overload bytes of the Signal Recovery protocol. The
// slice is only valid during the call.
type StatusHandler func(req *Request, status []byte)

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithDelay sets a pause between sending a query and reading its response.
// Some instruments drop bytes if read immediately after a write.
func WithDelay(d time.Duration) StreamOption {
	return func(s *Stream) {
		s.delay = d
	}
}

// WithMaxResponseSize sets the largest response Stream will buffer.
func WithMaxResponseSize(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.maxResponse = n
		}
	}
}

// WithStatusHandler sets a handler for the status bytes declared by
// Config.StatusBytes. Without a handler they are read and discarded.
func WithStatusHandler(h StatusHandler) StreamOption {
	return func(s *Stream) {
		s.status = h
	}
}

// Stream is a Transport over a byte stream such as a serial port or TCP
// socket. Responses are read up to the request's response terminator,
// which is stripped from the returned text, followed by Config.StatusBytes
// raw bytes. When Config.WriteResponse is set, Write reads and checks the
// response to every write, so it never remains on the stream.
//
// Stream is safe for concurrent use; calls are serialized.
type Stream struct {
	mu          sync.Mutex
	rw          io.ReadWriter
	r           *bufio.Reader
	delay       time.Duration
	maxResponse int
	status      StatusHandler
}

// NewStream creates a Stream transport over rw.
//
// Example:
//
//	conn, _ := net.Dial("tcp", "192.168.0.10:5025")
//	t := transport.NewStream(conn, transport.WithDelay(10*time.Millisecond))
func NewStream(rw io.ReadWriter, opts ...StreamOption) *Stream {
	if rw == nil {
		panic("stream cannot be nil")
	}

	s := &Stream{
		rw:          rw,
		r:           bufio.NewReader(rw),
		maxResponse: DefaultMaxResponseSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask writes req.Message and reads until req.Config.ResponseTerminator.
func (s *Stream) Ask(ctx context.Context, req *Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx); err != nil {
		return "", wrap(OpAsk, err)
	}
	defer s.end(ctx)

	if err := s.send(req.Message); err != nil {
		return "", wrap(OpAsk, err)
	}

	response, err := s.receive(ctx, req)
	if err != nil {
		return "", wrap(OpAsk, err)
	}
	return response, nil
}

// Write writes req.Message. If the device answers writes, the response is
// read. When the configuration declares a header echo or an error prefix,
// the response is checked as well: a rejected write is returned as
// *protocol.DeviceError and a response carrying data as *types.ParseError.
func (s *Stream) Write(ctx context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin(ctx); err != nil {
		return wrap(OpWrite, err)
	}
	defer s.end(ctx)

	if err := s.send(req.Message); err != nil {
		return wrap(OpWrite, err)
	}
	if !req.Config.WriteResponse {
		return nil
	}

	response, err := s.receive(ctx, req)
	if err != nil {
		return wrap(OpWrite, err)
	}
	if !req.Config.EchoHeader && req.Config.ErrorPrefix == "" {
		return nil
	}
	_, err = protocol.ParseResponse(req.Config, req.Header, response, 0)
	return err
}

// receive waits for the configured delay, then reads one response and its
// status bytes.
func (s *Stream) receive(ctx context.Context, req *Request) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	response, err := s.readUntil(req.Config.ResponseTerminator)
	if err != nil {
		return "", err
	}

	if n := req.Config.StatusBytes; n > 0 {
		status := make([]byte, n)
		if _, err := io.ReadFull(s.r, status); err != nil {
			return "", fmt.Errorf("read status bytes: %w", err)
		}
		if s.status != nil {
			s.status(req, status)
		}
	}
	return response, nil
}

// begin checks ctx and applies its deadline to the underlying stream when
// the stream supports deadlines.
func (s *Stream) begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if d, ok := s.rw.(deadliner); ok {
			if err := d.SetDeadline(deadline); err != nil {
				return fmt.Errorf("set deadline: %w", err)
			}
		}
	}
	return nil
}

func (s *Stream) end(ctx context.Context) {
	if _, ok := ctx.Deadline(); !ok {
		return
	}
	if d, ok := s.rw.(deadliner); ok {
		_ = d.SetDeadline(time.Time{})
	}
}

func (s *Stream) send(message string) error {
	if _, err := io.WriteString(s.rw, message); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// readUntil reads until the buffered text ends with terminator.
// A blank terminator reads a single line.
func (s *Stream) readUntil(terminator string) (string, error) {
	if terminator == "" {
		terminator = "\n"
	}
	last := terminator[len(terminator)-1]

	var sb strings.Builder
	for {
		chunk, err := s.r.ReadString(last)
		sb.WriteString(chunk)

		if strings.HasSuffix(sb.String(), terminator) {
			return strings.TrimSuffix(sb.String(), terminator), nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				err = io.ErrUnexpectedEOF
			}
			return "", fmt.Errorf("read response: %w", err)
		}
		if sb.Len() > s.maxResponse {
			return "", ErrResponseTooLarge
		}
	}
}
