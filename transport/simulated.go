package transport

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moffa90/go-slave/protocol"
)

// TraceEntry records one exchange handled by a Simulated transport.
type TraceEntry struct {
	// ID uniquely identifies the exchange
	ID uuid.UUID

	// Op is OpAsk or OpWrite
	Op string

	// Key is the command identity from the request
	Key string

	// Message is the outbound text
	Message string

	// Response is the fabricated reply, empty for writes
	Response string

	// Cached reports whether Response came from a previous write
	Cached bool

	// Time is when the exchange happened
	Time time.Time
}

// SimulatedOption configures a Simulated transport.
type SimulatedOption func(*Simulated)

// WithSeed makes simulated values reproducible.
func WithSeed(seed int64) SimulatedOption {
	return func(s *Simulated) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithTrace enables recording of every exchange, see Simulated.Trace.
func WithTrace(enabled bool) SimulatedOption {
	return func(s *Simulated) {
		s.tracing = enabled
	}
}

// Simulated answers queries without hardware.
//
// Behavior per command kind:
//
//   - query-only: every Ask fabricates fresh values from the response types
//   - read-write: the first Ask fabricates a value and stores it; Write
//     replaces the stored data; later Asks return the stored data
//   - write-only: Write stores nothing
//
// Stored data is keyed by Request.Key, so each command instance has its own
// slot. Simulated is safe for concurrent use.
type Simulated struct {
	mu      sync.Mutex
	rng     *rand.Rand
	store   map[string][]string
	trace   []TraceEntry
	tracing bool
}

// NewSimulated creates a simulated transport.
//
// Example:
//
//	sim := transport.NewSimulated(transport.WithSeed(1))
//	lockin := driver.New(sim)
func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		store: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask returns the stored data for writable commands, or fabricated data
// otherwise, formatted with req.Config.
func (s *Simulated) Ask(ctx context.Context, req *Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrap(OpAsk, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, cached := s.store[req.Key]
	if !cached || !req.Writable {
		var err error
		data, err = s.fabricate(req)
		if err != nil {
			return "", wrap(OpAsk, err)
		}
		if req.Writable {
			s.store[req.Key] = data
		}
	}

	response := protocol.JoinResponse(req.Config, req.Header, data...)
	s.record(OpAsk, req, response, cached && req.Writable)
	return response, nil
}

// Write stores req.Data as the reply to future queries of the same command,
// unless the command cannot be queried.
func (s *Simulated) Write(ctx context.Context, req *Request) error {
	if err := ctx.Err(); err != nil {
		return wrap(OpWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Queryable {
		data := make([]string, len(req.Data))
		copy(data, req.Data)
		s.store[req.Key] = data
	}

	s.record(OpWrite, req, "", false)
	return nil
}

// Stored returns the data held for the command key.
func (s *Simulated) Stored(key string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.store[key]
	if !ok {
		return nil, false
	}
	out := make([]string, len(data))
	copy(out, data)
	return out, true
}

// Trace returns a copy of the recorded exchanges.
func (s *Simulated) Trace() []TraceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TraceEntry, len(s.trace))
	copy(out, s.trace)
	return out
}

// Reset clears stored data and the trace.
func (s *Simulated) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store = make(map[string][]string)
	s.trace = nil
}

// fabricate draws one encoded value per response type. Must hold s.mu.
func (s *Simulated) fabricate(req *Request) ([]string, error) {
	data := make([]string, 0, len(req.Response))
	for i, t := range req.Response {
		v := t.Simulate(s.rng)
		text, err := t.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("simulate response %d (%s): %w", i, t, err)
		}
		data = append(data, text)
	}
	return data, nil
}

// record appends a trace entry when tracing is enabled. Must hold s.mu.
func (s *Simulated) record(op string, req *Request, response string, cached bool) {
	if !s.tracing {
		return
	}
	s.trace = append(s.trace, TraceEntry{
		ID:       uuid.New(),
		Op:       op,
		Key:      req.Key,
		Message:  req.Message,
		Response: response,
		Cached:   cached,
		Time:     time.Now(),
	})
}
