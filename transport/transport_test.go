package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moffa90/go-slave/protocol"
	"github.com/moffa90/go-slave/types"
)

// MockDevice simulates an instrument byte stream for testing
type MockDevice struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	readErr  error
	writeErr error
}

func NewMockDevice() *MockDevice {
	return &MockDevice{
		readBuf:  new(bytes.Buffer),
		writeBuf: new(bytes.Buffer),
	}
}

func (m *MockDevice) Read(p []byte) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	return m.readBuf.Read(p)
}

func (m *MockDevice) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.writeBuf.Write(p)
}

func (m *MockDevice) AddResponse(text string) {
	m.readBuf.WriteString(text)
}

// blockingTransport waits on release before answering.
type blockingTransport struct {
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingTransport) Ask(ctx context.Context, req *Request) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-b.release
	return "ok", nil
}

func (b *blockingTransport) Write(ctx context.Context, req *Request) error {
	_, err := b.Ask(ctx, req)
	return err
}

// overlapTransport fails if two calls run at the same time.
type overlapTransport struct {
	active int32
	mu     sync.Mutex
	failed bool
}

func (o *overlapTransport) Ask(ctx context.Context, req *Request) (string, error) {
	o.mu.Lock()
	o.active++
	if o.active > 1 {
		o.failed = true
	}
	o.mu.Unlock()

	time.Sleep(time.Millisecond)

	o.mu.Lock()
	o.active--
	o.mu.Unlock()
	return "ok", nil
}

func (o *overlapTransport) Write(ctx context.Context, req *Request) error {
	_, err := o.Ask(ctx, req)
	return err
}

func iecRequest(header, message string) *Request {
	return &Request{Header: header, Message: message, Config: protocol.IEC60488()}
}

func TestStreamAsk(t *testing.T) {
	tests := []struct {
		name    string
		cfg     protocol.Config
		reply   string
		want    string
		wantErr bool
		errMsg  string
	}{
		{
			name:  "newline terminated",
			cfg:   protocol.IEC60488(),
			reply: "1.5,2.5\n",
			want:  "1.5,2.5",
		},
		{
			name:  "null terminated with status bytes",
			cfg:   protocol.SignalRecovery(),
			reply: "12 34\x00\x01\x00",
			want:  "12 34",
		},
		{
			name:    "missing status bytes",
			cfg:     protocol.SignalRecovery(),
			reply:   "12 34\x00\x01",
			wantErr: true,
			errMsg:  "read status bytes",
		},
		{
			name:  "multi byte terminator",
			cfg:   protocol.Config{ResponseTerminator: "\r\n"},
			reply: "a\rb\r\n",
			want:  "a\rb",
		},
		{
			name:  "leaves following reply buffered",
			cfg:   protocol.IEC60488(),
			reply: "first\nsecond\n",
			want:  "first",
		},
		{
			name:    "eof before terminator",
			cfg:     protocol.IEC60488(),
			reply:   "partial",
			wantErr: true,
			errMsg:  "unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := NewMockDevice()
			dev.AddResponse(tt.reply)
			s := NewStream(dev)

			got, err := s.Ask(context.Background(), &Request{Message: "Q?\n", Config: tt.cfg})

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				if !IsTransportError(err) {
					t.Errorf("error type = %T, want *TransportError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Ask() = %q, want %q", got, tt.want)
			}
			if dev.writeBuf.String() != "Q?\n" {
				t.Errorf("written = %q, want %q", dev.writeBuf.String(), "Q?\n")
			}
		})
	}
}

func TestStreamWrite(t *testing.T) {
	dev := NewMockDevice()
	s := NewStream(dev)

	if err := s.Write(context.Background(), iecRequest("POS", "POS 8\n")); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	if dev.writeBuf.String() != "POS 8\n" {
		t.Errorf("written = %q, want %q", dev.writeBuf.String(), "POS 8\n")
	}
}

func TestStreamSignalRecovery(t *testing.T) {
	dev := NewMockDevice()
	dev.AddResponse("1.0\x00\x01\x00")
	dev.AddResponse("\x00\x21\x00")
	dev.AddResponse("2.0\x00\x01\x04")

	type status struct {
		header string
		bytes  []byte
	}
	var got []status
	s := NewStream(dev, WithStatusHandler(func(req *Request, b []byte) {
		got = append(got, status{req.Header, append([]byte(nil), b...)})
	}))

	cfg := protocol.SignalRecovery()
	ctx := context.Background()

	first, err := s.Ask(ctx, &Request{Header: "X", Message: "X\x00", Config: cfg})
	if err != nil || first != "1.0" {
		t.Fatalf("first Ask() = %q, %v, want \"1.0\"", first, err)
	}
	if err := s.Write(ctx, &Request{Header: "SEN", Message: "SEN 3\x00", Config: cfg}); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	second, err := s.Ask(ctx, &Request{Header: "Y", Message: "Y\x00", Config: cfg})
	if err != nil || second != "2.0" {
		t.Fatalf("second Ask() = %q, %v, want \"2.0\"", second, err)
	}

	want := []status{
		{"X", []byte{0x01, 0x00}},
		{"SEN", []byte{0x21, 0x00}},
		{"Y", []byte{0x01, 0x04}},
	}
	if len(got) != len(want) {
		t.Fatalf("status calls = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].header != want[i].header || !bytes.Equal(got[i].bytes, want[i].bytes) {
			t.Errorf("status[%d] = %q %v, want %q %v", i, got[i].header, got[i].bytes, want[i].header, want[i].bytes)
		}
	}
}

func TestStreamIsobus(t *testing.T) {
	cfg := protocol.OxfordIsobus(0)
	ctx := context.Background()

	t.Run("write echo consumed", func(t *testing.T) {
		dev := NewMockDevice()
		dev.AddResponse("T\r")
		dev.AddResponse("R+0012\r")
		s := NewStream(dev)

		if err := s.Write(ctx, &Request{Header: "T", Message: "T5\r", Config: cfg}); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}
		got, err := s.Ask(ctx, &Request{Header: "R0", Message: "R0\r", Config: cfg})
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if got != "R+0012" {
			t.Errorf("Ask() = %q, want %q", got, "R+0012")
		}
	})

	t.Run("rejected write", func(t *testing.T) {
		dev := NewMockDevice()
		dev.AddResponse("?T5\r")

		err := NewStream(dev).Write(ctx, &Request{Header: "T", Message: "T5\r", Config: cfg})
		if !protocol.IsDeviceError(err) {
			t.Errorf("error = %v, want *protocol.DeviceError", err)
		}
	})

	t.Run("write returning data", func(t *testing.T) {
		dev := NewMockDevice()
		dev.AddResponse("T5\r")

		err := NewStream(dev).Write(ctx, &Request{Header: "T", Message: "T5\r", Config: cfg})
		if !types.IsParseError(err) {
			t.Errorf("error = %v, want *types.ParseError", err)
		}
	})

	t.Run("no echo", func(t *testing.T) {
		dev := NewMockDevice()
		silent := protocol.OxfordIsobusNoEcho(0)

		if err := NewStream(dev).Write(ctx, &Request{Header: "T", Message: "$T5\r", Config: silent}); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}
		if dev.writeBuf.String() != "$T5\r" {
			t.Errorf("written = %q, want %q", dev.writeBuf.String(), "$T5\r")
		}
	})
}

func TestStreamErrors(t *testing.T) {
	boom := errors.New("device unplugged")

	t.Run("write error", func(t *testing.T) {
		dev := NewMockDevice()
		dev.writeErr = boom
		err := NewStream(dev).Write(context.Background(), iecRequest("X", "X\n"))

		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("error = %v, want *TransportError", err)
		}
		if te.Op != OpWrite {
			t.Errorf("Op = %q, want %q", te.Op, OpWrite)
		}
		if !errors.Is(err, boom) {
			t.Error("errors.Is(err, boom) = false, want true")
		}
	})

	t.Run("read error", func(t *testing.T) {
		dev := NewMockDevice()
		dev.readErr = boom
		_, err := NewStream(dev).Ask(context.Background(), iecRequest("X?", "X?\n"))
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want wrapped %v", err, boom)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		dev := NewMockDevice()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewStream(dev).Ask(ctx, iecRequest("X?", "X?\n"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if dev.writeBuf.Len() != 0 {
			t.Errorf("written = %q, want nothing", dev.writeBuf.String())
		}
	})

	t.Run("response too large", func(t *testing.T) {
		dev := NewMockDevice()
		dev.AddResponse(strings.Repeat("x\n", 32) + "\r\n")
		req := &Request{Message: "X?\r\n", Config: protocol.Config{ResponseTerminator: "\r\n"}}

		_, err := NewStream(dev, WithMaxResponseSize(16)).Ask(context.Background(), req)
		if !errors.Is(err, ErrResponseTooLarge) {
			t.Errorf("error = %v, want ErrResponseTooLarge", err)
		}
	})
}

func TestNewStreamPanicsOnNil(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewStream(nil) did not panic")
		}
	}()
	NewStream(nil)
}

func TestLockedSerializes(t *testing.T) {
	inner := &overlapTransport{}
	var shared sync.Mutex
	a := NewLocked(inner, &shared)
	b := NewLocked(inner, &shared)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = a.Ask(context.Background(), iecRequest("A?", "A?\n"))
		}()
		go func() {
			defer wg.Done()
			_ = b.Write(context.Background(), iecRequest("B", "B 1\n"))
		}()
	}
	wg.Wait()

	if inner.failed {
		t.Error("calls overlapped through shared lock")
	}
}

func TestAsync(t *testing.T) {
	t.Run("passes results through", func(t *testing.T) {
		dev := NewMockDevice()
		dev.AddResponse("42\n")
		a := NewAsync(NewStream(dev))
		defer a.Close()

		got, err := a.Ask(context.Background(), iecRequest("N?", "N?\n"))
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if got != "42" {
			t.Errorf("Ask() = %q, want %q", got, "42")
		}
	})

	t.Run("cancel while device busy", func(t *testing.T) {
		inner := &blockingTransport{release: make(chan struct{})}
		a := NewAsync(inner)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := a.Ask(ctx, iecRequest("SLOW?", "SLOW?\n"))
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error = %v, want context.DeadlineExceeded", err)
		}
		if !IsTransportError(err) {
			t.Errorf("error type = %T, want *TransportError", err)
		}

		close(inner.release)
		a.Close()
	})

	t.Run("closed", func(t *testing.T) {
		a := NewAsync(&overlapTransport{})
		a.Close()

		err := a.Write(context.Background(), iecRequest("X", "X\n"))
		if !errors.Is(err, ErrClosed) {
			t.Errorf("error = %v, want ErrClosed", err)
		}
	})
}

func TestSimulatedQueryOnly(t *testing.T) {
	sim := NewSimulated(WithSeed(1))
	req := &Request{
		Key:       "rand",
		Header:    "RAND?",
		Message:   "RAND?\n",
		Response:  []types.Type{types.Integer{Min: types.Bound(0), Max: types.Bound(1 << 30)}},
		Config:    protocol.IEC60488(),
		Queryable: true,
	}

	first, err := sim.Ask(context.Background(), req)
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}
	second, err := sim.Ask(context.Background(), req)
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}

	if first == second {
		t.Errorf("query-only replies repeated: %q", first)
	}
	if _, ok := sim.Stored("rand"); ok {
		t.Error("query-only command was stored")
	}
}

func TestSimulatedReadWrite(t *testing.T) {
	sim := NewSimulated(WithSeed(7))
	boolean := types.Boolean{}
	query := &Request{
		Key:       "enabled",
		Header:    "ENABLED?",
		Message:   "ENABLED?\n",
		Response:  []types.Type{boolean},
		Config:    protocol.IEC60488(),
		Queryable: true,
		Writable:  true,
	}
	write := &Request{
		Key:       "enabled",
		Header:    "ENABLED",
		Message:   "ENABLED 0\n",
		Data:      []string{"0"},
		Config:    protocol.IEC60488(),
		Queryable: true,
		Writable:  true,
	}

	before, err := sim.Ask(context.Background(), query)
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}
	again, _ := sim.Ask(context.Background(), query)
	if before != again {
		t.Errorf("unwritten value changed between queries: %q then %q", before, again)
	}

	if err := sim.Write(context.Background(), write); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err := sim.Ask(context.Background(), query)
		if err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
		if got != "0\n" {
			t.Errorf("Ask() #%d = %q, want %q", i, got, "0\n")
		}
	}
}

func TestSimulatedWriteOnly(t *testing.T) {
	sim := NewSimulated(WithTrace(true))
	req := &Request{
		Key:      "reset",
		Header:   "*RST",
		Message:  "*RST\n",
		Config:   protocol.IEC60488(),
		Writable: true,
	}

	if err := sim.Write(context.Background(), req); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	if _, ok := sim.Stored("reset"); ok {
		t.Error("write-only command was stored")
	}

	trace := sim.Trace()
	if len(trace) != 1 {
		t.Fatalf("trace length = %d, want 1", len(trace))
	}
	if trace[0].Op != OpWrite || trace[0].Message != "*RST\n" {
		t.Errorf("trace[0] = %+v, want write of *RST", trace[0])
	}
}

func TestSimulatedFormatsWithConfig(t *testing.T) {
	sim := NewSimulated(WithSeed(3))
	req := &Request{
		Key:       "snap",
		Header:    "SNAP?",
		Response:  []types.Type{types.Float{}, types.Float{}, types.Integer{}},
		Config:    protocol.SignalRecovery(),
		Queryable: true,
	}

	reply, err := sim.Ask(context.Background(), req)
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}

	tokens, err := protocol.ParseResponse(req.Config, req.Header, reply, len(req.Response))
	if err != nil {
		t.Fatalf("ParseResponse(%q) unexpected error: %v", reply, err)
	}
	for i, typ := range req.Response {
		if _, err := typ.Decode(tokens[i]); err != nil {
			t.Errorf("Decode(%q) with %s: %v", tokens[i], typ, err)
		}
	}
}

func TestSimulatedTraceAndReset(t *testing.T) {
	sim := NewSimulated(WithSeed(1), WithTrace(true))
	req := &Request{
		Key:       "pos",
		Header:    "POS?",
		Message:   "POS?\n",
		Response:  []types.Type{types.Integer{}},
		Config:    protocol.IEC60488(),
		Queryable: true,
		Writable:  true,
	}

	_, _ = sim.Ask(context.Background(), req)
	_, _ = sim.Ask(context.Background(), req)

	trace := sim.Trace()
	if len(trace) != 2 {
		t.Fatalf("trace length = %d, want 2", len(trace))
	}
	if trace[0].Cached {
		t.Error("first ask reported as cached")
	}
	if !trace[1].Cached {
		t.Error("second ask not reported as cached")
	}
	if trace[0].ID == trace[1].ID {
		t.Error("trace ids are not unique")
	}

	sim.Reset()
	if len(sim.Trace()) != 0 {
		t.Error("trace not cleared by Reset")
	}
	if _, ok := sim.Stored("pos"); ok {
		t.Error("store not cleared by Reset")
	}
}

func TestSimulatedCancelled(t *testing.T) {
	sim := NewSimulated()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Ask(ctx, iecRequest("X?", "X?\n"))
	if !IsTransportError(err) || !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want TransportError wrapping context.Canceled", err)
	}
}

func TestTransportError(t *testing.T) {
	err := &TransportError{Op: OpAsk, Err: io.ErrUnexpectedEOF}

	if !strings.Contains(err.Error(), "transport ask") {
		t.Errorf("Error() = %q, want op in message", err.Error())
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("Unwrap does not expose the cause")
	}
	if IsTransportError(io.EOF) {
		t.Error("IsTransportError(io.EOF) = true, want false")
	}
}
