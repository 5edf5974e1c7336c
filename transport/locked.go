package transport

import (
	"context"
	"sync"
)

// Locked serializes calls to an underlying Transport. Handles created with
// the same lock never overlap, so several instruments on a shared bus can
// each get their own Locked transport.
type Locked struct {
	t  Transport
	mu sync.Locker
}

// NewLocked wraps t with mu. A nil mu allocates a private mutex.
func NewLocked(t Transport, mu sync.Locker) *Locked {
	if t == nil {
		panic("transport cannot be nil")
	}
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Locked{t: t, mu: mu}
}

// Ask holds the lock for the full write-then-read exchange.
func (l *Locked) Ask(ctx context.Context, req *Request) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Ask(ctx, req)
}

func (l *Locked) Write(ctx context.Context, req *Request) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Write(ctx, req)
}
