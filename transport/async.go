package transport

import (
	"context"
	"sync"
)

type asyncResult struct {
	response string
	err      error
}

type asyncCall struct {
	ctx   context.Context
	req   *Request
	ask   bool
	reply chan asyncResult
}

// Async runs every call of an underlying Transport on a single worker
// goroutine. Callers block on channels instead of on the device, so a
// cancelled context returns immediately even while the device is busy.
// The abandoned exchange still completes on the worker before the next one
// starts.
type Async struct {
	t     Transport
	calls chan asyncCall
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// NewAsync starts a worker for t. Call Close to stop it.
func NewAsync(t Transport) *Async {
	if t == nil {
		panic("transport cannot be nil")
	}

	a := &Async{
		t:     t,
		calls: make(chan asyncCall),
		done:  make(chan struct{}),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *Async) run() {
	defer a.wg.Done()
	for {
		select {
		case c := <-a.calls:
			if err := c.ctx.Err(); err != nil {
				c.reply <- asyncResult{err: err}
				continue
			}
			var res asyncResult
			if c.ask {
				res.response, res.err = a.t.Ask(c.ctx, c.req)
			} else {
				res.err = a.t.Write(c.ctx, c.req)
			}
			c.reply <- res
		case <-a.done:
			return
		}
	}
}

func (a *Async) call(ctx context.Context, req *Request, ask bool) (string, error) {
	op := OpWrite
	if ask {
		op = OpAsk
	}

	c := asyncCall{ctx: ctx, req: req, ask: ask, reply: make(chan asyncResult, 1)}

	select {
	case a.calls <- c:
	case <-ctx.Done():
		return "", wrap(op, ctx.Err())
	case <-a.done:
		return "", wrap(op, ErrClosed)
	}

	select {
	case res := <-c.reply:
		return res.response, wrap(op, res.err)
	case <-ctx.Done():
		return "", wrap(op, ctx.Err())
	}
}

func (a *Async) Ask(ctx context.Context, req *Request) (string, error) {
	return a.call(ctx, req, true)
}

func (a *Async) Write(ctx context.Context, req *Request) error {
	_, err := a.call(ctx, req, false)
	return err
}

// Close stops the worker after any in-flight call finishes.
func (a *Async) Close() error {
	a.once.Do(func() {
		close(a.done)
	})
	a.wg.Wait()
	return nil
}
