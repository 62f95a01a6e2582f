// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"sync"

	"github.com/fedesog/webdriver/wire"
)

// Call is a command submitted to a Lane.
type Call struct {
	Request wire.Request

	ctx  context.Context
	resp *wire.Response
	err  error
	done chan struct{}
}

func newCall(ctx context.Context, req wire.Request) *Call {
	return &Call{Request: req, ctx: ctx, done: make(chan struct{})}
}

func (c *Call) resolve(resp *wire.Response, err error) {
	c.resp, c.err = resp, err
	close(c.done)
}

// Done is closed when the response has been decoded.
func (c *Call) Done() <-chan struct{} { return c.done }

// Result returns the outcome. It must only be called after Done is closed.
func (c *Call) Result() (*wire.Response, error) { return c.resp, c.err }

// Wait blocks until the call completes or ctx is done. Giving up on a call
// that was already sent leaves its outcome on the remote end unknown.
func (c *Call) Wait(ctx context.Context) (*wire.Response, error) {
	select {
	case <-c.done:
		return c.resp, c.err
	case <-ctx.Done():
		return nil, &Error{Op: c.Request.Command.String(), Err: ctx.Err()}
	}
}

// Lane serializes the commands of one session on a dedicated goroutine: the
// next call is sent only after the previous response was read or abandoned.
type Lane struct {
	rt RoundTripper

	mu      sync.Mutex
	queue   []*Call
	stopped bool

	wake chan struct{}
	done chan struct{}
}

// NewLane starts a lane sending through rt.
func NewLane(rt RoundTripper) *Lane {
	l := &Lane{
		rt:   rt,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Lane) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Lane) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.stopped {
			l.mu.Unlock()
			<-l.wake
			l.mu.Lock()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		call := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		if err := call.ctx.Err(); err != nil {
			// abandoned before it was sent
			call.resolve(nil, &Error{Op: call.Request.Command.String(), Err: err})
			continue
		}
		call.resolve(l.rt.RoundTrip(call.ctx, call.Request))
	}
}

// Submit queues req and returns without waiting for the remote end.
func (l *Lane) Submit(ctx context.Context, req wire.Request) *Call {
	call := newCall(ctx, req)
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		call.resolve(nil, &Error{Op: req.Command.String(), Err: ErrLaneStopped})
		return call
	}
	l.queue = append(l.queue, call)
	l.mu.Unlock()
	l.signal()
	return call
}

// Do submits req and waits for its response.
func (l *Lane) Do(ctx context.Context, req wire.Request) (*wire.Response, error) {
	return l.Submit(ctx, req).Wait(ctx)
}

// Stop rejects further calls, lets queued ones finish and waits for the
// lane's goroutine to exit. It is safe to call more than once.
func (l *Lane) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.signal()
	<-l.done
}
