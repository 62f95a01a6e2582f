// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fedesog/webdriver/transport"
	"github.com/fedesog/webdriver/wire"
)

type lifecycle int

const (
	stateOpen lifecycle = iota
	// a close attempt failed in transport; one more attempt is allowed
	stateClosing
	stateClosed
)

const maxCloseAttempts = 2

//A session.
//
//Commands of one session are sent one at a time, in the order they were
//issued; distinct sessions run concurrently. A Session may be shared between
//goroutines.
type Session struct {
	id             string
	caps           Capabilities
	remote         *Remote
	lane           *transport.Lane
	logger         *zap.Logger
	releaseTimeout time.Duration

	mu            sync.Mutex
	state         lifecycle
	closeAttempts int
	closing       bool
	closeErr      error
	released      bool
	ctx           tracker
}

func newSession(r *Remote, id string, caps Capabilities, lane *transport.Lane) *Session {
	return &Session{
		id:             id,
		caps:           caps,
		remote:         r,
		lane:           lane,
		logger:         r.logger.Named("session").With(zap.String("session_id", id)),
		releaseTimeout: r.releaseTimeout,
	}
}

//ID returns the id assigned by the remote end.
func (s *Session) ID() string { return s.id }

//Retrieve the capabilities of the session as negotiated by the remote end.
//The returned map is a copy.
func (s *Session) Capabilities() Capabilities { return s.caps.clone() }

//Context returns a snapshot of the tracked browsing context.
func (s *Session) Context() Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.snapshot()
}

//Closed reports whether a close was attempted.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != stateOpen
}

func (s *Session) check(c wire.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateOpen {
		return ErrSessionClosed
	}
	if s.ctx.alert && !isAlertCommand(c) {
		return ErrAlertOpen
	}
	return nil
}

// do sends one command of this session and resynchronizes the tracker on
// failure. It returns the raw success value.
func (s *Session) do(ctx context.Context, req wire.Request) (json.RawMessage, error) {
	if err := s.check(req.Command); err != nil {
		return nil, err
	}
	req.SessionID = s.id
	resp, err := s.lane.Do(ctx, req)
	if err != nil {
		s.mu.Lock()
		s.ctx.observe(req.Command, err)
		s.mu.Unlock()
		return nil, err
	}
	return resp.Value, nil
}

func (s *Session) update(fn func(t *tracker)) {
	s.mu.Lock()
	fn(&s.ctx)
	s.mu.Unlock()
}

func (s *Session) owns(e *Element) error {
	if e == nil || e.s != s {
		return ErrForeignHandle
	}
	return nil
}

func (s *Session) getString(ctx context.Context, req wire.Request) (string, error) {
	v, err := s.do(ctx, req)
	if err != nil {
		return "", err
	}
	var str string
	err = wire.Unmarshal(v, &str)
	return str, err
}

//Close deletes the session on the remote end. Calling it again after a
//successful close does nothing. If the first attempt fails in transport
//(connection error, local timeout) the next call tries once more; after that,
//or after the remote end reported an error, the session stays closed and
//Close returns that error. Once Close was called every other command fails
//with ErrSessionClosed.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.state == stateClosed {
		err := s.closeErr
		s.mu.Unlock()
		return err
	}
	if s.closing {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.closing = true
	s.state = stateClosing
	s.closeAttempts++
	attempt := s.closeAttempts
	s.mu.Unlock()

	_, err := s.lane.Do(ctx, wire.Request{Command: wire.DeleteSession, SessionID: s.id})

	s.mu.Lock()
	s.closing = false
	s.closeErr = err
	final := err == nil || !transport.IsTransport(err) || attempt >= maxCloseAttempts
	if final {
		s.state = stateClosed
	}
	s.mu.Unlock()

	if final {
		s.lane.Stop()
	}
	if err != nil {
		s.logger.Debug("close failed", zap.Int("attempt", attempt), zap.Error(err))
		return err
	}
	s.logger.Debug("session closed")
	return nil
}

//Release is the scope-exit hook of a session: it closes the session unless
//Close was already called, and logs instead of returning any failure. It
//ignores the cancellation of ctx and bounds the close by the release timeout
//of the Remote. A failed close is not retried. It is meant to be deferred.
func (s *Session) Release(ctx context.Context) {
	s.mu.Lock()
	skip := s.released || s.closeAttempts > 0
	s.released = true
	s.mu.Unlock()
	if skip {
		s.abandon()
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.releaseTimeout)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		s.logger.Warn("release: closing session failed", zap.Error(err))
		s.abandon()
	}
}

// abandon gives up on a close that failed in transport and will not be
// retried, keeping its error.
func (s *Session) abandon() {
	s.mu.Lock()
	stop := s.state == stateClosing && !s.closing
	if stop {
		s.state = stateClosed
	}
	s.mu.Unlock()
	if stop {
		s.lane.Stop()
	}
}

//Navigate to a new URL.
func (s *Session) Get(ctx context.Context, url string) error {
	return s.navigate(ctx, wire.Request{Command: wire.NavigateTo, Body: wire.Params{"url": url}})
}

//Navigate backwards in the browser history, if possible.
func (s *Session) Back(ctx context.Context) error {
	return s.navigate(ctx, wire.Request{Command: wire.Back})
}

//Navigate forwards in the browser history, if possible.
func (s *Session) Forward(ctx context.Context) error {
	return s.navigate(ctx, wire.Request{Command: wire.Forward})
}

//Refresh the current page.
func (s *Session) Refresh(ctx context.Context) error {
	return s.navigate(ctx, wire.Request{Command: wire.Refresh})
}

// navigation always lands in the top-level browsing context
func (s *Session) navigate(ctx context.Context, req wire.Request) error {
	if _, err := s.do(ctx, req); err != nil {
		return err
	}
	s.update((*tracker).clearFrames)
	return nil
}

//Retrieve the URL of the current page.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	return s.getString(ctx, wire.Request{Command: wire.GetCurrentURL})
}

//Get the current page title.
func (s *Session) Title(ctx context.Context) (string, error) {
	return s.getString(ctx, wire.Request{Command: wire.GetTitle})
}

//Get the current page source.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	return s.getString(ctx, wire.Request{Command: wire.GetPageSource})
}

//Inject a snippet of JavaScript into the page for execution in the context
//of the currently selected frame. The executed script is assumed to be
//synchronous and the result of evaluating the script is returned as raw JSON.
//Elements of this session may be passed in args.
func (s *Session) ExecuteScript(ctx context.Context, script string, args ...interface{}) (json.RawMessage, error) {
	return s.execute(ctx, wire.ExecuteScript, script, args)
}

//Inject a snippet of JavaScript into the page for asynchronous execution;
//the script signals completion by calling the callback passed as its last
//argument.
func (s *Session) ExecuteAsyncScript(ctx context.Context, script string, args ...interface{}) (json.RawMessage, error) {
	return s.execute(ctx, wire.ExecuteAsyncScript, script, args)
}

func (s *Session) execute(ctx context.Context, c wire.Command, script string, args []interface{}) (json.RawMessage, error) {
	if args == nil {
		args = []interface{}{}
	}
	for _, a := range args {
		if err := s.checkArg(a); err != nil {
			return nil, err
		}
	}
	return s.do(ctx, wire.Request{Command: c, Body: wire.Params{"script": script, "args": args}})
}

func (s *Session) checkArg(a interface{}) error {
	switch t := a.(type) {
	case *Element:
		if err := s.owns(t); err != nil {
			return err
		}
		return t.checkStale()
	case []interface{}:
		for _, x := range t {
			if err := s.checkArg(x); err != nil {
				return err
			}
		}
	case map[string]interface{}:
		for _, x := range t {
			if err := s.checkArg(x); err != nil {
				return err
			}
		}
	}
	return nil
}

//Get the timeouts of the session.
func (s *Session) Timeouts(ctx context.Context) (Timeouts, error) {
	var t Timeouts
	v, err := s.do(ctx, wire.Request{Command: wire.GetTimeouts})
	if err != nil {
		return t, err
	}
	err = wire.Unmarshal(v, &t)
	return t, err
}

//Configure the amount of time that a particular type of operation can
//execute for before they are aborted and a Timeout error is returned to the
//client.
func (s *Session) SetTimeouts(ctx context.Context, t Timeouts) error {
	_, err := s.do(ctx, wire.Request{Command: wire.SetTimeouts, Body: t})
	return err
}

//Set the amount of time the driver should wait when searching for elements.
func (s *Session) SetTimeoutsImplicitWait(ctx context.Context, d time.Duration) error {
	return s.setTimeout(ctx, "implicit", d)
}

//Set the amount of time that asynchronous and synchronous scripts may run.
func (s *Session) SetTimeoutsScript(ctx context.Context, d time.Duration) error {
	return s.setTimeout(ctx, "script", d)
}

//Set the amount of time to wait for a page load to complete.
func (s *Session) SetTimeoutsPageLoad(ctx context.Context, d time.Duration) error {
	return s.setTimeout(ctx, "pageLoad", d)
}

func (s *Session) setTimeout(ctx context.Context, typ string, d time.Duration) error {
	_, err := s.do(ctx, wire.Request{Command: wire.SetTimeouts, Body: wire.Params{typ: d.Milliseconds()}})
	return err
}

//Take a screenshot of the current page, returned as PNG data.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	v, err := s.do(ctx, wire.Request{Command: wire.TakeScreenshot})
	if err != nil {
		return nil, err
	}
	return wire.DecodeBase64(v)
}
