// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fedesog/webdriver/transport"
	"github.com/fedesog/webdriver/wire"
)

const defaultReleaseTimeout = 10 * time.Second

//Remote is a WebDriver remote end reachable over HTTP (a Selenium server,
//chromedriver, geckodriver...). It is safe for concurrent use; every Session
//it creates runs its commands on its own lane.
type Remote struct {
	client         *transport.Client
	logger         *zap.Logger
	releaseTimeout time.Duration
}

type remoteOptions struct {
	transport      []transport.Option
	logger         *zap.Logger
	releaseTimeout time.Duration
}

//Option configures a Remote.
type Option func(*remoteOptions)

//WithLogger sets the logger used by the Remote and its sessions.
func WithLogger(l *zap.Logger) Option {
	return func(o *remoteOptions) {
		o.logger = l
		o.transport = append(o.transport, transport.WithLogger(l))
	}
}

//WithHTTPClient replaces the HTTP client used to reach the remote end.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *remoteOptions) { o.transport = append(o.transport, transport.WithHTTPClient(hc)) }
}

//WithCommandTimeout bounds commands whose context has no deadline. Without
//it, or with a non-positive d, the bound is transport.DefaultCommandTimeout.
func WithCommandTimeout(d time.Duration) Option {
	return func(o *remoteOptions) { o.transport = append(o.transport, transport.WithCommandTimeout(d)) }
}

//WithRateLimit throttles requests sent to the remote end across all sessions.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *remoteOptions) { o.transport = append(o.transport, transport.WithRateLimit(limit, burst)) }
}

//WithReleaseTimeout bounds the close attempted by Session.Release.
func WithReleaseTimeout(d time.Duration) Option {
	return func(o *remoteOptions) { o.releaseTimeout = d }
}

//NewRemote returns a Remote for the endpoint at url, for example
//"http://127.0.0.1:4444" or "http://127.0.0.1:4444/wd/hub".
func NewRemote(url string, opts ...Option) (*Remote, error) {
	o := remoteOptions{logger: zap.NewNop(), releaseTimeout: defaultReleaseTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	c, err := transport.NewClient(url, o.transport...)
	if err != nil {
		return nil, fmt.Errorf("webdriver: %w", err)
	}
	return &Remote{client: c, logger: o.logger, releaseTimeout: o.releaseTimeout}, nil
}

//URL returns the base URL of the remote end.
func (r *Remote) URL() string { return r.client.BaseURL() }

//Query the server's status.
func (r *Remote) Status(ctx context.Context) (*Status, error) {
	resp, err := r.client.RoundTrip(ctx, wire.Request{Command: wire.Status})
	if err != nil {
		return nil, err
	}
	status := new(Status)
	if err := wire.Unmarshal(resp.Value, status); err != nil {
		return nil, err
	}
	return status, nil
}

type newSessionValue struct {
	SessionID    string       `json:"sessionId"`
	Capabilities Capabilities `json:"capabilities"`
}

//Create a new session. The requested capabilities are sent as alwaysMatch;
//the capabilities returned by the remote end replace them.
func (r *Remote) NewSession(ctx context.Context, caps Capabilities) (*Session, error) {
	if caps == nil {
		caps = Capabilities{}
	}
	p := wire.Params{
		"capabilities": wire.Params{
			"alwaysMatch": caps,
			"firstMatch":  []interface{}{wire.Params{}},
		},
		"desiredCapabilities": caps,
	}
	lane := transport.NewLane(r.client)
	resp, err := lane.Do(ctx, wire.Request{Command: wire.NewSession, Body: p})
	if err != nil {
		lane.Stop()
		return nil, err
	}

	var v newSessionValue
	if err := wire.Unmarshal(resp.Value, &v); err != nil {
		lane.Stop()
		return nil, err
	}
	id := v.SessionID
	if id == "" {
		id = resp.SessionID
	}
	if id == "" {
		lane.Stop()
		return nil, &wire.DecodeError{Body: string(resp.Value), Err: fmt.Errorf("%w: missing session id", wire.ErrInvalidResponse)}
	}
	negotiated := v.Capabilities
	if negotiated == nil && resp.SessionID != "" {
		// legacy remote ends return the capabilities as the value itself
		negotiated = Capabilities{}
		if err := wire.Unmarshal(resp.Value, &negotiated); err != nil {
			negotiated = nil
		}
	}
	if negotiated == nil {
		negotiated = Capabilities{}
	}

	s := newSession(r, id, negotiated, lane)
	s.logger.Debug("session created", zap.String("browser", negotiated.BrowserName()))
	return s, nil
}

//WithSession creates a session, runs fn and releases the session on every
//exit path of fn, including a panic. Release issues no DELETE when fn
//already closed the session.
func (r *Remote) WithSession(ctx context.Context, caps Capabilities, fn func(*Session) error) error {
	s, err := r.NewSession(ctx, caps)
	if err != nil {
		return err
	}
	defer s.Release(ctx)
	return fn(s)
}
