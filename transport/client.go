// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport performs WebDriver commands over HTTP.
//
// Client.RoundTrip sends one encoded command and decodes the reply. A Lane
// owns a goroutine dedicated to one session and runs that session's commands
// strictly one after another; Lane.Submit returns a *Call immediately, and
// Lane.Do is Submit followed by Wait.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fedesog/webdriver/wire"
)

// DefaultCommandTimeout bounds every command of a Client whose context has
// no deadline, unless WithCommandTimeout sets another bound.
const DefaultCommandTimeout = 60 * time.Second

// RoundTripper executes a single command.
type RoundTripper interface {
	RoundTrip(ctx context.Context, req wire.Request) (*wire.Response, error)
}

// Client talks to one remote end.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	timeout    time.Duration
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithCommandTimeout bounds every command whose context has no deadline.
// A non-positive d keeps DefaultCommandTimeout.
func WithCommandTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit spaces requests to the remote end, e.g. a shared grid.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.limiter = rate.NewLimiter(limit, burst)
		}
	}
}

// NewClient returns a Client for the remote end at baseURL
// (e.g. http://127.0.0.1:4444 or http://grid:4444/wd/hub).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
		timeout:    DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("transport")
	return c, nil
}

// BaseURL returns the remote end's base URL, without trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// CommandTimeout returns the bound applied to commands without a deadline.
func (c *Client) CommandTimeout() time.Duration { return c.timeout }

// RoundTrip encodes req, sends it and decodes the response. It performs
// exactly one HTTP request and never retries.
func (c *Client) RoundTrip(ctx context.Context, req wire.Request) (*wire.Response, error) {
	method, path, body, err := wire.Encode(req)
	if err != nil {
		return nil, err
	}
	u := c.baseURL + path
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Op: req.Command.String(), Method: method, URL: u, Err: err}
		}
	}

	log := c.logger.With(zap.String("request_id", uuid.NewString()), zap.Stringer("command", req.Command))
	log.Debug(">> "+method+" "+u, zap.ByteString("body", body))
	start := time.Now()

	status, buf, err := c.do(ctx, method, u, body)
	if err != nil {
		log.Debug("request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, &Error{Op: req.Command.String(), Method: method, URL: u, Err: err}
	}
	head := string(buf)
	if len(buf) > 1024 {
		head = fmt.Sprintf("%s ...%d more bytes", string(buf[0:1024]), len(buf)-1024)
	}
	log.Debug("<< "+head, zap.Int("status", status), zap.Duration("elapsed", time.Since(start)))

	return wire.Decode(status, buf)
}

func newRequest(ctx context.Context, method, url string, data []byte) (*http.Request, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	request, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if method == http.MethodPost {
		request.Header.Add("Content-Type", "application/json;charset=utf-8")
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Charset", "utf-8")
	return request, nil
}

func (c *Client) do(ctx context.Context, method, url string, data []byte) (int, []byte, error) {
	request, err := newRequest(ctx, method, url, data)
	if err != nil {
		return 0, nil, err
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer response.Body.Close()
	buf, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, err
	}
	return response.StatusCode, buf, nil
}
