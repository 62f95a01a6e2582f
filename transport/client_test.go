// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"

	"github.com/fedesog/webdriver/wire"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	c, err := NewClient(srv.URL+"/wd/hub/", opts...)
	require.NoError(t, err)
	return c
}

func TestRoundTripEncodesRequest(t *testing.T) {
	var gotMethod, gotPath, gotBody, gotType, gotAccept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotType, gotAccept = r.Header.Get("Content-Type"), r.Header.Get("Accept")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		io.WriteString(w, `{"value":null}`)
	})

	resp, err := c.RoundTrip(context.Background(), wire.Request{
		Command:   wire.NavigateTo,
		SessionID: "s1",
		Body:      wire.Params{"url": "https://example.test"},
	})
	require.NoError(t, err)
	assert.Equal(t, "null", string(resp.Value))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/wd/hub/session/s1/url", gotPath)
	assert.JSONEq(t, `{"url":"https://example.test"}`, gotBody)
	assert.Equal(t, "application/json;charset=utf-8", gotType)
	assert.Equal(t, "application/json", gotAccept)
}

func TestRoundTripGetHasNoBody(t *testing.T) {
	var gotLen int64 = -2
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLen = r.ContentLength
		assert.Empty(t, r.Header.Get("Content-Type"))
		io.WriteString(w, `{"value":"title"}`)
	})
	_, err := c.RoundTrip(context.Background(), wire.Request{Command: wire.GetTitle, SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), gotLen)
}

func TestRoundTripProtocolError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"value":{"error":"no such element","message":"#missing","stacktrace":""}}`)
	})
	_, err := c.RoundTrip(context.Background(), wire.Request{Command: wire.FindElement, SessionID: "s1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, wire.NoSuchElement)
	assert.False(t, IsTransport(err))
}

func TestRoundTripInvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>not webdriver</html>`)
	})
	_, err := c.RoundTrip(context.Background(), wire.Request{Command: wire.Status})
	assert.ErrorIs(t, err, wire.ErrInvalidResponse)
}

func TestRoundTripNoRetry(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"value":{"error":"unknown error","message":"flaky"}}`)
	})
	_, err := c.RoundTrip(context.Background(), wire.Request{Command: wire.ElementClick, SessionID: "s", ElementID: "e"})
	assert.ErrorIs(t, err, wire.UnknownError)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestRoundTripLocalTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithCommandTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.RoundTrip(context.Background(), wire.Request{Command: wire.GetTitle, SessionID: "s"})
	require.Error(t, err)
	var te *Error
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Timeout())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRoundTripConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c, err := NewClient("http://" + addr)
	require.NoError(t, err)
	_, err = c.RoundTrip(context.Background(), wire.Request{Command: wire.Status})
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	var te *Error
	require.True(t, errors.As(err, &te))
	assert.False(t, te.Timeout())
	assert.Equal(t, "status", te.Op)
}

func TestRoundTripEncodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.RoundTrip(context.Background(), wire.Request{Command: wire.GetTitle})
	assert.Error(t, err)
}

func TestRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"value":{"ready":true}}`)
	}, WithRateLimit(rate.Every(30*time.Millisecond), 1))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.RoundTrip(context.Background(), wire.Request{Command: wire.Status})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestNewClientValidatesURL(t *testing.T) {
	_, err := NewClient("ftp://example.test")
	assert.Error(t, err)
	_, err = NewClient("://bad")
	assert.Error(t, err)

	c, err := NewClient("http://127.0.0.1:4444/")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:4444", c.BaseURL())
}

func TestDefaultCommandTimeout(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:4444")
	require.NoError(t, err)
	assert.Equal(t, DefaultCommandTimeout, c.CommandTimeout())

	c, err = NewClient("http://127.0.0.1:4444", WithCommandTimeout(0))
	require.NoError(t, err)
	assert.Equal(t, DefaultCommandTimeout, c.CommandTimeout())

	c, err = NewClient("http://127.0.0.1:4444", WithCommandTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.CommandTimeout())
}

func TestRoundTripBoundedWithoutDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c.timeout = 50 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		_, err := c.RoundTrip(context.Background(), wire.Request{Command: wire.GetTitle, SessionID: "s"})
		done <- err
	}()
	select {
	case err := <-done:
		var te *Error
		require.True(t, errors.As(err, &te))
		assert.True(t, te.Timeout())
	case <-time.After(5 * time.Second):
		t.Fatal("round trip without a deadline did not return")
	}
}

func TestPostRedirectFollowedByGet(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodPost {
			http.Redirect(w, r, "/wd/hub/session/s1", http.StatusSeeOther)
			return
		}
		io.WriteString(w, `{"value":{"sessionId":"s1","capabilities":{}}}`)
	})

	resp, err := c.RoundTrip(context.Background(), wire.Request{
		Command: wire.NewSession,
		Body:    wire.Params{"capabilities": wire.Params{}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessionId":"s1","capabilities":{}}`, string(resp.Value))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"POST /wd/hub/session", "GET /wd/hub/session/s1"}, methods)
}
