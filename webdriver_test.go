// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"image/png"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fedesog/webdriver/internal/fakedriver"
	"github.com/fedesog/webdriver/wire"
)

var (
	remoteURL = flag.String("wdurl", "", "run the end-to-end test against this remote end (for example http://127.0.0.1:9515)")
	pageURL   = flag.String("wdpage", "", "page with an element #title, used with -wdurl")
)

const examplePage = "https://example.test/"

func newFake(t *testing.T, opts ...Option) (*fakedriver.Server, *Remote) {
	t.Helper()
	fake := fakedriver.New(fakedriver.WithLogger(zaptest.NewLogger(t)))
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithCommandTimeout(5 * time.Second)}, opts...)
	r, err := NewRemote(srv.URL, opts...)
	require.NoError(t, err)
	return fake, r
}

func openSession(t *testing.T, r *Remote) *Session {
	t.Helper()
	s, err := r.NewSession(context.Background(), Capabilities{"browserName": "chrome"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Release(context.Background()) })
	return s
}

func openPage(t *testing.T) (*fakedriver.Server, *Session) {
	t.Helper()
	fake, r := newFake(t)
	s := openSession(t, r)
	require.NoError(t, s.Get(context.Background(), examplePage))
	return fake, s
}

func TestStatus(t *testing.T) {
	_, r := newFake(t)
	status, err := r.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Ready)
	require.NotNil(t, status.Build)
	assert.Equal(t, "1.0", status.Build.Version)
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	_, r := newFake(t)

	err := r.WithSession(ctx, Capabilities{"browserName": "chrome"}, func(s *Session) error {
		assert.Equal(t, "chrome", s.Capabilities().BrowserName())
		if err := s.Get(ctx, examplePage); err != nil {
			return err
		}
		title, err := s.Title(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Example Domain", title)

		url, err := s.CurrentURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, examplePage, url)

		el, err := s.FindElement(ctx, By{CSS_Selector, "#title"})
		require.NoError(t, err)
		text, err := el.Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Example Domain", text)

		_, err = s.FindElement(ctx, By{CSS_Selector, "#missing"})
		assert.ErrorIs(t, err, wire.NoSuchElement)
		return nil
	})
	require.NoError(t, err)
}

func TestRealRemoteEnd(t *testing.T) {
	if *remoteURL == "" || *pageURL == "" {
		t.Skip("set -wdurl and -wdpage to run against a real remote end")
	}
	ctx := context.Background()
	r, err := NewRemote(*remoteURL, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	caps := Capabilities{"browserName": "chrome", "goog:chromeOptions": map[string]interface{}{"args": []string{"--headless=new"}}}
	err = r.WithSession(ctx, caps, func(s *Session) error {
		if err := s.Get(ctx, *pageURL); err != nil {
			return err
		}
		el, err := s.FindElement(ctx, By{CSS_Selector, "#title"})
		if err != nil {
			return err
		}
		text, err := el.Text(ctx)
		if err != nil {
			return err
		}
		t.Logf("#title: %q", text)
		img, err := s.Screenshot(ctx)
		if err != nil {
			return err
		}
		_, err = png.Decode(bytes.NewReader(img))
		return err
	})
	require.NoError(t, err)
}

func TestNewSessionNotCreated(t *testing.T) {
	_, r := newFake(t)
	_, err := r.NewSession(context.Background(), Capabilities{"browserName": "unsupported"})
	assert.ErrorIs(t, err, wire.SessionNotCreated)
}

func TestCapabilitiesAreCopied(t *testing.T) {
	_, r := newFake(t)
	s := openSession(t, r)

	caps := s.Capabilities()
	assert.Equal(t, "1.0", caps["browserVersion"])
	assert.Equal(t, "chrome", caps.BrowserName())
	caps["browserName"] = "changed"
	assert.Equal(t, "chrome", s.Capabilities().BrowserName())
}

func TestNewRemoteRejectsBadURL(t *testing.T) {
	_, err := NewRemote("localhost:4444")
	assert.Error(t, err)
}

func TestScreenshot(t *testing.T) {
	_, s := openPage(t)
	img, err := s.Screenshot(context.Background())
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(img))
	assert.NoError(t, err)
}

func TestScripts(t *testing.T) {
	ctx := context.Background()
	_, s := openPage(t)

	v, err := s.ExecuteScript(ctx, "return document.title")
	require.NoError(t, err)
	assert.JSONEq(t, `"Example Domain"`, string(v))

	el, err := s.FindElement(ctx, By{ID, "title"})
	require.NoError(t, err)
	v, err = s.ExecuteScript(ctx, "return arguments[0]", el)
	require.NoError(t, err)
	id, err := wire.DecodeElementID(v)
	require.NoError(t, err)
	assert.Equal(t, el.ID(), id)

	v, err = s.ExecuteAsyncScript(ctx, "return arguments[1]", 1, "two")
	require.NoError(t, err)
	assert.JSONEq(t, `"two"`, string(v))

	_, err = s.ExecuteScript(ctx, "throw new Error('boom')")
	assert.ErrorIs(t, err, wire.ScriptError)
	var werr *wire.Error
	require.True(t, errors.As(err, &werr))
	assert.Contains(t, werr.Message, "boom")
}

func TestTimeouts(t *testing.T) {
	ctx := context.Background()
	_, s := openPage(t)

	require.NoError(t, s.SetTimeoutsImplicitWait(ctx, 2*time.Second))
	got, err := s.Timeouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Duration(2*time.Second), got.Implicit)
	assert.Equal(t, Duration(30*time.Second), got.Script)

	want := Timeouts{Script: Duration(5 * time.Second), PageLoad: Duration(time.Minute), Implicit: Duration(0)}
	require.NoError(t, s.SetTimeouts(ctx, want))
	got, err = s.Timeouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSetTimeoutsPartial(t *testing.T) {
	ctx := context.Background()
	_, s := openPage(t)

	before, err := s.Timeouts(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetTimeouts(ctx, Timeouts{Implicit: Duration(5 * time.Second)}))
	body, err := wire.Marshal(Timeouts{Implicit: Duration(5 * time.Second)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"implicit":5000}`, string(body))

	got, err := s.Timeouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Duration(5*time.Second), got.Implicit)
	assert.Equal(t, before.Script, got.Script)
	assert.Equal(t, before.PageLoad, got.PageLoad)
	assert.Equal(t, Duration(300*time.Second), got.PageLoad)

	require.NoError(t, s.SetTimeouts(ctx, Timeouts{Script: Duration(0)}))
	got, err = s.Timeouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Duration(0), got.Script)
	assert.Equal(t, Duration(5*time.Second), got.Implicit)
}

func TestNavigationHistory(t *testing.T) {
	ctx := context.Background()
	_, s := openPage(t)

	require.NoError(t, s.Get(ctx, "https://example.test/next"))
	require.NoError(t, s.Back(ctx))
	url, err := s.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, examplePage, url)

	require.NoError(t, s.Forward(ctx))
	title, err := s.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Next", title)

	require.NoError(t, s.Refresh(ctx))
	src, err := s.PageSource(ctx)
	require.NoError(t, err)
	assert.Contains(t, src, "Next page")
}
