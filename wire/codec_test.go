// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePaths(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		method string
		path   string
		body   string
	}{
		{"new session", Request{Command: NewSession, Body: Params{"capabilities": Params{}}}, "POST", "/session", `{"capabilities":{}}`},
		{"delete session", Request{Command: DeleteSession, SessionID: "s1"}, "DELETE", "/session/s1", ""},
		{"navigate", Request{Command: NavigateTo, SessionID: "s1", Body: Params{"url": "https://example.test"}}, "POST", "/session/s1/url", `{"url":"https://example.test"}`},
		{"click has empty object", Request{Command: ElementClick, SessionID: "s1", ElementID: "e1"}, "POST", "/session/s1/element/e1/click", `{}`},
		{"attribute", Request{Command: GetElementAttribute, SessionID: "s1", ElementID: "e1", Name: "href"}, "GET", "/session/s1/element/e1/attribute/href", ""},
		{"cookie name escaped", Request{Command: GetNamedCookie, SessionID: "s1", Name: "a b/c"}, "GET", "/session/s1/cookie/a%20b%2Fc", ""},
		{"release actions", Request{Command: ReleaseActions, SessionID: "s1"}, "DELETE", "/session/s1/actions", ""},
		{"accept alert", Request{Command: AcceptAlert, SessionID: "s1"}, "POST", "/session/s1/alert/accept", `{}`},
		{"screenshot", Request{Command: TakeScreenshot, SessionID: "s1"}, "GET", "/session/s1/screenshot", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, path, body, err := Encode(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.method, method)
			assert.Equal(t, tt.path, path)
			if tt.body == "" {
				assert.Nil(t, body)
			} else {
				assert.JSONEq(t, tt.body, string(body))
			}
		})
	}
}

func TestEncodeMissingIdentifiers(t *testing.T) {
	_, _, _, err := Encode(Request{Command: ElementClick, SessionID: "s1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing element id")

	_, _, _, err = Encode(Request{Command: GetTitle})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing session id")

	_, _, _, err = Encode(Request{Command: Command(-1)})
	require.Error(t, err)
}

func TestDecodeSuccess(t *testing.T) {
	resp, err := Decode(http.StatusOK, []byte(`{"value":"webdriver simple"}`))
	require.NoError(t, err)
	var title string
	require.NoError(t, Unmarshal(resp.Value, &title))
	assert.Equal(t, "webdriver simple", title)

	resp, err = Decode(http.StatusOK, []byte(`{"value":null}`))
	require.NoError(t, err)
	assert.Equal(t, "null", string(resp.Value))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
		code   string
	}{
		{"stale", 404, `{"value":{"error":"stale element reference","message":"gone","stacktrace":"..."}}`, StaleElementReference, "stale element reference"},
		{"no such element", 404, `{"value":{"error":"no such element","message":"#x"}}`, NoSuchElement, "no such element"},
		{"script timeout is timeout", 500, `{"value":{"error":"script timeout","message":""}}`, Timeout, "script timeout"},
		{"javascript error", 500, `{"value":{"error":"javascript error","message":"boom"}}`, ScriptError, "javascript error"},
		{"error in 2xx body", 200, `{"value":{"error":"no such alert","message":"none"}}`, NoSuchAlert, "no such alert"},
		{"unknown code kept raw", 500, `{"value":{"error":"detached shadow root","message":"x"}}`, Unrecognized, "detached shadow root"},
		{"unknown error is its own kind", 500, `{"value":{"error":"unknown error","message":"x"}}`, UnknownError, "unknown error"},
		{"non-2xx without error member", 502, `{"value":"bad gateway"}`, Unrecognized, ""},
		{"legacy status", 500, `{"status":7,"value":{"message":"not found"}}`, NoSuchElement, "7"},
		{"legacy string value", 500, `{"status":10,"value":"element is gone"}`, StaleElementReference, "10"},
		{"legacy unknown status", 500, `{"status":99,"value":{}}`, Unrecognized, "99"},
		{"legacy status on 200", 200, `{"status":27,"value":{"message":"no alert"}}`, NoSuchAlert, "27"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Decode(tt.status, []byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, resp)
			var werr *Error
			require.True(t, errors.As(err, &werr), "want *Error, got %T", err)
			assert.Equal(t, tt.kind, werr.Kind)
			assert.Equal(t, tt.code, werr.Code)
			assert.Equal(t, tt.status, werr.HTTPStatus)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestDecodeStaleIsNotNoSuchElement(t *testing.T) {
	_, err := Decode(404, []byte(`{"value":{"error":"stale element reference","message":""}}`))
	assert.ErrorIs(t, err, StaleElementReference)
	assert.NotErrorIs(t, err, NoSuchElement)
}

func TestDecodeInvalidResponse(t *testing.T) {
	for _, body := range []string{"", "not json", `["value"]`, `{"sessionId":"x"}`} {
		_, err := Decode(http.StatusOK, []byte(body))
		require.Error(t, err, body)
		assert.ErrorIs(t, err, ErrInvalidResponse, body)
		var derr *DecodeError
		assert.True(t, errors.As(err, &derr))
	}

	_, err := Decode(http.StatusBadGateway, []byte(`<html>bad gateway</html>`))
	assert.ErrorIs(t, err, ErrInvalidResponse)
	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, http.StatusBadGateway, derr.HTTPStatus)
	assert.Contains(t, derr.Body, "bad gateway")
	var werr *Error
	assert.False(t, errors.As(err, &werr))
}

func TestDecodeLegacySessionID(t *testing.T) {
	resp, err := Decode(http.StatusOK, []byte(`{"sessionId":"abc","status":0,"value":{"browserName":"firefox"}}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.SessionID)
}

func TestElementReferences(t *testing.T) {
	id, err := DecodeElementID([]byte(`{"element-6066-11e4-a52e-4f735466cecf":"e1"}`))
	require.NoError(t, err)
	assert.Equal(t, "e1", id)

	id, err = DecodeElementID([]byte(`{"ELEMENT":"legacy"}`))
	require.NoError(t, err)
	assert.Equal(t, "legacy", id)

	_, err = DecodeElementID([]byte(`{"foo":"bar"}`))
	assert.ErrorIs(t, err, ErrInvalidResponse)

	ids, err := DecodeElementIDs([]byte(`[{"element-6066-11e4-a52e-4f735466cecf":"a"},{"ELEMENT":"b"}]`))
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a", "b"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	ids, err = DecodeElementIDs([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, ids)

	b, err := Marshal(ElementReference("e9"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"element-6066-11e4-a52e-4f735466cecf":"e9"}`, string(b))
}

func TestDecodeBase64(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	raw, err := Marshal(base64.StdEncoding.EncodeToString(png))
	require.NoError(t, err)
	got, err := DecodeBase64(raw)
	require.NoError(t, err)
	assert.Equal(t, png, got)

	_, err = DecodeBase64([]byte(`"%%%"`))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestCodecConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _, err := Encode(Request{Command: FindElement, SessionID: "s", Body: Params{"using": "css selector", "value": "#a"}})
			assert.NoError(t, err)
			_, err = Decode(404, []byte(`{"value":{"error":"no such element","message":""}}`))
			assert.ErrorIs(t, err, NoSuchElement)
		}()
	}
	wg.Wait()
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: Unrecognized, Code: "weird", Message: "boom", HTTPStatus: 500}
	assert.Equal(t, "unrecognized error (weird): boom [http 500]", err.Error())

	err = &Error{Kind: NoSuchAlert, Code: "no such alert"}
	assert.Equal(t, "no such alert", err.Error())

	kind, ok := KindFromError(err)
	assert.True(t, ok)
	assert.Equal(t, NoSuchAlert, kind)

	_, ok = KindFromError(errors.New("plain"))
	assert.False(t, ok)
}

func TestCommandTable(t *testing.T) {
	for c := Command(0); c < commandCount; c++ {
		assert.NotEmpty(t, c.String(), "command %d has no name", c)
		assert.NotEmpty(t, c.Method(), c.String())
		assert.NotEmpty(t, c.Path(), c.String())
	}
	assert.Equal(t, "unknown command", Command(999).String())
	assert.Empty(t, Command(999).Method())
	assert.Empty(t, Command(999).Path())

	ids := strings.NewReplacer("{sessionId}", "s1", "{elementId}", "e1")
	for _, c := range []Command{NavigateTo, GetTitle, DeleteSession, FindElementFromElement} {
		method, path, _, err := Encode(Request{Command: c, SessionID: "s1", ElementID: "e1"})
		require.NoError(t, err)
		assert.Equal(t, c.Method(), method, c.String())
		assert.Equal(t, ids.Replace(c.Path()), path, c.String())
	}
}
