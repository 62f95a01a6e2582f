// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var jsonc = jsoniter.ConfigCompatibleWithStandardLibrary

// ElementKey is the W3C web element identifier key.
const ElementKey = "element-6066-11e4-a52e-4f735466cecf"

// legacyElementKey is used by JSON wire protocol remote ends.
const legacyElementKey = "ELEMENT"

var emptyObject = []byte("{}")

// Params is a JSON object request body.
type Params map[string]interface{}

// Request is one logical command bound to its identifiers.
type Request struct {
	Command   Command
	SessionID string
	ElementID string
	// Name is the cookie, attribute, property or CSS property name.
	Name string
	// Body is serialized as the JSON request body. A nil Body on a POST
	// command is sent as an empty object.
	Body interface{}
}

func (r Request) String() string {
	return r.Command.String()
}

// Encode returns the HTTP method, the path with identifiers substituted and
// the JSON body of the request. GET and DELETE commands carry no body.
func Encode(r Request) (method, path string, body []byte, err error) {
	if !r.Command.valid() {
		return "", "", nil, fmt.Errorf("encode: invalid command %d", int(r.Command))
	}
	ep := endpoints[r.Command]
	path = ep.path
	for _, sub := range []struct{ placeholder, value, what string }{
		{sessionVar, r.SessionID, "session id"},
		{elementVar, r.ElementID, "element id"},
		{nameVar, r.Name, "name"},
	} {
		if !strings.Contains(path, sub.placeholder) {
			continue
		}
		if sub.value == "" {
			return "", "", nil, fmt.Errorf("encode %s: missing %s", ep.name, sub.what)
		}
		path = strings.Replace(path, sub.placeholder, url.PathEscape(sub.value), 1)
	}
	if ep.method != http.MethodPost {
		return ep.method, path, nil, nil
	}
	if r.Body == nil {
		return ep.method, path, emptyObject, nil
	}
	body, err = jsonc.Marshal(r.Body)
	if err != nil {
		return "", "", nil, fmt.Errorf("encode %s: %w", ep.name, err)
	}
	return ep.method, path, body, nil
}

// Response is a decoded success envelope.
type Response struct {
	Value json.RawMessage
	// SessionID is the top-level "sessionId" of legacy envelopes.
	SessionID string
}

type envelope struct {
	Value     json.RawMessage
	SessionID string
	Status    *int
}

// readEnvelope walks the top-level object, keeping "value" as raw bytes so
// that a null value stays distinguishable from a missing one.
func readEnvelope(body []byte) (envelope, error) {
	var env envelope
	iter := jsonc.BorrowIterator(body)
	defer jsonc.ReturnIterator(iter)
	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return env, ErrInvalidResponse
	}
	iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		switch field {
		case "value":
			env.Value = append(json.RawMessage(nil), it.SkipAndReturnBytes()...)
		case "sessionId":
			if it.WhatIsNext() == jsoniter.StringValue {
				env.SessionID = it.ReadString()
			} else {
				it.Skip()
			}
		case "status":
			if it.WhatIsNext() == jsoniter.NumberValue {
				s := it.ReadInt()
				env.Status = &s
			} else {
				it.Skip()
			}
		default:
			it.Skip()
		}
		return it.Error == nil
	})
	if iter.Error != nil && iter.Error != io.EOF {
		return env, iter.Error
	}
	return env, nil
}

type errorValue struct {
	Error      string          `json:"error"`
	Message    string          `json:"message"`
	Stacktrace string          `json:"stacktrace"`
	Data       json.RawMessage `json:"data"`
}

func success(status int) bool { return status >= 200 && status < 300 }

// Decode interprets a raw HTTP status and body. A non-2xx status or an error
// member in the value is always a failure; success yields only the value.
func Decode(status int, body []byte) (*Response, error) {
	env, err := readEnvelope(body)
	if err != nil {
		// an HTML error page from a proxy lands here too, whatever the status
		return nil, &DecodeError{HTTPStatus: status, Body: truncate(string(body)), Err: ErrInvalidResponse}
	}
	if env.Status != nil && *env.Status != 0 {
		return nil, legacyError(status, *env.Status, env.Value)
	}
	if ev, ok := asErrorValue(env.Value); ok {
		return nil, &Error{
			Kind:       KindOf(ev.Error),
			Code:       ev.Error,
			Message:    ev.Message,
			Stacktrace: ev.Stacktrace,
			HTTPStatus: status,
			Data:       ev.Data,
		}
	}
	if !success(status) {
		e := &Error{Kind: Unrecognized, HTTPStatus: status}
		var s string
		if jsonc.Unmarshal(env.Value, &s) == nil {
			e.Message = s
		}
		return nil, e
	}
	if len(env.Value) == 0 {
		return nil, &DecodeError{HTTPStatus: status, Body: truncate(string(body)), Err: fmt.Errorf("%w: missing value", ErrInvalidResponse)}
	}
	return &Response{Value: env.Value, SessionID: env.SessionID}, nil
}

func asErrorValue(v json.RawMessage) (errorValue, bool) {
	var ev errorValue
	v = bytes.TrimSpace(v)
	if len(v) == 0 || v[0] != '{' {
		return ev, false
	}
	if err := jsonc.Unmarshal(v, &ev); err != nil {
		return ev, false
	}
	return ev, ev.Error != ""
}

func legacyError(httpStatus, status int, value json.RawMessage) *Error {
	e := &Error{Kind: Unrecognized, Code: strconv.Itoa(status), HTTPStatus: httpStatus}
	if ls, ok := legacyStatus[status]; ok {
		e.Kind = ls.kind
		e.Message = ls.text
	}
	var ev struct {
		Message string `json:"message"`
	}
	if err := jsonc.Unmarshal(value, &ev); err == nil && ev.Message != "" {
		e.Message = ev.Message
	} else {
		// firefox could return a string instead of a JSON object on errors
		var s string
		if jsonc.Unmarshal(value, &s) == nil && s != "" {
			e.Message = s
		}
	}
	return e
}

func truncate(s string) string {
	if len(s) > 1024 {
		return fmt.Sprintf("%s ...%d more bytes", s[:1024], len(s)-1024)
	}
	return s
}

// Unmarshal decodes a success value into v.
func Unmarshal(value json.RawMessage, v interface{}) error {
	if err := jsonc.Unmarshal(value, v); err != nil {
		return &DecodeError{HTTPStatus: http.StatusOK, Body: truncate(string(value)), Err: fmt.Errorf("%w: %v", ErrInvalidResponse, err)}
	}
	return nil
}

// Marshal encodes v with the codec's JSON configuration.
func Marshal(v interface{}) ([]byte, error) {
	return jsonc.Marshal(v)
}

// ElementReference returns the JSON object identifying an element.
func ElementReference(id string) map[string]string {
	return map[string]string{ElementKey: id}
}

// DecodeElementID extracts the element id from a web element reference,
// accepting the legacy "ELEMENT" key.
func DecodeElementID(value json.RawMessage) (string, error) {
	var ref map[string]interface{}
	if err := Unmarshal(value, &ref); err != nil {
		return "", err
	}
	id, ok := elementID(ref)
	if !ok {
		return "", &DecodeError{HTTPStatus: http.StatusOK, Body: truncate(string(value)), Err: fmt.Errorf("%w: not a web element reference", ErrInvalidResponse)}
	}
	return id, nil
}

// DecodeElementIDs extracts the ids of a list of web element references.
func DecodeElementIDs(value json.RawMessage) ([]string, error) {
	var refs []map[string]interface{}
	if err := Unmarshal(value, &refs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, ok := elementID(ref)
		if !ok {
			return nil, &DecodeError{HTTPStatus: http.StatusOK, Body: truncate(string(value)), Err: fmt.Errorf("%w: not a web element reference", ErrInvalidResponse)}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func elementID(ref map[string]interface{}) (string, bool) {
	for _, k := range []string{ElementKey, legacyElementKey} {
		if id, ok := ref[k].(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// DecodeBase64 decodes a base64 string value, as returned by screenshots.
func DecodeBase64(value json.RawMessage) ([]byte, error) {
	var s string
	if err := Unmarshal(value, &s); err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{HTTPStatus: http.StatusOK, Err: errors.Join(ErrInvalidResponse, err)}
	}
	return b, nil
}
