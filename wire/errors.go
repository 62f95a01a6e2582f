// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind tags a protocol error. The set is closed: codes the client does
// not know map to Unrecognized and keep their raw string in Error.Code.
//
// ErrorKind implements error so that errors.Is(err, wire.NoSuchElement)
// matches any *Error of that kind.
type ErrorKind int

const (
	Unrecognized ErrorKind = iota
	InvalidSessionID
	NoSuchSession
	NoSuchElement
	StaleElementReference
	ElementNotInteractable
	ElementClickIntercepted
	InvalidSelector
	NoSuchWindow
	NoSuchFrame
	NoSuchAlert
	UnexpectedAlertOpen
	NoSuchCookie
	Timeout
	ScriptError
	MoveTargetOutOfBounds
	UnableToSetCookie
	InvalidCookieDomain
	InvalidElementState
	InsecureCertificate
	UnsupportedOperation
	SessionNotCreated
	InvalidArgument
	UnknownCommand
	UnknownError
)

var kindNames = map[ErrorKind]string{
	Unrecognized:            "unrecognized error",
	InvalidSessionID:        "invalid session id",
	NoSuchSession:           "no such session",
	NoSuchElement:           "no such element",
	StaleElementReference:   "stale element reference",
	ElementNotInteractable:  "element not interactable",
	ElementClickIntercepted: "element click intercepted",
	InvalidSelector:         "invalid selector",
	NoSuchWindow:            "no such window",
	NoSuchFrame:             "no such frame",
	NoSuchAlert:             "no such alert",
	UnexpectedAlertOpen:     "unexpected alert open",
	NoSuchCookie:            "no such cookie",
	Timeout:                 "timeout",
	ScriptError:             "javascript error",
	MoveTargetOutOfBounds:   "move target out of bounds",
	UnableToSetCookie:       "unable to set cookie",
	InvalidCookieDomain:     "invalid cookie domain",
	InvalidElementState:     "invalid element state",
	InsecureCertificate:     "insecure certificate",
	UnsupportedOperation:    "unsupported operation",
	SessionNotCreated:       "session not created",
	InvalidArgument:         "invalid argument",
	UnknownCommand:          "unknown command",
	UnknownError:            "unknown error",
}

// codeKinds maps the "error" strings sent by remote ends to kinds.
var codeKinds = map[string]ErrorKind{
	"invalid session id":        InvalidSessionID,
	"no such session":           NoSuchSession,
	"no such element":           NoSuchElement,
	"stale element reference":   StaleElementReference,
	"element not interactable":  ElementNotInteractable,
	"element click intercepted": ElementClickIntercepted,
	"invalid selector":          InvalidSelector,
	"no such window":            NoSuchWindow,
	"no such frame":             NoSuchFrame,
	"no such alert":             NoSuchAlert,
	"unexpected alert open":     UnexpectedAlertOpen,
	"no such cookie":            NoSuchCookie,
	"timeout":                   Timeout,
	"script timeout":            Timeout,
	"javascript error":          ScriptError,
	"move target out of bounds": MoveTargetOutOfBounds,
	"unable to set cookie":      UnableToSetCookie,
	"invalid cookie domain":     InvalidCookieDomain,
	"invalid element state":     InvalidElementState,
	"insecure certificate":      InsecureCertificate,
	"unsupported operation":     UnsupportedOperation,
	"session not created":       SessionNotCreated,
	"invalid argument":          InvalidArgument,
	"unknown command":           UnknownCommand,
	"unknown method":            UnknownCommand,
	"unknown error":             UnknownError,
}

// KindOf maps a W3C error code to its kind.
func KindOf(code string) ErrorKind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return Unrecognized
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) Error() string { return k.String() }

// Error is a failure reported by the remote end.
type Error struct {
	Kind ErrorKind
	// Code is the raw "error" string, or the legacy numeric status.
	Code       string
	Message    string
	Stacktrace string
	// HTTPStatus is 0 when the error was raised locally for a handle the
	// remote end already reported.
	HTTPStatus int
	// Data carries the optional "data" member, e.g. the alert text of an
	// unexpected alert open error.
	Data json.RawMessage
}

func (e *Error) Error() string {
	m := e.Kind.String()
	if e.Kind == Unrecognized && e.Code != "" {
		m += " (" + e.Code + ")"
	}
	if e.Message != "" {
		m += ": " + e.Message
	}
	if e.HTTPStatus != 0 {
		m = fmt.Sprintf("%s [http %d]", m, e.HTTPStatus)
	}
	return m
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// KindFromError returns the kind of the protocol error in err's chain.
func KindFromError(err error) (ErrorKind, bool) {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Kind, true
	}
	return 0, false
}

// ErrInvalidResponse reports a response body that is not a WebDriver envelope.
var ErrInvalidResponse = errors.New("response must be a JSON object")

// DecodeError wraps a response the codec could not interpret.
type DecodeError struct {
	HTTPStatus int
	Body       string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response (http %d): %v", e.HTTPStatus, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Legacy JSON wire protocol status codes, still sent by old remote ends.
var legacyStatus = map[int]struct {
	kind ErrorKind
	text string
}{
	6:  {NoSuchSession, "A session is either terminated or not started."},
	7:  {NoSuchElement, "An element could not be located on the page using the given search parameters."},
	8:  {NoSuchFrame, "A request to switch to a frame could not be satisfied because the frame could not be found."},
	9:  {UnknownCommand, "The requested resource could not be found, or a request was received using an HTTP method that is not supported by the mapped resource."},
	10: {StaleElementReference, "An element command failed because the referenced element is no longer attached to the DOM."},
	11: {ElementNotInteractable, "An element command could not be completed because the element is not visible on the page."},
	12: {InvalidElementState, "An element command could not be completed because the element is in an invalid state."},
	13: {UnknownError, "An unknown server-side error occurred while processing the command."},
	15: {ElementNotInteractable, "An attempt was made to select an element that cannot be selected."},
	17: {ScriptError, "An error occurred while executing user supplied JavaScript."},
	19: {InvalidSelector, "An error occurred while searching for an element by XPath."},
	21: {Timeout, "An operation did not complete before its timeout expired."},
	23: {NoSuchWindow, "A request to switch to a different window could not be satisfied because the window could not be found."},
	24: {InvalidCookieDomain, "An illegal attempt was made to set a cookie under a different domain than the current page."},
	25: {UnableToSetCookie, "A request to set a cookie's value could not be satisfied."},
	26: {UnexpectedAlertOpen, "A modal dialog was open, blocking this operation."},
	27: {NoSuchAlert, "An attempt was made to operate on a modal dialog when one was not open."},
	28: {Timeout, "A script did not complete before its timeout expired."},
	29: {MoveTargetOutOfBounds, "The coordinates provided to an interactions operation are invalid."},
	32: {InvalidSelector, "Argument was an invalid selector (e.g. XPath/CSS)."},
	33: {SessionNotCreated, "A new session could not be created."},
	34: {MoveTargetOutOfBounds, "Target provided for a move action is out of bounds."},
}
