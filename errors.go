// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"errors"

	"github.com/fedesog/webdriver/wire"
)

// Errors raised by the client without contacting the remote end. Failures
// reported by the remote end are *wire.Error values; match them with
// errors.Is(err, wire.NoSuchElement) and friends.
var (
	ErrSessionClosed = errors.New("webdriver: session is closed")
	ErrForeignHandle = errors.New("webdriver: handle belongs to another session")
	ErrAlertOpen     = errors.New("webdriver: a user prompt is open, accept or dismiss it first")
	ErrNoAlert       = errors.New("webdriver: no user prompt is open")
)

func staleError(id string) error {
	return &wire.Error{
		Kind:    wire.StaleElementReference,
		Code:    "stale element reference",
		Message: "element " + id + " was already reported stale",
	}
}
