// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrLaneStopped is returned for calls submitted to a stopped lane.
var ErrLaneStopped = errors.New("transport: lane stopped")

// Error is a failure that happened before a WebDriver response could be
// read: connection errors, local timeouts and cancellations.
//
// A timeout does not mean the command was not executed by the remote end.
type Error struct {
	Op     string
	Method string
	URL    string
	Err    error
}

func (e *Error) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (%s %s): %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the call was abandoned because a deadline expired.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IsTransport reports whether err originated in the transport rather than in
// the remote end.
func IsTransport(err error) bool {
	var te *Error
	return errors.As(err, &te)
}
