// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"strconv"

	"github.com/fedesog/webdriver/wire"
)

//ContextState is the browsing context the session believes it is focused on.
type ContextState int

const (
	//Top-level document of the current window.
	StateDefault ContextState = iota
	//Nested browsing context, see Context.Frames.
	StateInFrame
	//A user prompt is open; only alert operations are allowed.
	StateAlertOpen
)

func (c ContextState) String() string {
	switch c {
	case StateDefault:
		return "default"
	case StateInFrame:
		return "in frame"
	case StateAlertOpen:
		return "alert open"
	}
	return "unknown"
}

//FrameRef designates a frame to switch to: a frame index on the current
//page or a frame/iframe element.
type FrameRef struct {
	index   int
	element *Element
}

//FrameIndex refers to the i-th frame of the current browsing context.
func FrameIndex(i int) FrameRef { return FrameRef{index: i} }

//FrameElement refers to the frame or iframe element e.
func FrameElement(e *Element) FrameRef { return FrameRef{element: e} }

//Element returns the frame element, or nil for an index reference.
func (f FrameRef) Element() *Element { return f.element }

func (f FrameRef) wireID() interface{} {
	if f.element != nil {
		return wire.ElementReference(f.element.id)
	}
	return f.index
}

func (f FrameRef) String() string {
	if f.element != nil {
		return "element " + f.element.id
	}
	return "index " + strconv.Itoa(f.index)
}

//Context is a snapshot of the session's focus as tracked by the client. It
//mirrors the remote end's state as last observed and can drift when the page
//changes on its own.
type Context struct {
	State ContextState
	//Window is the handle of the focused window, empty when unknown.
	Window string
	//Frames from the outermost to the innermost.
	Frames []FrameRef
}

// tracker mirrors the remote end's focus. An open alert overlays the
// window/frame state, which is restored when the alert goes away.
type tracker struct {
	window string
	frames []FrameRef
	alert  bool
}

func (t *tracker) state() ContextState {
	switch {
	case t.alert:
		return StateAlertOpen
	case len(t.frames) > 0:
		return StateInFrame
	}
	return StateDefault
}

func (t *tracker) snapshot() Context {
	c := Context{State: t.state(), Window: t.window}
	if len(t.frames) > 0 {
		c.Frames = append([]FrameRef(nil), t.frames...)
	}
	return c
}

func (t *tracker) pushFrame(f FrameRef) { t.frames = append(t.frames, f) }

func (t *tracker) popFrame() {
	if n := len(t.frames); n > 0 {
		t.frames = t.frames[:n-1]
	}
}

func (t *tracker) clearFrames() { t.frames = nil }

func (t *tracker) setWindow(h string) {
	t.window = h
	t.frames = nil
}

// lost is used when the focused window no longer exists.
func (t *tracker) lost() {
	t.window = ""
	t.frames = nil
	t.alert = false
}

func (t *tracker) openAlert()  { t.alert = true }
func (t *tracker) closeAlert() { t.alert = false }

func isAlertCommand(c wire.Command) bool {
	switch c {
	case wire.AcceptAlert, wire.DismissAlert, wire.GetAlertText, wire.SendAlertText:
		return true
	}
	return false
}

// observe resynchronizes the tracker after a failed command.
func (t *tracker) observe(c wire.Command, err error) {
	kind, ok := wire.KindFromError(err)
	if !ok {
		return
	}
	switch kind {
	case wire.NoSuchWindow:
		t.lost()
	case wire.UnexpectedAlertOpen:
		t.openAlert()
	case wire.NoSuchAlert:
		if isAlertCommand(c) {
			t.closeAlert()
		}
	case wire.NoSuchFrame:
		if c != wire.SwitchToFrame {
			t.clearFrames()
		}
	}
}
