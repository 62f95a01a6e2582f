// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"

	"github.com/fedesog/webdriver/wire"
)

//WindowType is the kind of top-level browsing context NewWindow opens.
type WindowType string

const (
	TabWindow    = WindowType("tab")
	NormalWindow = WindowType("window")
)

//Retrieve the current window handle.
func (s *Session) WindowHandle(ctx context.Context) (string, error) {
	h, err := s.getString(ctx, wire.Request{Command: wire.GetWindowHandle})
	if err != nil {
		return "", err
	}
	s.update(func(t *tracker) { t.window = h })
	return h, nil
}

//Retrieve the list of all window handles available to the session.
func (s *Session) WindowHandles(ctx context.Context) ([]string, error) {
	v, err := s.do(ctx, wire.Request{Command: wire.GetWindowHandles})
	if err != nil {
		return nil, err
	}
	var handles []string
	err = wire.Unmarshal(v, &handles)
	return handles, err
}

//Change focus to another window, by its handle. Focus moves to the
//window's top-level browsing context.
func (s *Session) SwitchToWindow(ctx context.Context, handle string) error {
	if _, err := s.do(ctx, wire.Request{Command: wire.SwitchToWindow, Body: wire.Params{"handle": handle}}); err != nil {
		return err
	}
	s.update(func(t *tracker) { t.setWindow(handle) })
	return nil
}

//Close the current window and return the handles of the remaining ones. The
//session has no focused window afterwards until SwitchToWindow is called.
func (s *Session) CloseWindow(ctx context.Context) ([]string, error) {
	v, err := s.do(ctx, wire.Request{Command: wire.CloseWindow})
	if err != nil {
		return nil, err
	}
	s.update((*tracker).lost)
	var handles []string
	err = wire.Unmarshal(v, &handles)
	return handles, err
}

//Open a new tab or window and return its handle. Focus does not change.
func (s *Session) NewWindow(ctx context.Context, typ WindowType) (string, error) {
	v, err := s.do(ctx, wire.Request{Command: wire.NewWindow, Body: wire.Params{"type": string(typ)}})
	if err != nil {
		return "", err
	}
	var w struct {
		Handle string `json:"handle"`
	}
	err = wire.Unmarshal(v, &w)
	return w.Handle, err
}

func (s *Session) getRect(ctx context.Context, req wire.Request) (Rect, error) {
	var r Rect
	v, err := s.do(ctx, req)
	if err != nil {
		return r, err
	}
	err = wire.Unmarshal(v, &r)
	return r, err
}

//Get the position and size of the current window.
func (s *Session) WindowRect(ctx context.Context) (Rect, error) {
	return s.getRect(ctx, wire.Request{Command: wire.GetWindowRect})
}

//Change the position and size of the current window. It returns the rect
//the window ended up with.
func (s *Session) SetWindowRect(ctx context.Context, r Rect) (Rect, error) {
	return s.getRect(ctx, wire.Request{Command: wire.SetWindowRect, Body: r})
}

//Maximize the current window.
func (s *Session) MaximizeWindow(ctx context.Context) (Rect, error) {
	return s.getRect(ctx, wire.Request{Command: wire.MaximizeWindow})
}

//Minimize the current window.
func (s *Session) MinimizeWindow(ctx context.Context) (Rect, error) {
	return s.getRect(ctx, wire.Request{Command: wire.MinimizeWindow})
}

//Make the current window full screen.
func (s *Session) FullscreenWindow(ctx context.Context) (Rect, error) {
	return s.getRect(ctx, wire.Request{Command: wire.FullscreenWindow})
}

//Change focus to a frame of the current browsing context.
func (s *Session) SwitchToFrame(ctx context.Context, f FrameRef) error {
	if e := f.element; e != nil {
		if err := s.owns(e); err != nil {
			return err
		}
		if err := e.checkStale(); err != nil {
			return err
		}
	}
	if _, err := s.do(ctx, wire.Request{Command: wire.SwitchToFrame, Body: wire.Params{"id": f.wireID()}}); err != nil {
		return err
	}
	s.update(func(t *tracker) { t.pushFrame(f) })
	return nil
}

//Change focus back to the parent frame. At the top-level browsing context
//this is the same as SwitchToDefaultContent.
func (s *Session) SwitchToParentFrame(ctx context.Context) error {
	if _, err := s.do(ctx, wire.Request{Command: wire.SwitchToParentFrame}); err != nil {
		return err
	}
	s.update((*tracker).popFrame)
	return nil
}

//Change focus to the top-level browsing context of the current window.
func (s *Session) SwitchToDefaultContent(ctx context.Context) error {
	if _, err := s.do(ctx, wire.Request{Command: wire.SwitchToFrame, Body: wire.Params{"id": nil}}); err != nil {
		return err
	}
	s.update((*tracker).clearFrames)
	return nil
}
