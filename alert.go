// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"

	"github.com/fedesog/webdriver/wire"
)

//Alert is the user prompt (alert, confirm or prompt dialog) of a session.
//While it is open the session refuses every non-alert command with
//ErrAlertOpen.
type Alert struct {
	s *Session
}

//SwitchToAlert checks that a user prompt is open and returns it. It fails
//with a NoSuchAlert error, leaving the tracked context unchanged, when there
//is none.
func (s *Session) SwitchToAlert(ctx context.Context) (*Alert, error) {
	if _, err := s.getString(ctx, wire.Request{Command: wire.GetAlertText}); err != nil {
		return nil, err
	}
	s.update((*tracker).openAlert)
	return &Alert{s: s}, nil
}

func (a *Alert) check() error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if a.s.state == stateOpen && !a.s.ctx.alert {
		return ErrNoAlert
	}
	return nil
}

//Gets the text of the currently displayed JavaScript alert(), confirm(), or prompt() dialog.
func (a *Alert) Text(ctx context.Context) (string, error) {
	if err := a.check(); err != nil {
		return "", err
	}
	return a.s.getString(ctx, wire.Request{Command: wire.GetAlertText})
}

//Sends keystrokes to a JavaScript prompt() dialog.
func (a *Alert) SendKeys(ctx context.Context, text string) error {
	if err := a.check(); err != nil {
		return err
	}
	_, err := a.s.do(ctx, wire.Request{Command: wire.SendAlertText, Body: wire.Params{"text": text}})
	return err
}

//Accepts the currently displayed alert dialog.
func (a *Alert) Accept(ctx context.Context) error {
	return a.close(ctx, wire.AcceptAlert)
}

//Dismisses the currently displayed alert dialog.
func (a *Alert) Dismiss(ctx context.Context) error {
	return a.close(ctx, wire.DismissAlert)
}

func (a *Alert) close(ctx context.Context, c wire.Command) error {
	if err := a.check(); err != nil {
		return err
	}
	if _, err := a.s.do(ctx, wire.Request{Command: c}); err != nil {
		return err
	}
	a.s.update((*tracker).closeAlert)
	return nil
}
