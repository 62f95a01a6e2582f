// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"

	"github.com/fedesog/webdriver/wire"
)

//SameSite is the cookie's same-site policy.
type SameSite string

const (
	SameSiteLax    = SameSite("Lax")
	SameSiteStrict = SameSite("Strict")
	SameSiteNone   = SameSite("None")
)

//Cookie of the current page. Empty optional fields are left for the remote
//end to default. Expiry is in seconds since the epoch.
type Cookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Path     string   `json:"path,omitempty"`
	Domain   string   `json:"domain,omitempty"`
	Secure   bool     `json:"secure,omitempty"`
	HTTPOnly bool     `json:"httpOnly,omitempty"`
	Expiry   int64    `json:"expiry,omitempty"`
	SameSite SameSite `json:"sameSite,omitempty"`
}

//Retrieve all cookies visible to the current page.
func (s *Session) Cookies(ctx context.Context) ([]Cookie, error) {
	v, err := s.do(ctx, wire.Request{Command: wire.GetAllCookies})
	if err != nil {
		return nil, err
	}
	var cookies []Cookie
	err = wire.Unmarshal(v, &cookies)
	return cookies, err
}

//Retrieve the cookie with the given name. Fails with a NoSuchCookie error
//when there is none.
func (s *Session) Cookie(ctx context.Context, name string) (Cookie, error) {
	var c Cookie
	v, err := s.do(ctx, wire.Request{Command: wire.GetNamedCookie, Name: name})
	if err != nil {
		return c, err
	}
	err = wire.Unmarshal(v, &c)
	return c, err
}

//Set a cookie.
func (s *Session) AddCookie(ctx context.Context, c Cookie) error {
	_, err := s.do(ctx, wire.Request{Command: wire.AddCookie, Body: wire.Params{"cookie": c}})
	return err
}

//Delete the cookie with the given name.
func (s *Session) DeleteCookie(ctx context.Context, name string) error {
	_, err := s.do(ctx, wire.Request{Command: wire.DeleteCookie, Name: name})
	return err
}

//Delete all cookies visible to the current page.
func (s *Session) DeleteAllCookies(ctx context.Context) error {
	_, err := s.do(ctx, wire.Request{Command: wire.DeleteAllCookies})
	return err
}
