// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fakedriver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const elementKey = "element-6066-11e4-a52e-4f735466cecf"

type rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path"`
	Domain   string `json:"domain"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"httpOnly"`
	Expiry   int64  `json:"expiry,omitempty"`
	SameSite string `json:"sameSite"`
}

type window struct {
	handle string
	rect   rect
}

type session struct {
	id   string
	caps map[string]interface{}

	timeouts map[string]interface{}

	history []string
	pos     int
	page    *Page
	frames  []*Element
	gen     int

	handles map[string]*Element
	ids     map[*Element]string
	retired map[string]bool
	focused *Element

	windows []*window
	current *window
	nextWin int

	alert      *string
	promptText string
	cookies    []cookie
	actions    []json.RawMessage
	released   int
}

func newSession(id string, caps map[string]interface{}) *session {
	s := &session{
		id:   id,
		caps: caps,
		timeouts: map[string]interface{}{
			"script":   30000,
			"pageLoad": 300000,
			"implicit": 0,
		},
		page:    &Page{},
		history: []string{"about:blank"},
		handles: make(map[string]*Element),
		ids:     make(map[*Element]string),
		retired: make(map[string]bool),
	}
	s.current = s.openWindow()
	return s
}

func (s *session) openWindow() *window {
	s.nextWin++
	w := &window{handle: fmt.Sprintf("window-%d", s.nextWin), rect: rect{Width: 1280, Height: 720}}
	s.windows = append(s.windows, w)
	return w
}

func (s *session) url() string { return s.history[s.pos] }

// load replaces the document; every known element reference goes stale.
func (s *session) load(pages map[string]*Page, u string) {
	s.gen++
	for id := range s.handles {
		s.retired[id] = true
	}
	s.handles = make(map[string]*Element)
	s.ids = make(map[*Element]string)
	s.frames = nil
	s.focused = nil
	if p, ok := pages[u]; ok {
		s.page = p.clone()
	} else {
		s.page = &Page{}
	}
}

func (s *session) navigate(pages map[string]*Page, u string) {
	s.history = append(s.history[:s.pos+1], u)
	s.pos++
	s.load(pages, u)
}

// document is the page of the focused browsing context.
func (s *session) document() *Page {
	if n := len(s.frames); n > 0 {
		return s.frames[n-1].Frame
	}
	return s.page
}

func (s *session) reference(e *Element) map[string]string {
	id, ok := s.ids[e]
	if !ok {
		id = fmt.Sprintf("%s-%d-%d", s.id[:8], s.gen, len(s.ids)+len(s.retired)+1)
		s.ids[e] = id
		s.handles[id] = e
	}
	return map[string]string{elementKey: id}
}

func (s *session) element(id string) (*Element, *wdError) {
	if e, ok := s.handles[id]; ok {
		return e, nil
	}
	if s.retired[id] {
		return nil, errorf(http.StatusNotFound, "stale element reference", "element %s is no longer attached to the DOM", id)
	}
	return nil, errorf(http.StatusNotFound, "no such element", "unknown element %s", id)
}

// resolve turns a web element reference found in a request into an element.
func (s *session) resolve(v interface{}) (*Element, bool, *wdError) {
	ref, ok := v.(map[string]interface{})
	if !ok {
		return nil, false, nil
	}
	id, ok := ref[elementKey].(string)
	if !ok {
		return nil, false, nil
	}
	e, werr := s.element(id)
	return e, true, werr
}

func (s *session) host() string {
	u, err := url.Parse(s.url())
	if err != nil {
		return ""
	}
	return u.Hostname()
}
