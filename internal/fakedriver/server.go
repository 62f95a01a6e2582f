// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedriver is an in-memory W3C WebDriver remote end. It serves a
// small set of static pages and keeps enough browser state (windows, frames,
// user prompts, cookies, element references) to exercise a client end to
// end, plus hooks to inspect traffic and inject faults.
package fakedriver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request is a request received by the Server.
type Request struct {
	Method string
	Path   string
}

type fault struct {
	drop    bool
	status  int
	code    string
	message string
}

// Server is the fake remote end. It implements http.Handler.
type Server struct {
	router chi.Router
	logger *zap.Logger

	mu       sync.Mutex
	pages    map[string]*Page
	sessions map[string]*session
	requests []Request
	faults   []fault
	delay    time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger logs every request at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithPages replaces the served site. Keys are absolute URLs.
func WithPages(pages map[string]*Page) Option {
	return func(s *Server) { s.pages = pages }
}

// New returns a Server serving DefaultPages unless configured otherwise.
func New(opts ...Option) *Server {
	s := &Server{
		logger:   zap.NewNop(),
		pages:    DefaultPages(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.injectFaults)

	r.Get("/status", s.handleStatus)
	r.Post("/session", s.handleNewSession)
	r.Route("/session/{sessionId}", func(r chi.Router) {
		r.Delete("/", s.handleDeleteSession)

		r.Get("/timeouts", s.with(getTimeouts))
		r.Post("/timeouts", s.with(setTimeouts))

		r.Post("/url", s.with(navigateTo))
		r.Get("/url", s.with(currentURL))
		r.Post("/back", s.with(back))
		r.Post("/forward", s.with(forward))
		r.Post("/refresh", s.with(refresh))
		r.Get("/title", s.with(title))
		r.Get("/source", s.with(source))

		r.Get("/window", s.with(windowHandle))
		r.Post("/window", s.with(switchToWindow))
		r.Delete("/window", s.with(closeWindow))
		r.Get("/window/handles", s.with(windowHandles))
		r.Post("/window/new", s.with(newWindow))
		r.Get("/window/rect", s.with(windowRect))
		r.Post("/window/rect", s.with(setWindowRect))
		r.Post("/window/maximize", s.with(maximizeWindow))
		r.Post("/window/minimize", s.with(minimizeWindow))
		r.Post("/window/fullscreen", s.with(fullscreenWindow))

		r.Post("/frame", s.with(switchToFrame))
		r.Post("/frame/parent", s.with(switchToParentFrame))

		r.Post("/element", s.with(findElement))
		r.Post("/elements", s.with(findElements))
		r.Get("/element/active", s.with(activeElement))
		r.Route("/element/{elementId}", func(r chi.Router) {
			r.Post("/element", s.with(findElementFromElement))
			r.Post("/elements", s.with(findElementsFromElement))
			r.Get("/selected", s.with(elementSelected))
			r.Get("/attribute/{name}", s.with(elementAttribute))
			r.Get("/property/{name}", s.with(elementProperty))
			r.Get("/css/{name}", s.with(elementCSSValue))
			r.Get("/text", s.with(elementText))
			r.Get("/name", s.with(elementTagName))
			r.Get("/rect", s.with(elementRect))
			r.Get("/enabled", s.with(elementEnabled))
			r.Get("/displayed", s.with(elementDisplayed))
			r.Post("/click", s.with(elementClick))
			r.Post("/clear", s.with(elementClear))
			r.Post("/value", s.with(elementSendKeys))
			r.Get("/screenshot", s.with(elementScreenshot))
		})

		r.Post("/execute/sync", s.with(executeScript))
		r.Post("/execute/async", s.with(executeScript))

		r.Get("/cookie", s.with(allCookies))
		r.Post("/cookie", s.with(addCookie))
		r.Delete("/cookie", s.with(deleteAllCookies))
		r.Get("/cookie/{name}", s.with(namedCookie))
		r.Delete("/cookie/{name}", s.with(deleteCookie))

		r.Post("/actions", s.with(performActions))
		r.Delete("/actions", s.with(releaseActions))

		r.Post("/alert/dismiss", s.with(dismissAlert))
		r.Post("/alert/accept", s.with(acceptAlert))
		r.Get("/alert/text", s.with(alertText))
		r.Post("/alert/text", s.with(sendAlertText))

		r.Get("/screenshot", s.with(screenshot))
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errorf(http.StatusNotFound, "unknown command", "%s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errorf(http.StatusMethodNotAllowed, "unknown method", "%s %s", r.Method, r.URL.Path))
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path})
		delay := s.delay
		s.mu.Unlock()
		s.logger.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *fault
		if len(s.faults) > 0 {
			f = &s.faults[0]
			s.faults = s.faults[1:]
		}
		s.mu.Unlock()
		switch {
		case f == nil:
			next.ServeHTTP(w, r)
		case f.drop:
			dropConnection(w)
		default:
			writeError(w, &wdError{status: f.status, code: f.code, message: f.message})
		}
	})
}

func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic(http.ErrAbortHandler)
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(http.ErrAbortHandler)
	}
	conn.Close()
}

// DropNext closes the connection of the next request without answering.
func (s *Server) DropNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{drop: true})
}

// FailNext answers the next request with the given error.
func (s *Server) FailNext(status int, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{status: status, code: code, message: message})
}

// SetDelay holds every request for d before handling it.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

var deleteSessionPath = regexp.MustCompile(`^/session/[^/]+/?$`)

// Deletes counts the DELETE /session/{id} requests received, answered or not.
func (s *Server) Deletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == http.MethodDelete && deleteSessionPath.MatchString(r.Path) {
			n++
		}
	}
	return n
}

// Sessions returns the ids of the live sessions.
func (s *Server) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// OpenAlert opens a user prompt in the session as if the page did.
func (s *Server) OpenAlert(sessionID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("fakedriver: no session %q", sessionID)
	}
	sess.alert = &text
	return nil
}

// Navigate replaces the current page of the session as if the page did,
// making its element references stale.
func (s *Server) Navigate(sessionID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("fakedriver: no session %q", sessionID)
	}
	sess.load(s.pages, url)
	return nil
}

// Actions returns the action sequences performed by the session, one raw
// "actions" array per perform command.
func (s *Server) Actions(sessionID string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return append([]json.RawMessage(nil), sess.actions...)
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeValue(w, map[string]interface{}{
		"ready":   true,
		"message": "fakedriver ready",
		"build":   map[string]string{"version": "1.0"},
		"os":      map[string]string{"arch": "amd64", "name": "linux", "version": "6"},
	})
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Capabilities struct {
			AlwaysMatch map[string]interface{}   `json:"alwaysMatch"`
			FirstMatch  []map[string]interface{} `json:"firstMatch"`
		} `json:"capabilities"`
	}
	if werr := decode(r, &body); werr != nil {
		writeError(w, werr)
		return
	}
	caps := map[string]interface{}{
		"browserName":         "fake",
		"browserVersion":      "1.0",
		"platformName":        "linux",
		"acceptInsecureCerts": false,
		"pageLoadStrategy":    "normal",
	}
	for k, v := range body.Capabilities.AlwaysMatch {
		caps[k] = v
	}
	if len(body.Capabilities.FirstMatch) > 0 {
		for k, v := range body.Capabilities.FirstMatch[0] {
			caps[k] = v
		}
	}
	if v, ok := caps["browserName"].(string); ok && v == "unsupported" {
		writeError(w, errorf(http.StatusInternalServerError, "session not created", "browser %q is not available", v))
		return
	}

	sess := newSession(uuid.NewString(), caps)
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	writeValue(w, map[string]interface{}{"sessionId": sess.id, "capabilities": caps})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, errorf(http.StatusNotFound, "invalid session id", "no session %s", id))
		return
	}
	writeValue(w, nil)
}

type handlerFunc func(s *Server, r *http.Request, sess *session) (interface{}, *wdError)

// with looks the session up and runs h with the server locked.
func (s *Server) with(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		id := chi.URLParam(r, "sessionId")
		sess, ok := s.sessions[id]
		if !ok {
			writeError(w, errorf(http.StatusNotFound, "invalid session id", "no session %s", id))
			return
		}
		if sess.alert != nil && !strings.Contains(r.URL.Path, "/alert/") {
			writeError(w, errorf(http.StatusInternalServerError, "unexpected alert open", "user prompt %q is open", *sess.alert))
			return
		}
		v, werr := h(s, r, sess)
		if werr != nil {
			writeError(w, werr)
			return
		}
		writeValue(w, v)
	}
}

type wdError struct {
	status  int
	code    string
	message string
}

func errorf(status int, code, format string, args ...interface{}) *wdError {
	return &wdError{status: status, code: code, message: fmt.Sprintf(format, args...)}
}

func writeValue(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"value": v})
}

func writeError(w http.ResponseWriter, e *wdError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(e.status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"value": map[string]interface{}{
		"error":      e.code,
		"message":    e.message,
		"stacktrace": "",
	}})
}

func decode(r *http.Request, v interface{}) *wdError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errorf(http.StatusBadRequest, "invalid argument", "malformed body: %v", err)
	}
	return nil
}
