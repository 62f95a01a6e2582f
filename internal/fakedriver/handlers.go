// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fakedriver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

var screenshotPNG = func() string {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}()

func getTimeouts(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	return sess.timeouts, nil
}

func setTimeouts(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	var body map[string]interface{}
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	for k, v := range body {
		switch k {
		case "script", "pageLoad", "implicit":
			sess.timeouts[k] = v
		default:
			return nil, errorf(http.StatusBadRequest, "invalid argument", "unknown timeout %q", k)
		}
	}
	return nil, nil
}

func navigateTo(s *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	var body struct {
		URL string `json:"url"`
	}
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	if body.URL == "" {
		return nil, errorf(http.StatusBadRequest, "invalid argument", "missing url")
	}
	sess.navigate(s.pages, body.URL)
	return nil, nil
}

func currentURL(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	return sess.url(), nil
}

func back(s *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	if sess.pos > 0 {
		sess.pos--
		sess.load(s.pages, sess.url())
	}
	return nil, nil
}

func forward(s *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	if sess.pos < len(sess.history)-1 {
		sess.pos++
		sess.load(s.pages, sess.url())
	}
	return nil, nil
}

func refresh(s *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	sess.load(s.pages, sess.url())
	return nil, nil
}

func title(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	return sess.page.Title, nil
}

func source(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	var b strings.Builder
	b.WriteString("<html><head><title>" + sess.page.Title + "</title></head><body>")
	var render func([]*Element)
	render = func(es []*Element) {
		for _, e := range es {
			b.WriteString("<" + e.Tag)
			if e.ID != "" {
				b.WriteString(` id="` + e.ID + `"`)
			}
			b.WriteString(">" + e.Text)
			render(e.Children)
			b.WriteString("</" + e.Tag + ">")
		}
	}
	render(sess.page.Elements)
	b.WriteString("</body></html>")
	return b.String(), nil
}

func (sess *session) currentWindow() (*window, *wdError) {
	if sess.current == nil {
		return nil, errorf(http.StatusNotFound, "no such window", "the current window was closed")
	}
	return sess.current, nil
}

func windowHandle(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	w, werr := sess.currentWindow()
	if werr != nil {
		return nil, werr
	}
	return w.handle, nil
}

func windowHandles(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	hs := make([]string, 0, len(sess.windows))
	for _, w := range sess.windows {
		hs = append(hs, w.handle)
	}
	return hs, nil
}

func switchToWindow(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	var body struct {
		Handle string `json:"handle"`
	}
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	for _, w := range sess.windows {
		if w.handle == body.Handle {
			sess.current = w
			sess.frames = nil
			return nil, nil
		}
	}
	return nil, errorf(http.StatusNotFound, "no such window", "unknown window %s", body.Handle)
}

func closeWindow(s *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	cur, werr := sess.currentWindow()
	if werr != nil {
		return nil, werr
	}
	for i, w := range sess.windows {
		if w == cur {
			sess.windows = append(sess.windows[:i], sess.windows[i+1:]...)
			break
		}
	}
	sess.current = nil
	sess.frames = nil
	return windowHandles(s, r, sess)
}

func newWindow(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	var body struct {
		Type string `json:"type"`
	}
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	typ := body.Type
	if typ != "window" {
		typ = "tab"
	}
	w := sess.openWindow()
	return map[string]string{"handle": w.handle, "type": typ}, nil
}

func windowRect(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	w, werr := sess.currentWindow()
	if werr != nil {
		return nil, werr
	}
	return w.rect, nil
}

func setWindowRect(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	w, werr := sess.currentWindow()
	if werr != nil {
		return nil, werr
	}
	var body rect
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	if body.Width < 0 || body.Height < 0 {
		return nil, errorf(http.StatusBadRequest, "invalid argument", "negative window size")
	}
	w.rect = body
	return w.rect, nil
}

func resizeWindow(sess *session, to rect) (interface{}, *wdError) {
	w, werr := sess.currentWindow()
	if werr != nil {
		return nil, werr
	}
	w.rect = to
	return w.rect, nil
}

func maximizeWindow(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	return resizeWindow(sess, rect{Width: 1920, Height: 1080})
}

func minimizeWindow(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	return resizeWindow(sess, rect{})
}

func fullscreenWindow(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	return resizeWindow(sess, rect{Width: 1920, Height: 1080})
}

func switchToFrame(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	var body struct {
		ID interface{} `json:"id"`
	}
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	switch id := body.ID.(type) {
	case nil:
		sess.frames = nil
	case float64:
		frames := sess.document().frames()
		i := int(id)
		if i < 0 || i >= len(frames) {
			return nil, errorf(http.StatusNotFound, "no such frame", "no frame at index %d", i)
		}
		sess.frames = append(sess.frames, frames[i])
	default:
		e, ok, werr := sess.resolve(id)
		if werr != nil {
			return nil, werr
		}
		if !ok {
			return nil, errorf(http.StatusBadRequest, "invalid argument", "bad frame id %v", id)
		}
		if e.Frame == nil {
			return nil, errorf(http.StatusNotFound, "no such frame", "element is not a frame")
		}
		sess.frames = append(sess.frames, e)
	}
	return nil, nil
}

func switchToParentFrame(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	if n := len(sess.frames); n > 0 {
		sess.frames = sess.frames[:n-1]
	}
	return nil, nil
}

type locator struct {
	Using string `json:"using"`
	Value string `json:"value"`
}

func search(r *http.Request, roots []*Element) ([]*Element, *wdError) {
	var loc locator
	if werr := decode(r, &loc); werr != nil {
		return nil, werr
	}
	match, ok := compile(loc.Using, loc.Value)
	if !ok {
		return nil, errorf(http.StatusBadRequest, "invalid selector", "unsupported selector %s=%q", loc.Using, loc.Value)
	}
	var found []*Element
	walk(roots, func(e *Element) {
		if match(e) {
			found = append(found, e)
		}
	})
	return found, nil
}

func first(sess *session, found []*Element, werr *wdError) (interface{}, *wdError) {
	if werr != nil {
		return nil, werr
	}
	if len(found) == 0 {
		return nil, errorf(http.StatusNotFound, "no such element", "no element matches the locator")
	}
	return sess.reference(found[0]), nil
}

func all(sess *session, found []*Element, werr *wdError) (interface{}, *wdError) {
	if werr != nil {
		return nil, werr
	}
	refs := make([]map[string]string, 0, len(found))
	for _, e := range found {
		refs = append(refs, sess.reference(e))
	}
	return refs, nil
}

func findElement(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	found, werr := search(r, sess.document().Elements)
	return first(sess, found, werr)
}

func findElements(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	found, werr := search(r, sess.document().Elements)
	return all(sess, found, werr)
}

func activeElement(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	if sess.focused != nil {
		return sess.reference(sess.focused), nil
	}
	return nil, errorf(http.StatusNotFound, "no such element", "no element has focus")
}

func pathElement(r *http.Request, sess *session) (*Element, *wdError) {
	return sess.element(chi.URLParam(r, "elementId"))
}

func findElementFromElement(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	e, werr := pathElement(r, sess)
	if werr != nil {
		return nil, werr
	}
	found, werr := search(r, e.Children)
	return first(sess, found, werr)
}

func findElementsFromElement(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	e, werr := pathElement(r, sess)
	if werr != nil {
		return nil, werr
	}
	found, werr := search(r, e.Children)
	return all(sess, found, werr)
}

func elementQuery(fn func(e *Element, name string) interface{}) handlerFunc {
	return func(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
		e, werr := pathElement(r, sess)
		if werr != nil {
			return nil, werr
		}
		return fn(e, chi.URLParam(r, "name")), nil
	}
}

var (
	elementSelected  = elementQuery(func(e *Element, _ string) interface{} { return e.Selected })
	elementEnabled   = elementQuery(func(e *Element, _ string) interface{} { return !e.Disabled })
	elementDisplayed = elementQuery(func(e *Element, _ string) interface{} { return !e.Hidden })
	elementTagName   = elementQuery(func(e *Element, _ string) interface{} { return e.Tag })
	elementText      = elementQuery(func(e *Element, _ string) interface{} {
		if e.Hidden {
			return ""
		}
		return e.Text
	})
	elementAttribute = elementQuery(func(e *Element, name string) interface{} {
		if v, ok := e.attribute(name); ok {
			return v
		}
		return nil
	})
	elementProperty = elementQuery(func(e *Element, name string) interface{} {
		switch name {
		case "value":
			return e.Value
		case "checked":
			return e.Selected
		case "tagName":
			return strings.ToUpper(e.Tag)
		}
		if v, ok := e.attribute(name); ok {
			return v
		}
		return nil
	})
	elementCSSValue = elementQuery(func(e *Element, name string) interface{} {
		if name == "display" {
			if e.Hidden {
				return "none"
			}
			return "block"
		}
		return ""
	})
	elementRect = elementQuery(func(e *Element, _ string) interface{} {
		return rect{X: 8, Y: 8, Width: 100, Height: 20}
	})
)

func elementClick(s *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	e, werr := pathElement(r, sess)
	if werr != nil {
		return nil, werr
	}
	if e.Hidden || e.Disabled {
		return nil, errorf(http.StatusBadRequest, "element not interactable", "element %s can not be clicked", e.Tag)
	}
	sess.focused = e
	switch {
	case e.Href != "":
		sess.navigate(s.pages, e.Href)
	case e.Alert != "":
		text := e.Alert
		sess.alert = &text
	case e.Tag == "input" && e.Attrs["type"] == "checkbox":
		e.Selected = !e.Selected
	}
	return nil, nil
}

func editable(e *Element) *wdError {
	if e.Tag != "input" && e.Tag != "textarea" {
		return errorf(http.StatusBadRequest, "element not interactable", "element %s is not editable", e.Tag)
	}
	return nil
}

func elementClear(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	e, werr := pathElement(r, sess)
	if werr != nil {
		return nil, werr
	}
	if werr := editable(e); werr != nil {
		return nil, werr
	}
	e.Value = ""
	return nil, nil
}

func elementSendKeys(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	e, werr := pathElement(r, sess)
	if werr != nil {
		return nil, werr
	}
	var body struct {
		Text *string `json:"text"`
	}
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	if body.Text == nil {
		return nil, errorf(http.StatusBadRequest, "invalid argument", "missing text")
	}
	if werr := editable(e); werr != nil {
		return nil, werr
	}
	sess.focused = e
	e.Value += strings.Map(func(r rune) rune {
		// special keys are not typed
		if r >= 0xe000 && r <= 0xf8ff {
			return -1
		}
		return r
	}, *body.Text)
	return nil, nil
}

func elementScreenshot(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	if _, werr := pathElement(r, sess); werr != nil {
		return nil, werr
	}
	return screenshotPNG, nil
}

func screenshot(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	if _, werr := sess.currentWindow(); werr != nil {
		return nil, werr
	}
	return screenshotPNG, nil
}

var alertCall = regexp.MustCompile(`^\s*(?:window\.)?(alert|confirm|prompt)\(\s*["']([^"']*)["']\s*\)\s*;?\s*$`)

// executeScript understands a handful of scripts: "return document.title",
// "return arguments[i]", alert/confirm/prompt("text") and "throw ...".
// Anything else evaluates to null.
func executeScript(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	var body struct {
		Script *string       `json:"script"`
		Args   []interface{} `json:"args"`
	}
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	if body.Script == nil || body.Args == nil {
		return nil, errorf(http.StatusBadRequest, "invalid argument", "script and args are required")
	}
	for _, a := range body.Args {
		if _, _, werr := sess.resolve(a); werr != nil {
			return nil, werr
		}
	}
	script := strings.TrimSpace(*body.Script)
	switch {
	case script == "return document.title" || script == "return document.title;":
		return sess.page.Title, nil
	case strings.HasPrefix(script, "throw"):
		return nil, errorf(http.StatusInternalServerError, "javascript error", "%s", strings.TrimSpace(strings.TrimPrefix(script, "throw")))
	case strings.HasPrefix(script, "return arguments["):
		rest := strings.TrimSuffix(strings.TrimPrefix(script, "return arguments["), ";")
		i, err := strconv.Atoi(strings.TrimSuffix(rest, "]"))
		if err == nil && i >= 0 && i < len(body.Args) {
			return body.Args[i], nil
		}
		return nil, nil
	}
	if m := alertCall.FindStringSubmatch(script); m != nil {
		text := m[2]
		sess.alert = &text
		return nil, nil
	}
	return nil, nil
}

func allCookies(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	out := make([]cookie, 0, len(sess.cookies))
	host := sess.host()
	for _, c := range sess.cookies {
		if c.Domain == host {
			out = append(out, c)
		}
	}
	return out, nil
}

func (sess *session) cookieIndex(name string) int {
	host := sess.host()
	for i, c := range sess.cookies {
		if c.Name == name && c.Domain == host {
			return i
		}
	}
	return -1
}

func namedCookie(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	name := chi.URLParam(r, "name")
	if i := sess.cookieIndex(name); i >= 0 {
		return sess.cookies[i], nil
	}
	return nil, errorf(http.StatusNotFound, "no such cookie", "no cookie named %s", name)
}

func addCookie(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	var body struct {
		Cookie *cookie `json:"cookie"`
	}
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	c := body.Cookie
	if c == nil || c.Name == "" {
		return nil, errorf(http.StatusBadRequest, "invalid argument", "cookie name is required")
	}
	host := sess.host()
	if host == "" {
		return nil, errorf(http.StatusInternalServerError, "unable to set cookie", "no document to set cookies on")
	}
	if c.Domain == "" {
		c.Domain = host
	}
	if c.Domain != host {
		return nil, errorf(http.StatusBadRequest, "invalid cookie domain", "cookie domain %s does not match %s", c.Domain, host)
	}
	if c.Path == "" {
		c.Path = "/"
	}
	if c.SameSite == "" {
		c.SameSite = "Lax"
	}
	if i := sess.cookieIndex(c.Name); i >= 0 {
		sess.cookies[i] = *c
	} else {
		sess.cookies = append(sess.cookies, *c)
	}
	return nil, nil
}

func deleteCookie(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	if i := sess.cookieIndex(chi.URLParam(r, "name")); i >= 0 {
		sess.cookies = append(sess.cookies[:i], sess.cookies[i+1:]...)
	}
	return nil, nil
}

func deleteAllCookies(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	host := sess.host()
	kept := sess.cookies[:0]
	for _, c := range sess.cookies {
		if c.Domain != host {
			kept = append(kept, c)
		}
	}
	sess.cookies = kept
	return nil, nil
}

func performActions(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	var body struct {
		Actions json.RawMessage `json:"actions"`
	}
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	var seqs []struct {
		Type    string                   `json:"type"`
		ID      string                   `json:"id"`
		Actions []map[string]interface{} `json:"actions"`
	}
	if err := json.Unmarshal(body.Actions, &seqs); err != nil || seqs == nil {
		return nil, errorf(http.StatusBadRequest, "invalid argument", "actions must be an array of input sources")
	}
	for _, seq := range seqs {
		switch seq.Type {
		case "key", "pointer", "wheel", "none":
		default:
			return nil, errorf(http.StatusBadRequest, "invalid argument", "unknown input source type %q", seq.Type)
		}
		if seq.ID == "" {
			return nil, errorf(http.StatusBadRequest, "invalid argument", "input source without id")
		}
		for _, a := range seq.Actions {
			if _, _, werr := sess.resolve(a["origin"]); werr != nil {
				return nil, werr
			}
		}
	}
	sess.actions = append(sess.actions, body.Actions)
	return nil, nil
}

func releaseActions(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	sess.released++
	return nil, nil
}

func noAlert() *wdError {
	return errorf(http.StatusNotFound, "no such alert", "no user prompt is open")
}

func dismissAlert(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	if sess.alert == nil {
		return nil, noAlert()
	}
	sess.alert = nil
	sess.promptText = ""
	return nil, nil
}

func acceptAlert(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	return dismissAlert(nil, nil, sess)
}

func alertText(_ *Server, _ *http.Request, sess *session) (interface{}, *wdError) {
	if sess.alert == nil {
		return nil, noAlert()
	}
	return *sess.alert, nil
}

func sendAlertText(_ *Server, r *http.Request, sess *session) (interface{}, *wdError) {
	if sess.alert == nil {
		return nil, noAlert()
	}
	var body struct {
		Text string `json:"text"`
	}
	if werr := decode(r, &body); werr != nil {
		return nil, werr
	}
	sess.promptText = body.Text
	return nil, nil
}
