// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fedesog/webdriver/wire"
)

type FindElementStrategy string

const (
	//Returns an element whose class name contains the search value; compound class names are not permitted.
	ClassName = FindElementStrategy("class name")
	//Returns an element matching a CSS selector.
	CSS_Selector = FindElementStrategy("css selector")
	//Returns an element whose ID attribute matches the search value.
	ID = FindElementStrategy("id")
	//Returns an element whose NAME attribute matches the search value.
	Name = FindElementStrategy("name")
	//Returns an anchor element whose visible text matches the search value.
	LinkText = FindElementStrategy("link text")
	//Returns an anchor element whose visible text partially matches the search value.
	PartialLinkText = FindElementStrategy("partial link text")
	//Returns an element whose tag name matches the search value.
	TagName = FindElementStrategy("tag name")
	//Returns an element matching an XPath expression.
	XPath = FindElementStrategy("xpath")
)

//By is an element selector: a strategy and its value. The value is not
//validated locally.
type By struct {
	Using FindElementStrategy
	Value string
}

func (b By) String() string { return string(b.Using) + "=" + b.Value }

// params returns the locator body. W3C remote ends only know five
// strategies, so id, name and class name are rewritten as CSS.
func (b By) params() wire.Params {
	using, value := b.Using, b.Value
	switch using {
	case ID:
		using, value = CSS_Selector, `[id="`+cssString(value)+`"]`
	case Name:
		using, value = CSS_Selector, `[name="`+cssString(value)+`"]`
	case ClassName:
		using, value = CSS_Selector, "."+cssIdent(value)
	}
	return wire.Params{"using": string(using), "value": value}
}

func cssString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func cssIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9' && i == 0:
			fmt.Fprintf(&b, `\%x `, r)
		case r == '-' || r == '_' || r >= 0x80,
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

//Element is a reference to a DOM element of a session. It is only valid
//while its session is open and the element is attached to the page; once the
//remote end reports it stale every further operation fails locally with a
//StaleElementReference error.
type Element struct {
	s     *Session
	id    string
	stale atomic.Bool
}

func newElement(s *Session, id string) *Element { return &Element{s: s, id: id} }

//ID returns the id assigned by the remote end.
func (e *Element) ID() string { return e.id }

//Session returns the session the element belongs to.
func (e *Element) Session() *Session { return e.s }

//Equal reports whether e and other refer to the same element of the same
//session.
func (e *Element) Equal(other *Element) bool {
	return e != nil && other != nil && e.s == other.s && e.id == other.id
}

//MarshalJSON encodes e as a web element reference, so elements may be passed
//as script arguments.
func (e *Element) MarshalJSON() ([]byte, error) {
	return wire.Marshal(wire.ElementReference(e.id))
}

func (e *Element) checkStale() error {
	if e.stale.Load() {
		return staleError(e.id)
	}
	return nil
}

func (e *Element) do(ctx context.Context, req wire.Request) (json.RawMessage, error) {
	if err := e.s.check(req.Command); err != nil {
		return nil, err
	}
	if err := e.checkStale(); err != nil {
		return nil, err
	}
	req.ElementID = e.id
	v, err := e.s.do(ctx, req)
	if errors.Is(err, wire.StaleElementReference) {
		e.stale.Store(true)
	}
	return v, err
}

func (e *Element) getString(ctx context.Context, req wire.Request) (string, error) {
	v, err := e.do(ctx, req)
	if err != nil {
		return "", err
	}
	var str string
	err = wire.Unmarshal(v, &str)
	return str, err
}

func (e *Element) getBool(ctx context.Context, c wire.Command) (bool, error) {
	v, err := e.do(ctx, wire.Request{Command: c})
	if err != nil {
		return false, err
	}
	var b bool
	err = wire.Unmarshal(v, &b)
	return b, err
}

func (s *Session) find(ctx context.Context, c wire.Command, by By, do func(context.Context, wire.Request) (json.RawMessage, error)) (*Element, error) {
	v, err := do(ctx, wire.Request{Command: c, Body: by.params()})
	if err != nil {
		return nil, err
	}
	id, err := wire.DecodeElementID(v)
	if err != nil {
		return nil, err
	}
	return newElement(s, id), nil
}

func (s *Session) findAll(ctx context.Context, c wire.Command, by By, do func(context.Context, wire.Request) (json.RawMessage, error)) ([]*Element, error) {
	v, err := do(ctx, wire.Request{Command: c, Body: by.params()})
	if err != nil {
		return nil, err
	}
	ids, err := wire.DecodeElementIDs(v)
	if err != nil {
		return nil, err
	}
	elements := make([]*Element, len(ids))
	for i, id := range ids {
		elements[i] = newElement(s, id)
	}
	return elements, nil
}

//Search for an element on the page. Fails with a NoSuchElement error when
//nothing matches.
func (s *Session) FindElement(ctx context.Context, by By) (*Element, error) {
	return s.find(ctx, wire.FindElement, by, s.do)
}

//Search for multiple elements on the page, in document order. The result is
//empty when nothing matches.
func (s *Session) FindElements(ctx context.Context, by By) ([]*Element, error) {
	return s.findAll(ctx, wire.FindElements, by, s.do)
}

//Get the element on the page that currently has focus.
func (s *Session) ActiveElement(ctx context.Context) (*Element, error) {
	v, err := s.do(ctx, wire.Request{Command: wire.GetActiveElement})
	if err != nil {
		return nil, err
	}
	id, err := wire.DecodeElementID(v)
	if err != nil {
		return nil, err
	}
	return newElement(s, id), nil
}

//Search for an element on the page, starting from e.
func (e *Element) FindElement(ctx context.Context, by By) (*Element, error) {
	return e.s.find(ctx, wire.FindElementFromElement, by, e.do)
}

//Search for multiple elements on the page, starting from e.
func (e *Element) FindElements(ctx context.Context, by By) ([]*Element, error) {
	return e.s.findAll(ctx, wire.FindElementsFromElement, by, e.do)
}

//Click on an element.
func (e *Element) Click(ctx context.Context) error {
	_, err := e.do(ctx, wire.Request{Command: wire.ElementClick})
	return err
}

//Clear a TEXTAREA or text INPUT element's value.
func (e *Element) Clear(ctx context.Context) error {
	_, err := e.do(ctx, wire.Request{Command: wire.ElementClear})
	return err
}

//Send a sequence of key strokes to an element. Special keys (EnterKey,
//ControlKey...) may be concatenated into text.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	_, err := e.do(ctx, wire.Request{Command: wire.ElementSendKeys, Body: wire.Params{"text": text}})
	return err
}

//Returns the visible text for the element.
func (e *Element) Text(ctx context.Context) (string, error) {
	return e.getString(ctx, wire.Request{Command: wire.GetElementText})
}

//Query for an element's tag name.
func (e *Element) TagName(ctx context.Context) (string, error) {
	return e.getString(ctx, wire.Request{Command: wire.GetElementTagName})
}

//Get the value of an element's attribute. An absent attribute yields "".
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	v, err := e.do(ctx, wire.Request{Command: wire.GetElementAttribute, Name: name})
	if err != nil {
		return "", err
	}
	var str *string
	if err := wire.Unmarshal(v, &str); err != nil {
		return "", err
	}
	if str == nil {
		return "", nil
	}
	return *str, nil
}

//Get the value of an element's DOM property as raw JSON.
func (e *Element) Property(ctx context.Context, name string) (json.RawMessage, error) {
	return e.do(ctx, wire.Request{Command: wire.GetElementProperty, Name: name})
}

//Query the value of an element's computed CSS property.
func (e *Element) CSSValue(ctx context.Context, name string) (string, error) {
	return e.getString(ctx, wire.Request{Command: wire.GetElementCSSValue, Name: name})
}

//Determine if an OPTION element, or an INPUT element of type checkbox or radiobutton is currently selected.
func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	return e.getBool(ctx, wire.IsElementSelected)
}

//Determine if an element is currently enabled.
func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	return e.getBool(ctx, wire.IsElementEnabled)
}

//Determine if an element is currently displayed.
func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	return e.getBool(ctx, wire.IsElementDisplayed)
}

//Determine an element's location on the page and its size.
func (e *Element) Rect(ctx context.Context) (Rect, error) {
	var r Rect
	v, err := e.do(ctx, wire.Request{Command: wire.GetElementRect})
	if err != nil {
		return r, err
	}
	err = wire.Unmarshal(v, &r)
	return r, err
}

//Take a screenshot of the element's bounding box, returned as PNG data.
func (e *Element) Screenshot(ctx context.Context) ([]byte, error) {
	v, err := e.do(ctx, wire.Request{Command: wire.TakeElementScreenshot})
	if err != nil {
		return nil, err
	}
	return wire.DecodeBase64(v)
}
