// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fakedriver

import (
	"regexp"
	"strings"
)

// Page is a document served by the fake remote end.
type Page struct {
	Title    string
	Elements []*Element
}

// Element is a node of a Page. Clicking an element with Href navigates to
// it; clicking one with Alert opens a user prompt showing that text. An
// element with a Frame is a frame holding that document.
type Element struct {
	Tag      string
	ID       string
	Name     string
	Classes  []string
	Text     string
	Value    string
	Href     string
	Alert    string
	Attrs    map[string]string
	Hidden   bool
	Disabled bool
	Selected bool
	Frame    *Page
	Children []*Element
}

func (p *Page) clone() *Page {
	if p == nil {
		return nil
	}
	c := &Page{Title: p.Title, Elements: make([]*Element, len(p.Elements))}
	for i, e := range p.Elements {
		c.Elements[i] = e.clone()
	}
	return c
}

func (e *Element) clone() *Element {
	c := *e
	c.Classes = append([]string(nil), e.Classes...)
	if e.Attrs != nil {
		c.Attrs = make(map[string]string, len(e.Attrs))
		for k, v := range e.Attrs {
			c.Attrs[k] = v
		}
	}
	c.Frame = e.Frame.clone()
	c.Children = make([]*Element, len(e.Children))
	for i, ch := range e.Children {
		c.Children[i] = ch.clone()
	}
	return &c
}

// walk visits roots and their descendants in document order.
func walk(roots []*Element, fn func(*Element)) {
	for _, e := range roots {
		fn(e)
		walk(e.Children, fn)
	}
}

func (p *Page) frames() []*Element {
	var fs []*Element
	walk(p.Elements, func(e *Element) {
		if e.Frame != nil {
			fs = append(fs, e)
		}
	})
	return fs
}

func (e *Element) attribute(name string) (string, bool) {
	switch name {
	case "id":
		return e.ID, e.ID != ""
	case "name":
		return e.Name, e.Name != ""
	case "class":
		return strings.Join(e.Classes, " "), len(e.Classes) > 0
	case "href":
		return e.Href, e.Href != ""
	case "value":
		return e.Value, e.Tag == "input" || e.Tag == "textarea"
	}
	v, ok := e.Attrs[name]
	return v, ok
}

func (e *Element) hasClass(c string) bool {
	for _, x := range e.Classes {
		if x == c {
			return true
		}
	}
	return false
}

var (
	cssRe   = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9]*|\*)?(?:#([\w-]+))?(?:\.([\w-]+))?(?:\[([\w-]+)="((?:[^"\\]|\\.)*)"\])?$`)
	xpathRe = regexp.MustCompile(`^//([a-zA-Z][a-zA-Z0-9]*|\*)(?:\[@([\w-]+)='([^']*)'\])?$`)
)

type matcher func(*Element) bool

// compile supports a subset of each strategy: simple CSS selectors
// (tag, #id, .class, [attr="v"] and their combination) and //tag[@attr='v']
// XPath expressions.
func compile(using, value string) (matcher, bool) {
	switch using {
	case "css selector":
		m := cssRe.FindStringSubmatch(strings.TrimSpace(value))
		if m == nil || value == "" {
			return nil, false
		}
		tag, id, class, attr := m[1], m[2], m[3], m[4]
		attrValue := strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(m[5])
		return func(e *Element) bool {
			if tag != "" && tag != "*" && tag != e.Tag {
				return false
			}
			if id != "" && id != e.ID {
				return false
			}
			if class != "" && !e.hasClass(class) {
				return false
			}
			if attr != "" {
				v, ok := e.attribute(attr)
				if !ok || v != attrValue {
					return false
				}
			}
			return true
		}, true
	case "link text":
		return func(e *Element) bool { return e.Tag == "a" && strings.TrimSpace(e.Text) == value }, true
	case "partial link text":
		return func(e *Element) bool { return e.Tag == "a" && strings.Contains(e.Text, value) }, true
	case "tag name":
		return func(e *Element) bool { return e.Tag == value }, value != ""
	case "xpath":
		m := xpathRe.FindStringSubmatch(value)
		if m == nil {
			return nil, false
		}
		tag, attr, attrValue := m[1], m[2], m[3]
		return func(e *Element) bool {
			if tag != "*" && tag != e.Tag {
				return false
			}
			if attr == "" {
				return true
			}
			v, ok := e.attribute(attr)
			return ok && v == attrValue
		}, true
	}
	return nil, false
}

// DefaultPages is the site served when no pages are configured.
func DefaultPages() map[string]*Page {
	return map[string]*Page{
		"https://example.test/": {
			Title: "Example Domain",
			Elements: []*Element{
				{Tag: "h1", ID: "title", Text: "Example Domain"},
				{Tag: "p", Classes: []string{"lead", "intro"}, Text: "This domain is for use in examples."},
				{Tag: "a", ID: "next", Href: "https://example.test/next", Text: "More information..."},
				{Tag: "form", ID: "search", Children: []*Element{
					{Tag: "input", Name: "q", Attrs: map[string]string{"type": "text"}},
					{Tag: "input", ID: "agree", Attrs: map[string]string{"type": "checkbox"}, Selected: true},
					{Tag: "button", ID: "go", Text: "Search", Disabled: true},
				}},
				{Tag: "button", ID: "confirm", Text: "Delete", Alert: "Are you sure?"},
				{Tag: "span", ID: "hidden", Hidden: true, Text: "secret"},
				{Tag: "iframe", ID: "frame", Frame: &Page{
					Title: "Inner",
					Elements: []*Element{
						{Tag: "p", ID: "inner", Text: "inside the frame"},
					},
				}},
			},
		},
		"https://example.test/next": {
			Title: "Next",
			Elements: []*Element{
				{Tag: "h1", ID: "title", Text: "Next page"},
				{Tag: "a", ID: "back", Href: "https://example.test/", Text: "back"},
			},
		},
	}
}
