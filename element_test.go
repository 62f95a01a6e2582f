// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedesog/webdriver/wire"
)

func TestSelectorStrategies(t *testing.T) {
	ctx := context.Background()
	_, s := openPage(t)

	for _, tc := range []struct {
		by  By
		tag string
	}{
		{By{ID, "title"}, "h1"},
		{By{CSS_Selector, "h1#title"}, "h1"},
		{By{Name, "q"}, "input"},
		{By{ClassName, "lead"}, "p"},
		{By{LinkText, "More information..."}, "a"},
		{By{PartialLinkText, "information"}, "a"},
		{By{TagName, "button"}, "button"},
		{By{XPath, "//input[@name='q']"}, "input"},
	} {
		t.Run(tc.by.String(), func(t *testing.T) {
			el, err := s.FindElement(ctx, tc.by)
			require.NoError(t, err)
			tag, err := el.TagName(ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.tag, tag)
		})
	}

	_, err := s.FindElement(ctx, By{XPath, "//h1/.."})
	assert.ErrorIs(t, err, wire.InvalidSelector)
}

func TestLocatorTranslation(t *testing.T) {
	assert.Equal(t, wire.Params{"using": "css selector", "value": `[id="a\"b"]`}, By{ID, `a"b`}.params())
	assert.Equal(t, wire.Params{"using": "css selector", "value": `[name="q"]`}, By{Name, "q"}.params())
	assert.Equal(t, wire.Params{"using": "css selector", "value": `.\31 st\.item`}, By{ClassName, "1st.item"}.params())
	assert.Equal(t, wire.Params{"using": "xpath", "value": "//p"}, By{XPath, "//p"}.params())
}

func TestFindElements(t *testing.T) {
	ctx := context.Background()
	_, s := openPage(t)

	inputs, err := s.FindElements(ctx, By{TagName, "input"})
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	name, err := inputs[0].Attribute(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "q", name)

	none, err := s.FindElements(ctx, By{CSS_Selector, ".nothing"})
	require.NoError(t, err)
	assert.Empty(t, none)

	form, err := s.FindElement(ctx, By{ID, "search"})
	require.NoError(t, err)
	buttons, err := form.FindElements(ctx, By{TagName, "button"})
	require.NoError(t, err)
	require.Len(t, buttons, 1)
	_, err = form.FindElement(ctx, By{ID, "title"})
	assert.ErrorIs(t, err, wire.NoSuchElement)
}

func TestElementQueries(t *testing.T) {
	ctx := context.Background()
	_, s := openPage(t)

	next, err := s.FindElement(ctx, By{ID, "next"})
	require.NoError(t, err)
	href, err := next.Attribute(ctx, "href")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/next", href)
	missing, err := next.Attribute(ctx, "data-missing")
	require.NoError(t, err)
	assert.Empty(t, missing)

	agree, err := s.FindElement(ctx, By{ID, "agree"})
	require.NoError(t, err)
	selected, err := agree.IsSelected(ctx)
	require.NoError(t, err)
	assert.True(t, selected)
	checked, err := agree.Property(ctx, "checked")
	require.NoError(t, err)
	assert.JSONEq(t, "true", string(checked))

	goButton, err := s.FindElement(ctx, By{ID, "go"})
	require.NoError(t, err)
	enabled, err := goButton.IsEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.ErrorIs(t, goButton.Click(ctx), wire.ElementNotInteractable)

	hidden, err := s.FindElement(ctx, By{ID, "hidden"})
	require.NoError(t, err)
	displayed, err := hidden.IsDisplayed(ctx)
	require.NoError(t, err)
	assert.False(t, displayed)
	display, err := hidden.CSSValue(ctx, "display")
	require.NoError(t, err)
	assert.Equal(t, "none", display)

	rect, err := hidden.Rect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rect.Width)

	img, err := next.Screenshot(ctx)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(img))
	assert.NoError(t, err)
}

func TestElementInput(t *testing.T) {
	ctx := context.Background()
	_, s := openPage(t)

	q, err := s.FindElement(ctx, By{Name, "q"})
	require.NoError(t, err)
	require.NoError(t, q.SendKeys(ctx, "golang"+EnterKey))
	v, err := q.Property(ctx, "value")
	require.NoError(t, err)
	assert.JSONEq(t, `"golang"`, string(v))

	active, err := s.ActiveElement(ctx)
	require.NoError(t, err)
	assert.True(t, active.Equal(q))

	require.NoError(t, q.Clear(ctx))
	v, err = q.Property(ctx, "value")
	require.NoError(t, err)
	assert.JSONEq(t, `""`, string(v))
}

func TestElementEqual(t *testing.T) {
	ctx := context.Background()
	_, s := openPage(t)

	a, err := s.FindElement(ctx, By{ID, "title"})
	require.NoError(t, err)
	b, err := s.FindElement(ctx, By{TagName, "h1"})
	require.NoError(t, err)
	c, err := s.FindElement(ctx, By{ID, "next"})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestStaleElement(t *testing.T) {
	ctx := context.Background()
	fake, s := openPage(t)

	title, err := s.FindElement(ctx, By{ID, "title"})
	require.NoError(t, err)
	next, err := s.FindElement(ctx, By{ID, "next"})
	require.NoError(t, err)

	// clicking the link replaces the document
	require.NoError(t, next.Click(ctx))

	_, err = title.Text(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, wire.StaleElementReference)
	assert.False(t, errors.Is(err, wire.NoSuchElement))

	sent := len(fake.Requests())
	_, err = title.Text(ctx)
	assert.ErrorIs(t, err, wire.StaleElementReference)
	assert.ErrorIs(t, title.Click(ctx), wire.StaleElementReference)
	assert.Len(t, fake.Requests(), sent, "a stale element is not sent again")

	// the same selector finds the element of the new document
	fresh, err := s.FindElement(ctx, By{ID, "title"})
	require.NoError(t, err)
	text, err := fresh.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Next page", text)
	assert.False(t, fresh.Equal(title))
}

func TestStaleElementAfterExternalNavigation(t *testing.T) {
	ctx := context.Background()
	fake, s := openPage(t)

	el, err := s.FindElement(ctx, By{ID, "title"})
	require.NoError(t, err)
	require.NoError(t, fake.Navigate(s.ID(), examplePage))

	_, err = el.IsDisplayed(ctx)
	assert.ErrorIs(t, err, wire.StaleElementReference)
	_, err = s.ExecuteScript(ctx, "return arguments[0]", el)
	assert.ErrorIs(t, err, wire.StaleElementReference)
}

func TestForeignHandle(t *testing.T) {
	ctx := context.Background()
	_, r := newFake(t)
	s1, s2 := openSession(t, r), openSession(t, r)
	require.NoError(t, s1.Get(ctx, examplePage))
	require.NoError(t, s2.Get(ctx, examplePage))

	frame, err := s1.FindElement(ctx, By{ID, "frame"})
	require.NoError(t, err)

	assert.ErrorIs(t, s2.SwitchToFrame(ctx, FrameElement(frame)), ErrForeignHandle)
	_, err = s2.ExecuteScript(ctx, "return arguments[0]", []interface{}{frame})
	assert.ErrorIs(t, err, ErrForeignHandle)
	err = s2.Actions().PointerMove(0, 0, 0, OriginElement(frame)).Perform(ctx)
	assert.ErrorIs(t, err, ErrForeignHandle)
	assert.Equal(t, StateDefault, s2.Context().State)
}
