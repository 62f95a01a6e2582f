// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedesog/webdriver/wire"
)

func TestSequencesArePadded(t *testing.T) {
	a := (&Session{}).Actions().
		KeyDown(ShiftKey).
		PointerMove(10, 20, 100*time.Millisecond, OriginViewport).
		Click(LeftButton).
		KeyUp(ShiftKey)

	want := []ActionSequence{
		{Type: "key", ID: "keyboard", Actions: []Tick{
			{"type": "keyDown", "value": ShiftKey},
			{"type": "keyUp", "value": ShiftKey},
			{"type": "pause", "duration": int64(0)},
		}},
		{Type: "pointer", ID: "mouse", Parameters: map[string]string{"pointerType": "mouse"}, Actions: []Tick{
			{"type": "pointerMove", "x": 10, "y": 20, "duration": int64(100), "origin": "viewport"},
			{"type": "pointerDown", "button": 0},
			{"type": "pointerUp", "button": 0},
		}},
	}
	if diff := cmp.Diff(want, a.Sequences()); diff != "" {
		t.Errorf("Sequences() mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyChain(t *testing.T) {
	a := (&Session{}).Actions()
	assert.Empty(t, a.Sequences())
	a.Pause(time.Second).Reset()
	assert.Empty(t, a.Sequences())
}

func TestSendKeysSplitsCharacters(t *testing.T) {
	seqs := (&Session{}).Actions().SendKeys("hé").Sequences()
	require.Len(t, seqs, 1)
	var got []string
	for _, tick := range seqs[0].Actions {
		got = append(got, tick["type"].(string)+" "+tick["value"].(string))
	}
	assert.Equal(t, []string{"keyDown h", "keyUp h", "keyDown é", "keyUp é"}, got)
}

func TestPerformActions(t *testing.T) {
	ctx := context.Background()
	fake, s := openPage(t)

	q, err := s.FindElement(ctx, By{Name, "q"})
	require.NoError(t, err)

	chain := s.Actions().
		PointerType(PenPointer).
		PointerMove(0, 0, 0, OriginElement(q)).
		Click(LeftButton).
		Scroll(0, 0, 0, 120, 0, OriginViewport).
		Pause(10 * time.Millisecond)
	require.NoError(t, chain.Perform(ctx))

	sent := fake.Actions(s.ID())
	require.Len(t, sent, 1)
	assert.JSONEq(t, `[
		{"type": "pointer", "id": "pen", "parameters": {"pointerType": "pen"}, "actions": [
			{"type": "pointerMove", "x": 0, "y": 0, "duration": 0, "origin": {"`+wire.ElementKey+`": "`+q.ID()+`"}},
			{"type": "pointerDown", "button": 0},
			{"type": "pointerUp", "button": 0}
		]},
		{"type": "wheel", "id": "wheel", "actions": [
			{"type": "scroll", "x": 0, "y": 0, "deltaX": 0, "deltaY": 120, "duration": 0, "origin": "viewport"},
			{"type": "pause", "duration": 0},
			{"type": "pause", "duration": 0}
		]},
		{"type": "none", "id": "none", "actions": [
			{"type": "pause", "duration": 10},
			{"type": "pause", "duration": 0},
			{"type": "pause", "duration": 0}
		]}
	]`, string(sent[0]))

	// the chain is kept until Reset
	require.NoError(t, chain.Perform(ctx))
	require.NoError(t, chain.Reset().KeyDown("a").KeyUp("a").Perform(ctx))
	sent = fake.Actions(s.ID())
	require.Len(t, sent, 3)
	assert.JSONEq(t, string(sent[0]), string(sent[1]))
	assert.JSONEq(t, `[{"type": "key", "id": "keyboard", "actions": [
		{"type": "keyDown", "value": "a"},
		{"type": "keyUp", "value": "a"}
	]}]`, string(sent[2]))

	require.NoError(t, chain.Release(ctx))
	assert.Len(t, chain.Sequences(), 1)
}

func TestPerformWithStaleOrigin(t *testing.T) {
	ctx := context.Background()
	fake, s := openPage(t)

	q, err := s.FindElement(ctx, By{Name, "q"})
	require.NoError(t, err)
	require.NoError(t, s.Refresh(ctx))
	_, err = q.Text(ctx)
	require.ErrorIs(t, err, wire.StaleElementReference)

	err = s.Actions().PointerMove(1, 1, 0, OriginElement(q)).Perform(ctx)
	assert.ErrorIs(t, err, wire.StaleElementReference)
	assert.Empty(t, fake.Actions(s.ID()))
}
