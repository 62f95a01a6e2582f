// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"time"

	"github.com/fedesog/webdriver/wire"
)

type MouseButton int

const (
	LeftButton   = MouseButton(0)
	MiddleButton = MouseButton(1)
	RightButton  = MouseButton(2)
)

//PointerType is the kind of device a pointer lane simulates.
type PointerType string

const (
	MousePointer = PointerType("mouse")
	PenPointer   = PointerType("pen")
	TouchPointer = PointerType("touch")
)

//Origin is the reference point of pointer and wheel coordinates.
type Origin struct {
	kind    string
	element *Element
}

var (
	//Coordinates are relative to the top-left corner of the viewport.
	OriginViewport = Origin{kind: "viewport"}
	//Coordinates are relative to the current pointer position.
	OriginPointer = Origin{kind: "pointer"}
)

//OriginElement makes coordinates relative to the center of e.
func OriginElement(e *Element) Origin { return Origin{kind: "element", element: e} }

func (o Origin) wireValue() interface{} {
	if o.element != nil {
		return wire.ElementReference(o.element.id)
	}
	if o.kind == "" {
		return OriginViewport.kind
	}
	return o.kind
}

//Tick is one action of a lane, as sent on the wire.
type Tick map[string]interface{}

//ActionSequence is one input source and its ticks.
type ActionSequence struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Actions    []Tick            `json:"actions"`
}

const (
	keyLane     = "key"
	pointerLane = "pointer"
	wheelLane   = "wheel"
	noneLane    = "none"
)

var laneOrder = []string{keyLane, pointerLane, wheelLane, noneLane}

// laneIDs names the input sources; the pointer lane is named after its
// pointer type.
var laneIDs = map[string]string{
	keyLane:   "keyboard",
	wheelLane: "wheel",
	noneLane:  "none",
}

//ActionChain builds a gesture made of key, pointer, wheel and pause actions
//that the remote end performs as one command. Appending only records the
//actions; nothing is sent until Perform. The i-th actions of all lanes run
//in the same tick.
//
//An ActionChain is not safe for concurrent use.
type ActionChain struct {
	s           *Session
	pointerType PointerType
	lanes       map[string][]Tick
	origins     []*Element
}

//Actions returns an empty action chain for the session.
func (s *Session) Actions() *ActionChain {
	return &ActionChain{s: s, pointerType: MousePointer, lanes: make(map[string][]Tick)}
}

func (a *ActionChain) add(lane string, t Tick) *ActionChain {
	a.lanes[lane] = append(a.lanes[lane], t)
	return a
}

func ms(d time.Duration) int64 { return d.Milliseconds() }

//PointerType sets the device simulated by the pointer lane. Mouse by default.
func (a *ActionChain) PointerType(t PointerType) *ActionChain {
	a.pointerType = t
	return a
}

//KeyDown presses key, a single character or a special key such as ShiftKey.
func (a *ActionChain) KeyDown(key string) *ActionChain {
	return a.add(keyLane, Tick{"type": "keyDown", "value": key})
}

//KeyUp releases key.
func (a *ActionChain) KeyUp(key string) *ActionChain {
	return a.add(keyLane, Tick{"type": "keyUp", "value": key})
}

//SendKeys types text, pressing and releasing each character in turn.
func (a *ActionChain) SendKeys(text string) *ActionChain {
	for _, r := range text {
		a.KeyDown(string(r)).KeyUp(string(r))
	}
	return a
}

//KeyPause idles the key lane for d.
func (a *ActionChain) KeyPause(d time.Duration) *ActionChain {
	return a.add(keyLane, Tick{"type": "pause", "duration": ms(d)})
}

//PointerMove moves the pointer to (x, y) relative to origin over d.
func (a *ActionChain) PointerMove(x, y int, d time.Duration, origin Origin) *ActionChain {
	if origin.element != nil {
		a.origins = append(a.origins, origin.element)
	}
	return a.add(pointerLane, Tick{"type": "pointerMove", "x": x, "y": y, "duration": ms(d), "origin": origin.wireValue()})
}

//PointerDown presses button.
func (a *ActionChain) PointerDown(button MouseButton) *ActionChain {
	return a.add(pointerLane, Tick{"type": "pointerDown", "button": int(button)})
}

//PointerUp releases button.
func (a *ActionChain) PointerUp(button MouseButton) *ActionChain {
	return a.add(pointerLane, Tick{"type": "pointerUp", "button": int(button)})
}

//Click presses and releases button at the current pointer position.
func (a *ActionChain) Click(button MouseButton) *ActionChain {
	return a.PointerDown(button).PointerUp(button)
}

//PointerPause idles the pointer lane for d.
func (a *ActionChain) PointerPause(d time.Duration) *ActionChain {
	return a.add(pointerLane, Tick{"type": "pause", "duration": ms(d)})
}

//Scroll scrolls by (dx, dy) with the wheel at (x, y) relative to origin. The
//origin of a wheel can not be the pointer.
func (a *ActionChain) Scroll(x, y, dx, dy int, d time.Duration, origin Origin) *ActionChain {
	if origin.element != nil {
		a.origins = append(a.origins, origin.element)
	}
	return a.add(wheelLane, Tick{"type": "scroll", "x": x, "y": y, "deltaX": dx, "deltaY": dy, "duration": ms(d), "origin": origin.wireValue()})
}

//Pause adds a tick in which nothing but time passes.
func (a *ActionChain) Pause(d time.Duration) *ActionChain {
	return a.add(noneLane, Tick{"type": "pause", "duration": ms(d)})
}

//Sequences returns the chain as sent by Perform: lanes without actions are
//left out and shorter lanes are padded at the end with zero pauses.
func (a *ActionChain) Sequences() []ActionSequence {
	longest := 0
	for _, ticks := range a.lanes {
		if len(ticks) > longest {
			longest = len(ticks)
		}
	}
	var seqs []ActionSequence
	for _, lane := range laneOrder {
		ticks := a.lanes[lane]
		if len(ticks) == 0 {
			continue
		}
		id := laneIDs[lane]
		if lane == pointerLane {
			id = string(a.pointerType)
		}
		seq := ActionSequence{Type: lane, ID: id, Actions: make([]Tick, 0, longest)}
		seq.Actions = append(seq.Actions, ticks...)
		for len(seq.Actions) < longest {
			seq.Actions = append(seq.Actions, Tick{"type": "pause", "duration": int64(0)})
		}
		if lane == pointerLane {
			seq.Parameters = map[string]string{"pointerType": string(a.pointerType)}
		}
		seqs = append(seqs, seq)
	}
	return seqs
}

//Perform sends the whole chain as a single command. The chain is kept and
//may be performed again; see Reset.
func (a *ActionChain) Perform(ctx context.Context) error {
	for _, e := range a.origins {
		if err := a.s.owns(e); err != nil {
			return err
		}
		if err := e.checkStale(); err != nil {
			return err
		}
	}
	seqs := a.Sequences()
	if seqs == nil {
		seqs = []ActionSequence{}
	}
	_, err := a.s.do(ctx, wire.Request{Command: wire.PerformActions, Body: wire.Params{"actions": seqs}})
	return err
}

//Reset drops all recorded actions.
func (a *ActionChain) Reset() *ActionChain {
	a.lanes = make(map[string][]Tick)
	a.origins = nil
	return a
}

//Release releases all keys and buttons held down on the remote end. The
//recorded actions are left untouched.
func (a *ActionChain) Release(ctx context.Context) error {
	_, err := a.s.do(ctx, wire.Request{Command: wire.ReleaseActions})
	return err
}
