// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"encoding/json"
	"time"
)

//Capabilities is a map that stores capabilities of a session.
//The client sends it as requested and replaces it with whatever the remote
//end returns; keys and values are not interpreted.
type Capabilities map[string]interface{}

//BrowserName returns the "browserName" capability, if any.
func (c Capabilities) BrowserName() string {
	s, _ := c["browserName"].(string)
	return s
}

func (c Capabilities) clone() Capabilities {
	if c == nil {
		return nil
	}
	return cloneValue(map[string]interface{}(c)).(map[string]interface{})
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, x := range t {
			m[k] = cloneValue(x)
		}
		return m
	case Capabilities:
		return Capabilities(cloneValue(map[string]interface{}(t)).(map[string]interface{}))
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, x := range t {
			s[i] = cloneValue(x)
		}
		return s
	default:
		return v
	}
}

//Server details.
type Status struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
	Build   *Build `json:"build,omitempty"`
	OS      *OS    `json:"os,omitempty"`
}

//Server built details.
type Build struct {
	Version  string `json:"version"`
	Revision string `json:"revision,omitempty"`
	Time     string `json:"time,omitempty"`
}

//Server OS details
type OS struct {
	Arch    string `json:"arch"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

//Rect is the position and size of a window or element, in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

//Timeouts of a session. SetTimeouts sends only the fields that are set and
//leaves the others unchanged on the remote end. A nil Script read back from
//the remote end means scripts never time out.
type Timeouts struct {
	Script   *time.Duration
	PageLoad *time.Duration
	Implicit *time.Duration
}

//Duration returns a pointer to d, for use in Timeouts.
func Duration(d time.Duration) *time.Duration { return &d }

type timeoutsJSON struct {
	Script   *int64 `json:"script,omitempty"`
	PageLoad *int64 `json:"pageLoad,omitempty"`
	Implicit *int64 `json:"implicit,omitempty"`
}

func toMillis(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

func fromMillis(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	return Duration(time.Duration(*ms) * time.Millisecond)
}

func (t Timeouts) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeoutsJSON{
		Script:   toMillis(t.Script),
		PageLoad: toMillis(t.PageLoad),
		Implicit: toMillis(t.Implicit),
	})
}

func (t *Timeouts) UnmarshalJSON(b []byte) error {
	var j timeoutsJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	t.Script = fromMillis(j.Script)
	t.PageLoad = fromMillis(j.PageLoad)
	t.Implicit = fromMillis(j.Implicit)
	return nil
}
