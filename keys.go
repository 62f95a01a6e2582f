// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

//Special keys, as code points of the Unicode private use area understood by
//remote ends. They can be concatenated with ordinary text:
//
//	el.SendKeys(ctx, "golang"+webdriver.EnterKey)
const (
	NullKey       = "\ue000"
	CancelKey     = "\ue001"
	HelpKey       = "\ue002"
	BackspaceKey  = "\ue003"
	TabKey        = "\ue004"
	ClearKey      = "\ue005"
	ReturnKey     = "\ue006"
	EnterKey      = "\ue007"
	ShiftKey      = "\ue008"
	ControlKey    = "\ue009"
	AltKey        = "\ue00a"
	PauseKey      = "\ue00b"
	EscapeKey     = "\ue00c"
	SpaceKey      = "\ue00d"
	PageUpKey     = "\ue00e"
	PageDownKey   = "\ue00f"
	EndKey        = "\ue010"
	HomeKey       = "\ue011"
	LeftArrowKey  = "\ue012"
	UpArrowKey    = "\ue013"
	RightArrowKey = "\ue014"
	DownArrowKey  = "\ue015"
	InsertKey     = "\ue016"
	DeleteKey     = "\ue017"
	SemicolonKey  = "\ue018"
	EqualsKey     = "\ue019"

	Numpad0Key   = "\ue01a"
	Numpad1Key   = "\ue01b"
	Numpad2Key   = "\ue01c"
	Numpad3Key   = "\ue01d"
	Numpad4Key   = "\ue01e"
	Numpad5Key   = "\ue01f"
	Numpad6Key   = "\ue020"
	Numpad7Key   = "\ue021"
	Numpad8Key   = "\ue022"
	Numpad9Key   = "\ue023"
	MultiplyKey  = "\ue024"
	AddKey       = "\ue025"
	SeparatorKey = "\ue026"
	SubtractKey  = "\ue027"
	DecimalKey   = "\ue028"
	DivideKey    = "\ue029"

	F1Key  = "\ue031"
	F2Key  = "\ue032"
	F3Key  = "\ue033"
	F4Key  = "\ue034"
	F5Key  = "\ue035"
	F6Key  = "\ue036"
	F7Key  = "\ue037"
	F8Key  = "\ue038"
	F9Key  = "\ue039"
	F10Key = "\ue03a"
	F11Key = "\ue03b"
	F12Key = "\ue03c"

	MetaKey    = "\ue03d"
	CommandKey = MetaKey
)
