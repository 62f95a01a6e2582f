// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import "net/http"

// Command enumerates the logical operations of the W3C WebDriver protocol.
type Command int

const (
	Status Command = iota
	NewSession
	DeleteSession
	GetTimeouts
	SetTimeouts

	NavigateTo
	GetCurrentURL
	Back
	Forward
	Refresh
	GetTitle
	GetPageSource

	GetWindowHandle
	CloseWindow
	SwitchToWindow
	GetWindowHandles
	NewWindow
	SwitchToFrame
	SwitchToParentFrame
	GetWindowRect
	SetWindowRect
	MaximizeWindow
	MinimizeWindow
	FullscreenWindow

	GetActiveElement
	FindElement
	FindElements
	FindElementFromElement
	FindElementsFromElement
	IsElementSelected
	GetElementAttribute
	GetElementProperty
	GetElementCSSValue
	GetElementText
	GetElementTagName
	GetElementRect
	IsElementEnabled
	IsElementDisplayed
	ElementClick
	ElementClear
	ElementSendKeys
	TakeElementScreenshot

	ExecuteScript
	ExecuteAsyncScript

	GetAllCookies
	GetNamedCookie
	AddCookie
	DeleteCookie
	DeleteAllCookies

	PerformActions
	ReleaseActions

	DismissAlert
	AcceptAlert
	GetAlertText
	SendAlertText

	TakeScreenshot

	commandCount
)

type endpoint struct {
	name   string
	method string
	path   string
}

// Placeholders substituted by Encode.
const (
	sessionVar = "{sessionId}"
	elementVar = "{elementId}"
	nameVar    = "{name}"
)

var endpoints = [commandCount]endpoint{
	Status:        {"status", http.MethodGet, "/status"},
	NewSession:    {"new session", http.MethodPost, "/session"},
	DeleteSession: {"delete session", http.MethodDelete, "/session/{sessionId}"},
	GetTimeouts:   {"get timeouts", http.MethodGet, "/session/{sessionId}/timeouts"},
	SetTimeouts:   {"set timeouts", http.MethodPost, "/session/{sessionId}/timeouts"},

	NavigateTo:    {"navigate to", http.MethodPost, "/session/{sessionId}/url"},
	GetCurrentURL: {"get current url", http.MethodGet, "/session/{sessionId}/url"},
	Back:          {"back", http.MethodPost, "/session/{sessionId}/back"},
	Forward:       {"forward", http.MethodPost, "/session/{sessionId}/forward"},
	Refresh:       {"refresh", http.MethodPost, "/session/{sessionId}/refresh"},
	GetTitle:      {"get title", http.MethodGet, "/session/{sessionId}/title"},
	GetPageSource: {"get page source", http.MethodGet, "/session/{sessionId}/source"},

	GetWindowHandle:     {"get window handle", http.MethodGet, "/session/{sessionId}/window"},
	CloseWindow:         {"close window", http.MethodDelete, "/session/{sessionId}/window"},
	SwitchToWindow:      {"switch to window", http.MethodPost, "/session/{sessionId}/window"},
	GetWindowHandles:    {"get window handles", http.MethodGet, "/session/{sessionId}/window/handles"},
	NewWindow:           {"new window", http.MethodPost, "/session/{sessionId}/window/new"},
	SwitchToFrame:       {"switch to frame", http.MethodPost, "/session/{sessionId}/frame"},
	SwitchToParentFrame: {"switch to parent frame", http.MethodPost, "/session/{sessionId}/frame/parent"},
	GetWindowRect:       {"get window rect", http.MethodGet, "/session/{sessionId}/window/rect"},
	SetWindowRect:       {"set window rect", http.MethodPost, "/session/{sessionId}/window/rect"},
	MaximizeWindow:      {"maximize window", http.MethodPost, "/session/{sessionId}/window/maximize"},
	MinimizeWindow:      {"minimize window", http.MethodPost, "/session/{sessionId}/window/minimize"},
	FullscreenWindow:    {"fullscreen window", http.MethodPost, "/session/{sessionId}/window/fullscreen"},

	GetActiveElement:        {"get active element", http.MethodGet, "/session/{sessionId}/element/active"},
	FindElement:             {"find element", http.MethodPost, "/session/{sessionId}/element"},
	FindElements:            {"find elements", http.MethodPost, "/session/{sessionId}/elements"},
	FindElementFromElement:  {"find element from element", http.MethodPost, "/session/{sessionId}/element/{elementId}/element"},
	FindElementsFromElement: {"find elements from element", http.MethodPost, "/session/{sessionId}/element/{elementId}/elements"},
	IsElementSelected:       {"is element selected", http.MethodGet, "/session/{sessionId}/element/{elementId}/selected"},
	GetElementAttribute:     {"get element attribute", http.MethodGet, "/session/{sessionId}/element/{elementId}/attribute/{name}"},
	GetElementProperty:      {"get element property", http.MethodGet, "/session/{sessionId}/element/{elementId}/property/{name}"},
	GetElementCSSValue:      {"get element css value", http.MethodGet, "/session/{sessionId}/element/{elementId}/css/{name}"},
	GetElementText:          {"get element text", http.MethodGet, "/session/{sessionId}/element/{elementId}/text"},
	GetElementTagName:       {"get element tag name", http.MethodGet, "/session/{sessionId}/element/{elementId}/name"},
	GetElementRect:          {"get element rect", http.MethodGet, "/session/{sessionId}/element/{elementId}/rect"},
	IsElementEnabled:        {"is element enabled", http.MethodGet, "/session/{sessionId}/element/{elementId}/enabled"},
	IsElementDisplayed:      {"is element displayed", http.MethodGet, "/session/{sessionId}/element/{elementId}/displayed"},
	ElementClick:            {"element click", http.MethodPost, "/session/{sessionId}/element/{elementId}/click"},
	ElementClear:            {"element clear", http.MethodPost, "/session/{sessionId}/element/{elementId}/clear"},
	ElementSendKeys:         {"element send keys", http.MethodPost, "/session/{sessionId}/element/{elementId}/value"},
	TakeElementScreenshot:   {"take element screenshot", http.MethodGet, "/session/{sessionId}/element/{elementId}/screenshot"},

	ExecuteScript:      {"execute script", http.MethodPost, "/session/{sessionId}/execute/sync"},
	ExecuteAsyncScript: {"execute async script", http.MethodPost, "/session/{sessionId}/execute/async"},

	GetAllCookies:    {"get all cookies", http.MethodGet, "/session/{sessionId}/cookie"},
	GetNamedCookie:   {"get named cookie", http.MethodGet, "/session/{sessionId}/cookie/{name}"},
	AddCookie:        {"add cookie", http.MethodPost, "/session/{sessionId}/cookie"},
	DeleteCookie:     {"delete cookie", http.MethodDelete, "/session/{sessionId}/cookie/{name}"},
	DeleteAllCookies: {"delete all cookies", http.MethodDelete, "/session/{sessionId}/cookie"},

	PerformActions: {"perform actions", http.MethodPost, "/session/{sessionId}/actions"},
	ReleaseActions: {"release actions", http.MethodDelete, "/session/{sessionId}/actions"},

	DismissAlert:  {"dismiss alert", http.MethodPost, "/session/{sessionId}/alert/dismiss"},
	AcceptAlert:   {"accept alert", http.MethodPost, "/session/{sessionId}/alert/accept"},
	GetAlertText:  {"get alert text", http.MethodGet, "/session/{sessionId}/alert/text"},
	SendAlertText: {"send alert text", http.MethodPost, "/session/{sessionId}/alert/text"},

	TakeScreenshot: {"take screenshot", http.MethodGet, "/session/{sessionId}/screenshot"},
}

func (c Command) valid() bool { return c >= 0 && c < commandCount }

// String returns the command name used by the W3C specification.
func (c Command) String() string {
	if !c.valid() {
		return "unknown command"
	}
	return endpoints[c].name
}

// Method returns the HTTP method of the command.
func (c Command) Method() string {
	if !c.valid() {
		return ""
	}
	return endpoints[c].method
}

// Path returns the path template of the command, with {sessionId},
// {elementId} and {name} placeholders.
func (c Command) Path() string {
	if !c.valid() {
		return ""
	}
	return endpoints[c].path
}
