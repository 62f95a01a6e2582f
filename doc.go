// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The package implements a client of the W3C WebDriver protocol. It talks to
// any remote end already listening for HTTP commands: a Selenium server,
// chromedriver, geckodriver.
//
// See https://www.w3.org/TR/webdriver/
//
// Every command of a session is sent on the session's own lane, one at a
// time and in the order it was issued; different sessions run in parallel.
// Methods block until the remote end answers. Async runs any of them without
// blocking the caller.
//
// Element handles belong to the session that found them. A handle the remote
// end reported stale keeps failing with wire.StaleElementReference without
// sending anything, and every handle fails with ErrSessionClosed once its
// session was closed.
//
// Example:
//	remote, err := webdriver.NewRemote("http://127.0.0.1:9515")
//	if err != nil {
//		log.Fatal(err)
//	}
//	caps := webdriver.Capabilities{"browserName": "chrome"}
//	err = remote.WithSession(ctx, caps, func(s *webdriver.Session) error {
//		if err := s.Get(ctx, "https://golang.org"); err != nil {
//			return err
//		}
//		el, err := s.FindElement(ctx, webdriver.By{webdriver.CSS_Selector, "h1"})
//		if err != nil {
//			return err
//		}
//		text, err := el.Text(ctx)
//		log.Println(text)
//		return err
//	})
//
package webdriver
