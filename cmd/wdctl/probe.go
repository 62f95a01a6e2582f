// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net/http/httptest"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fedesog/webdriver"
	"github.com/fedesog/webdriver/internal/fakedriver"
)

type probeResult struct {
	session string
	title   string
	text    string
	elapsed time.Duration
}

// endpoint starts the fake remote end when fake is set and returns its URL.
// An empty URL means the configured remote end.
func (a *app) endpoint(fake bool) (string, func()) {
	if !fake {
		return "", func() {}
	}
	srv := httptest.NewServer(fakedriver.New(fakedriver.WithLogger(a.logger.Named("fakedriver"))))
	a.logger.Debug("fake remote end started", zap.String("url", srv.URL))
	return srv.URL, srv.Close
}

func newProbeCmd(a *app) *cobra.Command {
	var (
		css      string
		fake     bool
		parallel int
	)
	cmd := &cobra.Command{
		Use:   "probe URL",
		Short: "Open a session, load URL and print its title",
		Long: `probe opens a session on the remote end, navigates to URL and prints the
page title, and the text of the element matching --css when given. With
--parallel N it runs N sessions at once. Sessions are always deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parallel < 1 {
				return fmt.Errorf("--parallel must be at least 1")
			}
			url, stop := a.endpoint(fake)
			defer stop()
			r, err := a.remote(url)
			if err != nil {
				return err
			}

			results := make([]probeResult, parallel)
			g, ctx := errgroup.WithContext(cmd.Context())
			for i := range results {
				i := i
				g.Go(func() error {
					res, err := a.probe(ctx, r, args[0], css)
					if err != nil {
						return fmt.Errorf("session %d: %w", i+1, err)
					}
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, res := range results {
				fmt.Fprintf(out, "[%d] session=%s title=%q", i+1, res.session, res.title)
				if css != "" {
					fmt.Fprintf(out, " text=%q", res.text)
				}
				fmt.Fprintf(out, " elapsed=%s\n", res.elapsed.Round(time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&css, "css", "", "CSS selector of an element whose text is printed")
	cmd.Flags().BoolVar(&fake, "fake", false, "run against an in-process fake remote end")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 1, "number of concurrent sessions")
	return cmd
}

func (a *app) probe(ctx context.Context, r *webdriver.Remote, page, css string) (probeResult, error) {
	var res probeResult
	start := time.Now()
	caps := webdriver.Capabilities{"browserName": a.cfg.Session.BrowserName}
	err := r.WithSession(ctx, caps, func(s *webdriver.Session) error {
		res.session = s.ID()
		if err := s.Get(ctx, page); err != nil {
			return err
		}
		title, err := s.Title(ctx)
		if err != nil {
			return err
		}
		res.title = title
		if css == "" {
			return nil
		}
		el, err := s.FindElement(ctx, webdriver.By{Using: webdriver.CSS_Selector, Value: css})
		if err != nil {
			return err
		}
		res.text, err = el.Text(ctx)
		return err
	})
	res.elapsed = time.Since(start)
	return res, err
}
