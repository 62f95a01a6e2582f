// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	var fake bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether the remote end can create new sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, stop := a.endpoint(fake)
			defer stop()
			r, err := a.remote(url)
			if err != nil {
				return err
			}
			status, err := r.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("status of %s: %w", r.URL(), err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "remote:  %s\n", r.URL())
			fmt.Fprintf(out, "ready:   %t\n", status.Ready)
			if status.Message != "" {
				fmt.Fprintf(out, "message: %s\n", status.Message)
			}
			if status.Build != nil && status.Build.Version != "" {
				fmt.Fprintf(out, "build:   %s\n", status.Build.Version)
			}
			if status.OS != nil && status.OS.Name != "" {
				fmt.Fprintf(out, "os:      %s %s (%s)\n", status.OS.Name, status.OS.Version, status.OS.Arch)
			}
			if !status.Ready {
				return fmt.Errorf("remote end %s is not ready", r.URL())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fake, "fake", false, "query an in-process fake remote end")
	return cmd
}
