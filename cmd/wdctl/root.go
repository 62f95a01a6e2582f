// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fedesog/webdriver"
	"github.com/fedesog/webdriver/internal/config"
	"github.com/fedesog/webdriver/internal/observability"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// app is the state shared by the subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	cmd := &cobra.Command{
		Use:           "wdctl",
		Short:         "wdctl talks to a W3C WebDriver remote end.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initializeConfig(); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			cfg, err := config.NewConfigFromViper(a.v)
			if err != nil {
				return fmt.Errorf("failed to load or validate config: %w", err)
			}
			a.cfg = cfg
			observability.InitializeLogger(cfg.Logger)
			a.logger = observability.GetLogger()
			a.logger.Debug("configuration loaded", zap.String("remote", cfg.Remote.URL), zap.String("version", Version))
			return nil
		},
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./wdctl.yaml)")
	flags.String("remote", "", "URL of the remote end (remote.url)")
	flags.String("log-level", "", "log level (logger.level)")
	_ = a.v.BindPFlag("remote.url", flags.Lookup("remote"))
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))

	cmd.AddCommand(newStatusCmd(a), newProbeCmd(a))
	return cmd
}

// initializeConfig reads the config file, if any, and WDCTL_* variables.
func (a *app) initializeConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("wdctl")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(config.EnvKeyReplacer)
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// remote connects to url, or to the configured remote end when url is empty.
func (a *app) remote(url string) (*webdriver.Remote, error) {
	if url == "" {
		url = a.cfg.Remote.URL
	}
	opts := []webdriver.Option{
		webdriver.WithLogger(a.logger),
		webdriver.WithCommandTimeout(a.cfg.Remote.CommandTimeout),
		webdriver.WithReleaseTimeout(a.cfg.Session.ReleaseTimeout),
	}
	if a.cfg.Remote.RateLimit > 0 {
		opts = append(opts, webdriver.WithRateLimit(rate.Limit(a.cfg.Remote.RateLimit), a.cfg.Remote.RateBurst))
	}
	return webdriver.NewRemote(url, opts...)
}
