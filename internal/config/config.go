// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the settings of the wdctl command from defaults, a
// configuration file and WDCTL_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override keys, as in
// WDCTL_REMOTE_URL for remote.url.
const EnvPrefix = "WDCTL"

// EnvKeyReplacer maps nested keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Config is the full configuration.
type Config struct {
	Remote  RemoteConfig  `mapstructure:"remote" yaml:"remote"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
}

// RemoteConfig describes the remote end and how commands are sent to it.
type RemoteConfig struct {
	URL            string        `mapstructure:"url" yaml:"url"`
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
	// RateLimit is in commands per second; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst" yaml:"rate_burst"`
}

// SessionConfig holds the defaults of new sessions.
type SessionConfig struct {
	BrowserName    string        `mapstructure:"browser_name" yaml:"browser_name"`
	ReleaseTimeout time.Duration `mapstructure:"release_timeout" yaml:"release_timeout"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color of each log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// NewDefaultConfig returns the configuration made of defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	// -- Remote --
	v.SetDefault("remote.url", "http://127.0.0.1:4444")
	v.SetDefault("remote.command_timeout", "60s")
	v.SetDefault("remote.rate_limit", 0)
	v.SetDefault("remote.rate_burst", 1)

	// -- Session --
	v.SetDefault("session.browser_name", "chrome")
	v.SetDefault("session.release_timeout", "10s")

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "wdctl")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
}

// NewConfigFromViper decodes and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the values viper can not check by type alone.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Remote.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("remote.url must be an absolute http(s) URL, got %q", c.Remote.URL)
	}
	if c.Remote.CommandTimeout <= 0 {
		return fmt.Errorf("remote.command_timeout must be positive")
	}
	if c.Remote.RateLimit < 0 {
		return fmt.Errorf("remote.rate_limit must not be negative")
	}
	if c.Remote.RateLimit > 0 && c.Remote.RateBurst <= 0 {
		return fmt.Errorf("remote.rate_burst must be a positive integer when rate_limit is set")
	}
	if c.Session.BrowserName == "" {
		return fmt.Errorf("session.browser_name is a required configuration field")
	}
	if c.Session.ReleaseTimeout <= 0 {
		return fmt.Errorf("session.release_timeout must be positive")
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	return nil
}
