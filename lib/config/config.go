// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for ticketd.
//
// Configuration is loaded from a single file named by the --config
// flag. There are no fallbacks, no ~/.config discovery, and no
// environment-variable overrides. This ensures deterministic,
// auditable configuration with no hidden overrides. Precedence is:
// explicitly set command-line flags, then the file, then [Default].
//
// Unknown keys in the file are rejected rather than ignored, so a
// typoed field name fails loudly at startup instead of silently
// falling back to a default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Timeout bounds in seconds. A zero timeout would expire reservations
// before the reply reaches the client; a full day is beyond any
// sensible hold.
const (
	MinTimeoutSeconds = 1
	MaxTimeoutSeconds = 86_400
)

// Config is the ticketd configuration.
type Config struct {
	// EventsFile is the path of the two-line-per-event catalog file.
	// Required (from the file or the -f flag).
	EventsFile string `yaml:"events_file"`

	// Port is the UDP port the server binds.
	Port int `yaml:"port"`

	// TimeoutSeconds is how long a reservation stays redeemable.
	TimeoutSeconds uint64 `yaml:"timeout_seconds"`

	// OpsSocket is the Unix socket path for the operational status
	// surface. Empty disables it.
	OpsSocket string `yaml:"ops_socket"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when neither the file nor a
// flag supplies a value.
func Default() *Config {
	return &Config{
		Port:           2022,
		TimeoutSeconds: 5,
		LogLevel:       "info",
	}
}

// LoadFile loads configuration from path on top of the defaults.
// Unknown fields are errors.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty file is a valid "all defaults" config.
			return cfg, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges. Called after flag overrides are
// applied, so every error names the final effective value.
func (c *Config) Validate() error {
	var errs []error

	if c.EventsFile == "" {
		errs = append(errs, fmt.Errorf("events_file is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d outside valid range 1..65535", c.Port))
	}
	if c.TimeoutSeconds < MinTimeoutSeconds || c.TimeoutSeconds > MaxTimeoutSeconds {
		errs = append(errs, fmt.Errorf("timeout_seconds %d outside valid range %d..%d",
			c.TimeoutSeconds, MinTimeoutSeconds, MaxTimeoutSeconds))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ParseLevel maps a log_level string to its slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level %q is not one of debug, info, warn, error", level)
	}
}
