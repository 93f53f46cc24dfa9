// Package config provides configuration validation for rig.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidEndpoint      = errors.New("endpoint is not a valid http(s) URL")
	ErrInvalidDuration      = errors.New("duration string is invalid")
	ErrEmptyMaintenanceArgs = errors.New("maintenance entry has no arguments")
	ErrEmptyMaintenanceArg  = errors.New("maintenance entry contains an empty argument")
	ErrInvalidStrayName     = errors.New("stray process entry must be a bare executable name")
	ErrInvalidLogLevel      = errors.New("log level must be debug, info, warn, or error")
	ErrInvalidMetricsAddr   = errors.New("metrics addr is not a valid host:port")
)

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidationError wraps a validation error with context.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the configuration for errors that would otherwise only
// surface mid-launch. A nil config is valid (defaults apply).
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}

	if err := validateEndpoint(c.App.Endpoint); err != nil {
		return err
	}

	durations := []struct {
		field string
		value string
	}{
		{"launch.ready_timeout", c.Launch.ReadyTimeout},
		{"launch.poll_interval", c.Launch.PollInterval},
		{"launch.probe_timeout", c.Launch.ProbeTimeout},
		{"launch.stop_grace", c.Launch.StopGrace},
	}
	for _, d := range durations {
		if err := validateDuration(d.field, d.value); err != nil {
			return err
		}
	}

	for i, args := range c.Launch.Maintenance {
		if err := validateMaintenanceEntry(i, args); err != nil {
			return err
		}
	}

	for i, name := range c.Launch.StrayProcesses {
		if err := validateStrayName(i, name); err != nil {
			return err
		}
	}

	if c.Log.Level != "" && !validLogLevels[strings.ToLower(c.Log.Level)] {
		return &ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: "must be debug, info, warn, or error",
			Err:     ErrInvalidLogLevel,
		}
	}

	if c.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			return &ValidationError{
				Field:   "metrics.addr",
				Value:   c.Metrics.Addr,
				Message: "must be a host:port listen address",
				Err:     ErrInvalidMetricsAddr,
			}
		}
	}

	return nil
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{
			Field:   "app.endpoint",
			Value:   endpoint,
			Message: "must be an http(s) URL with a host",
			Err:     ErrInvalidEndpoint,
		}
	}
	return nil
}

func validateDuration(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.ParseDuration(value); err != nil {
		return &ValidationError{
			Field:   field,
			Value:   value,
			Message: "must be a Go duration string (e.g. \"30s\", \"4h\")",
			Err:     ErrInvalidDuration,
		}
	}
	return nil
}

func validateMaintenanceEntry(i int, args []string) error {
	if len(args) == 0 {
		return &ValidationError{
			Field:   fmt.Sprintf("launch.maintenance[%d]", i),
			Message: "must contain at least one argument",
			Err:     ErrEmptyMaintenanceArgs,
		}
	}
	for j, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("launch.maintenance[%d][%d]", i, j),
				Message: "cannot be empty",
				Err:     ErrEmptyMaintenanceArg,
			}
		}
	}
	return nil
}

func validateStrayName(i int, name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsRune(name, '/') {
		return &ValidationError{
			Field:   fmt.Sprintf("launch.stray_processes[%d]", i),
			Value:   name,
			Message: "must be a non-empty executable name without path separators",
			Err:     ErrInvalidStrayName,
		}
	}
	return nil
}
