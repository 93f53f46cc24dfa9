// Package config provides configuration loading and validation for rig.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tessro/rig/internal/paths"
)

// Config represents the rig configuration (config.toml).
type Config struct {
	// App describes the application under test.
	App AppConfig `toml:"app"`

	// Launch tunes the fresh-launch sequence.
	Launch LaunchConfig `toml:"launch"`

	// Metrics configures the optional Prometheus listener.
	Metrics MetricsConfig `toml:"metrics"`

	// Log configures rig's own logging.
	Log LogConfig `toml:"log"`
}

// AppConfig describes the application under test.
type AppConfig struct {
	// Version is the install version resolved through the installs registry.
	Version string `toml:"version"`
	// Exe is an optional explicit executable path. When set, the installs
	// registry is bypassed.
	Exe string `toml:"exe"`
	// Args are the launch arguments for a real instance.
	Args []string `toml:"args"`
	// Endpoint is the automation endpoint URL the instance exposes once ready.
	Endpoint string `toml:"endpoint"`
}

// LaunchConfig tunes the fresh-launch sequence.
type LaunchConfig struct {
	// Maintenance is the ordered list of maintenance launch arg sets run
	// to completion before a real instance is started.
	Maintenance [][]string `toml:"maintenance"`
	// StrayProcesses are executable names killed (if present) before spawn.
	StrayProcesses []string `toml:"stray_processes"`
	// ReadyTimeout bounds the readiness wait (duration string, e.g. "4h").
	ReadyTimeout string `toml:"ready_timeout"`
	// PollInterval is the readiness poll interval (duration string).
	PollInterval string `toml:"poll_interval"`
	// ProbeTimeout bounds a single liveness probe (duration string).
	ProbeTimeout string `toml:"probe_timeout"`
	// StopGrace is how long a graceful shutdown may take before the
	// process is killed (duration string).
	StopGrace string `toml:"stop_grace"`
}

// MetricsConfig configures the optional Prometheus listener.
type MetricsConfig struct {
	// Addr is the listen address (e.g. "127.0.0.1:9321"). Empty disables it.
	Addr string `toml:"addr"`
}

// LogConfig configures rig's own logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level"`
}

// Defaults applied by the accessor methods when a field is unset.
const (
	DefaultVersion      = "default"
	DefaultEndpoint     = "http://127.0.0.1:8750"
	DefaultReadyTimeout = 4 * time.Hour
	DefaultPollInterval = 250 * time.Millisecond
	DefaultProbeTimeout = 5 * time.Second
	DefaultStopGrace    = 10 * time.Second
)

// DefaultMaintenance is the maintenance launch sequence used when none is
// configured: clear cached state, then apply any pending configuration.
var DefaultMaintenance = [][]string{
	{"-maintenance", "clear-cache"},
	{"-maintenance", "apply-config"},
}

// Load loads the rig configuration from the standard path.
// Returns nil config and nil error if the file doesn't exist; all accessor
// methods are nil-safe and fall back to defaults.
func Load() (*Config, error) {
	path, err := paths.ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the configuration from a specific path.
// Returns nil config and nil error if the file doesn't exist.
func LoadFromPath(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Version returns the configured install version or the default.
func (c *Config) Version() string {
	if c != nil && c.App.Version != "" {
		return c.App.Version
	}
	return DefaultVersion
}

// Exe returns the explicit executable override, or empty when the installs
// registry should be consulted.
func (c *Config) Exe() string {
	if c == nil {
		return ""
	}
	return c.App.Exe
}

// Args returns the launch arguments for a real instance.
func (c *Config) Args() []string {
	if c == nil {
		return nil
	}
	return c.App.Args
}

// Endpoint returns the configured automation endpoint URL or the default.
func (c *Config) Endpoint() string {
	if c != nil && c.App.Endpoint != "" {
		return c.App.Endpoint
	}
	return DefaultEndpoint
}

// Maintenance returns the configured maintenance launch sequence or the default.
func (c *Config) Maintenance() [][]string {
	if c != nil && c.Launch.Maintenance != nil {
		return c.Launch.Maintenance
	}
	return DefaultMaintenance
}

// StrayProcesses returns the configured stray process names.
func (c *Config) StrayProcesses() []string {
	if c == nil {
		return nil
	}
	return c.Launch.StrayProcesses
}

// ReadyTimeout returns the configured readiness bound or the default.
func (c *Config) ReadyTimeout() time.Duration {
	if c == nil {
		return DefaultReadyTimeout
	}
	return parseDuration(c.Launch.ReadyTimeout, DefaultReadyTimeout)
}

// PollInterval returns the configured readiness poll interval or the default.
func (c *Config) PollInterval() time.Duration {
	if c == nil {
		return DefaultPollInterval
	}
	return parseDuration(c.Launch.PollInterval, DefaultPollInterval)
}

// ProbeTimeout returns the configured single-probe bound or the default.
func (c *Config) ProbeTimeout() time.Duration {
	if c == nil {
		return DefaultProbeTimeout
	}
	return parseDuration(c.Launch.ProbeTimeout, DefaultProbeTimeout)
}

// StopGrace returns the configured shutdown grace period or the default.
func (c *Config) StopGrace() time.Duration {
	if c == nil {
		return DefaultStopGrace
	}
	return parseDuration(c.Launch.StopGrace, DefaultStopGrace)
}

// MetricsAddr returns the metrics listen address, or empty when disabled.
func (c *Config) MetricsAddr() string {
	if c == nil {
		return ""
	}
	return c.Metrics.Addr
}

// LogLevel returns the configured log level string ("" means default).
func (c *Config) LogLevel() string {
	if c == nil {
		return ""
	}
	return c.Log.Level
}

// parseDuration parses a duration string, falling back to def when the
// string is empty or invalid. Validate reports invalid strings; after a
// successful Validate this can only fall back on empty.
func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
