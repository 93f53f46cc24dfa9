// Package paths provides a single source of truth for rig file paths.
// All path helpers honor environment variable overrides for isolated testing.
//
// Path resolution precedence:
//  1. Specific env vars (RIG_CONFIG_PATH, RIG_STATE_PATH) take highest priority
//  2. RIG_DIR env var sets the base directory (derives config/state/logs/installs)
//  3. Default behavior (~/.rig) when no env vars are set
package paths

import (
	"os"
	"path/filepath"
)

// Environment variable names for path overrides.
const (
	// EnvRigDir is the base directory override (e.g., /tmp/rig-e2e).
	// When set, config, state, installs, and log paths derive from this directory.
	EnvRigDir = "RIG_DIR"

	// EnvConfigPath overrides the config file path directly.
	EnvConfigPath = "RIG_CONFIG_PATH"

	// EnvStatePath overrides the instance state file path directly.
	EnvStatePath = "RIG_STATE_PATH"
)

// BaseDir returns the rig base directory (~/.rig by default).
// Honors the RIG_DIR environment variable.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvRigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".rig"), nil
}

// ConfigPath returns the path to the rig config file.
// Precedence: RIG_CONFIG_PATH > RIG_DIR/config.toml > ~/.rig/config.toml
func ConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.toml"), nil
}

// StatePath returns the path to the advisory instance state file.
// Precedence: RIG_STATE_PATH > RIG_DIR/instance.json > ~/.rig/instance.json
func StatePath() (string, error) {
	if path := os.Getenv(EnvStatePath); path != "" {
		return path, nil
	}
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "instance.json"), nil
}

// InstallsPath returns the path to the installs registry file.
// (~/.rig/installs.toml by default, or RIG_DIR/installs.toml).
func InstallsPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "installs.toml"), nil
}

// LogDir returns the log directory (~/.rig/logs by default).
// When RIG_DIR is set, returns RIG_DIR/logs.
func LogDir() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "logs"), nil
}

// LogPath returns the path to the rig log file.
func LogPath() (string, error) {
	dir, err := LogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rig.log"), nil
}
