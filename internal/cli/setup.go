package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tessro/rig/internal/config"
	"github.com/tessro/rig/internal/driver"
	"github.com/tessro/rig/internal/instance"
	"github.com/tessro/rig/internal/locate"
	"github.com/tessro/rig/internal/logging"
	"github.com/tessro/rig/internal/paths"
	"github.com/tessro/rig/internal/proc"
	"github.com/tessro/rig/internal/statefile"
)

// probeTimeout bounds the advisory probes CLI commands make against a
// recorded instance.
const probeTimeout = 3 * time.Second

// loadConfig reads the config file and wires up file logging. With
// --verbose the log stream is mirrored to stderr.
func loadConfig() (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	var mirror io.Writer
	if verbose {
		mirror = os.Stderr
	}
	cleanup, err := logging.Setup(logging.DefaultLogPath(), logging.ParseLevel(cfg.LogLevel()), mirror)
	if err != nil {
		return nil, nil, fmt.Errorf("set up logging: %w", err)
	}
	return cfg, cleanup, nil
}

// managerConfig translates the file config into an instance manager config.
func managerConfig(cfg *config.Config) (instance.Config, error) {
	var loc instance.Locator
	if exe := cfg.Exe(); exe != "" {
		loc = locate.Fixed{Exe: exe}
	} else {
		l, err := locate.New()
		if err != nil {
			return instance.Config{}, fmt.Errorf("open installs registry: %w", err)
		}
		loc = l
	}

	store, err := statefile.NewStore()
	if err != nil {
		return instance.Config{}, fmt.Errorf("open state file: %w", err)
	}
	logDir, err := paths.LogDir()
	if err != nil {
		return instance.Config{}, err
	}

	return instance.Config{
		Version:        cfg.Version(),
		Args:           cfg.Args(),
		Endpoint:       cfg.Endpoint(),
		Maintenance:    cfg.Maintenance(),
		StrayProcesses: cfg.StrayProcesses(),
		ReadyTimeout:   cfg.ReadyTimeout(),
		PollInterval:   cfg.PollInterval(),
		ProbeTimeout:   cfg.ProbeTimeout(),
		StopGrace:      cfg.StopGrace(),
		AppLogDir:      logDir,
		State:          store,
		Locator:        loc,
	}, nil
}

// recordedInstance loads the advisory state file and probes the recorded
// endpoint. The record is informational; the manager never adopts it. CLI
// commands use this to avoid racing a previous rig process for the same
// endpoint, and to find what `rig down` should stop.
func recordedInstance(ctx context.Context) (rec *statefile.Record, alive bool) {
	store, err := statefile.NewStore()
	if err != nil {
		return nil, false
	}
	rec, err = store.Load()
	if err != nil {
		return nil, false
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := driver.New(rec.Endpoint).Ping(probeCtx); err != nil {
		return rec, false
	}
	return rec, true
}

// stopRecorded tears down an instance recorded by a previous rig process.
// Best effort end to end: a polite shutdown request, then signals.
func stopRecorded(rec *statefile.Record, grace time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	_ = driver.New(rec.Endpoint).Shutdown(ctx)
	cancel()

	deadline := time.Now().Add(grace)
	for proc.Alive(rec.PID) && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
	if proc.Alive(rec.PID) {
		_ = proc.StopPID(rec.PID, grace)
	}
}

// instanceEnv returns the environment variables exported to commands run
// against an instance.
func instanceEnv(endpoint, launchID, version string, pid int) []string {
	return []string{
		"RIG_ENDPOINT=" + endpoint,
		"RIG_LAUNCH_ID=" + launchID,
		"RIG_APP_VERSION=" + version,
		fmt.Sprintf("RIG_APP_PID=%d", pid),
	}
}
