package instance

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tessro/rig/internal/id"
	"github.com/tessro/rig/internal/observability"
)

// freshLocked launches a new instance into the slot. The old instance, if
// any, is cleared from the slot and torn down first; teardown failures do
// not stop the launch. On any launch error the slot stays empty.
func (m *Manager) freshLocked(ctx context.Context) (*Handle, error) {
	if old := m.held; old != nil {
		m.held = nil
		m.teardownLocked(old)
	}

	start := time.Now()

	install, err := m.cfg.Locator.Resolve(m.cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("resolve release: %w", err)
	}

	m.log.Info("launching instance", "version", install.Version, "exe", install.Exe)

	// Maintenance launches run against the same executable and must each
	// finish before the real instance starts.
	for _, args := range m.cfg.Maintenance {
		err := m.cfg.Runner.Run(ctx, install.Exe, args)
		observability.RecordMaintenanceRun(err)
		if err != nil {
			return nil, fmt.Errorf("maintenance: %w", err)
		}
	}

	if n := m.cfg.Runner.KillByName(m.cfg.StrayProcesses); n > 0 {
		m.log.Info("killed stray helper processes", "count", n)
		observability.RecordStrayKills(n)
	}

	launchID := id.Generate()
	logPath := ""
	if m.cfg.AppLogDir != "" {
		logPath = filepath.Join(m.cfg.AppLogDir, "app-"+launchID+".log")
	}

	p, err := m.cfg.Runner.Start(install.Exe, m.cfg.Args, logPath)
	if err != nil {
		return nil, err
	}

	drv := m.cfg.NewDriver(m.cfg.Endpoint)
	if err := m.waitReady(ctx, p, drv); err != nil {
		// Give up on the half-started process.
		_ = p.Kill()
		return nil, err
	}

	h := &Handle{
		launchID:  launchID,
		version:   install.Version,
		exe:       install.Exe,
		endpoint:  m.cfg.Endpoint,
		logPath:   logPath,
		startedAt: time.Now(),
		stopGrace: m.cfg.StopGrace,
		proc:      p,
		drv:       drv,
		log:       m.log,
	}
	m.held = h
	m.recordStateLocked(h)

	observability.RecordLaunchDuration(time.Since(start))
	m.log.Info("instance ready",
		"launch_id", launchID,
		"pid", p.PID(),
		"endpoint", m.cfg.Endpoint,
		"took", time.Since(start).Round(time.Millisecond))
	return h, nil
}

// waitReady polls the automation endpoint until the instance answers, the
// process exits, the context is cancelled, or the ready deadline passes.
func (m *Manager) waitReady(ctx context.Context, p Proc, drv Driver) error {
	deadline := time.Now().Add(m.cfg.ReadyTimeout)
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
		err := drv.Ping(probeCtx)
		cancel()
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for instance: %w", ctx.Err())
		case <-p.Done():
			return fmt.Errorf("%w (pid %d)", ErrEarlyExit, p.PID())
		case <-ticker.C:
			if time.Now().After(deadline) {
				return fmt.Errorf("%w (%s)", ErrReadyTimeout, m.cfg.ReadyTimeout)
			}
		}
	}
}
