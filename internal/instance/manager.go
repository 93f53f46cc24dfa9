package instance

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tessro/rig/internal/observability"
	"github.com/tessro/rig/internal/statefile"
)

// Manager owns the single instance slot. All acquisition and teardown goes
// through it; the held Handle is never shared with another Manager.
type Manager struct {
	cfg Config
	log *slog.Logger

	// +checklocks:mu
	held *Handle

	mu sync.Mutex
}

// Acquire returns the held instance when it is still usable, launching a
// replacement otherwise. A usable instance is one whose process is alive,
// whose endpoint answers, and whose open work could be closed. Probe and
// cleanup failures are logged and absorbed; they demote the call to a
// fresh launch rather than surfacing.
func (m *Manager) Acquire(ctx context.Context) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held != nil && m.reuseLocked(ctx) {
		observability.RecordAcquire(observability.OutcomeReused)
		m.log.Debug("reusing instance", "launch_id", m.held.launchID, "pid", m.held.PID())
		return m.held, nil
	}

	h, err := m.freshLocked(ctx)
	if err != nil {
		observability.RecordAcquire(observability.OutcomeError)
		return nil, err
	}
	observability.RecordAcquire(observability.OutcomeLaunched)
	return h, nil
}

// AcquireFresh retires the held instance, if any, and launches a new one.
// The old instance is gone from the slot before teardown even starts, so a
// failed launch can never hand back the old handle.
func (m *Manager) AcquireFresh(ctx context.Context) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, err := m.freshLocked(ctx)
	if err != nil {
		observability.RecordAcquire(observability.OutcomeError)
		return nil, err
	}
	observability.RecordAcquire(observability.OutcomeLaunched)
	return h, nil
}

// Close retires the held instance. Teardown errors are logged, never
// returned. Safe to call multiple times and on a Manager that holds
// nothing.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held == nil {
		return
	}
	old := m.held
	m.held = nil
	m.teardownLocked(old)
}

// reuseLocked reports whether the held instance survived its liveness
// probe and pre-reuse cleanup. Any failure is absorbed here; the caller
// falls through to a fresh launch.
func (m *Manager) reuseLocked(ctx context.Context) bool {
	h := m.held

	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	running, err := h.IsRunning(probeCtx)
	cancel()
	if err != nil {
		m.log.Warn("liveness probe failed, replacing instance",
			"launch_id", h.launchID, "pid", h.PID(), "error", err)
		observability.RecordReuseFailure()
		return false
	}
	if !running {
		m.log.Info("held instance no longer running, replacing",
			"launch_id", h.launchID, "pid", h.PID())
		return false
	}

	cleanCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	err = h.CloseOpenWork(cleanCtx)
	cancel()
	if err != nil {
		m.log.Warn("failed to close open work, replacing instance",
			"launch_id", h.launchID, "error", err)
		observability.RecordReuseFailure()
		return false
	}
	return true
}

// teardownLocked closes a handle that has already been removed from the
// slot. Failures are logged and counted; a leaked process is acceptable,
// returning a dead handle is not.
func (m *Manager) teardownLocked(h *Handle) {
	if err := h.Close(); err != nil {
		m.log.Warn("teardown failed, instance may be orphaned",
			"launch_id", h.launchID, "pid", h.PID(), "error", err)
		observability.RecordTeardownFailure()
	}
	if m.cfg.State != nil {
		if err := m.cfg.State.Clear(); err != nil {
			m.log.Debug("failed to clear state file", "error", err)
		}
	}
}

// recordStateLocked writes the advisory state file for the new instance.
// Best effort; the file is never read back by the Manager.
func (m *Manager) recordStateLocked(h *Handle) {
	if m.cfg.State == nil {
		return
	}
	rec := statefile.Record{
		LaunchID:  h.launchID,
		PID:       h.PID(),
		Endpoint:  h.endpoint,
		Version:   h.version,
		Exe:       h.exe,
		LogPath:   h.logPath,
		StartedAt: h.startedAt,
	}
	if err := m.cfg.State.Save(rec); err != nil {
		m.log.Warn("failed to record instance state", "error", err)
	}
}
