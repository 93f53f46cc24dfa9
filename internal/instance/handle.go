package instance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// shutdownRequestTimeout bounds the polite shutdown request sent over the
// automation endpoint before falling back to signals.
const shutdownRequestTimeout = 3 * time.Second

// Handle is a live reference to one launched instance. Handles are created
// and retired by the Manager; callers drive the app through the endpoint
// but never own the lifecycle.
type Handle struct {
	launchID  string
	version   string
	exe       string
	endpoint  string
	logPath   string
	startedAt time.Time
	stopGrace time.Duration

	proc Proc
	drv  Driver
	log  *slog.Logger

	mu sync.Mutex
	// +checklocks:mu
	closed bool
}

// LaunchID returns the random ID assigned to this launch.
func (h *Handle) LaunchID() string { return h.launchID }

// PID returns the app process ID.
func (h *Handle) PID() int { return h.proc.PID() }

// Version returns the release version this instance was launched from.
func (h *Handle) Version() string { return h.version }

// Endpoint returns the base URL of the automation endpoint.
func (h *Handle) Endpoint() string { return h.endpoint }

// LogPath returns where the app's output is captured, or "" if capture is
// disabled.
func (h *Handle) LogPath() string { return h.logPath }

// StartedAt returns when the instance became ready.
func (h *Handle) StartedAt() time.Time { return h.startedAt }

// IsRunning reports whether the instance is still usable. A process that
// has exited is not running. A process that is alive but unreachable over
// the endpoint returns false with the probe error; the caller decides
// whether that is fatal.
func (h *Handle) IsRunning(ctx context.Context) (bool, error) {
	select {
	case <-h.proc.Done():
		return false, nil
	default:
	}

	if err := h.drv.Ping(ctx); err != nil {
		return false, fmt.Errorf("probe %s: %w", h.endpoint, err)
	}
	return true, nil
}

// CloseOpenWork asks the instance to close anything left open by a previous
// run so the next run starts from a clean slate.
func (h *Handle) CloseOpenWork(ctx context.Context) error {
	return h.drv.CloseWork(ctx)
}

// Close retires the instance. It asks the app to shut down over the
// endpoint, then escalates to signals if the process lingers. Safe to call
// more than once; only the first call does anything. Returns an error only
// when the process could not be stopped.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	h.log.Debug("closing instance", "launch_id", h.launchID, "pid", h.PID())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownRequestTimeout)
	reqErr := h.drv.Shutdown(ctx)
	cancel()
	if reqErr == nil {
		select {
		case <-h.proc.Done():
			return nil
		case <-time.After(h.stopGrace):
			h.log.Debug("instance ignored shutdown request", "launch_id", h.launchID)
		}
	}

	if err := h.proc.StopWithTimeout(h.stopGrace); err != nil {
		return fmt.Errorf("stop pid %d: %w", h.PID(), err)
	}
	return nil
}
