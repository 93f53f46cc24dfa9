package instance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestHandle(p *fakeProc, d *fakeDriver) *Handle {
	return &Handle{
		launchID:  "ab12cd34",
		version:   "2024.1",
		exe:       "/opt/app/app",
		endpoint:  "http://127.0.0.1:9999",
		startedAt: time.Now(),
		stopGrace: 20 * time.Millisecond,
		proc:      p,
		drv:       d,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHandleIsRunning(t *testing.T) {
	t.Run("running", func(t *testing.T) {
		h := newTestHandle(newFakeProc(4001), &fakeDriver{})
		running, err := h.IsRunning(context.Background())
		if err != nil {
			t.Fatalf("IsRunning() error = %v", err)
		}
		if !running {
			t.Error("IsRunning() = false, want true")
		}
	})

	t.Run("process exited", func(t *testing.T) {
		p := newFakeProc(4001)
		p.exit()
		d := &fakeDriver{}
		h := newTestHandle(p, d)

		running, err := h.IsRunning(context.Background())
		if err != nil {
			t.Fatalf("IsRunning() error = %v", err)
		}
		if running {
			t.Error("IsRunning() = true for an exited process")
		}
		if d.pings != 0 {
			t.Errorf("pings = %d, want 0 for an exited process", d.pings)
		}
	})

	t.Run("endpoint unreachable", func(t *testing.T) {
		d := &fakeDriver{pingErr: errors.New("connection reset")}
		h := newTestHandle(newFakeProc(4001), d)

		running, err := h.IsRunning(context.Background())
		if err == nil {
			t.Fatal("IsRunning() error = nil, want probe error")
		}
		if running {
			t.Error("IsRunning() = true with unreachable endpoint")
		}
	})
}

func TestHandleClose(t *testing.T) {
	t.Run("graceful shutdown skips signals", func(t *testing.T) {
		p := newFakeProc(4001)
		d := &fakeDriver{onShutdown: p.exit}
		h := newTestHandle(p, d)

		if err := h.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if p.stopped {
			t.Error("signals sent despite graceful shutdown")
		}
		if d.shutdowns != 1 {
			t.Errorf("shutdowns = %d, want 1", d.shutdowns)
		}
	})

	t.Run("escalates when shutdown refused", func(t *testing.T) {
		p := newFakeProc(4001)
		d := &fakeDriver{shutdownErr: errors.New("shutdown rejected")}
		h := newTestHandle(p, d)

		if err := h.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if !p.stopped {
			t.Error("process was not stopped after shutdown refusal")
		}
	})

	t.Run("escalates when process lingers", func(t *testing.T) {
		p := newFakeProc(4001)
		d := &fakeDriver{} // accepts shutdown but the process never exits
		h := newTestHandle(p, d)

		if err := h.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if !p.stopped {
			t.Error("process was not stopped after lingering")
		}
	})

	t.Run("second close is a no-op", func(t *testing.T) {
		p := newFakeProc(4001)
		d := &fakeDriver{onShutdown: p.exit}
		h := newTestHandle(p, d)

		if err := h.Close(); err != nil {
			t.Fatalf("first Close() error = %v", err)
		}
		if err := h.Close(); err != nil {
			t.Fatalf("second Close() error = %v", err)
		}
		if d.shutdowns != 1 {
			t.Errorf("shutdowns = %d, want 1", d.shutdowns)
		}
	})

	t.Run("stop failure surfaces", func(t *testing.T) {
		errStuck := errors.New("process unkillable")
		p := newFakeProc(4001)
		p.stopErr = errStuck
		d := &fakeDriver{shutdownErr: errors.New("shutdown rejected")}
		h := newTestHandle(p, d)

		if err := h.Close(); !errors.Is(err, errStuck) {
			t.Fatalf("Close() error = %v, want %v", err, errStuck)
		}
	})
}
