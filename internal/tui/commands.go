package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/tessro/rig/internal/driver"
	"github.com/tessro/rig/internal/proc"
	"github.com/tessro/rig/internal/statefile"
)

// tickCmd schedules the next spinner frame.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// pollTickCmd schedules the next status poll.
func (m Model) pollTickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// pollCmd collects a status snapshot off the UI goroutine.
func (m Model) pollCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return statusMsg{snap: collect(store)}
	}
}

// collect observes the recorded instance: state file, process liveness,
// endpoint state, and process resource usage.
func collect(store *statefile.Store) snapshot {
	s := snapshot{at: time.Now()}

	rec, err := store.Load()
	if err != nil {
		if !errors.Is(err, statefile.ErrNoInstance) {
			s.loadErr = err
		}
		return s
	}
	s.rec = rec
	s.alive = proc.Alive(rec.PID)

	ctx, cancel := context.WithTimeout(context.Background(), pollInterval)
	defer cancel()
	state, err := driver.New(rec.Endpoint).FetchState(ctx)
	if err != nil {
		s.probeErr = err
	} else {
		s.state = state
	}

	if s.alive {
		if ps, err := process.NewProcess(int32(rec.PID)); err == nil {
			if v, err := ps.CPUPercent(); err == nil {
				s.cpu = v
				s.hasCPU = true
			}
			if mi, err := ps.MemoryInfo(); err == nil && mi != nil {
				s.rss = mi.RSS
				s.hasRSS = true
			}
		}
	}
	return s
}
