package tui

import (
	"time"

	"github.com/tessro/rig/internal/driver"
	"github.com/tessro/rig/internal/statefile"
)

// tickMsg drives the spinner animation.
type tickMsg time.Time

// pollMsg triggers the next status poll.
type pollMsg time.Time

// statusMsg carries a fresh status snapshot.
type statusMsg struct {
	snap snapshot
}

// snapshot is one observation of the recorded instance.
type snapshot struct {
	at time.Time

	rec     *statefile.Record
	loadErr error

	alive    bool
	state    *driver.State
	probeErr error

	cpu    float64
	hasCPU bool
	rss    uint64
	hasRSS bool
}
