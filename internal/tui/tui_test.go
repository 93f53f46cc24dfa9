package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tessro/rig/internal/driver"
	"github.com/tessro/rig/internal/statefile"
)

func TestStatusLine(t *testing.T) {
	rec := &statefile.Record{LaunchID: "ab12cd34", PID: 4001}

	tests := []struct {
		name string
		snap snapshot
		want string
	}{
		{"no record", snapshot{}, "none recorded"},
		{"unreadable", snapshot{loadErr: errors.New("bad json")}, "state file unreadable"},
		{"running", snapshot{rec: rec, alive: true, state: &driver.State{}}, "running"},
		{"alive but silent", snapshot{rec: rec, alive: true, probeErr: errors.New("refused")}, "not answering"},
		{"gone", snapshot{rec: rec, probeErr: errors.New("refused")}, "gone (stale record)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := statusLine(tt.snap)
			if got != tt.want {
				t.Errorf("statusLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatHelp(t *testing.T) {
	keys := defaultKeyMap()
	got := formatHelp(keys.Refresh, keys.Quit)
	want := "r refresh · q quit"
	if got != want {
		t.Errorf("formatHelp() = %q, want %q", got, want)
	}
}

func TestFormatRSS(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{64 * 1024 * 1024, "64 MB"},
		{1536 * 1024 * 1024, "1.5 GB"},
		{0, "0 MB"},
	}
	for _, tt := range tests {
		if got := formatRSS(tt.bytes); got != tt.want {
			t.Errorf("formatRSS(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatUptime(t *testing.T) {
	d := 90*time.Minute + 12*time.Second + 345*time.Millisecond
	if got := formatUptime(d); got != "1h30m12s" {
		t.Errorf("formatUptime() = %q, want %q", got, "1h30m12s")
	}
}

func TestClampLine(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := clampLine(long, 20)
	if len([]rune(got)) > 20 {
		t.Errorf("clamped line is %d runes, want <= 20", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("clamped line %q missing ellipsis", got)
	}

	if got := clampLine("short", 20); got != "short" {
		t.Errorf("clampLine() altered a short line: %q", got)
	}
}

func TestBodyViewShowsRecord(t *testing.T) {
	m := New(nil)
	m.width = 80
	m.ready = true
	m.haveSnap = true
	m.snap = snapshot{
		rec: &statefile.Record{
			LaunchID: "ab12cd34",
			PID:      4001,
			Endpoint: "http://127.0.0.1:8750",
			Version:  "2024.1",
			LogPath:  "/tmp/rig/logs/app-ab12cd34.log",
		},
		alive: true,
		state: &driver.State{
			Version:   "2024.1",
			StartedAt: time.Now().Add(-time.Minute),
			OpenWork:  2,
		},
	}

	body := m.bodyView()
	for _, want := range []string{"ab12cd34", "4001", "2024.1", "http://127.0.0.1:8750", "Open work"} {
		if !strings.Contains(body, want) {
			t.Errorf("bodyView() missing %q:\n%s", want, body)
		}
	}
}
