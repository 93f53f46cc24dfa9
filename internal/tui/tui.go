// Package tui provides the Bubbletea-based live dashboard for `rig watch`.
// It polls the advisory state file and the instance's automation endpoint
// and renders what it finds. Watching never influences the instance.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tessro/rig/internal/statefile"
)

// pollInterval is how often the dashboard refreshes instance status.
const pollInterval = time.Second

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model is the Bubbletea model for the watch dashboard.
type Model struct {
	width  int
	height int
	ready  bool

	store *statefile.Store
	keys  keyMap

	snap     snapshot
	haveSnap bool

	spinnerFrame int
}

// New creates a dashboard model reading from the given state file store.
func New(store *statefile.Store) Model {
	return Model{store: store, keys: defaultKeyMap()}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.pollCmd())
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.headerView()
	body := m.bodyView()
	help := helpStyle.Render(formatHelp(m.keys.Refresh, m.keys.Quit))

	return fmt.Sprintf("%s\n\n%s\n%s", header, body, help)
}

func (m Model) headerView() string {
	brand := headerBrandStyle.Render("🔩 rig watch")

	frame := spinnerFrames[m.spinnerFrame%len(spinnerFrames)]
	clock := time.Now().Format("15:04:05")
	right := headerInfoStyle.Render(clock + " " + frame)

	gap := m.width - lipgloss.Width(brand) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	filler := headerBarStyle.Render(strings.Repeat(" ", gap))
	return brand + filler + right
}

func (m Model) bodyView() string {
	if !m.haveSnap {
		return statusMutedStyle.Render("  probing...")
	}

	s := m.snap
	var lines []string

	text, style := statusLine(s)
	lines = append(lines, row("Instance", style.Render(text)))

	if s.rec != nil {
		lines = append(lines, row("Launch", s.rec.LaunchID))
		lines = append(lines, row("PID", pidLine(s)))
		lines = append(lines, row("Version", versionLine(s)))
		lines = append(lines, row("Endpoint", s.rec.Endpoint))
		if s.state != nil {
			lines = append(lines, row("Uptime", formatUptime(time.Since(s.state.StartedAt))))
			lines = append(lines, row("Open work", fmt.Sprintf("%d", s.state.OpenWork)))
		}
		if s.rec.LogPath != "" {
			lines = append(lines, row("App log", s.rec.LogPath))
		}
	}

	if s.probeErr != nil && s.rec != nil && s.alive {
		wrapped := wordwrap.String("probe: "+s.probeErr.Error(), max(m.width-4, 20))
		lines = append(lines, "", errTextStyle.Render(indent(wrapped, 2)))
	}

	out := ""
	for _, l := range lines {
		out += clampLine(l, m.width) + "\n"
	}
	return out
}

// row renders one aligned label/value line.
func row(label, value string) string {
	return "  " + labelStyle.Render(label) + value
}

// clampLine keeps a rendered line within the terminal width.
func clampLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

func pidLine(s snapshot) string {
	if !s.alive {
		return fmt.Sprintf("%d (not running)", s.rec.PID)
	}
	extra := ""
	if s.hasCPU || s.hasRSS {
		extra = statusMutedStyle.Render(fmt.Sprintf("  cpu %.1f%%, rss %s", s.cpu, formatRSS(s.rss)))
	}
	return fmt.Sprintf("%d%s", s.rec.PID, extra)
}

func versionLine(s snapshot) string {
	if s.state != nil && s.state.Version != "" {
		return s.state.Version
	}
	return s.rec.Version
}

// statusLine summarizes the instance's condition.
func statusLine(s snapshot) (string, lipgloss.Style) {
	switch {
	case s.loadErr != nil:
		return "state file unreadable", statusErrStyle
	case s.rec == nil:
		return "none recorded", statusMutedStyle
	case s.state != nil:
		return "running", statusOKStyle
	case s.alive:
		return "not answering", statusWarnStyle
	default:
		return "gone (stale record)", statusErrStyle
	}
}

func formatUptime(d time.Duration) string {
	return d.Truncate(time.Second).String()
}

func formatRSS(bytes uint64) string {
	mb := float64(bytes) / (1024 * 1024)
	if mb >= 1024 {
		return fmt.Sprintf("%.1f GB", mb/1024)
	}
	return fmt.Sprintf("%.0f MB", mb)
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}

// Run starts the dashboard and blocks until the user quits.
func Run() error {
	store, err := statefile.NewStore()
	if err != nil {
		return err
	}

	p := tea.NewProgram(New(store), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
