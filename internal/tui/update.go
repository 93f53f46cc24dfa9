package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.pollCmd()
		}
		return m, nil

	case tickMsg:
		m.spinnerFrame++
		return m, m.tickCmd()

	case pollMsg:
		return m, m.pollCmd()

	case statusMsg:
		m.snap = msg.snap
		m.haveSnap = true
		return m, m.pollTickCmd()
	}

	return m, nil
}
