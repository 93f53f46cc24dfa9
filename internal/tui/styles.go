package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor = lipgloss.Color("#0EA5E9") // Sky blue
	okColor      = lipgloss.Color("#10B981") // Green
	mutedColor   = lipgloss.Color("#6B7280") // Gray
	errorColor   = lipgloss.Color("#EF4444") // Red
	warningColor = lipgloss.Color("#F59E0B") // Amber

	// Header styles
	headerBarStyle = lipgloss.NewStyle().
			Background(primaryColor)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(primaryColor).
				Padding(0, 1)

	headerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0F2FE")).
			Background(primaryColor).
			Padding(0, 1)

	// Body styles
	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(11)

	statusOKStyle = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	statusErrStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	statusMutedStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	errTextStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// Help bar style
	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)
)
