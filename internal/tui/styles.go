package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorRed    = lipgloss.Color("#FF5555")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorWhite  = lipgloss.Color("#F8F8F2")
	colorGray   = lipgloss.Color("#6272A4")
	colorPanel  = lipgloss.Color("#44475A")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorYellow).
			Padding(1, 2)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tabStyle       = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(colorWhite).Background(colorPanel).Bold(true).Padding(0, 1)
	labelStyle     = lipgloss.NewStyle().Foreground(colorGray).Width(18)
	valueStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	focusStyle     = lipgloss.NewStyle().Background(colorPanel).Foreground(colorWhite)
	okStyle        = lipgloss.NewStyle().Foreground(colorGreen)
	errStyle       = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	warnStyle      = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	helpStyle      = lipgloss.NewStyle().Foreground(colorGray)
	dimStyle       = lipgloss.NewStyle().Foreground(colorGray)
)

// swatch renders a block in the given color, or nothing for invalid input.
func swatch(hex string) string {
	if len(hex) != 6 {
		return ""
	}
	return lipgloss.NewStyle().Background(lipgloss.Color("#" + hex)).Render("      ")
}

func logLevelStyle(level string) lipgloss.Style {
	switch level {
	case "error":
		return errStyle
	case "warn":
		return warnStyle
	case "debug":
		return dimStyle
	default:
		return valueStyle
	}
}
