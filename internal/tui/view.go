package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/smazurov/keycolor/internal/logging"
)

const defaultWidth = 80

func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}

	if m.install.visible {
		return m.renderInstallModal(width)
	}

	var content string
	switch m.tab {
	case TabColor:
		content = m.renderColorTab(width)
	case TabSettings:
		content = m.renderSettingsTab(width)
	case TabLog:
		content = m.renderLogTab(width)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(WindowTitle))
	sb.WriteString("\n")
	sb.WriteString(m.renderTabs())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(m.helpLine()))
	return sb.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for i, name := range tabNames {
		label := "F" + string(rune('1'+i)) + " " + name
		if Tab(i) == m.tab {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errStyle.Render(m.status)
	}
	return okStyle.Render(m.status)
}

func (m Model) helpLine() string {
	switch m.tab {
	case TabColor:
		return "tab: next field  up/down: change  enter: apply  r: refresh  q: quit"
	case TabSettings:
		return "tab/up/down: move  left/right: package manager  space: toggle  enter: save/reset  ctrl+c: quit"
	default:
		return "up/down: scroll  G: latest  q: quit"
	}
}

func (m Model) renderInstallModal(width int) string {
	var sb strings.Builder
	sb.WriteString(warnStyle.Render("Install Dependencies"))
	sb.WriteString("\n\n")
	if m.install.running {
		sb.WriteString("Installing dependencies...\n\n")
		sb.WriteString(dimStyle.Render(m.install.command))
	} else {
		sb.WriteString(m.install.tool + " is not installed. Would you like to install it?\n\n")
		sb.WriteString(dimStyle.Render("Command: " + m.install.command))
		sb.WriteString("\n\n")
		sb.WriteString(helpStyle.Render("y: install  n: skip"))
	}

	box := modalStyle.Render(sb.String())
	height := m.height
	if height == 0 {
		height = lipgloss.Height(box)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderLogTab(width int) string {
	entries := m.opts.Logs()
	visible := m.height - 8
	if visible < 5 {
		visible = 20
	}

	end := len(entries) - m.logScroll
	if end < 0 {
		end = 0
	}
	start := end - visible
	if start < 0 {
		start = 0
	}

	if len(entries) == 0 {
		return panelStyle.Width(width - 2).Render(dimStyle.Render("No log entries yet."))
	}

	lines := make([]string, 0, end-start)
	for _, entry := range entries[start:end] {
		lines = append(lines, logLevelStyle(entry.Level).Render(truncate(logging.FormatLogLine(entry), width-6)))
	}
	return panelStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func truncate(s string, maxLen int) string {
	if maxLen <= 3 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
