package tui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/smazurov/keycolor/internal/prefs"
)

type settingsField int

const (
	settingsManager settingsField = iota
	settingsInstallCommand
	settingsPackageName
	settingsSystemd
	settingsSkipCheck
	settingsSave
	settingsReset
	settingsFieldCount
)

// settingsForm is the editable copy of the install settings. Nothing is
// written until Save.
type settingsForm struct {
	draft prefs.Settings
	field settingsField
}

func newSettingsForm(s prefs.Settings) settingsForm {
	return settingsForm{draft: s}
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := &m.settings
	switch msg.String() {
	case "tab", "down":
		form.field = (form.field + 1) % settingsFieldCount
		return m, nil
	case "shift+tab", "up":
		form.field = (form.field + settingsFieldCount - 1) % settingsFieldCount
		return m, nil
	}

	switch form.field {
	case settingsManager:
		switch msg.String() {
		case "left":
			form.draft.PackageManager = stepManager(form.draft.PackageManager, -1)
		case "right", " ", "enter":
			form.draft.PackageManager = stepManager(form.draft.PackageManager, 1)
		}
	case settingsInstallCommand:
		form.draft.InstallCommand = editText(form.draft.InstallCommand, msg)
	case settingsPackageName:
		form.draft.PackageName = editText(form.draft.PackageName, msg)
	case settingsSystemd:
		if isToggle(msg) {
			form.draft.HasSystemd = !form.draft.HasSystemd
		}
	case settingsSkipCheck:
		if isToggle(msg) {
			form.draft.SkipDependencyCheck = !form.draft.SkipDependencyCheck
		}
	case settingsSave:
		if msg.String() == "enter" {
			return m, m.saveSettings(form.draft)
		}
	case settingsReset:
		if msg.String() == "enter" {
			return m, m.resetSettings()
		}
	}
	return m, nil
}

func stepManager(current string, delta int) string {
	managers := prefs.Managers()
	idx := slices.Index(managers, current)
	if idx < 0 {
		return managers[0]
	}
	return managers[wrap(idx+delta, len(managers))]
}

func isToggle(msg tea.KeyMsg) bool {
	s := msg.String()
	return s == " " || s == "enter"
}

// editText applies a typed key to a single line text field.
func editText(value string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		if value == "" {
			return value
		}
		runes := []rune(value)
		return string(runes[:len(runes)-1])
	case tea.KeySpace:
		return value + " "
	case tea.KeyRunes:
		return value + string(msg.Runes)
	}
	return value
}

func (m Model) renderSettingsTab(width int) string {
	form := m.settings
	d := form.draft

	text := func(field settingsField, v string) string {
		if form.field == field {
			return v + "_"
		}
		return v
	}

	rows := []string{
		m.settingsRow(settingsManager, "Package Manager:", "< "+d.PackageManager+" >"),
		m.settingsRow(settingsInstallCommand, "Install Command:", text(settingsInstallCommand, d.InstallCommand)),
		m.settingsRow(settingsPackageName, "Package Name:", text(settingsPackageName, d.PackageName)),
		m.settingsRow(settingsSystemd, "", checkbox(d.HasSystemd)+" System uses systemd"),
		m.settingsRow(settingsSkipCheck, "", checkbox(d.SkipDependencyCheck)+" Skip dependency check on startup"),
		"",
		m.settingsButton(settingsSave, "Save Settings"),
		m.settingsButton(settingsReset, "Reset to Defaults"),
	}
	return panelStyle.Width(width - 2).Render(strings.Join(rows, "\n"))
}

func (m Model) settingsRow(field settingsField, label, value string) string {
	line := valueStyle.Render(value)
	if label != "" {
		line = labelStyle.Render(label) + line
	}
	if m.settings.field == field {
		return focusStyle.Render("> ") + line
	}
	return "  " + line
}

func (m Model) settingsButton(field settingsField, text string) string {
	if m.settings.field == field {
		return "  " + focusStyle.Render("[ "+text+" ]")
	}
	return "  [ " + text + " ]"
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
