package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/smazurov/keycolor/internal/color"
)

type colorField int

const (
	fieldDevice colorField = iota
	fieldLed
	fieldPalette
	fieldHex
	fieldApply
	colorFieldCount
)

// maxHexInput leaves room for one leading '#'.
const maxHexInput = 7

func (m Model) handleColorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.focus = (m.focus + 1) % colorFieldCount
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + colorFieldCount - 1) % colorFieldCount
		return m, nil
	case "enter":
		m.setStatus("Applying color...")
		return m, m.applyColor()
	case "ctrl+r":
		m.setStatus("Refreshing devices...")
		return m, m.refreshDevices()
	case "up", "left":
		return m.stepField(-1)
	case "down", "right":
		return m.stepField(1)
	case "r":
		if m.focus != fieldHex {
			m.setStatus("Refreshing devices...")
			return m, m.refreshDevices()
		}
	}

	if m.focus == fieldHex {
		m.editHex(msg)
	}
	return m, nil
}

// stepField moves the focused list selection by delta, wrapping around.
func (m Model) stepField(delta int) (tea.Model, tea.Cmd) {
	snap := m.state.Snapshot()
	switch m.focus {
	case fieldDevice:
		next, ok := step(snap.Devices, snap.Device, delta)
		if !ok || next == snap.Device {
			return m, nil
		}
		m.state.SelectDevice(next)
		return m, m.refreshLeds()
	case fieldLed:
		if next, ok := step(snap.Leds, snap.Led, delta); ok {
			m.state.SelectLed(next)
		}
	case fieldPalette:
		palette := color.Palette()
		switch {
		case m.paletteIdx >= 0:
			m.paletteIdx = wrap(m.paletteIdx+delta, len(palette))
		case delta > 0:
			m.paletteIdx = 0
		default:
			m.paletteIdx = len(palette) - 1
		}
		m.hexInput = palette[m.paletteIdx].Hex
		m.state.SetColor(m.hexInput)
	}
	return m, nil
}

func (m *Model) editHex(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyBackspace:
		if m.hexInput != "" {
			m.hexInput = m.hexInput[:len(m.hexInput)-1]
		}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if !isHexInput(r, m.hexInput) || len(m.hexInput) >= maxHexInput {
				continue
			}
			m.hexInput += string(r)
		}
	default:
		return
	}
	m.paletteIdx = -1
	m.state.SetColor(m.hexInput)
}

func isHexInput(r rune, current string) bool {
	switch {
	case r == '#':
		return current == ""
	case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		return true
	}
	return false
}

// step returns the item delta places from current, wrapping around. An
// unknown current starts from the first item.
func step(items []string, current string, delta int) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	idx := -1
	for i, item := range items {
		if item == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return items[0], true
	}
	return items[wrap(idx+delta, len(items))], true
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func (m Model) renderColorTab(width int) string {
	snap := m.state.Snapshot()

	device := snap.Device
	if device == "" {
		device = dimStyle.Render("(none)")
	}
	device = fmt.Sprintf("%s  %s", device, dimStyle.Render(fmt.Sprintf("%d found", len(snap.Devices))))

	led := snap.Led
	if led == "" {
		led = dimStyle.Render("(none)")
	}
	if len(snap.Leds) > 0 {
		led = fmt.Sprintf("%s  %s", led, dimStyle.Render("of "+strings.Join(snap.Leds, ", ")))
	}

	named := "Select Color"
	if hex, err := color.Parse(m.hexInput); err == nil {
		if name, ok := color.NameOf(hex); ok {
			named = name
		}
	}

	hex := m.hexInput
	if m.focus == fieldHex {
		hex += "_"
	}
	if parsed, err := color.Parse(m.hexInput); err == nil {
		hex = fmt.Sprintf("%-8s %s", hex, swatch(parsed))
	}

	rows := []string{
		m.colorRow(fieldDevice, "Device:", device),
		m.colorRow(fieldLed, "LED:", led),
		m.colorRow(fieldPalette, "Named color:", named),
		m.colorRow(fieldHex, "Hex color:", hex),
		"",
		m.button(fieldApply, "Apply Color"),
	}

	mode := "Apply mode: " + m.opts.Workflow.Policy().String()
	body := strings.Join(rows, "\n") + "\n\n" + dimStyle.Render(mode)
	return panelStyle.Width(width - 2).Render(body)
}

func (m Model) colorRow(field colorField, label, value string) string {
	line := labelStyle.Render(label) + valueStyle.Render(value)
	if m.focus == field {
		return focusStyle.Render("> ") + line
	}
	return "  " + line
}

func (m Model) button(field colorField, text string) string {
	if m.focus == field {
		return "  " + focusStyle.Render("[ "+text+" ]")
	}
	return "  [ " + text + " ]"
}
