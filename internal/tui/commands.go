package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/smazurov/keycolor/internal/bootstrap"
	"github.com/smazurov/keycolor/internal/prefs"
	"github.com/smazurov/keycolor/internal/session"
)

// refreshDevices starts a device discovery. The generation is taken here,
// on the update goroutine, so a later selection change makes it stale.
func (m Model) refreshDevices() tea.Cmd {
	gen := m.state.BeginDiscovery()
	remembered := m.state.Selection().Device
	wf, ctx := m.opts.Workflow, m.ctx
	return func() tea.Msg {
		list, err := wf.DiscoverDevices(ctx, gen, remembered)
		return devicesMsg{generation: gen, list: list, err: err}
	}
}

// refreshLeds starts an LED discovery for the selected device.
func (m Model) refreshLeds() tea.Cmd {
	gen, device := m.state.BeginLedDiscovery()
	if device == "" {
		return nil
	}
	remembered := m.state.Selection().Led
	wf, ctx := m.opts.Workflow, m.ctx
	return func() tea.Msg {
		list, err := wf.DiscoverLeds(ctx, device, remembered)
		return ledsMsg{generation: gen, list: list, err: err}
	}
}

func (m Model) applyColor() tea.Cmd {
	sel := m.state.Selection()
	wf, ctx := m.opts.Workflow, m.ctx
	return func() tea.Msg {
		res, err := wf.ApplyColor(ctx, sel)
		return appliedMsg{result: res, err: err}
	}
}

func (m Model) checkDependency() tea.Cmd {
	dep, ctx := m.opts.Dependency, m.ctx
	return func() tea.Msg {
		status, err := dep.Check(ctx)
		return dependencyMsg{status: status, err: err}
	}
}

func (m Model) runInstall() tea.Cmd {
	dep, ctx := m.opts.Dependency, m.ctx
	rec := m.opts.Preferences.Get()
	return func() tea.Msg {
		status, err := dep.Install(ctx, rec)
		return installedMsg{status: status, err: err}
	}
}

func (m Model) saveSettings(settings prefs.Settings) tea.Cmd {
	store := m.opts.Preferences
	return func() tea.Msg {
		rec, err := store.UpdateSettings(settings)
		return settingsMsg{record: rec, err: err}
	}
}

func (m Model) resetSettings() tea.Cmd {
	store := m.opts.Preferences
	return func() tea.Msg {
		rec, err := store.Reset()
		return settingsMsg{record: rec, err: err, reset: true}
	}
}

// bootstrapMessage drops the error code prefix for the status line.
func bootstrapMessage(err error) string {
	var berr *bootstrap.Error
	if !errors.As(err, &berr) {
		return session.ErrorMessage(err)
	}
	if berr.Cause != nil {
		return berr.Message + ": " + berr.Cause.Error()
	}
	return berr.Message
}
