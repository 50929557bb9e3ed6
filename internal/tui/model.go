// Package tui is the interactive terminal form: a Color Changer tab for
// picking a device, LED and color, a Settings tab for the install
// preferences, and a Log tab showing recent log entries.
//
// Every device tool invocation runs as a background tea.Cmd. Discovery
// results carry the session generation they were started under and are
// dropped when the user has moved on.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/smazurov/keycolor/internal/bootstrap"
	"github.com/smazurov/keycolor/internal/logging"
	"github.com/smazurov/keycolor/internal/prefs"
	"github.com/smazurov/keycolor/internal/session"
)

// WindowTitle is the terminal title set on startup.
const WindowTitle = "G915 LED Color Changer"

// Tab identifies the current screen.
type Tab int

const (
	TabColor Tab = iota
	TabSettings
	TabLog
	tabCount
)

var tabNames = []string{"Color Changer", "Settings", "Log"}

// Workflow is the discovery and apply surface of session.Controller.
type Workflow interface {
	Policy() session.Policy
	DiscoverDevices(ctx context.Context, generation uint64, remembered string) (session.DeviceList, error)
	DiscoverLeds(ctx context.Context, device, remembered string) (session.LedList, error)
	ApplyColor(ctx context.Context, sel session.Selection) (session.ApplyResult, error)
}

// Preferences is the part of prefs.Store the form edits.
type Preferences interface {
	Get() prefs.Record
	UpdateSettings(settings prefs.Settings) (prefs.Record, error)
	Reset() (prefs.Record, error)
}

// Dependency checks for and installs the device tool.
type Dependency interface {
	Check(ctx context.Context) (bootstrap.Status, error)
	Install(ctx context.Context, rec prefs.Record) (bootstrap.Status, error)
}

// Options wires the form to the application.
type Options struct {
	Workflow    Workflow
	Preferences Preferences
	Dependency  Dependency
	// Logs returns the entries shown on the Log tab.
	Logs func() []logging.LogEntry
	// LogRefresh is how often the Log tab redraws. Zero disables it.
	LogRefresh time.Duration
}

type devicesMsg struct {
	generation uint64
	list       session.DeviceList
	err        error
}

type ledsMsg struct {
	generation uint64
	list       session.LedList
	err        error
}

type appliedMsg struct {
	result session.ApplyResult
	err    error
}

type dependencyMsg struct {
	status bootstrap.Status
	err    error
}

type installedMsg struct {
	status bootstrap.Status
	err    error
}

type settingsMsg struct {
	record prefs.Record
	err    error
	reset  bool
}

type logTickMsg time.Time

// installPrompt is the startup modal offering to install the device tool.
type installPrompt struct {
	visible bool
	running bool
	tool    string
	command string
}

// Model is the bubbletea model.
type Model struct {
	ctx   context.Context
	opts  Options
	state *session.State

	width  int
	height int
	tab    Tab

	// Color Changer tab
	focus      colorField
	paletteIdx int
	hexInput   string

	// Settings tab
	settings settingsForm

	// Log tab
	logScroll int

	status    string
	statusErr bool
	install   installPrompt
}

// NewModel creates the form, seeding the selection from the saved record.
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Logs == nil {
		opts.Logs = func() []logging.LogEntry { return nil }
	}
	rec := opts.Preferences.Get()
	return Model{
		ctx:        ctx,
		opts:       opts,
		state:      session.NewState(session.Selection{Device: rec.LastDevice, Led: rec.LastLed, Color: rec.LastColor}),
		paletteIdx: -1,
		hexInput:   rec.LastColor,
		settings:   newSettingsForm(rec.Settings()),
	}
}

// Init refreshes devices and, unless disabled, checks the dependency.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle(WindowTitle), m.refreshDevices()}
	if !m.opts.Preferences.Get().SkipDependencyCheck {
		cmds = append(cmds, m.checkDependency())
	}
	if m.opts.LogRefresh > 0 {
		cmds = append(cmds, logTick(m.opts.LogRefresh))
	}
	return tea.Batch(cmds...)
}

// Snapshot exposes the selection session.
func (m Model) Snapshot() session.Snapshot {
	return m.state.Snapshot()
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

func logTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return logTickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case logTickMsg:
		return m, logTick(m.opts.LogRefresh)

	case devicesMsg:
		return m.onDevices(msg)

	case ledsMsg:
		return m.onLeds(msg)

	case appliedMsg:
		if msg.err != nil {
			m.setError(session.ApplyErrorStatus(msg.err))
			return m, nil
		}
		m.hexInput = msg.result.Color
		m.setStatus(session.AppliedStatus(msg.result))
		return m, nil

	case dependencyMsg:
		return m.onDependency(msg)

	case installedMsg:
		m.install = installPrompt{}
		if msg.err != nil {
			m.setError("Error: " + bootstrapMessage(msg.err))
			return m, nil
		}
		m.setStatus("Dependencies installed successfully.")
		return m, m.refreshDevices()

	case settingsMsg:
		m.settings = newSettingsForm(msg.record.Settings())
		m.settings.field = settingsReset
		if !msg.reset {
			m.settings.field = settingsSave
		}
		if msg.err != nil {
			m.setError("Warning: could not save settings: " + session.ErrorMessage(msg.err))
			return m, nil
		}
		if msg.reset {
			m.setStatus("Settings reset to defaults.")
		} else {
			m.setStatus("Settings saved successfully!")
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.install.visible {
		return m.handleInstallKey(key)
	}

	switch key {
	case "f1":
		m.tab = TabColor
		return m, nil
	case "f2":
		m.tab = TabSettings
		return m, nil
	case "f3":
		m.tab = TabLog
		return m, nil
	case "q":
		if !m.editingText() {
			return m, tea.Quit
		}
	}

	switch m.tab {
	case TabColor:
		return m.handleColorKey(msg)
	case TabSettings:
		return m.handleSettingsKey(msg)
	case TabLog:
		return m.handleLogKey(key)
	}
	return m, nil
}

// editingText reports whether the focused field takes free text.
func (m Model) editingText() bool {
	switch m.tab {
	case TabColor:
		return m.focus == fieldHex
	case TabSettings:
		return m.settings.field == settingsInstallCommand || m.settings.field == settingsPackageName
	}
	return false
}

func (m Model) handleInstallKey(key string) (tea.Model, tea.Cmd) {
	if m.install.running {
		return m, nil
	}
	switch key {
	case "y", "Y", "enter":
		m.install.running = true
		m.setStatus("Installing dependencies...")
		return m, m.runInstall()
	case "n", "N", "esc":
		tool := m.install.tool
		m.install = installPrompt{}
		m.setError(tool + " is not installed. Device commands will fail until it is.")
	}
	return m, nil
}

func (m Model) handleLogKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		m.logScroll++
	case "down", "j":
		if m.logScroll > 0 {
			m.logScroll--
		}
	case "end", "G":
		m.logScroll = 0
	}
	return m, nil
}

func (m Model) onDevices(msg devicesMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(session.DiscoveryErrorStatus(msg.err))
		return m, nil
	}
	if !m.state.AcceptDevices(msg.generation, msg.list) {
		return m, nil
	}
	m.setStatus(session.DevicesStatus(msg.list))
	if msg.list.Selected == "" {
		return m, nil
	}
	return m, m.refreshLeds()
}

func (m Model) onLeds(msg ledsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(session.DiscoveryErrorStatus(msg.err))
		return m, nil
	}
	if m.state.AcceptLeds(msg.generation, msg.list) {
		m.setStatus(session.LedsStatus(msg.list))
	}
	return m, nil
}

func (m Model) onDependency(msg dependencyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err != nil:
		m.setError("Error: " + bootstrapMessage(msg.err))
	case msg.status.Installed:
		m.setStatus("Dependencies are installed.")
	default:
		plan, err := bootstrap.PlanInstall(m.opts.Preferences.Get())
		if err != nil {
			m.setError("Error: " + bootstrapMessage(err))
			return m, nil
		}
		m.install = installPrompt{visible: true, tool: msg.status.Tool, command: plan.String()}
	}
	return m, nil
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusErr = true
}
