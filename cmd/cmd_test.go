package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/smazurov/keycolor/internal/bootstrap"
	"github.com/smazurov/keycolor/internal/prefs"
	"github.com/smazurov/keycolor/internal/process"
	"github.com/smazurov/keycolor/internal/session"
	"github.com/smazurov/keycolor/internal/updater"
)

type fakeResponse struct {
	stdout string
	err    error
}

// fakeRunner answers from a table keyed by the space joined argv.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]fakeResponse
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (*process.Result, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	resp := f.responses[key]
	return &process.Result{Stdout: resp.stdout}, resp.err
}

func (f *fakeRunner) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

// lookPathFor finds only the named executables.
func lookPathFor(found ...string) prefs.LookPathFunc {
	return func(file string) (string, error) {
		for _, f := range found {
			if f == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", errors.New("not found")
	}
}

func testOptions(t *testing.T) *Options {
	t.Helper()
	return &Options{
		Tool:          "ratbagctl",
		ModelMarker:   "G915",
		ApplyMode:     "unscoped",
		PrefsPath:     filepath.Join(t.TempDir(), ".g915colorchanger.json"),
		ServerMetrics: true,
	}
}

func newTestApp(t *testing.T, responses map[string]fakeResponse) (*App, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{responses: responses}
	app, err := NewApp(testOptions(t), Deps{Runner: runner, LookPath: lookPathFor("apt")})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app, runner
}

const (
	listOutput = "0: Generic Mouse\n1: Logitech G915 Keyboard\n"
	ledOutput  = "LED: 0, depth: rgb, mode: on, color: ff0000\nLED: 1, depth: rgb, mode: on, color: 00ff00\n"
	g915       = "Logitech G915 Keyboard"
	ledGetKey  = "ratbagctl " + g915 + " led get"
)

func TestNewAppRejectsUnknownApplyMode(t *testing.T) {
	opts := testOptions(t)
	opts.ApplyMode = "sometimes"
	if _, err := NewApp(opts, Deps{Runner: &fakeRunner{}}); err == nil {
		t.Fatal("expected an error for an unknown apply mode")
	}
}

func TestNewAppLoadsPreferences(t *testing.T) {
	opts := testOptions(t)
	if err := os.WriteFile(opts.PrefsPath, []byte(`{"last_device":"X"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	app, err := NewApp(opts, Deps{Runner: &fakeRunner{}, LookPath: lookPathFor()})
	if err != nil {
		t.Fatal(err)
	}
	rec := app.Prefs.Get()
	if rec.LastDevice != "X" || rec.PackageManager != prefs.ManagerUnknown {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestListDevicesMarksDefault(t *testing.T) {
	app, _ := newTestApp(t, map[string]fakeResponse{"ratbagctl list": {stdout: listOutput}})

	var out bytes.Buffer
	if err := listDevices(context.Background(), app, &out); err != nil {
		t.Fatal(err)
	}
	want := "  Generic Mouse\n* Logitech G915 Keyboard\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestListDevicesNone(t *testing.T) {
	app, _ := newTestApp(t, nil)

	var out bytes.Buffer
	if err := listDevices(context.Background(), app, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "No compatible devices found.\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestListDevicesToolMissing(t *testing.T) {
	app, _ := newTestApp(t, map[string]fakeResponse{"ratbagctl list": {err: process.ErrNotFound}})

	err := listDevices(context.Background(), app, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(errorText(err), "ratbagctl") {
		t.Errorf("error text %q should name the tool", errorText(err))
	}
}

func TestListLedsDefaultDevice(t *testing.T) {
	app, _ := newTestApp(t, map[string]fakeResponse{
		"ratbagctl list": {stdout: listOutput},
		ledGetKey:        {stdout: ledOutput},
	})

	var out bytes.Buffer
	if err := listLeds(context.Background(), app, &out, ""); err != nil {
		t.Fatal(err)
	}
	if out.String() != "* 0\n  1\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestApplyColorDiscoversTarget(t *testing.T) {
	app, runner := newTestApp(t, map[string]fakeResponse{
		"ratbagctl list": {stdout: listOutput},
		ledGetKey:        {stdout: ledOutput},
	})

	var out bytes.Buffer
	err := applyColor(context.Background(), app, &out, session.Selection{Color: "cyan"})
	if err != nil {
		t.Fatal(err)
	}
	if !runner.called("ratbagctl " + g915 + " led 0 set color 00FFFF") {
		t.Errorf("set color not run, calls: %v", runner.calls)
	}
	if out.String() != "Color changed successfully to #00FFFF\n" {
		t.Errorf("output = %q", out.String())
	}

	rec := app.Prefs.Get()
	if rec.LastDevice != g915 || rec.LastLed != "0" || rec.LastColor != "00FFFF" {
		t.Errorf("selection not remembered: %+v", rec)
	}
}

func TestApplyColorExplicitTarget(t *testing.T) {
	app, runner := newTestApp(t, nil)

	err := applyColor(context.Background(), app, &bytes.Buffer{}, session.Selection{Device: "Dev", Led: "1", Color: "#2bdee6"})
	if err != nil {
		t.Fatal(err)
	}
	if len(runner.calls) != 1 || runner.calls[0] != "ratbagctl Dev led 1 set color 2bdee6" {
		t.Errorf("calls = %v", runner.calls)
	}
}

func TestApplyColorInvalidRunsNothing(t *testing.T) {
	app, runner := newTestApp(t, map[string]fakeResponse{"ratbagctl list": {stdout: listOutput}})

	err := applyColor(context.Background(), app, &bytes.Buffer{}, session.Selection{Color: "zzzzzz"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(runner.calls) != 0 {
		t.Errorf("no command should run, got %v", runner.calls)
	}
}

func TestApplyColorNoDevices(t *testing.T) {
	app, runner := newTestApp(t, nil)

	err := applyColor(context.Background(), app, &bytes.Buffer{}, session.Selection{Color: "ff0000"})
	if err == nil || !strings.Contains(err.Error(), "no compatible devices") {
		t.Fatalf("unexpected error %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("only discovery should run, got %v", runner.calls)
	}
}

func TestPrintPalette(t *testing.T) {
	var out bytes.Buffer
	printPalette(&out)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 31 {
		t.Fatalf("got %d palette lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "White") || !strings.HasSuffix(lines[0], "#F0F0F0") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestCheckDependency(t *testing.T) {
	app, _ := newTestApp(t, map[string]fakeResponse{"ratbagctl --version": {stdout: "0.17\n"}})

	var out bytes.Buffer
	if err := checkDependency(context.Background(), app, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "Dependencies are installed.\nratbagctl 0.17\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestCheckDependencyMissing(t *testing.T) {
	app, _ := newTestApp(t, map[string]fakeResponse{"ratbagctl --version": {err: process.ErrNotFound}})

	var out bytes.Buffer
	err := checkDependency(context.Background(), app, &out)
	if !errors.Is(err, errMissing) {
		t.Fatalf("err = %v, want errMissing", err)
	}
	if !strings.Contains(out.String(), "ratbagctl is not installed") {
		t.Errorf("output = %q", out.String())
	}
}

func TestInstallDeclined(t *testing.T) {
	app, runner := newTestApp(t, nil)

	var out bytes.Buffer
	err := installDependency(context.Background(), app, strings.NewReader("n\n"), &out, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Command: sudo apt install -y ratbagd") {
		t.Errorf("prompt should show the command, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Install cancelled.") {
		t.Errorf("output = %q", out.String())
	}
	if len(runner.calls) != 0 {
		t.Errorf("nothing should run, got %v", runner.calls)
	}
}

func TestInstallConfirmed(t *testing.T) {
	app, runner := newTestApp(t, map[string]fakeResponse{"ratbagctl --version": {stdout: "0.17"}})

	var out bytes.Buffer
	err := installDependency(context.Background(), app, strings.NewReader("y\n"), &out, false)
	if err != nil {
		t.Fatal(err)
	}
	if !runner.called("sudo apt install -y ratbagd") {
		t.Errorf("install not run, calls: %v", runner.calls)
	}
	if !strings.HasSuffix(out.String(), "Dependencies installed successfully.\n") {
		t.Errorf("output = %q", out.String())
	}
}

func TestInstallFailure(t *testing.T) {
	app, _ := newTestApp(t, map[string]fakeResponse{
		"sudo apt install -y ratbagd": {err: &process.ExitError{Command: "sudo", ExitCode: 100, Stderr: "E: Unable to locate package ratbagd"}},
	})

	err := installDependency(context.Background(), app, nil, &bytes.Buffer{}, true)
	var berr *bootstrap.Error
	if !errors.As(err, &berr) || berr.Code != bootstrap.ErrCodeInstallFailed {
		t.Fatalf("err = %v, want install failure", err)
	}
	if !strings.Contains(errorText(err), "Unable to locate package") {
		t.Errorf("error text %q should carry stderr", errorText(err))
	}
}

func TestConfirm(t *testing.T) {
	tests := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		" y ":   true,
		"n\n":   false,
		"\n":    false,
		"":      false,
		"maybe": false,
	}
	for input, want := range tests {
		if got := confirm(strings.NewReader(input), &bytes.Buffer{}, "Install?"); got != want {
			t.Errorf("confirm(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestEditSettings(t *testing.T) {
	app, _ := newTestApp(t, nil)

	cmd := CreateSettingsCmd()
	if err := cmd.Flags().Parse([]string{"--package-manager", "dnf", "--package-name", "libratbag", "--skip-check"}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := editSettings(app.Prefs, &out, cmd.Flags()); err != nil {
		t.Fatal(err)
	}

	var printed prefs.Record
	if err := json.Unmarshal(out.Bytes(), &printed); err != nil {
		t.Fatalf("output is not JSON: %q", out.String())
	}
	if printed.PackageManager != "dnf" || printed.PackageName != "libratbag" || !printed.SkipDependencyCheck {
		t.Errorf("unexpected record %+v", printed)
	}
	// unchanged fields keep their detected values
	if printed.InstallCommand != "sudo apt install -y" {
		t.Errorf("install command = %q", printed.InstallCommand)
	}

	data, err := os.ReadFile(app.Prefs.Path())
	if err != nil {
		t.Fatalf("settings not saved: %v", err)
	}
	if !strings.Contains(string(data), `"package_manager":"dnf"`) {
		t.Errorf("saved file = %s", data)
	}
}

func TestEditSettingsRejectsUnknownManager(t *testing.T) {
	app, _ := newTestApp(t, nil)

	cmd := CreateSettingsCmd()
	if err := cmd.Flags().Parse([]string{"--package-manager", "brew"}); err != nil {
		t.Fatal(err)
	}
	if err := editSettings(app.Prefs, &bytes.Buffer{}, cmd.Flags()); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := os.Stat(app.Prefs.Path()); !os.IsNotExist(err) {
		t.Errorf("nothing should be saved, stat err = %v", err)
	}
}

func TestEditSettingsShowOnly(t *testing.T) {
	app, _ := newTestApp(t, nil)

	var out bytes.Buffer
	if err := editSettings(app.Prefs, &out, CreateSettingsCmd().Flags()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"package_manager": "apt"`) {
		t.Errorf("output = %q", out.String())
	}
	if _, err := os.Stat(app.Prefs.Path()); !os.IsNotExist(err) {
		t.Errorf("showing settings must not write the file, stat err = %v", err)
	}
}

func TestEditSettingsReset(t *testing.T) {
	app, _ := newTestApp(t, nil)
	if _, err := app.Prefs.UpdateSettings(prefs.Settings{PackageManager: "zypper", SkipDependencyCheck: true}); err != nil {
		t.Fatal(err)
	}

	cmd := CreateSettingsCmd()
	if err := cmd.Flags().Parse([]string{"--reset"}); err != nil {
		t.Fatal(err)
	}
	if err := editSettings(app.Prefs, &bytes.Buffer{}, cmd.Flags()); err != nil {
		t.Fatal(err)
	}
	rec := app.Prefs.Get()
	if rec.PackageManager != "apt" || rec.SkipDependencyCheck {
		t.Errorf("reset record = %+v", rec)
	}
}

type fakeUpdater struct {
	info        updater.Info
	err         error
	restored    string
	rollbackErr error
}

func (f *fakeUpdater) Check(context.Context) (updater.Info, error) { return f.info, f.err }
func (f *fakeUpdater) Apply(context.Context) (updater.Info, error) { return f.info, f.err }
func (f *fakeUpdater) Rollback() (string, error)                   { return f.restored, f.rollbackErr }

func TestCheckUpdate(t *testing.T) {
	tests := []struct {
		name string
		info updater.Info
		want string
	}{
		{
			name: "up to date",
			info: updater.Info{CurrentVersion: "1.2.0", LatestVersion: "1.2.0"},
			want: "keycolor 1.2.0 is up to date.\n",
		},
		{
			name: "newer release",
			info: updater.Info{CurrentVersion: "1.2.0", LatestVersion: "1.3.0", UpdateAvailable: true, ReleaseURL: "https://example.com/r"},
			want: "Update available: 1.2.0 -> 1.3.0\nhttps://example.com/r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := checkUpdate(context.Background(), &fakeUpdater{info: tt.info}, &out); err != nil {
				t.Fatal(err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestApplyUpdateAlreadyLatest(t *testing.T) {
	u := &fakeUpdater{
		info: updater.Info{CurrentVersion: "1.3.0", LatestVersion: "1.3.0"},
		err:  &updater.Error{Code: updater.ErrCodeNoUpdate, Message: "already running the latest version 1.3.0"},
	}
	var out bytes.Buffer
	if err := applyUpdate(context.Background(), u, &out); err != nil {
		t.Fatalf("no update should not be an error: %v", err)
	}
	if out.String() != "keycolor 1.3.0 is up to date.\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestApplyUpdateFailure(t *testing.T) {
	u := &fakeUpdater{err: &updater.Error{Code: updater.ErrCodeApplyFailed, Message: "failed to apply update", Cause: errors.New("checksum mismatch")}}
	err := applyUpdate(context.Background(), u, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := errorText(err); got != "failed to apply update: checksum mismatch" {
		t.Errorf("errorText = %q", got)
	}
}

func TestRollbackUpdate(t *testing.T) {
	var out bytes.Buffer
	if err := rollbackUpdate(&fakeUpdater{restored: "1.2.0"}, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "Restored keycolor 1.2.0.\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestCORSOrigins(t *testing.T) {
	tests := map[string][]string{
		"":                                nil,
		"http://localhost:5173":           {"http://localhost:5173"},
		" http://a.test , ,http://b.test": {"http://a.test", "http://b.test"},
	}
	for in, want := range tests {
		opts := &Options{ServerCORSOrigins: in}
		got := opts.CORSOrigins()
		if strings.Join(got, "|") != strings.Join(want, "|") || len(got) != len(want) {
			t.Errorf("CORSOrigins(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggingConfigMergesFileModules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[logging]\nlevel = \"warn\"\nprocess = \"debug\"\nratbag = \"error\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := &Options{Config: path, LoggingLevel: "info", LoggingFormat: "json", LoggingRatbag: "debug", LoggingAPI: "warn"}
	cfg := opts.LoggingConfig()

	if cfg.Level != "info" || cfg.Format != "json" {
		t.Errorf("level/format = %s/%s", cfg.Level, cfg.Format)
	}
	if cfg.Modules["process"] != "debug" {
		t.Errorf("file-only module level lost: %v", cfg.Modules)
	}
	if cfg.Modules["ratbag"] != "debug" || cfg.Modules["api"] != "warn" {
		t.Errorf("option module levels not applied: %v", cfg.Modules)
	}
}

func TestServerWiring(t *testing.T) {
	app, _ := newTestApp(t, map[string]fakeResponse{"ratbagctl list": {stdout: listOutput}})
	server := NewServer(app, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
	w := httptest.NewRecorder()
	server.GetMux().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/devices = %d: %s", w.Code, w.Body.String())
	}
	var list session.DeviceList
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Selected != g915 {
		t.Errorf("selected = %q", list.Selected)
	}

	w = httptest.NewRecorder()
	server.GetMux().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "keycolor_") {
		t.Errorf("GET /metrics = %d", w.Code)
	}
}
