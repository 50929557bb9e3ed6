package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/process"
	"github.com/smazurov/keycolor/internal/ratbag"
)

type fakeResponse struct {
	stdout string
	err    error
}

// fakeRunner records argv and answers from a table keyed by the space
// joined argv. Unknown commands succeed with empty output.
type fakeRunner struct {
	mu        sync.Mutex
	calls     [][]string
	responses map[string]fakeResponse
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (*process.Result, error) {
	argv := append([]string{name}, args...)
	f.mu.Lock()
	f.calls = append(f.calls, argv)
	f.mu.Unlock()
	resp := f.responses[strings.Join(argv, " ")]
	return &process.Result{Stdout: resp.stdout}, resp.err
}

type fakeRecorder struct {
	selections []Selection
	err        error
}

func (r *fakeRecorder) RecordSelection(device, led, color string) error {
	r.selections = append(r.selections, Selection{Device: device, Led: led, Color: color})
	return r.err
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(ev events.Event) {
	p.events = append(p.events, ev)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(policy Policy, responses map[string]fakeResponse, opts ...Option) (*Controller, *fakeRunner) {
	runner := &fakeRunner{responses: responses}
	client := ratbag.NewClient("ratbagctl", runner, testLogger())
	return NewController(client, policy, testLogger(), opts...), runner
}

var unscoped = Policy{Mode: ModeUnscoped}

func TestSelectDefaultDevice(t *testing.T) {
	devices := []string{"Generic Mouse", "Logitech G915 Keyboard"}

	tests := []struct {
		name       string
		devices    []string
		remembered string
		marker     string
		want       string
	}{
		{"marker match", devices, "", "G915", "Logitech G915 Keyboard"},
		{"remembered beats marker", devices, "Generic Mouse", "G915", "Generic Mouse"},
		{"remembered gone", devices, "Old Keyboard", "G915", "Logitech G915 Keyboard"},
		{"no marker", devices, "", "", "Generic Mouse"},
		{"marker absent", devices, "", "G502", "Generic Mouse"},
		{"empty list", nil, "Generic Mouse", "G915", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectDefaultDevice(tt.devices, tt.remembered, tt.marker); got != tt.want {
				t.Errorf("SelectDefaultDevice() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectDefaultLed(t *testing.T) {
	leds := []string{"0", "1"}
	tests := []struct {
		remembered string
		leds       []string
		want       string
	}{
		{"1", leds, "1"},
		{"7", leds, "0"},
		{"", leds, "0"},
		{"0", nil, ""},
	}
	for _, tt := range tests {
		if got := SelectDefaultLed(tt.leds, tt.remembered); got != tt.want {
			t.Errorf("SelectDefaultLed(%v, %q) = %q, want %q", tt.leds, tt.remembered, got, tt.want)
		}
	}
}

func TestParseApplyMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseApplyMode(string(m))
		if err != nil || got != m {
			t.Errorf("ParseApplyMode(%q) = %q, %v", m, got, err)
		}
	}
	for _, bad := range []string{"", "scoped", "Unscoped"} {
		if _, err := ParseApplyMode(bad); err == nil {
			t.Errorf("ParseApplyMode(%q) should fail", bad)
		}
	}
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy("fixed-profile", 2)
	if err != nil {
		t.Fatal(err)
	}
	if p.Mode != ModeFixedProfile || p.Profile != 2 || p.String() != "fixed-profile(2)" {
		t.Errorf("unexpected policy %+v (%s)", p, p)
	}
	if _, err := NewPolicy("fixed-profile", -1); err == nil {
		t.Error("negative profile should be rejected")
	}
	if _, err := NewPolicy("", 0); err == nil {
		t.Error("empty mode should be rejected")
	}
}

func TestDiscoverDevices(t *testing.T) {
	pub := &recordingPublisher{}
	c, _ := newTestController(unscoped, map[string]fakeResponse{
		"ratbagctl list": {stdout: "0: Generic Mouse\nnoise\n1: Logitech G915 Keyboard\n"},
	}, WithPublisher(pub))

	list, err := c.DiscoverDevices(context.Background(), 4, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Generic Mouse", "Logitech G915 Keyboard"}; !reflect.DeepEqual(list.Devices, want) {
		t.Errorf("Devices = %q, want %q", list.Devices, want)
	}
	if list.Selected != "Logitech G915 Keyboard" {
		t.Errorf("Selected = %q", list.Selected)
	}

	ev, ok := pub.events[0].(events.DevicesDiscoveredEvent)
	if !ok || ev.Generation != 4 || ev.Selected != list.Selected {
		t.Errorf("unexpected event %#v", pub.events[0])
	}
}

func TestDiscoverDevicesToolMissing(t *testing.T) {
	c, _ := newTestController(unscoped, map[string]fakeResponse{
		"ratbagctl list": {err: process.ErrNotFound},
	})

	_, err := c.DiscoverDevices(context.Background(), 1, "")
	if !ratbag.IsToolNotFound(err) {
		t.Fatalf("expected TOOL_NOT_FOUND, got %v", err)
	}
}

func TestDiscoverLeds(t *testing.T) {
	c, runner := newTestController(unscoped, map[string]fakeResponse{
		"ratbagctl Dev led get": {stdout: "LED: 0: on\nsomething else\nLED: 1: on\n"},
	})

	list, err := c.DiscoverLeds(context.Background(), "Dev", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(list.Leds, []string{"0", "1"}) || list.Selected != "1" {
		t.Errorf("unexpected list %+v", list)
	}
	if want := [][]string{{"ratbagctl", "Dev", "led", "get"}}; !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("calls = %q", runner.calls)
	}

	if _, err := c.DiscoverLeds(context.Background(), "", ""); !IsValidation(err) {
		t.Errorf("empty device should be a validation error, got %v", err)
	}
}

func TestApplyColorValidation(t *testing.T) {
	tests := []struct {
		name    string
		sel     Selection
		field   string
		message string
	}{
		{"no device", Selection{Led: "0", Color: "ff0000"}, "device", "No device selected"},
		{"no led", Selection{Device: "Dev", Color: "ff0000"}, "led", "No LED selected"},
		{"no color", Selection{Device: "Dev", Led: "0"}, "color", "No color specified"},
		{"malformed", Selection{Device: "Dev", Led: "0", Color: "zzzzzz"}, "color", `Invalid color "zzzzzz": expected six hex digits`},
		{"too short", Selection{Device: "Dev", Led: "0", Color: "fff"}, "color", `Invalid color "fff": expected six hex digits`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			pub := &recordingPublisher{}
			c, runner := newTestController(unscoped, nil, WithRecorder(recorder), WithPublisher(pub))

			_, err := c.ApplyColor(context.Background(), tt.sel)
			var serr *Error
			if !errors.As(err, &serr) || serr.Code != ErrCodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if serr.Field != tt.field || serr.Message != tt.message {
				t.Errorf("got field %q message %q", serr.Field, serr.Message)
			}
			if len(runner.calls) != 0 {
				t.Errorf("no process may run, got %q", runner.calls)
			}
			if len(recorder.selections) != 0 {
				t.Error("invalid selections must not be remembered")
			}
			if ev, ok := pub.events[0].(events.ColorApplyFailedEvent); !ok || ev.Code != ErrCodeValidation {
				t.Errorf("unexpected event %#v", pub.events[0])
			}
		})
	}
}

func TestApplyColorUnscoped(t *testing.T) {
	recorder := &fakeRecorder{}
	pub := &recordingPublisher{}
	c, runner := newTestController(unscoped, nil, WithRecorder(recorder), WithPublisher(pub))

	res, err := c.ApplyColor(context.Background(), Selection{Device: "Dev", Led: "0", Color: "#2bdee6"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Command != `ratbagctl "Dev" led 0 set color 2bdee6` {
		t.Errorf("Command = %q", res.Command)
	}
	want := [][]string{{"ratbagctl", "Dev", "led", "0", "set", "color", "2bdee6"}}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("calls = %q, want %q", runner.calls, want)
	}
	if !reflect.DeepEqual(recorder.selections, []Selection{{Device: "Dev", Led: "0", Color: "2bdee6"}}) {
		t.Errorf("recorded = %+v", recorder.selections)
	}
	if AppliedStatus(res) != "Color changed successfully to #2bdee6" {
		t.Errorf("status = %q", AppliedStatus(res))
	}
	if _, ok := pub.events[0].(events.ColorAppliedEvent); !ok {
		t.Errorf("unexpected event %#v", pub.events[0])
	}
}

func TestApplyColorShellMetacharacters(t *testing.T) {
	c, runner := newTestController(unscoped, nil)

	device := `Evil"; rm -rf ~ #`
	if _, err := c.ApplyColor(context.Background(), Selection{Device: device, Led: "0", Color: "ffffff"}); err != nil {
		t.Fatal(err)
	}
	if got := runner.calls[0][1]; got != device {
		t.Errorf("device argument = %q, want it passed verbatim", got)
	}
}

func TestApplyColorActiveProfile(t *testing.T) {
	c, runner := newTestController(Policy{Mode: ModeActiveProfile}, map[string]fakeResponse{
		"ratbagctl Dev profile active get": {stdout: "2\n"},
	})

	res, err := c.ApplyColor(context.Background(), Selection{Device: "Dev", Led: "1", Color: "ff0000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{
		{"ratbagctl", "Dev", "profile", "active", "get"},
		{"ratbagctl", "Dev", "profile", "2", "led", "1", "set", "color", "ff0000"},
	}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("calls = %q, want %q", runner.calls, want)
	}
	if res.Profile != "2" || res.Mode != ModeActiveProfile {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestApplyColorActiveProfileQueryFails(t *testing.T) {
	pub := &recordingPublisher{}
	c, runner := newTestController(Policy{Mode: ModeActiveProfile}, map[string]fakeResponse{
		"ratbagctl Dev profile active get": {err: &process.ExitError{ExitCode: 1, Stderr: "Unknown device\n"}},
	}, WithPublisher(pub))

	_, err := c.ApplyColor(context.Background(), Selection{Device: "Dev", Led: "0", Color: "ff0000"})
	if !ratbag.IsToolFailed(err) {
		t.Fatalf("expected TOOL_FAILED, got %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("no mutating command may run, calls = %q", runner.calls)
	}
	if ApplyErrorStatus(err) != "Error changing color: Unknown device" {
		t.Errorf("status = %q", ApplyErrorStatus(err))
	}
	ev := pub.events[0].(events.ColorApplyFailedEvent)
	if ev.Code != ratbag.ErrCodeToolFailed || ev.Error != "Unknown device" {
		t.Errorf("unexpected event %#v", ev)
	}
}

func TestApplyColorFixedProfile(t *testing.T) {
	c, runner := newTestController(Policy{Mode: ModeFixedProfile, Profile: 0}, nil)

	if _, err := c.ApplyColor(context.Background(), Selection{Device: "Dev", Led: "0", Color: "00FF00"}); err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"ratbagctl", "Dev", "profile", "0", "led", "0", "set", "color", "00FF00"}}
	if !reflect.DeepEqual(runner.calls, want) {
		t.Errorf("calls = %q, want %q", runner.calls, want)
	}
}

func TestApplyColorToolError(t *testing.T) {
	c, runner := newTestController(unscoped, map[string]fakeResponse{
		"ratbagctl Dev led 0 set color ff0000": {err: &process.ExitError{ExitCode: 1, Stderr: "LED 0 is not color capable\n"}},
	})

	_, err := c.ApplyColor(context.Background(), Selection{Device: "Dev", Led: "0", Color: "ff0000"})
	if !ratbag.IsToolFailed(err) {
		t.Fatalf("expected TOOL_FAILED, got %v", err)
	}
	if ErrorMessage(err) != "LED 0 is not color capable" {
		t.Errorf("message = %q", ErrorMessage(err))
	}
	if len(runner.calls) != 1 {
		t.Errorf("expected exactly one invocation, got %d", len(runner.calls))
	}
}

func TestApplyColorRecorderFailureIsWarning(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("read-only file system")}
	c, _ := newTestController(unscoped, nil, WithRecorder(recorder))

	if _, err := c.ApplyColor(context.Background(), Selection{Device: "Dev", Led: "0", Color: "ff0000"}); err != nil {
		t.Fatalf("store failure must not fail the apply: %v", err)
	}
}

func TestStateRejectsStaleDiscovery(t *testing.T) {
	st := NewState(Selection{Device: "Old", Led: "1"})

	first := st.BeginDiscovery()
	second := st.BeginDiscovery()

	if st.AcceptDevices(first, DeviceList{Devices: []string{"A"}, Selected: "A"}) {
		t.Error("superseded discovery must be rejected")
	}
	if !st.AcceptDevices(second, DeviceList{Devices: []string{"A", "B"}, Selected: "B"}) {
		t.Fatal("latest discovery must be accepted")
	}
	if got := st.Selection().Device; got != "B" {
		t.Errorf("Device = %q, want B", got)
	}
}

func TestStateUserSelectionWinsOverInFlightDiscovery(t *testing.T) {
	st := NewState(Selection{})
	gen := st.BeginDiscovery()

	st.SelectDevice("Chosen")

	if st.AcceptDevices(gen, DeviceList{Devices: []string{"Other"}, Selected: "Other"}) {
		t.Error("discovery started before the user's choice must be rejected")
	}
	if got := st.Selection().Device; got != "Chosen" {
		t.Errorf("Device = %q, want Chosen", got)
	}
}

func TestStateLedPickWinsOverInFlightLedDiscovery(t *testing.T) {
	st := NewState(Selection{Device: "Dev", Led: "0"})
	gen, _ := st.BeginLedDiscovery()

	st.SelectLed("1")

	if !st.AcceptLeds(gen, LedList{Device: "Dev", Leds: []string{"0", "1"}, Selected: "0"}) {
		t.Fatal("LED list for the selected device must be accepted")
	}
	snap := st.Snapshot()
	if snap.Led != "1" {
		t.Errorf("Led = %q, want the user's pick 1", snap.Led)
	}
	if !reflect.DeepEqual(snap.Leds, []string{"0", "1"}) {
		t.Errorf("Leds = %v", snap.Leds)
	}

	// A pick that is gone from the new list falls back to the default
	gen, _ = st.BeginLedDiscovery()
	st.SelectLed("7")
	st.AcceptLeds(gen, LedList{Device: "Dev", Leds: []string{"0", "1"}, Selected: "0"})
	if got := st.Selection().Led; got != "0" {
		t.Errorf("Led = %q, want default 0", got)
	}

	// Without a pick the discovery default applies
	gen, _ = st.BeginLedDiscovery()
	st.AcceptLeds(gen, LedList{Device: "Dev", Leds: []string{"0", "1"}, Selected: "1"})
	if got := st.Selection().Led; got != "1" {
		t.Errorf("Led = %q, want default 1", got)
	}
}

func TestStateAcceptLeds(t *testing.T) {
	st := NewState(Selection{Device: "Dev", Led: "1"})

	gen, device := st.BeginLedDiscovery()
	if device != "Dev" {
		t.Fatalf("device = %q", device)
	}
	if !st.AcceptLeds(gen, LedList{Device: "Dev", Leds: []string{"0", "1"}, Selected: "1"}) {
		t.Fatal("current LED list must be accepted")
	}

	snap := st.Snapshot()
	if !reflect.DeepEqual(snap.Leds, []string{"0", "1"}) || snap.Led != "1" {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	gen, _ = st.BeginLedDiscovery()
	st.SelectDevice("Other")
	if st.AcceptLeds(gen, LedList{Device: "Dev", Leds: []string{"0"}, Selected: "0"}) {
		t.Error("LEDs of a deselected device must be rejected")
	}
	if len(st.Snapshot().Leds) != 0 {
		t.Error("changing device should drop the LED list")
	}
}

func TestStatusTexts(t *testing.T) {
	if got := DevicesStatus(DeviceList{}); got != "No compatible devices found." {
		t.Errorf("DevicesStatus(empty) = %q", got)
	}
	if got := LedsStatus(LedList{Device: "Dev"}); got != "No LEDs found on the device." {
		t.Errorf("LedsStatus(empty) = %q", got)
	}
	if got := LedsStatus(LedList{Device: "Dev", Leds: []string{"0", "1"}}); got != "Found 2 LEDs on Dev" {
		t.Errorf("LedsStatus = %q", got)
	}
	err := validationError("device", "No device selected", nil)
	if got := ApplyErrorStatus(err); got != "Error: No device selected" {
		t.Errorf("ApplyErrorStatus = %q", got)
	}
}
