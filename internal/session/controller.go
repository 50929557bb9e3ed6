// Package session implements the discover-select-apply workflow on top of
// the device tool: listing devices and LEDs, picking defaults, validating
// input and issuing the single set-color command.
//
// Every tool invocation goes through a Controller, which runs at most one
// at a time. Selection state lives in a caller owned State.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/keycolor/internal/color"
	"github.com/smazurov/keycolor/internal/events"
	"github.com/smazurov/keycolor/internal/logging"
	"github.com/smazurov/keycolor/internal/metrics"
	"github.com/smazurov/keycolor/internal/ratbag"
)

// Tool is the device tool surface the controller drives.
type Tool interface {
	Tool() string
	ListDevices(ctx context.Context) ([]string, error)
	ListLeds(ctx context.Context, device string) ([]string, error)
	ActiveProfile(ctx context.Context, device string) (string, error)
	SetColor(ctx context.Context, device, profile, led, color string) (ratbag.Command, error)
}

// SelectionRecorder remembers the last applied selection.
type SelectionRecorder interface {
	RecordSelection(device, led, color string) error
}

// Publisher receives workflow events.
type Publisher interface {
	Publish(ev events.Event)
}

// DeviceList is an accepted device listing and its default selection.
type DeviceList struct {
	Devices  []string `json:"devices" doc:"Device names in tool order"`
	Selected string   `json:"selected" doc:"Default device: remembered, then model match, then first"`
}

// LedList is the LED listing of one device and its default selection.
type LedList struct {
	Device   string   `json:"device" doc:"Device the LEDs belong to"`
	Leds     []string `json:"leds" doc:"LED ids in tool order"`
	Selected string   `json:"selected" example:"0" doc:"Default LED: remembered, then first"`
}

// ApplyResult describes a successful color change.
type ApplyResult struct {
	Device  string    `json:"device" doc:"Target device"`
	Led     string    `json:"led" example:"0" doc:"Target LED id"`
	Color   string    `json:"color" example:"2bdee6" doc:"Applied color"`
	Mode    ApplyMode `json:"mode" enum:"unscoped,active-profile,fixed-profile" doc:"Command shape in effect"`
	Profile string    `json:"profile,omitempty" example:"1" doc:"Profile the command was scoped to"`
	Command string    `json:"command" example:"ratbagctl \"Dev\" led 0 set color 2bdee6" doc:"Command that was run"`
}

// Controller serializes device tool invocations for discovery and apply.
type Controller struct {
	tool      Tool
	policy    Policy
	marker    string
	recorder  SelectionRecorder
	publisher Publisher
	logger    logging.Logger

	mu sync.Mutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithModelMarker sets the substring preferred when picking a default
// device. An empty marker disables the model match.
func WithModelMarker(marker string) Option {
	return func(c *Controller) {
		c.marker = marker
	}
}

// WithRecorder remembers every valid apply request before it runs.
func WithRecorder(r SelectionRecorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithPublisher publishes discovery and apply events.
func WithPublisher(p Publisher) Option {
	return func(c *Controller) {
		c.publisher = p
	}
}

// NewController creates a controller using policy for every apply.
func NewController(tool Tool, policy Policy, logger logging.Logger, opts ...Option) *Controller {
	c := &Controller{
		tool:   tool,
		policy: policy,
		marker: DefaultModelMarker,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the apply policy in effect.
func (c *Controller) Policy() Policy {
	return c.policy
}

// DiscoverDevices lists devices and picks the default selection.
// generation is carried into the published event.
func (c *Controller) DiscoverDevices(ctx context.Context, generation uint64, remembered string) (DeviceList, error) {
	c.mu.Lock()
	devices, err := c.tool.ListDevices(ctx)
	c.mu.Unlock()
	if err != nil {
		c.logger.Warn("Device discovery failed", "error", err)
		return DeviceList{}, err
	}

	list := DeviceList{
		Devices:  devices,
		Selected: SelectDefaultDevice(devices, remembered, c.marker),
	}
	metrics.SetDevicesDiscovered(len(devices))
	c.logger.Info("Devices discovered", "count", len(devices), "selected", list.Selected)

	c.publish(events.DevicesDiscoveredEvent{
		Devices:    list.Devices,
		Selected:   list.Selected,
		Generation: generation,
		Timestamp:  now(),
	})
	return list, nil
}

// DiscoverLeds lists the LEDs of device and picks the default LED.
func (c *Controller) DiscoverLeds(ctx context.Context, device, remembered string) (LedList, error) {
	if device == "" {
		return LedList{}, validationError("device", "No device selected", nil)
	}

	c.mu.Lock()
	leds, err := c.tool.ListLeds(ctx, device)
	c.mu.Unlock()
	if err != nil {
		c.logger.Warn("LED discovery failed", "device", device, "error", err)
		return LedList{}, err
	}

	list := LedList{
		Device:   device,
		Leds:     leds,
		Selected: SelectDefaultLed(leds, remembered),
	}
	c.logger.Info("LEDs discovered", "device", device, "count", len(leds), "selected", list.Selected)

	c.publish(events.LedsDiscoveredEvent{
		Device:    device,
		Leds:      list.Leds,
		Selected:  list.Selected,
		Timestamp: now(),
	})
	return list, nil
}

// ApplyColor validates sel, remembers it, resolves the profile required by
// the policy and runs exactly one set-color command. The tool's error text
// is returned unchanged; nothing is retried.
func (c *Controller) ApplyColor(ctx context.Context, sel Selection) (ApplyResult, error) {
	normalized, err := validate(sel)
	if err != nil {
		c.fail(sel, err, metrics.OutcomeInvalid)
		return ApplyResult{}, err
	}
	sel = normalized

	if c.recorder != nil {
		if err := c.recorder.RecordSelection(sel.Device, sel.Led, sel.Color); err != nil {
			c.logger.Debug("Selection not persisted", "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	profile, err := c.resolveProfile(ctx, sel.Device)
	if err != nil {
		c.fail(sel, err, outcomeOf(err))
		return ApplyResult{}, err
	}

	cmd, err := c.tool.SetColor(ctx, sel.Device, profile, sel.Led, sel.Color)
	if err != nil {
		c.fail(sel, err, outcomeOf(err))
		return ApplyResult{}, err
	}

	res := ApplyResult{
		Device:  sel.Device,
		Led:     sel.Led,
		Color:   sel.Color,
		Mode:    c.policy.Mode,
		Profile: profile,
		Command: cmd.String(),
	}
	metrics.RecordColorApply(string(c.policy.Mode), metrics.OutcomeSuccess)
	c.logger.Info("Color applied", "device", sel.Device, "led", sel.Led, "color", sel.Color, "profile", profile)

	c.publish(events.ColorAppliedEvent{
		Device:    res.Device,
		Led:       res.Led,
		Profile:   res.Profile,
		Color:     res.Color,
		Command:   res.Command,
		Timestamp: now(),
	})
	return res, nil
}

func (c *Controller) resolveProfile(ctx context.Context, device string) (string, error) {
	switch c.policy.Mode {
	case ModeActiveProfile:
		return c.tool.ActiveProfile(ctx, device)
	case ModeFixedProfile:
		return strconv.Itoa(c.policy.Profile), nil
	default:
		return "", nil
	}
}

// validate checks the selection in field order and normalizes the color.
func validate(sel Selection) (Selection, error) {
	if sel.Device == "" {
		return sel, validationError("device", "No device selected", nil)
	}
	if sel.Led == "" {
		return sel, validationError("led", "No LED selected", nil)
	}
	hex, err := color.Parse(sel.Color)
	switch {
	case err == nil:
		sel.Color = hex
		return sel, nil
	case errors.Is(err, color.ErrEmpty):
		return sel, validationError("color", "No color specified", err)
	default:
		return sel, validationError("color", "Invalid color "+strconv.Quote(sel.Color)+": expected six hex digits", err)
	}
}

func (c *Controller) fail(sel Selection, err error, outcome string) {
	metrics.RecordColorApply(string(c.policy.Mode), outcome)
	c.logger.Warn("Color apply failed", "device", sel.Device, "led", sel.Led, "color", sel.Color, "error", err)
	c.publish(events.ColorApplyFailedEvent{
		Device:    sel.Device,
		Led:       sel.Led,
		Color:     sel.Color,
		Code:      ErrorCode(err),
		Error:     ErrorMessage(err),
		Timestamp: now(),
	})
}

func (c *Controller) publish(ev events.Event) {
	if c.publisher != nil {
		c.publisher.Publish(ev)
	}
}

func outcomeOf(err error) string {
	if ratbag.IsToolNotFound(err) {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeFailed
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
