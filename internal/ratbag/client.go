// Package ratbag drives the ratbagctl command line tool: it builds the
// fixed-shape commands, runs them through a process.Runner, and parses the
// plain text listings they print.
package ratbag

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smazurov/keycolor/internal/logging"
	"github.com/smazurov/keycolor/internal/metrics"
	"github.com/smazurov/keycolor/internal/process"
)

// DefaultTool is the tool name used when none is configured.
const DefaultTool = "ratbagctl"

// Client invokes the device tool.
type Client struct {
	tool   string
	runner process.Runner
	logger logging.Logger
}

// NewClient creates a client for tool. An empty tool selects DefaultTool.
func NewClient(tool string, runner process.Runner, logger logging.Logger) *Client {
	if tool == "" {
		tool = DefaultTool
	}
	return &Client{
		tool:   tool,
		runner: runner,
		logger: logger,
	}
}

// Tool returns the configured tool name.
func (c *Client) Tool() string {
	return c.tool
}

// Version runs `<tool> --version` and returns its trimmed output.
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := c.run(ctx, "version", VersionCommand(c.tool))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ListDevices returns the connected devices in tool order.
func (c *Client) ListDevices(ctx context.Context) ([]string, error) {
	res, err := c.run(ctx, "list", ListCommand(c.tool))
	if err != nil {
		return nil, err
	}
	devices := ParseDevices(res.Stdout)
	c.logger.Debug("Listed devices", "count", len(devices))
	return devices, nil
}

// ListLeds returns the LED ids of device in tool order.
func (c *Client) ListLeds(ctx context.Context, device string) ([]string, error) {
	res, err := c.run(ctx, "led_get", LedGetCommand(c.tool, device))
	if err != nil {
		return nil, err
	}
	leds := ParseLeds(res.Stdout)
	c.logger.Debug("Listed LEDs", "device", device, "count", len(leds))
	return leds, nil
}

// ActiveProfile returns the active profile index of device as printed by
// the tool. Empty output is reported as a tool failure.
func (c *Client) ActiveProfile(ctx context.Context, device string) (string, error) {
	cmd := ActiveProfileCommand(c.tool, device)
	res, err := c.run(ctx, "profile_get", cmd)
	if err != nil {
		return "", err
	}
	profile := strings.TrimSpace(res.Stdout)
	if profile == "" {
		return "", newError(ErrCodeToolFailed, cmd.String()+" printed no profile", nil)
	}
	return profile, nil
}

// SetColor issues exactly one mutating invocation. An empty profile selects
// the unscoped command form. Only a zero exit status counts as success.
func (c *Client) SetColor(ctx context.Context, device, profile, led, color string) (Command, error) {
	cmd := SetColorCommand(c.tool, device, profile, led, color)
	_, err := c.run(ctx, "set_color", cmd)
	return cmd, err
}

// run executes cmd and maps runner failures onto coded errors.
func (c *Client) run(ctx context.Context, operation string, cmd Command) (*process.Result, error) {
	c.logger.Debug("Running device tool", "command", cmd.String())

	start := time.Now()
	res, err := c.runner.Run(ctx, cmd.Tool, cmd.Args...)
	duration := time.Since(start)

	if err == nil {
		metrics.ObserveToolInvocation(operation, metrics.OutcomeSuccess, duration)
		return res, nil
	}

	if errors.Is(err, process.ErrNotFound) {
		metrics.ObserveToolInvocation(operation, metrics.OutcomeNotFound, duration)
		c.logger.Warn("Device tool not found", "tool", c.tool)
		return nil, newError(ErrCodeToolNotFound, c.tool+" is not installed", err)
	}

	metrics.ObserveToolInvocation(operation, metrics.OutcomeFailed, duration)
	c.logger.Warn("Device tool failed", "command", cmd.String(), "error", err)

	// The tool's own stderr is the message, surfaced as is
	var exitErr *process.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(exitErr.Stderr); msg != "" {
			return nil, newError(ErrCodeToolFailed, msg, nil)
		}
		return nil, newError(ErrCodeToolFailed, exitErr.Error(), nil)
	}
	return nil, newError(ErrCodeToolFailed, "failed to run "+c.tool, err)
}
