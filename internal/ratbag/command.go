package ratbag

import (
	"strings"

	"github.com/smazurov/keycolor/internal/process"
)

// Command is one invocation of the device tool.
type Command struct {
	Tool string
	Args []string

	// targetsDevice marks Args[0] as a device name.
	targetsDevice bool
}

// Argv returns the full argument vector including the tool.
func (c Command) Argv() []string {
	return append([]string{c.Tool}, c.Args...)
}

// String renders the command for display. A device argument is always
// quoted, e.g. `ratbagctl "Dev" led 0 set color 2bdee6`.
func (c Command) String() string {
	if !c.targetsDevice || len(c.Args) == 0 {
		return process.Format(c.Argv())
	}
	parts := []string{process.Format([]string{c.Tool}), process.Quote(c.Args[0])}
	if rest := c.Args[1:]; len(rest) > 0 {
		parts = append(parts, process.Format(rest))
	}
	return strings.Join(parts, " ")
}

// VersionCommand builds `<tool> --version`.
func VersionCommand(tool string) Command {
	return Command{Tool: tool, Args: []string{"--version"}}
}

// ListCommand builds `<tool> list`.
func ListCommand(tool string) Command {
	return Command{Tool: tool, Args: []string{"list"}}
}

// LedGetCommand builds `<tool> <device> led get`.
func LedGetCommand(tool, device string) Command {
	return Command{Tool: tool, Args: []string{device, "led", "get"}, targetsDevice: true}
}

// ActiveProfileCommand builds `<tool> <device> profile active get`.
func ActiveProfileCommand(tool, device string) Command {
	return Command{Tool: tool, Args: []string{device, "profile", "active", "get"}, targetsDevice: true}
}

// SetColorCommand builds the mutating set-color call. An empty profile
// yields the unscoped form `<tool> <device> led <led> set color <rrggbb>`;
// otherwise `<tool> <device> profile <profile> led <led> set color <rrggbb>`.
func SetColorCommand(tool, device, profile, led, color string) Command {
	args := []string{device}
	if profile != "" {
		args = append(args, "profile", profile)
	}
	args = append(args, "led", led, "set", "color", color)
	return Command{Tool: tool, Args: args, targetsDevice: true}
}
