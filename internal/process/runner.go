package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/smazurov/keycolor/internal/logging"
)

// ErrNotFound is returned when the executable cannot be located or started.
var ErrNotFound = errors.New("executable not found")

// Result holds the captured output of a finished subprocess.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ExitError reports a subprocess that ran but exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.ExitCode, msg)
}

// Runner executes a command given as an argument vector.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// Exec implements Runner with os/exec.
type Exec struct {
	logger logging.Logger
}

// NewExec creates a Runner backed by os/exec.
func NewExec(logger logging.Logger) *Exec {
	return &Exec{logger: logger}
}

// Run starts the command, waits for it and returns its output.
// A missing executable yields ErrNotFound; a non-zero exit yields *ExitError
// alongside the captured Result.
func (e *Exec) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	command := Format(append([]string{name}, args...))

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCodeFromError(err),
		Duration: time.Since(start),
	}

	e.logOutput(res.Stderr)

	if err == nil {
		e.logger.Debug("Command finished", "command", command, "duration", res.Duration)
		return res, nil
	}

	if isNotFound(err) {
		e.logger.Debug("Executable not found", "command", command, "error", err)
		return res, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.logger.Debug("Command exited with error", "command", command, "exit_code", res.ExitCode)
		return res, &ExitError{Command: command, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	e.logger.Debug("Command failed to run", "command", command, "error", err)
	return res, fmt.Errorf("failed to run %s: %w", name, err)
}

// logOutput forwards subprocess stderr lines to the debug log.
func (e *Exec) logOutput(output string) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			e.logger.Debug(line)
		}
	}
}

// isNotFound reports whether err means the executable does not exist.
// Other start failures, such as a file without execute permission, are not
// treated as a missing tool.
func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// exitCodeFromError extracts exit code from process error.
// Returns 0 for nil error, the exit code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
