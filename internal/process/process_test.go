package process

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"plain", "sudo apt install -y", []string{"sudo", "apt", "install", "-y"}, false},
		{"extra spaces", "  sudo   pacman -S  --noconfirm ", []string{"sudo", "pacman", "-S", "--noconfirm"}, false},
		{"single quotes", "echo 'Package manager not detected. Please install manually:'",
			[]string{"echo", "Package manager not detected. Please install manually:"}, false},
		{"double quotes", `ratbagctl "Logitech G915" led get`, []string{"ratbagctl", "Logitech G915", "led", "get"}, false},
		{"escaped space", `echo hello\ world`, []string{"echo", "hello world"}, false},
		{"empty", "", nil, false},
		{"unclosed quote", `echo "oops`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Split(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		argv []string
		want string
	}{
		{[]string{"ratbagctl", "list"}, "ratbagctl list"},
		{[]string{"ratbagctl", "Dev", "led", "0", "set", "color", "2bdee6"}, "ratbagctl Dev led 0 set color 2bdee6"},
		{[]string{"ratbagctl", "Logitech G915", "led", "get"}, `ratbagctl "Logitech G915" led get`},
		{[]string{"echo", `say "hi"`}, `echo "say \"hi\""`},
		{[]string{"echo", ""}, `echo ""`},
	}

	for _, tt := range tests {
		if got := Format(tt.argv); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.argv, got, tt.want)
		}
	}
}

func TestSplitFormatRoundTrip(t *testing.T) {
	argv := []string{"ratbagctl", `weird "name" $(rm -rf)`, "led", "0"}
	got, err := Split(Format(argv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, argv) {
		t.Errorf("round trip = %q, want %q", got, argv)
	}
}

func TestExecRunSuccess(t *testing.T) {
	runner := NewExec(testLogger())

	res, err := runner.Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "out\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "out\n")
	}
	if res.Stderr != "err\n" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "err\n")
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
}

func TestExecRunExitError(t *testing.T) {
	runner := NewExec(testLogger())

	res, err := runner.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", exitErr.ExitCode)
	}
	if exitErr.Stderr != "boom\n" {
		t.Errorf("Stderr = %q, want %q", exitErr.Stderr, "boom\n")
	}
	if res == nil || res.ExitCode != 3 {
		t.Errorf("expected result with exit code 3, got %+v", res)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("exit error must not be classified as not found")
	}
}

func TestExecRunNotFound(t *testing.T) {
	runner := NewExec(testLogger())

	_, err := runner.Run(context.Background(), "keycolor-definitely-missing-binary", "--version")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = runner.Run(context.Background(), "/nonexistent/path/to/tool", "list")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing absolute path, got %v", err)
	}
}

func TestExecRunPermissionDeniedIsNotMissing(t *testing.T) {
	tool := filepath.Join(t.TempDir(), "ratbagctl")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\necho 0.17\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewExec(testLogger()).Run(context.Background(), tool, "--version")
	if err == nil {
		t.Fatal("expected an error for a non-executable tool")
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("permission failure classified as not found: %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"lookpath miss", &exec.Error{Name: "ratbagctl", Err: exec.ErrNotFound}, true},
		{"missing path", &fs.PathError{Op: "fork/exec", Path: "/nope", Err: fs.ErrNotExist}, true},
		{"lookpath permission", &exec.Error{Name: "./ratbagctl", Err: fs.ErrPermission}, false},
		{"start permission", &fs.PathError{Op: "fork/exec", Path: "/tool", Err: fs.ErrPermission}, false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExecRunDoesNotUseShell(t *testing.T) {
	runner := NewExec(testLogger())

	res, err := runner.Run(context.Background(), "echo", "$(id)", "; true")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "$(id) ; true\n" {
		t.Errorf("arguments were interpreted: %q", res.Stdout)
	}
}

func TestExitErrorMessage(t *testing.T) {
	err := &ExitError{Command: "ratbagctl list", ExitCode: 1}
	if got := err.Error(); got != "ratbagctl list: exit status 1" {
		t.Errorf("Error() = %q", got)
	}

	err.Stderr = "  no such device \n"
	if got := err.Error(); got != "ratbagctl list: exit status 1: no such device" {
		t.Errorf("Error() = %q", got)
	}
}
