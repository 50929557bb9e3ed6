package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type testRecord struct {
	LastDevice string `json:"last_device"`
	LastLed    string `json:"last_led"`
}

func loadTestRecord(path string) (testRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return testRecord{}, err
	}
	var rec testRecord
	err = json.Unmarshal(data, &rec)
	return rec, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func startWatcher(t *testing.T, path string, opts ...WatcherOption[testRecord]) *Watcher[testRecord] {
	t.Helper()
	opts = append([]WatcherOption[testRecord]{WithDebounce[testRecord](50 * time.Millisecond)}, opts...)
	w := NewConfigWatcher(path, loadTestRecord, newTestLogger(), opts...)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("Stop failed: %v", err)
		}
	})
	// Give the watch loop a moment to attach
	time.Sleep(100 * time.Millisecond)
	return w
}

func TestConfigWatcher_BasicReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	writeFile(t, path, `{"last_device":"initial"}`)

	received := make(chan testRecord, 1)
	w := startWatcher(t, path)
	w.OnReload(func(rec testRecord) {
		received <- rec
	})

	writeFile(t, path, `{"last_device":"Logitech G915","last_led":"1"}`)

	select {
	case rec := <-received:
		if rec.LastDevice != "Logitech G915" || rec.LastLed != "1" {
			t.Errorf("got %+v, want last_device=Logitech G915 last_led=1", rec)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestConfigWatcher_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.json")
	writeFile(t, path, `{"last_device":"old"}`)

	received := make(chan testRecord, 1)
	w := startWatcher(t, path)
	w.OnReload(func(rec testRecord) {
		received <- rec
	})

	tmp := filepath.Join(dir, "prefs.json.tmp")
	writeFile(t, tmp, `{"last_device":"replaced"}`)
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case rec := <-received:
		if rec.LastDevice != "replaced" {
			t.Errorf("LastDevice = %q, want replaced", rec.LastDevice)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload after rename")
	}
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.json")
	writeFile(t, path, `{}`)

	var count atomic.Int32
	w := startWatcher(t, path)
	w.OnReload(func(_ testRecord) {
		count.Add(1)
	})

	writeFile(t, filepath.Join(dir, "other.json"), `{"last_device":"x"}`)
	time.Sleep(300 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected no reload for sibling file, got %d", got)
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	writeFile(t, path, `{}`)

	var count atomic.Int32
	last := make(chan testRecord, 10)
	w := startWatcher(t, path, WithDebounce[testRecord](200*time.Millisecond))
	w.OnReload(func(rec testRecord) {
		count.Add(1)
		last <- rec
	})

	for _, led := range []string{"0", "1", "2", "3", "4"} {
		writeFile(t, path, `{"last_led":"`+led+`"}`)
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case rec := <-last:
		if rec.LastLed != "4" {
			t.Errorf("LastLed = %q, want 4", rec.LastLed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for debounced reload")
	}

	time.Sleep(300 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 debounced reload, got %d", got)
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	writeFile(t, path, `{}`)

	errCh := make(chan error, 1)
	var reloads atomic.Int32
	w := startWatcher(t, path, WithErrorHandler[testRecord](func(err error) {
		errCh <- err
	}))
	w.OnReload(func(_ testRecord) {
		reloads.Add(1)
	})

	writeFile(t, path, `{not json`)

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("expected non-nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
	if got := reloads.Load(); got != 0 {
		t.Errorf("handlers must not run on load error, got %d calls", got)
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	writeFile(t, path, `{}`)

	var first, second atomic.Int32
	done := make(chan struct{}, 1)
	w := startWatcher(t, path)
	unsubscribe := w.OnReload(func(_ testRecord) {
		first.Add(1)
	})
	w.OnReload(func(_ testRecord) {
		second.Add(1)
		done <- struct{}{}
	})

	unsubscribe()
	writeFile(t, path, `{"last_device":"x"}`)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}

	if got := first.Load(); got != 0 {
		t.Errorf("unsubscribed handler called %d times", got)
	}
	if got := second.Load(); got != 1 {
		t.Errorf("remaining handler called %d times, want 1", got)
	}
}

func TestConfigWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	writeFile(t, path, `{}`)

	var count atomic.Int32
	w := NewConfigWatcher(path, loadTestRecord, newTestLogger(), WithDebounce[testRecord](50*time.Millisecond))
	w.OnReload(func(_ testRecord) {
		count.Add(1)
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, `{"last_device":"after stop"}`)
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 calls after stop, got %d", got)
	}
}

func TestConfigWatcher_StartMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "prefs.json")
	w := NewConfigWatcher(path, loadTestRecord, newTestLogger())
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("expected error watching a missing directory")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop after failed Start: %v", err)
	}
}
