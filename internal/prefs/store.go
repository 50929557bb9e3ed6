// Package prefs persists the user's last selection and install settings in a
// flat JSON document shared with earlier releases (~/.g915colorchanger.json).
//
// Every failure here is a warning: Load falls back to defaults and Save keeps
// the in-memory record, so the color workflow never blocks on the file.
package prefs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/smazurov/keycolor/internal/config"
	"github.com/smazurov/keycolor/internal/logging"
)

// DefaultPath is the preference file location used when none is configured.
const DefaultPath = "~/.g915colorchanger.json"

// DefaultLed is the LED remembered before any apply.
const DefaultLed = "0"

// Record is the preference document. Keys match the on-disk JSON.
type Record struct {
	LastDevice          string `json:"last_device" doc:"Device used by the last apply"`
	LastLed             string `json:"last_led" example:"0" doc:"LED used by the last apply"`
	LastColor           string `json:"last_color" example:"2bdee6" doc:"Color used by the last apply"`
	PackageManager      string `json:"package_manager" enum:"apt,pacman,dnf,zypper,flatpak,unknown" doc:"Package manager used for installs"`
	InstallCommand      string `json:"install_command" example:"sudo apt install -y" doc:"Install command template; the package name is appended"`
	PackageName         string `json:"package_name" example:"ratbagd" doc:"Package providing the device tool"`
	HasSystemd          bool   `json:"has_systemd" doc:"Start and enable ratbagd after install"`
	SkipDependencyCheck bool   `json:"skip_dependency_check" doc:"Skip the startup dependency check"`
}

// Settings is the user editable part of the record.
type Settings struct {
	PackageManager      string `json:"package_manager" enum:"apt,pacman,dnf,zypper,flatpak,unknown" doc:"Package manager used for installs"`
	InstallCommand      string `json:"install_command" doc:"Install command template"`
	PackageName         string `json:"package_name" doc:"Package providing the device tool"`
	HasSystemd          bool   `json:"has_systemd" doc:"Start and enable ratbagd after install"`
	SkipDependencyCheck bool   `json:"skip_dependency_check" doc:"Skip the startup dependency check"`
}

// Settings returns the editable fields of r.
func (r Record) Settings() Settings {
	return Settings{
		PackageManager:      r.PackageManager,
		InstallCommand:      r.InstallCommand,
		PackageName:         r.PackageName,
		HasSystemd:          r.HasSystemd,
		SkipDependencyCheck: r.SkipDependencyCheck,
	}
}

// WithSettings returns a copy of r with the editable fields replaced.
func (r Record) WithSettings(s Settings) Record {
	r.PackageManager = s.PackageManager
	r.InstallCommand = s.InstallCommand
	r.PackageName = s.PackageName
	r.HasSystemd = s.HasSystemd
	r.SkipDependencyCheck = s.SkipDependencyCheck
	return r
}

// Defaults returns the compiled-in record for the current host.
func Defaults(lookPath LookPathFunc) Record {
	pm := DetectPackageManager(lookPath)
	return Record{
		LastLed:        DefaultLed,
		PackageManager: pm,
		InstallCommand: InstallCommandFor(pm),
		PackageName:    PackageNameFor(pm),
		HasSystemd:     HasSystemd(lookPath),
	}
}

// Store owns the preference file and the current in-memory record.
type Store struct {
	path     string
	lookPath LookPathFunc
	logger   logging.Logger

	mu     sync.RWMutex
	record Record
}

// Option configures a Store.
type Option func(*Store)

// WithLookPath replaces exec.LookPath for package manager detection.
func WithLookPath(fn LookPathFunc) Option {
	return func(s *Store) {
		s.lookPath = fn
	}
}

// NewStore creates a store for path ("~" is expanded). An empty path
// selects DefaultPath. The record starts at defaults until Load runs.
func NewStore(path string, logger logging.Logger, opts ...Option) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{
		path:     config.ExpandHome(path),
		lookPath: defaultLookPath,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.record = Defaults(s.lookPath)
	return s
}

// Path returns the resolved file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current record.
func (s *Store) Get() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

// Load reads the file and merges saved keys over defaults. A missing file
// yields defaults with no error. Any other failure is logged and returned
// as a *Error warning alongside the defaults.
func (s *Store) Load() (Record, error) {
	rec, err := s.read(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = nil
		} else {
			s.logger.Warn("Could not load preferences, using defaults", "path", s.path, "error", err)
		}
		rec = Defaults(s.lookPath)
	}

	s.mu.Lock()
	s.record = rec
	s.mu.Unlock()
	return rec, err
}

// read decodes path over a fresh set of defaults.
func (s *Store) read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, err
		}
		return Record{}, ioError("failed to read preferences", err)
	}

	rec := Defaults(s.lookPath)
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, ioError("failed to parse preferences", err)
	}
	return rec, nil
}

// Save replaces the current record and writes it to disk. The in-memory
// record is updated even when the write fails.
func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	s.record = rec
	s.mu.Unlock()
	return s.write(rec)
}

func (s *Store) write(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return s.warn(ioError("failed to create preferences directory", err))
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return s.warn(ioError("failed to encode preferences", err))
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return s.warn(ioError("failed to write preferences", err))
	}
	return nil
}

func (s *Store) warn(err *Error) error {
	s.logger.Warn("Could not save preferences", "path", s.path, "error", err)
	return err
}

// RecordSelection remembers the device, LED and color of an apply.
func (s *Store) RecordSelection(device, led, color string) error {
	s.mu.Lock()
	s.record.LastDevice = device
	s.record.LastLed = led
	s.record.LastColor = color
	rec := s.record
	s.mu.Unlock()
	return s.write(rec)
}

// UpdateSettings replaces the editable fields and saves.
func (s *Store) UpdateSettings(settings Settings) (Record, error) {
	s.mu.Lock()
	s.record = s.record.WithSettings(settings)
	rec := s.record
	s.mu.Unlock()
	return rec, s.write(rec)
}

// Reset re-detects the install settings and clears the skip flag, keeping
// the remembered selection, then saves.
func (s *Store) Reset() (Record, error) {
	defaults := Defaults(s.lookPath)
	s.mu.Lock()
	s.record = s.record.WithSettings(defaults.Settings())
	rec := s.record
	s.mu.Unlock()
	return rec, s.write(rec)
}

// Watch reloads the record whenever the file changes on disk and calls
// onChange with records that differ from the current one. Parse failures
// keep the current record. The returned function stops watching.
func (s *Store) Watch(logger *slog.Logger, onChange func(Record)) (func() error, error) {
	w := config.NewConfigWatcher(s.path, s.read, logger,
		config.WithDebounce[Record](300*time.Millisecond))

	w.OnReload(func(rec Record) {
		s.mu.Lock()
		changed := rec != s.record
		s.record = rec
		s.mu.Unlock()

		if changed && onChange != nil {
			onChange(rec)
		}
	})

	if err := w.Start(); err != nil {
		return nil, err
	}
	return w.Stop, nil
}
