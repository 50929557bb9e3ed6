package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

const defaultBufferSize = 500

// Logger is a duck-typed interface satisfied by *slog.Logger.
// Use this interface instead of *slog.Logger to decouple from the concrete type.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`

	// DisableStdout keeps log records off stdout, e.g. while a full-screen
	// terminal UI is running.
	DisableStdout bool `toml:"-"`
}

// module is a named logger whose level follows Initialize.
type module struct {
	level  *slog.LevelVar
	logger *slog.Logger
}

var (
	mu          sync.RWMutex
	modules     = make(map[string]*module)
	current     Config
	initialized bool
	rootLevel   = &slog.LevelVar{}
	ring        *RingBuffer
	onEntry     LogCallback
)

// Initialize sets up the logging system. Loggers handed out earlier keep
// working: their levels are updated in place and GetLogger returns loggers
// with the new outputs.
func Initialize(config Config) {
	mu.Lock()
	defer mu.Unlock()

	current = config
	initialized = true
	ring = NewRingBuffer(defaultBufferSize)

	rootLevel.Set(levelOr(config.Level, slog.LevelInfo))
	for name, m := range modules {
		m.level.Set(moduleLevel(config, name))
		m.logger = newModuleLogger(config, name, m.level)
	}

	slog.SetDefault(slog.New(buildHandler(config, rootLevel)))
}

// GetBuffer returns the log ring buffer for reading historical logs.
func GetBuffer() *RingBuffer {
	mu.RLock()
	defer mu.RUnlock()
	return ring
}

// SetLogCallback sets a callback to be called for each new log entry.
func SetLogCallback(callback LogCallback) {
	mu.Lock()
	defer mu.Unlock()
	onEntry = callback
}

// GetLogger returns the logger for a module, creating it on first use.
// Before Initialize runs, new loggers write text at info level.
func GetLogger(name string) *slog.Logger {
	mu.RLock()
	if m, ok := modules[name]; ok {
		logger := m.logger
		mu.RUnlock()
		return logger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if m, ok := modules[name]; ok {
		return m.logger
	}

	cfg := Config{Format: "text"}
	if initialized {
		cfg = current
	}
	level := &slog.LevelVar{}
	level.Set(moduleLevel(cfg, name))

	m := &module{level: level, logger: newModuleLogger(cfg, name, level)}
	modules[name] = m
	return m.logger
}

func newModuleLogger(cfg Config, name string, level slog.Leveler) *slog.Logger {
	return slog.New(buildHandler(cfg, level)).With("module", name)
}

// moduleLevel is the module override when it parses, else the global level.
func moduleLevel(cfg Config, name string) slog.Level {
	level := levelOr(cfg.Level, slog.LevelInfo)
	if override, ok := cfg.Modules[name]; ok {
		level = levelOr(override, level)
	}
	return level
}

// buildHandler fans records out to stdout (unless disabled or detached),
// the journal when present, and the ring buffer.
func buildHandler(cfg Config, level slog.Leveler) slog.Handler {
	var sinks []slog.Handler

	if !cfg.DisableStdout && stdoutAttached() {
		opts := &slog.HandlerOptions{Level: level}
		if cfg.Format == "json" {
			sinks = append(sinks, slog.NewJSONHandler(os.Stdout, opts))
		} else {
			sinks = append(sinks, slog.NewTextHandler(os.Stdout, opts))
		}
	}

	if journalAvailable() {
		sinks = append(sinks, NewJournalHandler(level))
	}

	sinks = append(sinks, NewBufferHandler(level))

	if len(sinks) == 1 {
		return sinks[0]
	}
	return NewMultiHandler(sinks...)
}

// stdoutAttached reports whether stdout goes to a terminal, pipe, socket or
// regular file. /dev/null is a device and does not count.
func stdoutAttached() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return mode&(os.ModeCharDevice|os.ModeNamedPipe|os.ModeSocket) != 0 || mode.IsRegular()
}

// parseLevel accepts debug, info, warn (or warning) and error in any case.
func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

func levelOr(s string, fallback slog.Level) slog.Level {
	if level, ok := parseLevel(s); ok {
		return level
	}
	return fallback
}
