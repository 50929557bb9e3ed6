package logging

import (
	"context"
	"log/slog"
	"maps"
	"time"
)

// LogCallback is called when a new log entry is written.
// Used to mirror log entries into the event bus without import cycles.
type LogCallback func(entry LogEntry)

const defaultModule = "app"

// BufferHandler writes records to the package ring buffer and passes them
// to the registered callback. The buffer is looked up per record so loggers
// created before Initialize start recording once it runs.
type BufferHandler struct {
	level  slog.Leveler
	module string
	attrs  map[string]any
	prefix string
}

// NewBufferHandler creates a handler that writes to the package ring buffer.
func NewBufferHandler(level slog.Leveler) *BufferHandler {
	return &BufferHandler{level: level, module: defaultModule}
}

// Enabled implements slog.Handler.
func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		Timestamp: r.Time,
		Level:     levelName(r.Level),
		Module:    h.module,
		Message:   r.Message,
	}

	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	maps.Copy(attrs, h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == "module" {
			entry.Module = a.Value.String()
			return true
		}
		flattenAttr(attrs, h.prefix, a)
		return true
	})
	if len(attrs) > 0 {
		entry.Attributes = attrs
	}

	mu.RLock()
	buffer, callback := ring, onEntry
	mu.RUnlock()

	if buffer != nil {
		buffer.Write(entry)
	}
	if callback != nil {
		callback(entry)
	}
	return nil
}

// WithAttrs implements slog.Handler. Attributes are flattened once here
// rather than on every record.
func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = maps.Clone(h.attrs)
	if next.attrs == nil {
		next.attrs = make(map[string]any, len(attrs))
	}
	for _, a := range attrs {
		if h.prefix == "" && a.Key == "module" {
			next.module = a.Value.String()
			continue
		}
		flattenAttr(next.attrs, h.prefix, a)
	}
	return &next
}

// WithGroup implements slog.Handler.
func (h *BufferHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// flattenAttr stores a into dst, naming grouped values with dotted keys.
func flattenAttr(dst map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := prefix + a.Key
	switch a.Value.Kind() {
	case slog.KindGroup:
		nested := prefix
		if a.Key != "" {
			nested = key + "."
		}
		for _, ga := range a.Value.Group() {
			flattenAttr(dst, nested, ga)
		}
	case slog.KindTime:
		dst[key] = a.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		dst[key] = a.Value.Duration().String()
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			dst[key] = err.Error()
			return
		}
		dst[key] = a.Value.Any()
	default:
		dst[key] = a.Value.Any()
	}
}

// levelName buckets a level into debug, info, warn or error.
func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	}
	return "debug"
}
