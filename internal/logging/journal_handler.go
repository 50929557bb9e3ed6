package logging

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

const syslogIdentifier = "keycolor"

var journalAvailable = journal.Enabled

// JournalHandler writes records to the systemd journal under the keycolor
// identifier. Attributes become upper-case journal fields, so the module
// attribute is queryable as MODULE=ratbag.
type JournalHandler struct {
	level  slog.Leveler
	fields map[string]string
	prefix string

	warnOnce *sync.Once
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{
		level:    level,
		fields:   map[string]string{"SYSLOG_IDENTIFIER": syslogIdentifier},
		warnOnce: &sync.Once{},
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle sends the record to the journal. journal.Send adds MESSAGE and
// PRIORITY itself.
func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	vars := make(map[string]string, len(h.fields)+r.NumAttrs())
	maps.Copy(vars, h.fields)
	r.Attrs(func(a slog.Attr) bool {
		putJournalField(vars, h.prefix, a)
		return true
	})

	if err := journal.Send(r.Message, journalPriority(r.Level), vars); err != nil {
		h.warnOnce.Do(func() {
			fmt.Fprintf(os.Stderr, "keycolor: journal write failed: %v\n", err)
		})
		return err
	}
	return nil
}

// WithAttrs returns a new handler with additional attributes.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = maps.Clone(h.fields)
	for _, a := range attrs {
		putJournalField(next.fields, h.prefix, a)
	}
	return &next
}

// WithGroup returns a new handler that prefixes field names with the group.
func (h *JournalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + journalFieldName(name) + "_"
	return &next
}

func journalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	}
	return journal.PriDebug
}

func putJournalField(vars map[string]string, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		nested := prefix
		if a.Key != "" {
			nested = prefix + journalFieldName(a.Key) + "_"
		}
		for _, ga := range a.Value.Group() {
			putJournalField(vars, nested, ga)
		}
		return
	}

	key := journalFieldName(prefix + a.Key)
	switch a.Value.Kind() {
	case slog.KindTime:
		vars[key] = a.Value.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			vars[key] = err.Error()
			return
		}
		vars[key] = a.Value.String()
	default:
		vars[key] = a.Value.String()
	}
}

// journalFieldName maps a key onto the journal's field alphabet: upper-case
// letters, digits and '_', not starting with '_' or a digit.
func journalFieldName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, key)
	name = strings.TrimLeft(name, "_")
	if name == "" {
		return "FIELD"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "F_" + name
	}
	return name
}
