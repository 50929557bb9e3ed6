package events

import (
	"sync/atomic"
	"time"

	"github.com/smazurov/keycolor/internal/logging"
)

// ForwardLogs publishes every new log entry on bus as a LogEntryEvent.
// The returned function detaches the forwarder.
func ForwardLogs(bus *Bus) func() {
	var seq atomic.Uint64
	logging.SetLogCallback(func(entry logging.LogEntry) {
		bus.Publish(LogEntryEventFrom(entry, seq.Add(1)))
	})
	return func() {
		logging.SetLogCallback(nil)
	}
}

// LogEntryEventFrom converts a buffered log entry into its event form.
func LogEntryEventFrom(entry logging.LogEntry, seq uint64) LogEntryEvent {
	return LogEntryEvent{
		Seq:        seq,
		Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
		Level:      entry.Level,
		Module:     entry.Module,
		Message:    entry.Message,
		Attributes: entry.Attributes,
	}
}
