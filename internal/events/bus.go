package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Delivery is asynchronous.
// Usage: bus.Publish(ColorAppliedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the static type, so unwrap the interface
	switch e := ev.(type) {
	case DevicesDiscoveredEvent:
		event.Publish(b.dispatcher, e)
	case LedsDiscoveredEvent:
		event.Publish(b.dispatcher, e)
	case ColorAppliedEvent:
		event.Publish(b.dispatcher, e)
	case ColorApplyFailedEvent:
		event.Publish(b.dispatcher, e)
	case DependencyStatusEvent:
		event.Publish(b.dispatcher, e)
	case PreferencesChangedEvent:
		event.Publish(b.dispatcher, e)
	case ToolStatsEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler's parameter type selects the events it receives.
// Returns an unsubscribe function; unknown handler types get a no-op.
// Usage: unsub := bus.Subscribe(func(e ColorAppliedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(DevicesDiscoveredEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LedsDiscoveredEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ColorAppliedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ColorApplyFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DependencyStatusEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PreferencesChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ToolStatsEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
