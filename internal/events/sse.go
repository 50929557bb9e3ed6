package events

import "github.com/kelindar/event"

// SubscribeToChannel bridges kelindar/event callback-based subscriptions to channels
// This is needed for SSE integration where Huma expects a channel-based select loop.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
			// Drop event if channel is full (non-blocking)
		}
	})
}

// SSETypes maps SSE event names to payload types for the /api/events stream.
func SSETypes() map[string]any {
	return map[string]any{
		"devices-discovered":  DevicesDiscoveredEvent{},
		"leds-discovered":     LedsDiscoveredEvent{},
		"color-applied":       ColorAppliedEvent{},
		"color-apply-failed":  ColorApplyFailedEvent{},
		"dependency-status":   DependencyStatusEvent{},
		"preferences-changed": PreferencesChangedEvent{},
		"tool-stats":          ToolStatsEvent{},
	}
}

// SubscribeAll forwards every domain event (log entries excluded) into ch.
// The returned function unsubscribes all of them.
func SubscribeAll(bus *Bus, ch chan<- any) func() {
	unsubs := []func(){
		SubscribeToChannel[DevicesDiscoveredEvent](bus, ch),
		SubscribeToChannel[LedsDiscoveredEvent](bus, ch),
		SubscribeToChannel[ColorAppliedEvent](bus, ch),
		SubscribeToChannel[ColorApplyFailedEvent](bus, ch),
		SubscribeToChannel[DependencyStatusEvent](bus, ch),
		SubscribeToChannel[PreferencesChangedEvent](bus, ch),
		SubscribeToChannel[ToolStatsEvent](bus, ch),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
