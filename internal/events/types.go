package events

// Event type constants for kelindar/event.
const (
	TypeDevicesDiscovered uint32 = iota + 1
	TypeLedsDiscovered
	TypeColorApplied
	TypeColorApplyFailed
	TypeDependencyStatus
	TypePreferencesChanged
	TypeToolStats
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// DevicesDiscoveredEvent is published after a device listing is accepted.
type DevicesDiscoveredEvent struct {
	Devices    []string `json:"devices" doc:"Device names in tool order"`
	Selected   string   `json:"selected" example:"Logitech G915 WIRELESS RGB Mechanical Gaming Keyboard" doc:"Default selection"`
	Generation uint64   `json:"generation" example:"3" doc:"Discovery generation that produced the list"`
	Timestamp  string   `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DevicesDiscoveredEvent.
func (e DevicesDiscoveredEvent) Type() uint32 { return TypeDevicesDiscovered }

// LedsDiscoveredEvent is published after an LED listing is accepted.
type LedsDiscoveredEvent struct {
	Device    string   `json:"device" doc:"Device the LEDs belong to"`
	Leds      []string `json:"leds" doc:"LED ids in tool order"`
	Selected  string   `json:"selected" example:"0" doc:"Default LED"`
	Timestamp string   `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LedsDiscoveredEvent.
func (e LedsDiscoveredEvent) Type() uint32 { return TypeLedsDiscovered }

// ColorAppliedEvent is published when the set-color call exits 0.
type ColorAppliedEvent struct {
	Device    string `json:"device" doc:"Target device"`
	Led       string `json:"led" example:"0" doc:"Target LED id"`
	Profile   string `json:"profile,omitempty" example:"1" doc:"Profile index for scoped applies"`
	Color     string `json:"color" example:"2bdee6" doc:"Six hex digits"`
	Command   string `json:"command" example:"ratbagctl \"Dev\" led 0 set color 2bdee6" doc:"Printable command"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ColorAppliedEvent.
func (e ColorAppliedEvent) Type() uint32 { return TypeColorApplied }

// ColorApplyFailedEvent is published when an apply is rejected or fails.
type ColorApplyFailedEvent struct {
	Device    string `json:"device" doc:"Target device"`
	Led       string `json:"led" doc:"Target LED id"`
	Color     string `json:"color" doc:"Requested color"`
	Code      string `json:"code" example:"TOOL_FAILED" doc:"Error code"`
	Error     string `json:"error" doc:"Error text"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ColorApplyFailedEvent.
func (e ColorApplyFailedEvent) Type() uint32 { return TypeColorApplyFailed }

// DependencyStatusEvent reports the outcome of a dependency check or install.
type DependencyStatusEvent struct {
	Installed bool   `json:"installed" doc:"Whether the device tool answered its version query"`
	Version   string `json:"version,omitempty" example:"0.17" doc:"Tool version output"`
	Error     string `json:"error,omitempty" doc:"Failure text"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DependencyStatusEvent.
func (e DependencyStatusEvent) Type() uint32 { return TypeDependencyStatus }

// PreferencesChangedEvent is published when the preference file is saved
// or reloaded after an external edit.
type PreferencesChangedEvent struct {
	Source    string `json:"source" example:"file" doc:"What changed the preferences: api, apply or file"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PreferencesChangedEvent.
func (e PreferencesChangedEvent) Type() uint32 { return TypePreferencesChanged }

// ToolStatsEvent carries running invocation counters for one tool operation.
type ToolStatsEvent struct {
	Operation      string `json:"operation" example:"set_color" doc:"Tool operation"`
	Success        uint64 `json:"success" doc:"Successful invocations"`
	Failed         uint64 `json:"failed" doc:"Invocations that exited non-zero"`
	NotFound       uint64 `json:"not_found" doc:"Invocations that found no executable"`
	LastDurationMs int64  `json:"last_duration_ms" doc:"Duration of the latest invocation"`
}

// Type returns the event type identifier for ToolStatsEvent.
func (e ToolStatsEvent) Type() uint32 { return TypeToolStats }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"session" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
