package session

import (
	"slices"
	"sync"
)

// Selection is the device, LED and color the user has chosen.
type Selection struct {
	Device string `json:"device"`
	Led    string `json:"led"`
	Color  string `json:"color"`
}

// Snapshot is a consistent copy of a State.
type Snapshot struct {
	Selection
	Devices    []string `json:"devices"`
	Leds       []string `json:"leds"`
	Generation uint64   `json:"generation"`
}

// State is the caller owned selection session. Discovery results are
// tagged with the generation returned by Begin*; results from an older
// generation are rejected so they cannot overwrite a newer selection.
type State struct {
	mu         sync.RWMutex
	generation uint64
	devices    []string
	leds       []string
	sel        Selection

	// ledPicked is set when the user chose an LED after the last
	// BeginLedDiscovery.
	ledPicked bool
}

// NewState creates a session seeded with a remembered selection.
func NewState(remembered Selection) *State {
	return &State{sel: remembered}
}

// Snapshot returns a copy of the session.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Selection:  s.sel,
		Devices:    append([]string(nil), s.devices...),
		Leds:       append([]string(nil), s.leds...),
		Generation: s.generation,
	}
}

// Selection returns the current selection.
func (s *State) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

// BeginDiscovery starts a device discovery and returns its generation.
// Any discovery still in flight becomes stale.
func (s *State) BeginDiscovery() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// BeginLedDiscovery starts an LED discovery for the selected device.
func (s *State) BeginLedDiscovery() (generation uint64, device string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.ledPicked = false
	return s.generation, s.sel.Device
}

// AcceptDevices stores a device list and its default selection if the
// result belongs to the latest generation. It reports whether it did.
func (s *State) AcceptDevices(generation uint64, list DeviceList) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.devices = append([]string(nil), list.Devices...)
	if list.Selected != s.sel.Device {
		s.leds = nil
	}
	s.sel.Device = list.Selected
	return true
}

// AcceptLeds stores an LED list if it is current and still belongs to the
// selected device. An LED the user picked while the discovery ran is kept
// when the new list still contains it.
func (s *State) AcceptLeds(generation uint64, list LedList) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation || list.Device != s.sel.Device {
		return false
	}
	s.leds = append([]string(nil), list.Leds...)
	if !s.ledPicked || !slices.Contains(list.Leds, s.sel.Led) {
		s.sel.Led = list.Selected
	}
	s.ledPicked = false
	return true
}

// SelectDevice changes the device, drops its LED list and invalidates
// discoveries in flight.
func (s *State) SelectDevice(device string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if device != s.sel.Device {
		s.leds = nil
	}
	s.sel.Device = device
}

// SelectLed changes the LED.
func (s *State) SelectLed(led string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Led = led
	s.ledPicked = true
}

// SetColor changes the color. The value is validated at apply time.
func (s *State) SetColor(color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Color = color
}
