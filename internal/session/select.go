package session

import "strings"

// DefaultModelMarker picks the keyboard this tool was written for when
// nothing is remembered.
const DefaultModelMarker = "G915"

// SelectDefaultDevice returns the remembered device if it is still listed,
// else the first device containing marker (when marker is set), else the
// first device. It returns "" for an empty list.
func SelectDefaultDevice(devices []string, remembered, marker string) string {
	if len(devices) == 0 {
		return ""
	}
	if remembered != "" {
		for _, d := range devices {
			if d == remembered {
				return d
			}
		}
	}
	if marker != "" {
		for _, d := range devices {
			if strings.Contains(d, marker) {
				return d
			}
		}
	}
	return devices[0]
}

// SelectDefaultLed returns the remembered LED if listed, else the first.
func SelectDefaultLed(leds []string, remembered string) string {
	if len(leds) == 0 {
		return ""
	}
	if remembered != "" {
		for _, l := range leds {
			if l == remembered {
				return l
			}
		}
	}
	return leds[0]
}
