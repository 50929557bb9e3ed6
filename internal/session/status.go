package session

import "fmt"

// Status line texts shared by the terminal form and the CLI.

// DevicesStatus describes a device listing.
func DevicesStatus(list DeviceList) string {
	if len(list.Devices) == 0 {
		return "No compatible devices found."
	}
	return fmt.Sprintf("Found %d devices", len(list.Devices))
}

// LedsStatus describes an LED listing.
func LedsStatus(list LedList) string {
	if len(list.Leds) == 0 {
		return "No LEDs found on the device."
	}
	return fmt.Sprintf("Found %d LEDs on %s", len(list.Leds), list.Device)
}

// AppliedStatus confirms an apply.
func AppliedStatus(res ApplyResult) string {
	return "Color changed successfully to #" + res.Color
}

// ApplyErrorStatus describes a failed apply.
func ApplyErrorStatus(err error) string {
	if IsValidation(err) {
		return "Error: " + ErrorMessage(err)
	}
	return "Error changing color: " + ErrorMessage(err)
}

// DiscoveryErrorStatus describes a failed listing.
func DiscoveryErrorStatus(err error) string {
	return "Error: " + ErrorMessage(err)
}
