package ratbag

import (
	"bufio"
	"strings"
)

// ParseDevices extracts device names from `list` output.
// A line yields a device when it contains ':' and more than one
// whitespace separated token; the name is every token after the first,
// joined by single spaces. Other lines are skipped.
func ParseDevices(output string) []string {
	devices := []string{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, ":") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, strings.Join(fields[1:], " "))
	}
	return devices
}

// ParseLeds extracts LED ids from `<device> led get` output.
// Lines must begin with "LED:" followed by whitespace; the id is the
// second token with its trailing separator removed.
func ParseLeds(output string) []string {
	leds := []string{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "LED:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "LED:" {
			continue
		}
		id := strings.TrimRight(fields[1], ":,")
		if id == "" {
			continue
		}
		leds = append(leds, id)
	}
	return leds
}
