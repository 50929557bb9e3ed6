// Package color holds the hex color value accepted by the device tool and the
// named palette offered to users.
package color

import (
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmpty is returned for an empty color value.
	ErrEmpty = errors.New("color is empty")
	// ErrMalformed is returned when a value is not exactly six hex digits.
	ErrMalformed = errors.New("color must be exactly six hex digits")
)

var hexPattern = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// Normalize trims surrounding whitespace and one leading '#'.
// Case is preserved so the tool receives what the user typed.
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	return strings.TrimPrefix(value, "#")
}

// Validate checks that value is six hex digits with no prefix.
func Validate(value string) error {
	if value == "" {
		return ErrEmpty
	}
	if !hexPattern.MatchString(value) {
		return ErrMalformed
	}
	return nil
}

// Parse normalizes and validates user input in one step.
func Parse(input string) (string, error) {
	value := Normalize(input)
	if err := Validate(value); err != nil {
		return "", err
	}
	return value, nil
}

// RGB decodes a validated value into its channel bytes.
func RGB(value string) (r, g, b uint8, err error) {
	if err = Validate(value); err != nil {
		return 0, 0, 0, err
	}
	raw, err := hex.DecodeString(value)
	if err != nil {
		return 0, 0, 0, err
	}
	return raw[0], raw[1], raw[2], nil
}

// Luminance returns the relative brightness of value in the range 0-1.
// Invalid values report 0.
func Luminance(value string) float64 {
	r, g, b, err := RGB(value)
	if err != nil {
		return 0
	}
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
}
