package color

import "strings"

// Named pairs a display label with its hex value.
type Named struct {
	Name string `json:"name" doc:"Display label"`
	Hex  string `json:"hex" doc:"Six hex digits, no leading #"`
}

var palette = []Named{
	{"White", "F0F0F0"},
	{"Black (OFF)", "000000"},
	{"Grey", "808080"},
	{"Red", "FF0000"},
	{"Green", "00FF00"},
	{"Blue", "0000FF"},
	{"Yellow", "FFFF00"},
	{"Cyan", "00FFFF"},
	{"Magenta", "FF00FF"},
	{"Orange", "FFA500"},
	{"Purple", "800080"},
	{"Dark Red", "8B0000"},
	{"Dark Green", "006400"},
	{"Dark Blue", "00008B"},
	{"Dark Yellow", "9B870C"},
	{"Dark Cyan", "008B8B"},
	{"Dark Magenta", "8B008B"},
	{"Dark Orange", "FF8C00"},
	{"Dark Purple", "4B0082"},
	{"Dark Slate Grey", "2F4F4F"},
	{"Olive", "808000"},
	{"Light Red", "FF6961"},
	{"Light Green", "77DD77"},
	{"Light Blue", "AEC6CF"},
	{"Light Yellow", "FDFD96"},
	{"Light Cyan", "A0E7E5"},
	{"Light Magenta", "FFB7C5"},
	{"Light Orange", "FFB347"},
	{"Light Purple", "CBAACB"},
	{"Light Pink", "FFD1DC"},
	{"Light Peach", "FFDAB9"},
}

// Palette returns the named colors in display order.
// The returned slice is a copy.
func Palette() []Named {
	out := make([]Named, len(palette))
	copy(out, palette)
	return out
}

// Lookup returns the hex value for a palette label, ignoring case.
func Lookup(name string) (string, bool) {
	for _, c := range palette {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c.Hex, true
		}
	}
	return "", false
}

// NameOf returns the palette label whose value equals hex, ignoring case.
func NameOf(hex string) (string, bool) {
	for _, c := range palette {
		if strings.EqualFold(c.Hex, hex) {
			return c.Name, true
		}
	}
	return "", false
}

// Resolve accepts either a palette label or a hex value and returns the hex.
func Resolve(input string) (string, error) {
	if hex, ok := Lookup(input); ok {
		return hex, nil
	}
	return Parse(input)
}
