package color

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2bdee6", "2bdee6"},
		{"#2BDEE6", "2BDEE6"},
		{"  #ff0000 \n", "ff0000"},
		{"##ff0000", "#ff0000"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"2bdee6", nil},
		{"FF00aa", nil},
		{"", ErrEmpty},
		{"zzzzzz", ErrMalformed},
		{"#ff0000", ErrMalformed},
		{"fff", ErrMalformed},
		{"ff00001", ErrMalformed},
		{"ff 000", ErrMalformed},
		{"ff0000;", ErrMalformed},
	}
	for _, tt := range tests {
		err := Validate(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Validate(%q) = %v, want %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestParse(t *testing.T) {
	got, err := Parse(" #2bdee6 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2bdee6" {
		t.Errorf("Parse = %q, want 2bdee6", got)
	}

	if _, err := Parse("#12345g"); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestRGB(t *testing.T) {
	r, g, b, err := RGB("2bdee6")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != 0x2b || g != 0xde || b != 0xe6 {
		t.Errorf("RGB = %d,%d,%d", r, g, b)
	}

	if _, _, _, err := RGB("nope"); err == nil {
		t.Error("expected error for invalid value")
	}
}

func TestLuminance(t *testing.T) {
	if got := Luminance("000000"); got != 0 {
		t.Errorf("Luminance(black) = %v, want 0", got)
	}
	if got := Luminance("FFFFFF"); got < 0.99 {
		t.Errorf("Luminance(white) = %v, want ~1", got)
	}
	if Luminance("FFFF00") <= Luminance("0000FF") {
		t.Error("yellow should be brighter than blue")
	}
}

func TestPalette(t *testing.T) {
	p := Palette()
	if len(p) != 31 {
		t.Fatalf("palette has %d entries, want 31", len(p))
	}
	if p[0].Name != "White" || p[0].Hex != "F0F0F0" {
		t.Errorf("first entry = %+v", p[0])
	}
	if last := p[len(p)-1]; last.Name != "Light Peach" || last.Hex != "FFDAB9" {
		t.Errorf("last entry = %+v", last)
	}

	seen := make(map[string]bool)
	for _, c := range p {
		if err := Validate(c.Hex); err != nil {
			t.Errorf("%s: invalid hex %q: %v", c.Name, c.Hex, err)
		}
		if seen[c.Name] {
			t.Errorf("duplicate name %q", c.Name)
		}
		seen[c.Name] = true
	}

	p[0].Hex = "123456"
	if Palette()[0].Hex != "F0F0F0" {
		t.Error("Palette must return a copy")
	}
}

func TestLookupAndResolve(t *testing.T) {
	if hex, ok := Lookup("dark slate grey"); !ok || hex != "2F4F4F" {
		t.Errorf("Lookup = %q, %v", hex, ok)
	}
	if _, ok := Lookup("Chartreuse"); ok {
		t.Error("unexpected match for unknown name")
	}
	if name, ok := NameOf("ffa500"); !ok || name != "Orange" {
		t.Errorf("NameOf = %q, %v", name, ok)
	}

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Red", "FF0000", false},
		{"Black (OFF)", "000000", false},
		{"#abcdef", "abcdef", false},
		{"not a color", "", true},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
