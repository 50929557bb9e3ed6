package session

import (
	"fmt"
	"strconv"
)

// ApplyMode selects the shape of the set-color command.
type ApplyMode string

// Apply modes.
const (
	// ModeUnscoped sets the color without naming a profile.
	ModeUnscoped ApplyMode = "unscoped"
	// ModeActiveProfile queries the active profile and scopes the command to it.
	ModeActiveProfile ApplyMode = "active-profile"
	// ModeFixedProfile scopes the command to a configured profile index.
	ModeFixedProfile ApplyMode = "fixed-profile"
)

// Modes returns every apply mode.
func Modes() []ApplyMode {
	return []ApplyMode{ModeUnscoped, ModeActiveProfile, ModeFixedProfile}
}

// ParseApplyMode parses a configured mode name. An empty name is an error;
// the mode is never picked implicitly.
func ParseApplyMode(name string) (ApplyMode, error) {
	for _, m := range Modes() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown apply mode %q (want unscoped, active-profile or fixed-profile)", name)
}

// Policy is the apply mode plus the profile index used by ModeFixedProfile.
type Policy struct {
	Mode    ApplyMode
	Profile int
}

// NewPolicy validates a mode name and profile index.
func NewPolicy(mode string, profile int) (Policy, error) {
	m, err := ParseApplyMode(mode)
	if err != nil {
		return Policy{}, err
	}
	if m == ModeFixedProfile && profile < 0 {
		return Policy{}, fmt.Errorf("profile index must not be negative, got %d", profile)
	}
	return Policy{Mode: m, Profile: profile}, nil
}

func (p Policy) String() string {
	if p.Mode == ModeFixedProfile {
		return string(p.Mode) + "(" + strconv.Itoa(p.Profile) + ")"
	}
	return string(p.Mode)
}
