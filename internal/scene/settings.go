package scene

import (
	"fmt"
	"maps"
	"math"
)

// Settings is the restorable, builder-local configuration that scene
// scripts may change while they run.
type Settings struct {
	UnitScale       float64
	UpAxis          string
	DefaultMaterial string
	Flags           map[string]bool
}

// DefaultSettings returns the settings a fresh builder starts with.
func DefaultSettings() Settings {
	return Settings{
		UnitScale:       1,
		UpAxis:          "y",
		DefaultMaterial: "default",
	}
}

// Clone returns an independent copy of s.
func (s Settings) Clone() Settings {
	s.Flags = maps.Clone(s.Flags)
	return s
}

// Validate checks that the settings are usable by the builder.
func (s Settings) Validate() error {
	if math.IsNaN(s.UnitScale) || math.IsInf(s.UnitScale, 0) || s.UnitScale <= 0 {
		return fmt.Errorf("unit_scale must be a positive finite number, got %g", s.UnitScale)
	}
	switch s.UpAxis {
	case "x", "y", "z":
	default:
		return fmt.Errorf("up_axis must be one of 'x', 'y' or 'z', got %q", s.UpAxis)
	}
	return nil
}
