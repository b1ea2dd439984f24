package config

import (
	"time"

	"github.com/vk/scenegridgo/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of a project file.
type Model struct {
	// DataDirectories are absolute, in priority order.
	DataDirectories []string
	// Bindings are made visible to every top-level script.
	Bindings map[string]cty.Value
	// Prelude is the absolute path of a script run before every script.
	Prelude  string
	Settings *Settings
	Events   *Events
}

// Settings overrides the default builder settings. Nil fields keep the
// default.
type Settings struct {
	UnitScale       *float64
	UpAxis          *string
	DefaultMaterial *string
	Flags           map[string]bool
}

// Events describes the Socket.IO endpoint receiving import events.
type Events struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// ApplySettings returns base with the model's overrides applied.
func (m *Model) ApplySettings(base scene.Settings) scene.Settings {
	s := base.Clone()
	if m == nil || m.Settings == nil {
		return s
	}
	o := m.Settings
	if o.UnitScale != nil {
		s.UnitScale = *o.UnitScale
	}
	if o.UpAxis != nil {
		s.UpAxis = *o.UpAxis
	}
	if o.DefaultMaterial != nil {
		s.DefaultMaterial = *o.DefaultMaterial
	}
	for k, v := range o.Flags {
		if s.Flags == nil {
			s.Flags = make(map[string]bool, len(o.Flags))
		}
		s.Flags[k] = v
	}
	return s
}
