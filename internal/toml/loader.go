package toml

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/vk/scenegridgo/internal/config"
	"github.com/vk/scenegridgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the TOML implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new TOML project file loader.
func NewLoader() *Loader {
	return &Loader{}
}

type projectFile struct {
	DataDirectories []string       `toml:"data_directories"`
	Bindings        map[string]any `toml:"bindings"`
	Prelude         string         `toml:"prelude"`
	Settings        *settings      `toml:"settings"`
	Events          *events        `toml:"events"`
}

type settings struct {
	UnitScale       *float64        `toml:"unit_scale"`
	UpAxis          *string         `toml:"up_axis"`
	DefaultMaterial *string         `toml:"default_material"`
	Flags           map[string]bool `toml:"flags"`
}

type events struct {
	URL                string `toml:"url"`
	Namespace          string `toml:"namespace"`
	Event              string `toml:"event"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	ConnectTimeout     string `toml:"connect_timeout"`
}

// Load parses and translates the project file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx).With("config", path)
	logger.Debug("TOML loader started.")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	base := filepath.Dir(abs)

	var root projectFile
	md, err := toml.DecodeFile(abs, &root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("failed to decode TOML file %s: unsupported keys %s", path, strings.Join(keys, ", "))
	}

	model := &config.Model{}
	for _, dir := range root.DataDirectories {
		model.DataDirectories = append(model.DataDirectories, config.RelativeTo(base, dir))
	}
	if root.Prelude != "" {
		model.Prelude = config.RelativeTo(base, root.Prelude)
	}

	if len(root.Bindings) > 0 {
		model.Bindings = make(map[string]cty.Value, len(root.Bindings))
		for name, raw := range root.Bindings {
			if name == "" {
				return nil, fmt.Errorf("failed to decode TOML file %s: bindings: name must not be empty", path)
			}
			v, err := toCtyValue(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to decode TOML file %s: binding %q: %w", path, name, err)
			}
			model.Bindings[name] = v
		}
	}

	if s := root.Settings; s != nil {
		model.Settings = &config.Settings{
			UnitScale:       s.UnitScale,
			UpAxis:          s.UpAxis,
			DefaultMaterial: s.DefaultMaterial,
			Flags:           s.Flags,
		}
	}

	if e := root.Events; e != nil {
		if e.URL == "" {
			return nil, fmt.Errorf("failed to decode TOML file %s: events: url is required", path)
		}
		model.Events = &config.Events{
			URL:                e.URL,
			Namespace:          e.Namespace,
			Event:              e.Event,
			InsecureSkipVerify: e.InsecureSkipVerify,
		}
		if e.ConnectTimeout != "" {
			d, err := time.ParseDuration(e.ConnectTimeout)
			if err != nil {
				return nil, fmt.Errorf("failed to decode TOML file %s: events: invalid connect_timeout %q: %w", path, e.ConnectTimeout, err)
			}
			model.Events.ConnectTimeout = d
		}
	}

	logger.Debug("TOML loading complete.", "data_directories", len(model.DataDirectories), "bindings", len(model.Bindings))
	return model, nil
}

// toCtyValue converts a decoded TOML value. Only scalars are supported.
func toCtyValue(raw any) (cty.Value, error) {
	switch v := raw.(type) {
	case string:
		return cty.StringVal(v), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return cty.NilVal, fmt.Errorf("number must be finite, got %g", v)
		}
		return cty.NumberFloatVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value of type %T", raw)
	}
}
