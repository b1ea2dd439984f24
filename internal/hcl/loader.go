package hcl

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/scenegridgo/internal/config"
	"github.com/vk/scenegridgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL project file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// projectFile is the top-level schema of a project file.
type projectFile struct {
	DataDirectories []string       `hcl:"data_directories,optional"`
	Bindings        hcl.Expression `hcl:"bindings,optional"`
	Prelude         string         `hcl:"prelude,optional"`
	Settings        *settingsBlock `hcl:"settings,block"`
	Events          *eventsBlock   `hcl:"events,block"`
}

type settingsBlock struct {
	UnitScale       *float64        `hcl:"unit_scale,optional"`
	UpAxis          *string         `hcl:"up_axis,optional"`
	DefaultMaterial *string         `hcl:"default_material,optional"`
	Flags           map[string]bool `hcl:"flags,optional"`
}

type eventsBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
	ConnectTimeout     string `hcl:"connect_timeout,optional"`
}

// Load parses and translates the project file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx).With("config", path)
	logger.Debug("HCL loader started.")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	base := filepath.Dir(abs)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(abs)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root projectFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	model := &config.Model{}
	for _, dir := range root.DataDirectories {
		model.DataDirectories = append(model.DataDirectories, config.RelativeTo(base, dir))
	}
	if root.Prelude != "" {
		model.Prelude = config.RelativeTo(base, root.Prelude)
	}

	model.Bindings, err = l.translateBindings(root.Bindings)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, err)
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
		model.Events, err = l.translateEvents(e)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, err)
		}
	}

	logger.Debug("HCL loading complete.", "data_directories", len(model.DataDirectories), "bindings", len(model.Bindings))
	return model, nil
}

// translateBindings evaluates the bindings expression without variables
// or functions; the result must be an object or a map.
func (l *Loader) translateBindings(expr hcl.Expression) (map[string]cty.Value, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("bindings must be an object, got %s", ty.FriendlyName())
	}
	m := val.AsValueMap()
	if _, ok := m[""]; ok {
		return nil, fmt.Errorf("bindings: name must not be empty")
	}
	return m, nil
}

func (l *Loader) translateEvents(e *eventsBlock) (*config.Events, error) {
	out := &config.Events{
		URL:                e.URL,
		Namespace:          e.Namespace,
		Event:              e.Event,
		InsecureSkipVerify: e.InsecureSkipVerify,
	}
	if e.ConnectTimeout != "" {
		d, err := time.ParseDuration(e.ConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("events: invalid connect_timeout %q: %w", e.ConnectTimeout, err)
		}
		out.ConnectTimeout = d
	}
	return out, nil
}
