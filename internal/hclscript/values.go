package hclscript

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vk/scenegridgo/internal/importer"
	"github.com/vk/scenegridgo/internal/scene"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// builderValue exposes the read-only view of a builder to expressions.
func builderValue(b *scene.Builder) cty.Value {
	s := b.Settings()

	flags := cty.MapValEmpty(cty.Bool)
	if len(s.Flags) > 0 {
		m := make(map[string]cty.Value, len(s.Flags))
		for k, v := range s.Flags {
			m[k] = cty.BoolVal(v)
		}
		flags = cty.MapVal(m)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"settings": cty.ObjectVal(map[string]cty.Value{
			"unit_scale":       cty.NumberFloatVal(s.UnitScale),
			"up_axis":          cty.StringVal(s.UpAxis),
			"default_material": cty.StringVal(s.DefaultMaterial),
			"flags":            flags,
		}),
		"node_count":     cty.NumberIntVal(int64(b.NodeCount())),
		"material_count": cty.NumberIntVal(int64(b.MaterialCount())),
	})
}

// toCtyValue converts a binding into a cty value.
func toCtyValue(v any) (cty.Value, error) {
	switch tv := v.(type) {
	case cty.Value:
		return tv, nil
	case *scene.Builder:
		return builderValue(tv), nil
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, err
	}
	return gocty.ToCtyValue(v, ty)
}

// variables converts the bindings, with builder always visible under
// importer.BuilderBinding.
func variables(bindings *importer.Bindings, builder *scene.Builder) (map[string]cty.Value, error) {
	vars := map[string]cty.Value{
		importer.BuilderBinding: builderValue(builder),
	}
	for _, name := range bindings.Names() {
		if name == importer.BuilderBinding {
			continue
		}
		raw, _ := bindings.Get(name)
		val, err := toCtyValue(raw)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", name, err)
		}
		vars[name] = val
	}
	return vars, nil
}

// fromCtyObject turns an object or map value into nested bindings.
func fromCtyObject(parent *importer.Bindings, val cty.Value) (*importer.Bindings, error) {
	out := parent.Clone()
	if val.IsNull() {
		return out, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("bindings must be an object, got %s", val.Type().FriendlyName())
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("bindings must be known values")
	}

	m := val.AsValueMap()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if k == "" {
			return nil, fmt.Errorf("bindings: name must not be empty")
		}
		out.Set(k, m[k])
	}
	return out, nil
}
