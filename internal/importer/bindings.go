package importer

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vk/scenegridgo/internal/scene"
)

// BuilderBinding is the name under which the destination builder is
// visible to scene scripts.
const BuilderBinding = "scene_builder"

// Bindings maps names visible to a script to the Go values behind them.
type Bindings struct {
	values map[string]any
}

// NewBindings creates an empty set of bindings.
func NewBindings() *Bindings {
	return &Bindings{values: make(map[string]any)}
}

// Set binds name to v, replacing any previous binding.
func (b *Bindings) Set(name string, v any) {
	if name == "" {
		panic("importer: binding name must not be empty")
	}
	b.values[name] = v
}

// Get returns the value bound to name.
func (b *Bindings) Get(name string) (any, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.values[name]
	return v, ok
}

// Names returns the bound names in sorted order.
func (b *Bindings) Names() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.values))
}

// Clone returns a shallow copy. Cloning nil yields an empty set.
func (b *Bindings) Clone() *Bindings {
	if b == nil {
		return NewBindings()
	}
	return &Bindings{values: maps.Clone(b.values)}
}

// Builder returns the builder bound under BuilderBinding.
func (b *Bindings) Builder() (*scene.Builder, error) {
	v, ok := b.Get(BuilderBinding)
	if !ok {
		return nil, fmt.Errorf("no %q binding", BuilderBinding)
	}
	builder, ok := v.(*scene.Builder)
	if !ok || builder == nil {
		return nil, fmt.Errorf("binding %q is a %T, not a scene builder", BuilderBinding, v)
	}
	return builder, nil
}
