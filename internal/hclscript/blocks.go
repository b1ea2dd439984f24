package hclscript

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/scenegridgo/internal/ctxlog"
	"github.com/vk/scenegridgo/internal/importer"
	"github.com/vk/scenegridgo/internal/nodeid"
	"github.com/vk/scenegridgo/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

type settingsBlock struct {
	UnitScale       *float64        `hcl:"unit_scale,optional"`
	UpAxis          *string         `hcl:"up_axis,optional"`
	DefaultMaterial *string         `hcl:"default_material,optional"`
	Flags           map[string]bool `hcl:"flags,optional"`
}

type materialBlock struct {
	BaseColor []float64 `hcl:"base_color,optional"`
	Roughness *float64  `hcl:"roughness,optional"`
}

type nodeBlock struct {
	Mesh        string    `hcl:"mesh,optional"`
	Material    string    `hcl:"material,optional"`
	Translation []float64 `hcl:"translation,optional"`
	Scale       *float64  `hcl:"scale,optional"`
}

type printBlock struct {
	Message string            `hcl:"message"`
	Values  map[string]string `hcl:"values,optional"`
}

type importBlock struct {
	Bindings cty.Value `hcl:"bindings,optional"`
}

// runSettings merges the attributes present in the block into the
// builder's current settings.
func runSettings(block *hclsyntax.Block, evalCtx *hcl.EvalContext, builder *scene.Builder) error {
	var sb settingsBlock
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &sb); diags.HasErrors() {
		return diags
	}

	s := builder.Settings()
	if sb.UnitScale != nil {
		s.UnitScale = *sb.UnitScale
	}
	if sb.UpAxis != nil {
		s.UpAxis = *sb.UpAxis
	}
	if sb.DefaultMaterial != nil {
		s.DefaultMaterial = *sb.DefaultMaterial
	}
	for k, v := range sb.Flags {
		if s.Flags == nil {
			s.Flags = make(map[string]bool, len(sb.Flags))
		}
		s.Flags[k] = v
	}
	if err := s.Validate(); err != nil {
		return blockError(block, err)
	}
	builder.SetSettings(s)
	return nil
}

func runMaterial(block *hclsyntax.Block, evalCtx *hcl.EvalContext, builder *scene.Builder, source string) error {
	var mb materialBlock
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &mb); diags.HasErrors() {
		return diags
	}

	m := scene.Material{Name: block.Labels[0], Roughness: 0.5, Source: source}
	if mb.BaseColor != nil {
		color, err := vec3("base_color", mb.BaseColor)
		if err != nil {
			return blockError(block, err)
		}
		m.BaseColor = color
	}
	if mb.Roughness != nil {
		m.Roughness = *mb.Roughness
	}
	if err := builder.AddMaterial(m); err != nil {
		return blockError(block, err)
	}
	return nil
}

func (e *Engine) runNode(block *hclsyntax.Block, evalCtx *hcl.EvalContext, builder *scene.Builder, source string) error {
	var nb nodeBlock
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &nb); diags.HasErrors() {
		return diags
	}

	addr, err := nodeid.Parse(block.Labels[0])
	if err != nil {
		return blockError(block, err)
	}
	n := scene.Node{Address: *addr, Material: nb.Material, Source: source}
	if nb.Mesh != "" {
		mesh, err := e.dirs.Find(nb.Mesh)
		if err != nil {
			return blockError(block, fmt.Errorf("mesh: %w", err))
		}
		n.Mesh = mesh
	}
	if nb.Translation != nil {
		t, err := vec3("translation", nb.Translation)
		if err != nil {
			return blockError(block, err)
		}
		n.Translation = t
	}
	if nb.Scale != nil {
		if *nb.Scale <= 0 {
			return blockError(block, fmt.Errorf("scale must be positive, got %g", *nb.Scale))
		}
		n.Scale = *nb.Scale
	}
	if err := builder.AddNode(n); err != nil {
		return blockError(block, err)
	}
	return nil
}

// runImport resolves the block label through the data directories and
// imports the script into the same builder.
func (e *Engine) runImport(ctx context.Context, imp importer.SceneImporter, block *hclsyntax.Block, evalCtx *hcl.EvalContext, builder *scene.Builder, bindings *importer.Bindings) error {
	var ib importBlock
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &ib); diags.HasErrors() {
		return diags
	}

	path, err := e.dirs.Find(block.Labels[0])
	if err != nil {
		return blockError(block, err)
	}

	nested, err := fromCtyObject(bindings, ib.Bindings)
	if err != nil {
		return blockError(block, err)
	}

	if err := imp.ImportScene(ctx, path, builder, nested); err != nil {
		return blockError(block, err)
	}
	return nil
}

// runPrint logs a message from the script at info level.
func runPrint(ctx context.Context, block *hclsyntax.Block, evalCtx *hcl.EvalContext, source string) error {
	var pb printBlock
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &pb); diags.HasErrors() {
		return diags
	}

	args := []any{"script", source}
	for _, k := range slices.Sorted(maps.Keys(pb.Values)) {
		args = append(args, k, pb.Values[k])
	}
	ctxlog.FromContext(ctx).Info(pb.Message, args...)
	return nil
}

func vec3(name string, v []float64) ([3]float64, error) {
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("%s must have 3 elements, got %d", name, len(v))
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

func blockError(block *hclsyntax.Block, err error) error {
	return fmt.Errorf("%s: %s block: %w", block.DefRange(), block.Type, err)
}
