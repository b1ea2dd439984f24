package hclscript

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/scenegridgo/internal/ctxlog"
	"github.com/vk/scenegridgo/internal/datapath"
	"github.com/vk/scenegridgo/internal/importer"
	"github.com/vk/scenegridgo/internal/scene"
	"github.com/zclconf/go-cty/cty/function"
)

// ErrNoBuilder is returned when a script runs without a destination
// builder bound and no builder is active.
var ErrNoBuilder = errors.New("no scene builder available")

// blockLabels lists the supported top-level blocks and their label count.
var blockLabels = map[string]int{
	"settings": 0,
	"material": 1,
	"node":     1,
	"import":   1,
	"print":    0,
}

// preludeBlocks are the block types a prelude may contain.
var preludeBlocks = map[string]bool{
	"settings": true,
	"print":    true,
}

// Engine runs HCL scene scripts. It implements importer.Engine.
type Engine struct {
	dirs  *datapath.Directories
	funcs map[string]function.Function
}

var _ importer.Engine = (*Engine)(nil)

// New creates an Engine resolving relative paths through dirs.
func New(dirs *datapath.Directories) *Engine {
	return &Engine{dirs: dirs, funcs: functions(dirs)}
}

// Execute parses script and runs its blocks in source order.
func (e *Engine) Execute(ctx context.Context, imp importer.SceneImporter, script importer.Script, bindings *importer.Bindings) error {
	logger := ctxlog.FromContext(ctx)

	builder, err := bindings.Builder()
	if err != nil {
		builder = scene.Active()
		if builder == nil {
			return fmt.Errorf("%w: %v", ErrNoBuilder, err)
		}
		logger.Debug("Falling back to the active scene builder.", "script", script.Path)
	}

	file, diags := hclsyntax.ParseConfig(script.Source, script.Path, hcl.InitialPos)
	if diags.HasErrors() {
		return diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return fmt.Errorf("unexpected body type %T", file.Body)
	}

	if diags := e.validate(body, script, bindings); diags.HasErrors() {
		return diags
	}

	for _, block := range body.Blocks {
		evalCtx, err := e.evalContext(bindings, builder)
		if err != nil {
			return err
		}
		logger.Debug("Executing scene block.", "block", block.Type, "labels", block.Labels)

		switch block.Type {
		case "settings":
			err = runSettings(block, evalCtx, builder)
		case "material":
			err = runMaterial(block, evalCtx, builder, script.Path)
		case "node":
			err = e.runNode(block, evalCtx, builder, script.Path)
		case "import":
			err = e.runImport(ctx, imp, block, evalCtx, builder, bindings)
		case "print":
			err = runPrint(ctx, block, evalCtx, script.Path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// validate checks the script structure and runs the pre-flight analysis.
func (e *Engine) validate(body *hclsyntax.Body, script importer.Script, bindings *importer.Bindings) hcl.Diagnostics {
	var diags hcl.Diagnostics

	for _, attr := range sortedAttributes(body) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected top-level attribute",
			Detail:   fmt.Sprintf("Attribute %q must be declared inside a block.", attr.Name),
			Subject:  attr.NameRange.Ptr(),
		})
	}
	for _, block := range body.Blocks {
		want, ok := blockLabels[block.Type]
		if !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported block type",
				Detail:   fmt.Sprintf("Blocks of type %q are not supported in scene scripts.", block.Type),
				Subject:  block.TypeRange.Ptr(),
			})
			continue
		}
		if len(block.Labels) != want {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Wrong number of block labels",
				Detail:   fmt.Sprintf("A %q block takes %d label(s), got %d.", block.Type, want, len(block.Labels)),
				Subject:  block.DefRange().Ptr(),
			})
		}
		if script.Prelude && !preludeBlocks[block.Type] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Block not allowed in prelude",
				Detail:   fmt.Sprintf("A prelude runs in every import scope and may only contain settings and print blocks, got %q.", block.Type),
				Subject:  block.TypeRange.Ptr(),
			})
		}
	}
	if diags.HasErrors() {
		return diags
	}

	known := map[string]struct{}{importer.BuilderBinding: {}}
	for _, name := range bindings.Names() {
		known[name] = struct{}{}
	}
	funcs := make(map[string]struct{}, len(e.funcs))
	for name := range e.funcs {
		funcs[name] = struct{}{}
	}
	return analyze(body, known, funcs)
}

func (e *Engine) evalContext(bindings *importer.Bindings, builder *scene.Builder) (*hcl.EvalContext, error) {
	vars, err := variables(bindings, builder)
	if err != nil {
		return nil, err
	}
	return &hcl.EvalContext{Variables: vars, Functions: e.funcs}, nil
}
