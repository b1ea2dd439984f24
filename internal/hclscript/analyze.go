package hclscript

import (
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// bodyExpressions returns every attribute expression of body and of its
// nested blocks, in source order.
func bodyExpressions(body *hclsyntax.Body) []hclsyntax.Expression {
	var exprs []hclsyntax.Expression
	for _, attr := range sortedAttributes(body) {
		exprs = append(exprs, attr.Expr)
	}
	for _, block := range body.Blocks {
		exprs = append(exprs, bodyExpressions(block.Body)...)
	}
	return exprs
}

func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	slices.SortFunc(attrs, func(a, b *hclsyntax.Attribute) int {
		return a.SrcRange.Start.Byte - b.SrcRange.Start.Byte
	})
	return attrs
}

// walkForFunctions records every function call reachable from expr.
func walkForFunctions(expr hclsyntax.Expression, calls map[string]*hclsyntax.FunctionCallExpr) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if _, seen := calls[e.Name]; !seen {
			calls[e.Name] = e
		}
		for _, arg := range e.Args {
			walkForFunctions(arg, calls)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, calls)
		walkForFunctions(e.RHS, calls)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, calls)
		walkForFunctions(e.TrueResult, calls)
		walkForFunctions(e.FalseResult, calls)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, calls)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, calls)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, calls)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, calls)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFunctions(item.KeyExpr, calls)
			walkForFunctions(item.ValueExpr, calls)
		}
	case *hclsyntax.ObjectConsKeyExpr:
		walkForFunctions(e.Wrapped, calls)
	case *hclsyntax.ForExpr:
		walkForFunctions(e.CollExpr, calls)
		walkForFunctions(e.KeyExpr, calls)
		walkForFunctions(e.ValExpr, calls)
		walkForFunctions(e.CondExpr, calls)
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, calls)
		walkForFunctions(e.Key, calls)
	case *hclsyntax.RelativeTraversalExpr:
		walkForFunctions(e.Source, calls)
	case *hclsyntax.SplatExpr:
		walkForFunctions(e.Source, calls)
		walkForFunctions(e.Each, calls)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, calls)
	}
}

// analyze checks that every function called and every root variable
// referenced by the script is available, before anything executes.
func analyze(body *hclsyntax.Body, known map[string]struct{}, funcs map[string]struct{}) hcl.Diagnostics {
	var diags hcl.Diagnostics
	calls := make(map[string]*hclsyntax.FunctionCallExpr)
	reported := make(map[string]struct{})

	for _, expr := range bodyExpressions(body) {
		walkForFunctions(expr, calls)

		for _, traversal := range expr.Variables() {
			root := traversal.RootName()
			if _, ok := known[root]; ok {
				continue
			}
			if _, dup := reported[root]; dup {
				continue
			}
			reported[root] = struct{}{}
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown variable",
				Detail:   fmt.Sprintf("There is no variable named %q in this script.", root),
				Subject:  traversal.SourceRange().Ptr(),
			})
		}
	}

	names := make([]string, 0, len(calls))
	for name := range calls {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, ok := funcs[name]; ok {
			continue
		}
		call := calls[name]
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Call to unknown function",
			Detail:   fmt.Sprintf("There is no function named %q.", name),
			Subject:  call.NameRange.Ptr(),
		})
	}
	return diags
}
