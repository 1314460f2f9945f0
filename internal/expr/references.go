package expr

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string representation for an
// hcl.Traversal, suitable for messages and map keys.
func TraversalKey(t hcl.Traversal) string {
	// e.g., rate.monthly[0]
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// References returns the distinct root names of every variable traversal in
// expr, ordered by where they first appear in the source text. `A.b + c`
// references A and c.
func References(expr hcl.Expression) []string {
	if expr == nil {
		return nil
	}
	traversals := expr.Variables()
	sort.SliceStable(traversals, func(i, j int) bool {
		return traversals[i].SourceRange().Start.Byte < traversals[j].SourceRange().Start.Byte
	})

	seen := make(map[string]struct{}, len(traversals))
	names := make([]string, 0, len(traversals))
	for _, t := range traversals {
		name := t.RootName()
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// CalledFunctions returns the distinct names of functions called anywhere in
// expr, in the order the walk meets them.
func CalledFunctions(expr hclsyntax.Expression) []string {
	seen := make(map[string]struct{})
	var names []string
	walkForFunctions(expr, func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	})
	return names
}

// walkForFunctions recursively walks the AST, reporting only function calls.
func walkForFunctions(expr hclsyntax.Expression, found func(string)) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		found(e.Name)
		for _, arg := range e.Args {
			walkForFunctions(arg, found)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, found)
		walkForFunctions(e.RHS, found)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, found)
		walkForFunctions(e.TrueResult, found)
		walkForFunctions(e.FalseResult, found)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, found)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, found)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, found)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, found)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFunctions(item.KeyExpr, found)
			walkForFunctions(item.ValueExpr, found)
		}
	case *hclsyntax.ForExpr:
		walkForFunctions(e.CollExpr, found)
		walkForFunctions(e.KeyExpr, found)
		walkForFunctions(e.ValExpr, found)
		walkForFunctions(e.CondExpr, found)
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, found)
		walkForFunctions(e.Key, found)
	case *hclsyntax.SplatExpr:
		walkForFunctions(e.Source, found)
		walkForFunctions(e.Each, found)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, found)
	case *hclsyntax.RelativeTraversalExpr:
		walkForFunctions(e.Source, found)
	}
}
