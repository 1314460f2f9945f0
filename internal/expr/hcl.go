// Package expr parses and evaluates arithmetic expressions written in HCL
// native syntax, with variables bound to numbers.
package expr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
)

// filename labels diagnostics; expressions do not come from files.
const filename = "expression"

var (
	// ErrSyntax is returned for expressions HCL cannot parse.
	ErrSyntax = errors.New("invalid expression")
	// ErrUnsupportedReference is returned for attribute or index access on a
	// variable; variables are plain numbers.
	ErrUnsupportedReference = errors.New("unsupported reference")
	// ErrUnknownFunction is returned for calls to functions that are not registered.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrEvaluation is returned when HCL reports an error while computing a value.
	ErrEvaluation = errors.New("cannot evaluate expression")
	// ErrNotNumeric is returned when the result cannot be converted to a number.
	ErrNotNumeric = errors.New("result is not a number")
	// ErrNotFinite is returned for infinite results, such as a division by zero.
	ErrNotFinite = errors.New("result is not finite")
)

// HCL is an evaluator for HCL arithmetic expressions. It is stateless after
// construction and safe for concurrent use.
type HCL struct {
	functions map[string]function.Function
}

// NewHCL returns an evaluator with the default math functions.
func NewHCL() *HCL {
	return NewHCLWithFunctions(DefaultFunctions())
}

// NewHCLWithFunctions returns an evaluator that only accepts calls to the
// given functions.
func NewHCLWithFunctions(functions map[string]function.Function) *HCL {
	return &HCL{functions: functions}
}

// Dependencies returns the distinct variable names referenced by expression,
// ordered by first occurrence in the text.
func (h *HCL) Dependencies(expression string) ([]string, error) {
	e, err := h.parse(expression)
	if err != nil {
		return nil, err
	}
	return References(e), nil
}

// Evaluate computes expression with each binding available as a variable.
func (h *HCL) Evaluate(expression string, bindings map[string]float64) (float64, error) {
	e, err := h.parse(expression)
	if err != nil {
		return 0, err
	}

	vars := make(map[string]cty.Value, len(bindings))
	for name, v := range bindings {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: variable %q is bound to %v", ErrEvaluation, name, v)
		}
		vars[name] = cty.NumberFloatVal(v)
	}

	val, diags := e.Value(&hcl.EvalContext{Variables: vars, Functions: h.functions})
	if diags.HasErrors() {
		return 0, fmt.Errorf("%w: %s", ErrEvaluation, describe(diags))
	}
	return toFloat(val)
}

func (h *HCL) parse(expression string) (hclsyntax.Expression, error) {
	e, diags := hclsyntax.ParseExpression([]byte(expression), filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, describe(diags))
	}
	for _, t := range e.Variables() {
		if len(t) > 1 {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedReference, TraversalKey(t))
		}
	}
	for _, name := range CalledFunctions(e) {
		if _, ok := h.functions[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
		}
	}
	return e, nil
}

// toFloat converts an expression result to a finite float64.
func toFloat(val cty.Value) (float64, error) {
	if val.IsNull() {
		return 0, fmt.Errorf("%w: got null", ErrNotNumeric)
	}
	if !val.IsWhollyKnown() {
		return 0, fmt.Errorf("%w: value is unknown", ErrNotNumeric)
	}
	num, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotNumeric, err)
	}
	bf := num.AsBigFloat()
	if bf.IsInf() {
		return 0, ErrNotFinite
	}
	f, _ := bf.Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s overflows float64", ErrNotFinite, bf.Text('g', 10))
	}
	return f, nil
}

// describe renders error diagnostics without source positions, which carry
// no information for one-line expressions.
func describe(diags hcl.Diagnostics) string {
	var parts []string
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		if d.Detail == "" {
			parts = append(parts, d.Summary)
			continue
		}
		parts = append(parts, d.Summary+"; "+d.Detail)
	}
	return strings.Join(parts, "; ")
}
