package expr_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/formulamap/internal/expr"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

func TestHCL_Dependencies(t *testing.T) {
	h := expr.NewHCL()

	testCases := []struct {
		name       string
		expression string
		expected   []string
	}{
		{name: "literal", expression: "2", expected: []string{}},
		{name: "single reference", expression: "A+3", expected: []string{"A"}},
		{name: "first occurrence order", expression: "D + B * D - C", expected: []string{"D", "B", "C"}},
		{name: "inside function call", expression: "max(Y, X) + X", expected: []string{"Y", "X"}},
		{name: "conditional", expression: "A > 1 ? B : C", expected: []string{"A", "B", "C"}},
		{name: "parentheses", expression: "(B + C) * (C + A)", expected: []string{"B", "C", "A"}},
		{name: "self reference", expression: "A + 2", expected: []string{"A"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			deps, err := h.Dependencies(tc.expression)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, deps)
		})
	}
}

func TestHCL_DependenciesRejectsInvalidInput(t *testing.T) {
	h := expr.NewHCL()

	testCases := []struct {
		name       string
		expression string
		expected   error
		contains   string
	}{
		{name: "dangling operator", expression: "2 +", expected: expr.ErrSyntax},
		{name: "empty", expression: "", expected: expr.ErrSyntax},
		{name: "trailing tokens", expression: "A B", expected: expr.ErrSyntax},
		{name: "unknown function", expression: "sqrt(A)", expected: expr.ErrUnknownFunction, contains: "sqrt"},
		{name: "attribute access", expression: "A.b + 1", expected: expr.ErrUnsupportedReference, contains: "A.b"},
		{name: "index access", expression: "A[0]", expected: expr.ErrUnsupportedReference, contains: "A[0]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.Dependencies(tc.expression)
			require.ErrorIs(t, err, tc.expected)
			if tc.contains != "" {
				assert.Contains(t, err.Error(), tc.contains)
			}
		})
	}
}

func TestHCL_Evaluate(t *testing.T) {
	h := expr.NewHCL()

	testCases := []struct {
		name       string
		expression string
		bindings   map[string]float64
		expected   float64
	}{
		{name: "literal", expression: "2", expected: 2},
		{name: "addition", expression: "A+3", bindings: map[string]float64{"A": 2}, expected: 5},
		{name: "precedence", expression: "B + C * 2", bindings: map[string]float64{"B": 1, "C": 4}, expected: 9},
		{name: "unary minus", expression: "-A", bindings: map[string]float64{"A": 7}, expected: -7},
		{name: "modulo", expression: "A % 4", bindings: map[string]float64{"A": 10}, expected: 2},
		{name: "division", expression: "A / 4", bindings: map[string]float64{"A": 10}, expected: 2.5},
		{name: "conditional", expression: "A > 1 ? 10 : 20", bindings: map[string]float64{"A": 0}, expected: 20},
		{name: "pow", expression: "pow(2, 10)", expected: 1024},
		{name: "min and max", expression: "max(A, 3) - min(A, 3)", bindings: map[string]float64{"A": 8}, expected: 5},
		{name: "abs floor ceil", expression: "abs(-2) + floor(1.5) + ceil(1.5)", expected: 5},
		{name: "numeric string converts", expression: `"5" + 1`, expected: 6},
		{name: "unused binding", expression: "1", bindings: map[string]float64{"Z": 9}, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := h.Evaluate(tc.expression, tc.bindings)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, result, 1e-9)
		})
	}
}

func TestHCL_EvaluateFailures(t *testing.T) {
	h := expr.NewHCL()

	testCases := []struct {
		name       string
		expression string
		bindings   map[string]float64
		expected   error
	}{
		{name: "syntax", expression: "(1", expected: expr.ErrSyntax},
		{name: "unbound variable", expression: "A + 1", expected: expr.ErrEvaluation},
		{name: "zero by zero", expression: "0 / 0", expected: expr.ErrEvaluation},
		{name: "string result", expression: `"abc"`, expected: expr.ErrNotNumeric},
		{name: "bool result", expression: "true", expected: expr.ErrNotNumeric},
		{name: "null result", expression: "null", expected: expr.ErrNotNumeric},
		{name: "tuple result", expression: "[1, 2]", expected: expr.ErrNotNumeric},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.Evaluate(tc.expression, tc.bindings)
			require.ErrorIs(t, err, tc.expected)
		})
	}

	t.Run("division by zero", func(t *testing.T) {
		_, err := h.Evaluate("1 / A", map[string]float64{"A": 0})
		require.Error(t, err)
	})
}

func TestHCL_CustomFunctions(t *testing.T) {
	h := expr.NewHCLWithFunctions(map[string]function.Function{
		"negate": stdlib.NegateFunc,
	})

	result, err := h.Evaluate("negate(A)", map[string]float64{"A": 4})
	require.NoError(t, err)
	assert.Equal(t, -4.0, result)

	_, err = h.Dependencies("max(A, 1)")
	require.ErrorIs(t, err, expr.ErrUnknownFunction)
}

func TestHCL_ConcurrentUse(t *testing.T) {
	h := expr.NewHCL()

	var wg sync.WaitGroup
	numGoroutines := 50
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			result, err := h.Evaluate("A * 2", map[string]float64{"A": float64(i)})
			assert.NoError(t, err)
			assert.Equal(t, float64(i*2), result)
		}()
	}

	wg.Wait()
}
