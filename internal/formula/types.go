package formula

import (
	"log/slog"
	"sync"
)

// Map is a registry of named variables defined by expressions, recomputed
// incrementally whenever a definition changes. All operations are safe for
// concurrent use.
type Map struct {
	// mu serializes every public call, including cascading recomputation.
	mu sync.Mutex
	// vars is the registry, keyed by variable name.
	vars map[string]*variable

	eval     Evaluator
	logger   *slog.Logger
	observer Observer
}

// variable is a single node of the dependency graph. Edges are names, not
// pointers, so cycles are plain data.
type variable struct {
	name string
	// expression is nil for referenced-only variables.
	expression *string
	// parseErr holds the Evaluator's parse failure for expression, if any.
	parseErr error
	// deps holds the distinct referenced names in first-occurrence order.
	deps []string
	// dependents is the set of variables whose deps contain name.
	dependents map[string]struct{}
	value      Value
}

func (v *variable) defined() bool {
	return v.expression != nil
}

// Entry is a point-in-time view of one variable.
type Entry struct {
	Name string
	// Expression is empty for referenced-only variables; see Defined.
	Expression string
	Defined    bool
	Value      Value
}
