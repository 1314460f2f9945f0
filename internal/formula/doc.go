// Package formula implements a dependency-tracked formula map: a registry of
// named variables whose values are defined by expressions that may reference
// other variables by name.
//
// # Model
//
// Every known name owns exactly one variable. A variable is either
//
//   - **defined**: a caller supplied an expression through Put, or
//   - **referenced-only**: some other variable's expression names it, but it
//     has no expression of its own. It reports ERROR with the message "missing".
//
// Edges are kept as sets of names, never as pointers between variables:
//
//	deps:       A -> [D]          (parse order of A's expression)
//	dependents: D -> {A}          (reverse edges, maintained by the Map)
//
// A variable exists while it has an expression or at least one dependent.
// When neither holds it is collected, so no edge ever points at a missing name.
//
// # Recomputation
//
// A mutation marks the changed variable dirty. The Map then recomputes it and
// every variable reachable through dependents edges:
//
//  1. Strongly connected components of the affected subgraph are found. Every
//     member of a component with more than one variable, or with a self edge,
//     is CYCLE. Its message is the loop walked from that variable along
//     dependency edges in parse order, e.g. "B->A->D->B".
//  2. The remaining affected variables are evaluated dependencies first. A
//     variable whose dependencies are all OK is evaluated by the Evaluator;
//     otherwise it is ERROR and names the unresolved dependencies.
//
// Variables that merely depend on a cycle are ERROR, not CYCLE.
//
// # Thread-Safety
//
// A single mutex spans every public method, so a mutation and all of its
// cascading recomputation and collection complete before any other call
// observes the Map.
package formula
