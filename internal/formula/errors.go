package formula

import (
	"errors"
	"strings"
)

// PathSeparator joins variable names in a rendered cycle path.
const PathSeparator = "->"

var (
	// ErrMissingValue marks a referenced variable that has no definition.
	ErrMissingValue = errors.New("missing value")
	// ErrUnresolvedDependency marks a variable whose dependencies are not all OK.
	ErrUnresolvedDependency = errors.New("unresolved dependency")
	// ErrCycleDetected marks a variable that lies on a dependency cycle.
	ErrCycleDetected = errors.New("cycle detected")
	// ErrEvaluationFailure marks an expression the Evaluator could not parse or compute.
	ErrEvaluationFailure = errors.New("evaluation failure")
)

// VarError describes why a variable has no result. Kind is one of the
// package's sentinel errors and is matched with errors.Is.
type VarError struct {
	Kind error
	Msg  string
	// Path is the cycle walked from the reporting variable back to itself.
	Path []string
	// Deps lists the dependencies that are not OK, in dependency order.
	Deps []string
	// Cause is the Evaluator's error for ErrEvaluationFailure.
	Cause error
}

func (e *VarError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *VarError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func missingError() error {
	return &VarError{Kind: ErrMissingValue, Msg: "missing"}
}

func unresolvedError(deps []string) error {
	return &VarError{
		Kind: ErrUnresolvedDependency,
		Msg:  "missing: " + strings.Join(deps, ", "),
		Deps: deps,
	}
}

func cycleError(path []string) error {
	return &VarError{
		Kind: ErrCycleDetected,
		Msg:  strings.Join(path, PathSeparator),
		Path: path,
	}
}

func evaluationError(cause error) error {
	return &VarError{Kind: ErrEvaluationFailure, Msg: cause.Error(), Cause: cause}
}
