package formula

import "fmt"

// State is the evaluation state of a variable.
type State int

const (
	// StateOK means the variable has a numeric result.
	StateOK State = iota
	// StateError means no result could be produced; see the accompanying error.
	StateError
	// StateCycle means the variable lies on a dependency cycle.
	StateCycle
)

// String returns the canonical upper-case name of the state.
func (s State) String() string {
	switch s {
	case StateOK:
		return "OK"
	case StateError:
		return "ERROR"
	case StateCycle:
		return "CYCLE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Value is the observable outcome of a variable. It carries either a result
// (StateOK) or an error (StateError, StateCycle), never both.
type Value struct {
	state  State
	result float64
	err    error
}

func okValue(result float64) Value {
	return Value{state: StateOK, result: result}
}

func errorValue(err error) Value {
	return Value{state: StateError, err: err}
}

func cycleValue(err error) Value {
	return Value{state: StateCycle, err: err}
}

// State returns the variable's state.
func (v Value) State() State {
	return v.state
}

// OK reports whether the value holds a usable result.
func (v Value) OK() bool {
	return v.state == StateOK
}

// Result returns the numeric result and true when the state is StateOK.
func (v Value) Result() (float64, bool) {
	if v.state != StateOK {
		return 0, false
	}
	return v.result, true
}

// Err returns the failure for StateError and StateCycle values, nil otherwise.
func (v Value) Err() error {
	if v.state == StateOK {
		return nil
	}
	return v.err
}

// Message returns the error text, or the empty string for OK values.
func (v Value) Message() string {
	if err := v.Err(); err != nil {
		return err.Error()
	}
	return ""
}

// String renders the value for logs.
func (v Value) String() string {
	if r, ok := v.Result(); ok {
		return fmt.Sprintf("%s(%g)", v.state, r)
	}
	return fmt.Sprintf("%s(%s)", v.state, v.Message())
}
