package formula

import (
	"log/slog"
	"time"
)

// Evaluator parses and computes expressions. The Map knows nothing about
// expression syntax beyond what an Evaluator reports.
type Evaluator interface {
	// Dependencies returns the distinct variable names referenced by
	// expression, in order of first occurrence.
	Dependencies(expression string) ([]string, error)
	// Evaluate computes expression with the given numeric bindings.
	Evaluate(expression string, bindings map[string]float64) (float64, error)
}

// Op names a mutating Map operation.
type Op string

const (
	OpPut    Op = "put"
	OpRemove Op = "remove"
)

// MutationEvent summarises one completed Put or Remove.
type MutationEvent struct {
	Op   Op
	Name string
	// Recomputed is the number of variables whose state was recomputed.
	Recomputed int
	// Cycles is the number of recomputed variables that ended up in CYCLE.
	Cycles int
	// Collected lists referenced-only variables deleted by the mutation.
	Collected []string
	// Size is the number of variables after the mutation.
	Size     int
	Duration time.Duration
}

// Observer is notified after every mutation. Observe runs while the Map's
// lock is held and must not call back into the Map.
type Observer interface {
	Observe(event MutationEvent)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(event MutationEvent)

// Observe calls f(event).
func (f ObserverFunc) Observe(event MutationEvent) {
	f(event)
}

// Option configures a Map.
type Option func(*Map)

// WithLogger sets the logger used for per-mutation debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Map) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver registers an observer for mutation events.
func WithObserver(o Observer) Option {
	return func(m *Map) { m.observer = o }
}
