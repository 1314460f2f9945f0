package formula

import (
	"log/slog"
	"sort"
	"time"
)

// New creates an empty Map that parses and computes expressions with eval.
func New(eval Evaluator, opts ...Option) *Map {
	m := &Map{
		vars:   make(map[string]*variable),
		eval:   eval,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Put defines name by expression, replacing any previous definition, and
// recomputes name and everything that transitively depends on it. Names the
// expression references are created as referenced-only variables if absent.
//
// A parse failure does not reject the definition: the expression is stored
// and the variable reports ERROR with the Evaluator's message.
func (m *Map) Put(name, expression string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := time.Now()

	deps, parseErr := m.eval.Dependencies(expression)
	if parseErr != nil {
		deps = nil
	}

	v, ok := m.vars[name]
	if !ok {
		v = m.create(name)
	}
	dropped := m.relink(v, distinct(deps))
	v.expression = &expression
	v.parseErr = parseErr

	recomputed, cycles := m.recompute(name)
	collected := m.collect(dropped)
	m.report(OpPut, name, start, recomputed, cycles, collected)
}

// Remove clears the definition of name. The variable survives as
// referenced-only while other variables still reference it; otherwise it is
// deleted. Dependents are recomputed and dependencies that are no longer
// referenced by anything are collected. Removing an unknown name is a no-op.
func (m *Map) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vars[name]
	if !ok {
		return
	}
	start := time.Now()

	dropped := m.relink(v, nil)
	v.expression = nil
	v.parseErr = nil

	var recomputed, cycles int
	if len(v.dependents) == 0 {
		delete(m.vars, name)
	} else {
		recomputed, cycles = m.recompute(name)
	}
	collected := m.collect(dropped)
	m.report(OpRemove, name, start, recomputed, cycles, collected)
}

// Get returns the current value of name, or false if name is not registered.
func (m *Map) Get(name string) (Value, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vars[name]
	if !ok {
		return Value{}, false
	}
	return v.value, true
}

// Vars returns the registered names in sorted order.
func (m *Map) Vars() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.vars))
	for name := range m.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of registered variables.
func (m *Map) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vars)
}

// Expression returns the definition of name. It returns false for unknown
// and referenced-only variables.
func (m *Map) Expression(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vars[name]
	if !ok || !v.defined() {
		return "", false
	}
	return *v.expression, true
}

// Dependencies returns the names referenced by name's expression, in parse order.
func (m *Map) Dependencies(name string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vars[name]
	if !ok {
		return nil
	}
	return append([]string(nil), v.deps...)
}

// Dependents returns the names whose expressions reference name, sorted.
func (m *Map) Dependents(name string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vars[name]
	if !ok {
		return nil
	}
	return sortedNames(v.dependents)
}

// Snapshot returns a consistent view of every variable, sorted by name.
func (m *Map) Snapshot() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]Entry, 0, len(m.vars))
	for _, v := range m.vars {
		e := Entry{Name: v.name, Defined: v.defined(), Value: v.value}
		if v.defined() {
			e.Expression = *v.expression
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// create registers a referenced-only variable.
func (m *Map) create(name string) *variable {
	v := &variable{
		name:       name,
		dependents: make(map[string]struct{}),
		value:      errorValue(missingError()),
	}
	m.vars[name] = v
	return v
}

// relink replaces v's dependency list with deps, keeping the reverse edges in
// step. Newly referenced names are created if absent. It returns the names
// that lost v as a dependent.
func (m *Map) relink(v *variable, deps []string) []string {
	next := make(map[string]struct{}, len(deps))
	for _, d := range deps {
		next[d] = struct{}{}
	}
	prev := make(map[string]struct{}, len(v.deps))
	for _, d := range v.deps {
		prev[d] = struct{}{}
	}

	var dropped []string
	for _, d := range v.deps {
		if _, keep := next[d]; keep {
			continue
		}
		if dv, ok := m.vars[d]; ok {
			delete(dv.dependents, v.name)
		}
		dropped = append(dropped, d)
	}
	for _, d := range deps {
		if _, had := prev[d]; had {
			continue
		}
		dv, ok := m.vars[d]
		if !ok {
			dv = m.create(d)
		}
		dv.dependents[v.name] = struct{}{}
	}
	v.deps = deps
	return dropped
}

func (m *Map) report(op Op, name string, start time.Time, recomputed, cycles int, collected []string) {
	event := MutationEvent{
		Op:         op,
		Name:       name,
		Recomputed: recomputed,
		Cycles:     cycles,
		Collected:  collected,
		Size:       len(m.vars),
		Duration:   time.Since(start),
	}
	m.logger.Debug("Formula map updated.",
		"op", op,
		"name", name,
		"recomputed", recomputed,
		"cycles", cycles,
		"collected", collected,
		"size", event.Size,
	)
	if m.observer != nil {
		m.observer.Observe(event)
	}
}

// distinct drops empty and repeated names, keeping first occurrences.
func distinct(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
