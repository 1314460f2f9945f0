package formula

// recompute brings root and every variable that transitively depends on it
// to a final state for this pass. It returns the number of recomputed
// variables and how many of them are CYCLE.
func (m *Map) recompute(root string) (int, int) {
	order, affected := m.affected(root)

	done := make(map[string]bool, len(order))
	cycles := 0
	for _, component := range m.components(order, affected) {
		if !m.cyclic(component) {
			continue
		}
		members := make(map[string]struct{}, len(component))
		for _, name := range component {
			members[name] = struct{}{}
		}
		for _, name := range component {
			m.vars[name].value = cycleValue(cycleError(m.cyclePath(name, members)))
			done[name] = true
			cycles++
		}
	}

	// Outside the cycles the affected subgraph is acyclic, so resolving
	// dependencies first never revisits a variable.
	var resolve func(v *variable)
	resolve = func(v *variable) {
		done[v.name] = true
		for _, d := range v.deps {
			if _, ok := affected[d]; ok && !done[d] {
				resolve(m.vars[d])
			}
		}
		v.value = m.evaluate(v)
	}
	for _, name := range order {
		if !done[name] {
			resolve(m.vars[name])
		}
	}
	return len(order), cycles
}

// affected returns root followed by its transitive dependents in breadth-first
// order, along with the same names as a set.
func (m *Map) affected(root string) ([]string, map[string]struct{}) {
	seen := map[string]struct{}{root: {}}
	order := []string{root}
	for i := 0; i < len(order); i++ {
		for _, d := range sortedNames(m.vars[order[i]].dependents) {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			order = append(order, d)
		}
	}
	return order, seen
}

// components returns the strongly connected components of the subgraph
// induced by within, following dependency edges (Tarjan's algorithm).
func (m *Map) components(order []string, within map[string]struct{}) [][]string {
	index := 0
	indices := make(map[string]int, len(order))
	lowlink := make(map[string]int, len(order))
	onStack := make(map[string]bool, len(order))
	var stack []string
	var components [][]string

	var connect func(name string)
	connect = func(name string) {
		indices[name] = index
		lowlink[name] = index
		index++
		stack = append(stack, name)
		onStack[name] = true

		for _, dep := range m.vars[name].deps {
			if _, ok := within[dep]; !ok {
				continue
			}
			if _, visited := indices[dep]; !visited {
				connect(dep)
				lowlink[name] = min(lowlink[name], lowlink[dep])
			} else if onStack[dep] {
				lowlink[name] = min(lowlink[name], indices[dep])
			}
		}

		if lowlink[name] != indices[name] {
			return
		}
		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == name {
				break
			}
		}
		components = append(components, component)
	}

	for _, name := range order {
		if _, visited := indices[name]; !visited {
			connect(name)
		}
	}
	return components
}

// cyclic reports whether a strongly connected component contains a loop.
func (m *Map) cyclic(component []string) bool {
	if len(component) > 1 {
		return true
	}
	name := component[0]
	for _, d := range m.vars[name].deps {
		if d == name {
			return true
		}
	}
	return false
}

// cyclePath walks from start along dependency edges, in parse order and
// without leaving its component, until an edge leads back to start. The first
// loop closed wins. The returned path begins and ends with start.
func (m *Map) cyclePath(start string, component map[string]struct{}) []string {
	visited := map[string]bool{start: true}
	path := []string{start}

	var walk func(name string) bool
	walk = func(name string) bool {
		for _, dep := range m.vars[name].deps {
			if dep == start {
				path = append(path, start)
				return true
			}
			if _, ok := component[dep]; !ok || visited[dep] {
				continue
			}
			visited[dep] = true
			path = append(path, dep)
			if walk(dep) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	walk(start)
	return path
}

// evaluate computes the state of a variable that is not on a cycle, assuming
// its dependencies already hold their final state for this pass.
func (m *Map) evaluate(v *variable) Value {
	if !v.defined() {
		return errorValue(missingError())
	}
	if v.parseErr != nil {
		return errorValue(evaluationError(v.parseErr))
	}

	bindings := make(map[string]float64, len(v.deps))
	var unresolved []string
	for _, d := range v.deps {
		result, ok := m.vars[d].value.Result()
		if !ok {
			unresolved = append(unresolved, d)
			continue
		}
		bindings[d] = result
	}
	if len(unresolved) > 0 {
		return errorValue(unresolvedError(unresolved))
	}

	result, err := m.eval.Evaluate(*v.expression, bindings)
	if err != nil {
		return errorValue(evaluationError(err))
	}
	return okValue(result)
}
