package formula

// collect deletes every candidate that is referenced-only and has no
// dependents left, cascading into the dependencies of deleted variables.
// It returns the deleted names in deletion order.
func (m *Map) collect(candidates []string) []string {
	var collected []string
	queue := append([]string(nil), candidates...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		v, ok := m.vars[name]
		if !ok || v.defined() || len(v.dependents) > 0 {
			continue
		}
		delete(m.vars, name)
		collected = append(collected, name)

		for _, d := range v.deps {
			if dv, ok := m.vars[d]; ok {
				delete(dv.dependents, name)
				queue = append(queue, d)
			}
		}
	}
	return collected
}
