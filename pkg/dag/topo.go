package dag

// TopoSort returns node IDs such that every edge points forward.
// Among nodes that are ready at the same time, the earliest-inserted one is
// emitted first (Kahn's algorithm with a stable ready set).
// Returns ErrGraphHasCycle if no complete order exists.
func (d *DAG) TopoSort() ([]string, error) {
	indeg := make(map[string]int, len(d.nodes))
	pos := make(map[string]int, len(d.order))
	for i, id := range d.order {
		indeg[id] = len(d.incoming[id])
		pos[id] = i
	}

	done := make([]bool, len(d.order))
	out := make([]string, 0, len(d.order))
	for len(out) < len(d.order) {
		next := -1
		for i, id := range d.order {
			if !done[i] && indeg[id] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, ErrGraphHasCycle
		}
		id := d.order[next]
		done[next] = true
		out = append(out, id)
		for _, child := range d.outgoing[id] {
			indeg[child]--
		}
	}
	return out, nil
}
