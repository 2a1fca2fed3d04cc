package gradgraph

// visitMark is a node's state during one ordering walk. Marks live in a
// slice local to the call, never on the node records, so an aborted walk
// leaves no residue and the walk is re-runnable.
type visitMark uint8

const (
	markUnvisited visitMark = iota
	markActive              // on the recursion stack
	markDone
)

// ensureOrder computes the topological order the first time it is needed and
// freezes the node set. Subsequent calls are no-ops.
//
// Failure does not freeze the graph: an ordering error (empty graph, cycle)
// is deterministic, so retrying reproduces it.
func (g *Graph) ensureOrder() error {
	if g.order != nil {
		return nil
	}
	if len(g.nodes) == 0 {
		return ErrEmptyGraph
	}
	order, err := g.computeOrder()
	if err != nil {
		return err
	}
	g.order = order
	return nil
}

// computeOrder performs the ordering walk: depth-first search seeded from
// every node in registration order, skipping finished nodes; each call
// recurses into the node's dependents (outputs) before appending the node to
// an accumulator; the accumulator is reversed at the end. Because recursion
// follows dependents and the result is reversed, every producer ends up
// strictly before each of its consumers.
//
// Marks are three-state: meeting a node that is still on the recursion stack
// means the edge relation has a cycle, and the walk fails with
// ErrCycleDetected naming that node rather than recursing unboundedly.
func (g *Graph) computeOrder() ([]NodeID, error) {
	marks := make([]visitMark, len(g.nodes))
	stack := make([]NodeID, 0, len(g.nodes))

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		switch marks[id] {
		case markDone:
			return nil
		case markActive:
			return &NodeError{Node: g.nodes[id].ref(id), Op: "order", Err: ErrCycleDetected}
		}
		marks[id] = markActive
		for _, out := range g.nodes[id].outputs {
			if marks[out] == markDone {
				continue
			}
			if err := visit(out); err != nil {
				return err
			}
		}
		marks[id] = markDone
		stack = append(stack, id)
		return nil
	}

	for id := range g.nodes {
		if marks[id] == markDone {
			continue
		}
		if err := visit(NodeID(id)); err != nil {
			return nil, err
		}
	}

	// The accumulator holds consumers before their producers; reverse it.
	order := make([]NodeID, len(stack))
	for i, id := range stack {
		order[len(stack)-1-i] = id
	}
	return order, nil
}
