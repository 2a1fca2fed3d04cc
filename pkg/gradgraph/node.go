package gradgraph

import "fmt"

// NodeID identifies a node within its owning graph. IDs are assigned in
// registration order, starting at 0, and index into the graph's node arena.
type NodeID int

// Kind classifies a node.
type Kind int

// Node kinds.
const (
	// KindInvalid is the kind of the zero Node.
	KindInvalid Kind = iota
	// KindPlaceholder is a leaf whose value is supplied by the caller.
	KindPlaceholder
	// KindVariable is a leaf the caller intends to differentiate with
	// respect to. It behaves identically to a Placeholder; the distinction
	// is documentation.
	KindVariable
	// KindOperation is a node that computes its value from its inputs.
	KindOperation
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPlaceholder:
		return "placeholder"
	case KindVariable:
		return "variable"
	case KindOperation:
		return "operation"
	default:
		return "invalid"
	}
}

// Node is a handle to a node in a graph. Handles are small values and may be
// freely copied; all state lives in the graph. The zero Node is not attached
// to any graph and is rejected wherever a node is consumed.
//
// Example:
//
//	g := gradgraph.New()
//	x := g.Variable("x").SetValue(2)
//	y := g.Mul(x, x)
//	out, err := g.Forward()
type Node struct {
	g  *Graph
	id NodeID
}

// ID returns the node's identifier within its graph.
func (n Node) ID() NodeID { return n.id }

// Kind returns the node's kind, or KindInvalid for the zero Node.
func (n Node) Kind() Kind {
	if n.g == nil {
		return KindInvalid
	}
	return n.g.nodes[n.id].kind
}

// Name returns the node's name, or "" if it was registered without one.
func (n Node) Name() string {
	if n.g == nil {
		return ""
	}
	return n.g.nodes[n.id].name
}

// String returns the node's name, or "#<id>" if unnamed. Error messages and
// log records identify nodes this way.
func (n Node) String() string {
	if n.g == nil {
		return "<detached>"
	}
	return n.g.nodes[n.id].ref(n.id)
}

// Value returns the node's value and whether it has been set, either by the
// caller (leaves) or by a forward pass (operations).
func (n Node) Value() (float64, bool) {
	if n.g == nil {
		return 0, false
	}
	rec := &n.g.nodes[n.id]
	return rec.value, rec.valueSet
}

// Derivative returns the derivative of the graph output with respect to this
// node, and whether a backward pass has set it.
func (n Node) Derivative() (float64, bool) {
	if n.g == nil {
		return 0, false
	}
	rec := &n.g.nodes[n.id]
	return rec.deriv, rec.derivSet
}

// SetValue assigns the node's value and returns the same handle for chaining.
// Only leaves accept values; the value may be assigned or reassigned at any
// time before the forward pass that reads it, including after the graph
// froze.
//
// SetValue panics on the zero Node and on operation nodes: both are
// programmer errors, not runtime conditions.
func (n Node) SetValue(v float64) Node {
	if n.g == nil {
		panic(fmt.Errorf("gradgraph: set value: %w", ErrDetachedNode))
	}
	rec := &n.g.nodes[n.id]
	if rec.kind == KindOperation {
		panic(fmt.Errorf("gradgraph: set value on %s: %w", rec.ref(n.id), ErrNotLeaf))
	}
	rec.value = v
	rec.valueSet = true
	return n
}

// Inputs returns handles to the nodes this node reads, in construction order.
// Leaves return nil.
func (n Node) Inputs() []Node {
	if n.g == nil {
		return nil
	}
	return n.g.handles(n.g.nodes[n.id].inputs)
}

// Outputs returns handles to the nodes that read this node, in construction
// order.
func (n Node) Outputs() []Node {
	if n.g == nil {
		return nil
	}
	return n.g.handles(n.g.nodes[n.id].outputs)
}

// node is the arena record backing a Node handle. Edges are index lists into
// the same arena. inputs and outputs mirror each other: a is in b.inputs iff
// b is in a.outputs. Both are fixed at construction; value and deriv are the
// only fields a pass mutates.
type node struct {
	kind Kind
	name string
	op   Op

	inputs  []NodeID
	outputs []NodeID

	value    float64
	valueSet bool
	deriv    float64
	derivSet bool
}

// ref renders the node for error messages and logs: its name, or "#<id>".
func (rec *node) ref(id NodeID) string {
	if rec.name != "" {
		return rec.name
	}
	return fmt.Sprintf("#%d", id)
}
