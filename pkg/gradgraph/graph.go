package gradgraph

import (
	"fmt"
	"strings"
)

// Graph owns a computation DAG of scalar nodes and drives the forward and
// backward passes over it. Create one with New, construct nodes through the
// graph's methods, assign leaf values, then call Forward and Backward.
//
// A Graph is mutable while building. The first call that needs the
// topological order (normally Forward) computes it once and freezes the node
// set; constructing further nodes afterward panics. Leaf values stay
// assignable across passes, so a frozen graph can be re-evaluated under new
// inputs indefinitely.
//
// A Graph is confined to a single goroutine: building and passes are
// strictly sequential and node state is unguarded. Distinct Graphs are
// independent.
//
// Example:
//
//	g := gradgraph.New()
//	a := g.Variable("a").SetValue(5)
//	b := g.Variable("b").SetValue(3)
//	c := g.Variable("c").SetValue(2)
//	d := g.Variable("d").SetValue(3)
//
//	j := g.Mul(d, g.Add(a, g.Mul(b, c)))
//
//	out, err := g.Forward() // 33
//	err = g.Backward()      // derivatives on a, b, c, d and j
type Graph struct {
	nodes  []node
	byName map[string]NodeID

	// order is nil until computed; once set the node set is frozen.
	order []NodeID

	// forwarded reports whether a forward pass has completed, the
	// precondition for Backward.
	forwarded bool
}

// New creates an empty graph in the building state.
func New() *Graph {
	return &Graph{byName: make(map[string]NodeID)}
}

// Placeholder registers a leaf whose value the caller supplies with
// SetValue. Pass "" for an anonymous leaf.
//
// Panics if:
//   - the graph is nil or frozen
//   - name contains whitespace
//   - name is already registered
func (g *Graph) Placeholder(name string) Node {
	return Node{g, g.register(KindPlaceholder, name, nil, nil)}
}

// Variable registers a leaf the caller intends to differentiate with respect
// to. It behaves identically to Placeholder; the distinction documents
// intent. Pass "" for an anonymous leaf.
//
// Panics under the same conditions as Placeholder.
func (g *Graph) Variable(name string) Node {
	return Node{g, g.register(KindVariable, name, nil, nil)}
}

// Const registers an anonymous pre-valued leaf. It is shorthand for
// Placeholder("").SetValue(v); the expr compiler uses it for numeric
// literals.
func (g *Graph) Const(v float64) Node {
	n := Node{g, g.register(KindPlaceholder, "", nil, nil)}
	return n.SetValue(v)
}

// Add registers a node computing a + b.
func (g *Graph) Add(a, b Node) Node { return g.Apply(opAdd, a, b) }

// Sub registers a node computing a - b.
func (g *Graph) Sub(a, b Node) Node { return g.Apply(opSub, a, b) }

// Mul registers a node computing a * b.
func (g *Graph) Mul(a, b Node) Node { return g.Apply(opMul, a, b) }

// Div registers a node computing a / b.
func (g *Graph) Div(a, b Node) Node { return g.Apply(opDiv, a, b) }

// Neg registers a node computing -x.
func (g *Graph) Neg(x Node) Node { return g.Apply(opNeg, x) }

// Exp registers a node computing e^x.
func (g *Graph) Exp(x Node) Node { return g.Apply(opExp, x) }

// Log registers a node computing the natural logarithm of x.
func (g *Graph) Log(x Node) Node { return g.Apply(opLog, x) }

// Apply registers an operation node over the given inputs. This is the
// general form behind Add, Mul and the rest; use it with custom Op kinds.
//
// Construction is the single edge-creation mechanism: the inputs are
// recorded on the new node in argument order, and the new node is appended
// to each input's outputs. Edges are fixed afterward.
//
// Panics if:
//   - the graph is nil or frozen
//   - op is nil, or its arity is not 1 or 2, or does not match len(inputs)
//   - any input is the zero Node or belongs to a different graph
func (g *Graph) Apply(op Op, inputs ...Node) Node {
	if op == nil {
		panic(fmt.Errorf("gradgraph: apply nil op"))
	}
	if op.Arity() != 1 && op.Arity() != 2 {
		panic(fmt.Errorf("gradgraph: apply %q with arity %d: %w", op.Name(), op.Arity(), ErrBadArity))
	}
	if len(inputs) != op.Arity() {
		panic(fmt.Errorf("gradgraph: apply %q to %d inputs, want %d: %w",
			op.Name(), len(inputs), op.Arity(), ErrBadArity))
	}

	ids := make([]NodeID, len(inputs))
	for i, in := range inputs {
		if in.g == nil {
			panic(fmt.Errorf("gradgraph: apply %q: input %d: %w", op.Name(), i, ErrDetachedNode))
		}
		if in.g != g {
			panic(fmt.Errorf("gradgraph: apply %q: input %s: %w", op.Name(), in, ErrForeignNode))
		}
		ids[i] = in.id
	}

	return Node{g, g.register(KindOperation, "", op, ids)}
}

// register appends a node record to the arena and wires the mirror edges.
// All constructors funnel through here, so the frozen-graph check and the
// mirror invariant live in exactly one place.
func (g *Graph) register(kind Kind, name string, op Op, inputs []NodeID) NodeID {
	if g == nil {
		panic(fmt.Errorf("gradgraph: register node: %w", ErrNilGraph))
	}
	if g.order != nil {
		panic(fmt.Errorf("gradgraph: register node: %w", ErrGraphFrozen))
	}
	if strings.ContainsAny(name, " \t\n\r") {
		panic(fmt.Errorf("gradgraph: node name %q cannot contain whitespace", name))
	}
	if name != "" {
		if _, exists := g.byName[name]; exists {
			panic(fmt.Errorf("gradgraph: register %q: %w", name, ErrDuplicateName))
		}
	}

	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{kind: kind, name: name, op: op, inputs: inputs})
	for _, in := range inputs {
		g.nodes[in].outputs = append(g.nodes[in].outputs, id)
	}
	if name != "" {
		g.byName[name] = id
	}
	return id
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns handles to every node in registration order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i := range g.nodes {
		out[i] = Node{g, NodeID(i)}
	}
	return out
}

// Lookup returns the node registered under name.
func (g *Graph) Lookup(name string) (Node, bool) {
	id, ok := g.byName[name]
	if !ok {
		return Node{}, false
	}
	return Node{g, id}, true
}

// Frozen reports whether the topological order has been computed and the
// node set is immutable.
func (g *Graph) Frozen() bool {
	return g.order != nil
}

// Root returns the designated graph output: the final node of the
// topological order. It reports false until the order has been computed.
func (g *Graph) Root() (Node, bool) {
	if g.order == nil {
		return Node{}, false
	}
	return Node{g, g.order[len(g.order)-1]}, true
}

// handles converts arena IDs to caller-facing handles.
func (g *Graph) handles(ids []NodeID) []Node {
	if len(ids) == 0 {
		return nil
	}
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{g, id}
	}
	return out
}
