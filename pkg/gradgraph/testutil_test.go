package gradgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Shared fixtures used across tests.

// example holds the handles of the graph J = d * (a + b*c) with
// a=5, b=3, c=2, d=3, so Forward yields 33.
type example struct {
	g          *Graph
	a, b, c, d Node
	u, v, j    Node
}

// buildExample constructs the example graph. Registration order is
// a, b, c, d, u, v, j; u = b*c, v = a+u, j = d*v.
func buildExample() example {
	g := New()
	ex := example{
		g: g,
		a: g.Variable("a").SetValue(5),
		b: g.Variable("b").SetValue(3),
		c: g.Variable("c").SetValue(2),
		d: g.Variable("d").SetValue(3),
	}
	ex.u = g.Mul(ex.b, ex.c)
	ex.v = g.Add(ex.a, ex.u)
	ex.j = g.Mul(ex.d, ex.v)
	return ex
}

// runExample builds the example graph and runs both passes.
func runExample(t *testing.T) example {
	t.Helper()
	ex := buildExample()
	out, err := ex.g.Forward()
	require.NoError(t, err)
	require.Equal(t, 33.0, out)
	require.NoError(t, ex.g.Backward())
	return ex
}

// requireValue asserts a node's value is set and equals want.
func requireValue(t *testing.T, n Node, want float64) {
	t.Helper()
	got, ok := n.Value()
	require.True(t, ok, "value of %s not set", n)
	require.InDelta(t, want, got, 1e-12)
}

// requireDeriv asserts a node's derivative is set and equals want.
func requireDeriv(t *testing.T, n Node, want float64) {
	t.Helper()
	got, ok := n.Derivative()
	require.True(t, ok, "derivative of %s not set", n)
	require.InDelta(t, want, got, 1e-12)
}

// makePanicOp creates a unary operation whose forward rule panics.
func makePanicOp(value any) Op {
	return NewOp("panics", 1,
		func(in []float64) float64 { panic(value) },
		func(in []float64, wrt int) float64 { return 1 },
	)
}

// makePanicPartialOp creates a unary operation that evaluates normally but
// panics in its derivative rule.
func makePanicPartialOp(value any) Op {
	return NewOp("panic_partial", 1,
		func(in []float64) float64 { return in[0] },
		func(in []float64, wrt int) float64 { panic(value) },
	)
}

// arityOp reports an arbitrary arity, for exercising the arity validation
// that NewOp itself refuses to construct.
type arityOp struct {
	name  string
	arity int
}

func (o arityOp) Name() string                          { return o.name }
func (o arityOp) Arity() int                            { return o.arity }
func (o arityOp) Apply(in []float64) float64            { return 0 }
func (o arityOp) Partial(in []float64, wrt int) float64 { return 0 }

// injectEdge grafts a dependency edge from -> to directly into the arena.
// Construction cannot create cycles, so cycle handling is exercised this way.
func injectEdge(g *Graph, from, to Node) {
	g.nodes[from.id].outputs = append(g.nodes[from.id].outputs, to.id)
	g.nodes[to.id].inputs = append(g.nodes[to.id].inputs, from.id)
}
