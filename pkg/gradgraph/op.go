package gradgraph

import (
	"fmt"
	"math"

	"github.com/seljukgulcan/gradgraph/pkg/gradgraph/registry"
)

// Op defines an operation kind: a pure forward rule plus the partial
// derivative of the output with respect to each input position. The set of
// kinds is open — implement Op (or build one with NewOp) and register it
// with RegisterOp; no other component needs to change.
//
// Partials are addressed by input position, not by node, so an operation
// consuming the same node twice (Mul(x, x)) differentiates each position
// independently.
type Op interface {
	// Name identifies the kind. Names are unique within the registry.
	Name() string

	// Arity is the number of inputs, 1 or 2.
	Arity() int

	// Apply computes the output from the input values. len(in) == Arity().
	Apply(in []float64) float64

	// Partial returns ∂output/∂in[wrt] given the current input values.
	// wrt must be a valid input position.
	Partial(in []float64, wrt int) float64
}

// opFunc is the function-backed Op returned by NewOp.
type opFunc struct {
	name    string
	arity   int
	apply   func(in []float64) float64
	partial func(in []float64, wrt int) float64
}

func (o opFunc) Name() string { return o.name }
func (o opFunc) Arity() int   { return o.arity }
func (o opFunc) Apply(in []float64) float64 {
	return o.apply(in)
}
func (o opFunc) Partial(in []float64, wrt int) float64 {
	return o.partial(in, wrt)
}

// NewOp builds an operation kind from its forward rule and its
// partial-derivative rule. It panics if name is empty, arity is not 1 or 2,
// or either rule is nil — misdeclared operations are programmer errors.
//
// Example:
//
//	square := gradgraph.NewOp("square", 1,
//	    func(in []float64) float64 { return in[0] * in[0] },
//	    func(in []float64, wrt int) float64 { return 2 * in[0] },
//	)
//	gradgraph.RegisterOp(square)
func NewOp(name string, arity int, apply func(in []float64) float64, partial func(in []float64, wrt int) float64) Op {
	if name == "" {
		panic(fmt.Errorf("gradgraph: op name cannot be empty"))
	}
	if arity != 1 && arity != 2 {
		panic(fmt.Errorf("gradgraph: op %q declares arity %d: %w", name, arity, ErrBadArity))
	}
	if apply == nil || partial == nil {
		panic(fmt.Errorf("gradgraph: op %q: nil rule", name))
	}
	return opFunc{name: name, arity: arity, apply: apply, partial: partial}
}

// Built-in operation kinds.
var (
	opAdd = NewOp("add", 2,
		func(in []float64) float64 { return in[0] + in[1] },
		func(in []float64, wrt int) float64 { return 1 },
	)

	opSub = NewOp("sub", 2,
		func(in []float64) float64 { return in[0] - in[1] },
		func(in []float64, wrt int) float64 {
			if wrt == 0 {
				return 1
			}
			return -1
		},
	)

	opMul = NewOp("mul", 2,
		func(in []float64) float64 { return in[0] * in[1] },
		func(in []float64, wrt int) float64 {
			// ∂(a*b)/∂a = b, ∂(a*b)/∂b = a.
			if wrt == 0 {
				return in[1]
			}
			return in[0]
		},
	)

	opDiv = NewOp("div", 2,
		func(in []float64) float64 { return in[0] / in[1] },
		func(in []float64, wrt int) float64 {
			if wrt == 0 {
				return 1 / in[1]
			}
			return -in[0] / (in[1] * in[1])
		},
	)

	opNeg = NewOp("neg", 1,
		func(in []float64) float64 { return -in[0] },
		func(in []float64, wrt int) float64 { return -1 },
	)

	opExp = NewOp("exp", 1,
		func(in []float64) float64 { return math.Exp(in[0]) },
		func(in []float64, wrt int) float64 { return math.Exp(in[0]) },
	)

	opLog = NewOp("log", 1,
		func(in []float64) float64 { return math.Log(in[0]) },
		func(in []float64, wrt int) float64 { return 1 / in[0] },
	)
)

// ops resolves operation names for Apply-by-name callers and the expr
// compiler.
var ops = registry.New[string, Op]()

func init() {
	ops.RegisterMany(map[string]Op{
		opAdd.Name(): opAdd,
		opSub.Name(): opSub,
		opMul.Name(): opMul,
		opDiv.Name(): opDiv,
		opNeg.Name(): opNeg,
		opExp.Name(): opExp,
		opLog.Name(): opLog,
	})
}

// RegisterOp makes op resolvable by name through LookupOp and the expr
// compiler, replacing any existing registration under the same name. It
// panics on a nil op.
func RegisterOp(op Op) {
	if op == nil {
		panic(fmt.Errorf("gradgraph: register nil op"))
	}
	if op.Name() == "" {
		panic(fmt.Errorf("gradgraph: op name cannot be empty"))
	}
	ops.Register(op.Name(), op)
}

// LookupOp resolves a registered operation by name.
func LookupOp(name string) (Op, bool) {
	return ops.Get(name)
}

// Ops returns the names of all registered operations in sorted order.
func Ops() []string {
	return ops.Keys()
}
