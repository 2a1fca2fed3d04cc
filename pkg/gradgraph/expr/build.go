package expr

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/seljukgulcan/gradgraph/pkg/gradgraph"
)

// Build failures.
var (
	// ErrNilGraph indicates Build was called with a nil destination graph.
	ErrNilGraph = errors.New("nil graph")

	// ErrUnsupportedSyntax indicates the expression uses a construct with no
	// graph equivalent (strings, comparisons, indexing, conditionals, ...).
	ErrUnsupportedSyntax = errors.New("unsupported expression syntax")

	// ErrUnknownFunction indicates a call to a function name that is not a
	// registered operation. It chains to gradgraph.ErrUnknownOp.
	ErrUnknownFunction = fmt.Errorf("unknown function: %w", gradgraph.ErrUnknownOp)

	// ErrArgCount indicates a function call with the wrong number of arguments.
	ErrArgCount = errors.New("wrong number of arguments")

	// ErrNotANumber indicates a literal value that is not numeric.
	ErrNotANumber = errors.New("literal is not a number")
)

// filename reported in error positions.
const srcName = "expr"

// BuildError reports a construct that cannot be turned into graph nodes,
// with the source range of the offending construct.
type BuildError struct {
	Range hcl.Range
	Err   error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %v", e.Range, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As checks.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// arithmeticOps maps HCL binary operators to registered operation names.
var arithmeticOps = map[*hclsyntax.Operation]string{
	hclsyntax.OpAdd:      "add",
	hclsyntax.OpSubtract: "sub",
	hclsyntax.OpMultiply: "mul",
	hclsyntax.OpDivide:   "div",
}

// Build parses src as an arithmetic expression and appends the equivalent
// nodes to g, returning the node that computes the whole expression.
//
// Identifiers bind to existing named nodes; unknown identifiers create new
// Variables. Number literals become constants. Function calls resolve through
// the operation registry, so exp(x), log(x), and any operation added with
// RegisterOp are callable by name.
//
// Validation runs before any node is registered: a failed Build leaves g
// unchanged, and the returned error joins every problem found. Build panics
// like the node constructors do if g is already frozen.
//
// Example:
//
//	g := gradgraph.New()
//	loss, err := expr.Build(g, "d * (a + b * c)")
func Build(g *gradgraph.Graph, src string) (gradgraph.Node, error) {
	if g == nil {
		return gradgraph.Node{}, ErrNilGraph
	}

	syntax, diags := hclsyntax.ParseExpression([]byte(src), srcName, hcl.InitialPos)
	if diags.HasErrors() {
		return gradgraph.Node{}, fmt.Errorf("parse expression: %w", diags)
	}

	var errs []error
	validate(syntax, &errs)
	if err := errors.Join(errs...); err != nil {
		return gradgraph.Node{}, err
	}

	return emit(g, syntax), nil
}

// validate walks the syntax tree collecting every construct emit cannot
// translate. Mirrors the emit switch exactly.
func validate(syntax hclsyntax.Expression, errs *[]error) {
	switch e := syntax.(type) {
	case *hclsyntax.ParenthesesExpr:
		validate(e.Expression, errs)

	case *hclsyntax.LiteralValueExpr:
		if !e.Val.Type().Equals(cty.Number) {
			*errs = append(*errs, &BuildError{
				Range: e.Range(),
				Err:   fmt.Errorf("%w: %s", ErrNotANumber, e.Val.Type().FriendlyName()),
			})
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) != 1 {
			*errs = append(*errs, &BuildError{
				Range: e.Range(),
				Err:   fmt.Errorf("%w: attribute access", ErrUnsupportedSyntax),
			})
		}

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			*errs = append(*errs, &BuildError{
				Range: e.Range(),
				Err:   fmt.Errorf("%w: unary operator", ErrUnsupportedSyntax),
			})
		}
		validate(e.Val, errs)

	case *hclsyntax.BinaryOpExpr:
		if _, ok := arithmeticOps[e.Op]; !ok {
			*errs = append(*errs, &BuildError{
				Range: e.Range(),
				Err:   fmt.Errorf("%w: binary operator", ErrUnsupportedSyntax),
			})
		}
		validate(e.LHS, errs)
		validate(e.RHS, errs)

	case *hclsyntax.FunctionCallExpr:
		op, ok := gradgraph.LookupOp(e.Name)
		switch {
		case !ok:
			*errs = append(*errs, &BuildError{
				Range: e.Range(),
				Err:   fmt.Errorf("%w: %s", ErrUnknownFunction, e.Name),
			})
		case len(e.Args) != op.Arity():
			*errs = append(*errs, &BuildError{
				Range: e.Range(),
				Err: fmt.Errorf("%w: %s takes %d, got %d",
					ErrArgCount, e.Name, op.Arity(), len(e.Args)),
			})
		}
		for _, arg := range e.Args {
			validate(arg, errs)
		}

	default:
		*errs = append(*errs, &BuildError{
			Range: syntax.Range(),
			Err:   ErrUnsupportedSyntax,
		})
	}
}

// emit registers nodes for a validated syntax tree, depth first, left to
// right. Identifier creation order therefore follows source order.
func emit(g *gradgraph.Graph, syntax hclsyntax.Expression) gradgraph.Node {
	switch e := syntax.(type) {
	case *hclsyntax.ParenthesesExpr:
		return emit(g, e.Expression)

	case *hclsyntax.LiteralValueExpr:
		return g.Const(litFloat(e))

	case *hclsyntax.ScopeTraversalExpr:
		name := e.Traversal.RootName()
		if n, ok := g.Lookup(name); ok {
			return n
		}
		return g.Variable(name)

	case *hclsyntax.UnaryOpExpr:
		// Fold a negated literal into one constant.
		if lit, ok := e.Val.(*hclsyntax.LiteralValueExpr); ok {
			return g.Const(-litFloat(lit))
		}
		return g.Neg(emit(g, e.Val))

	case *hclsyntax.BinaryOpExpr:
		lhs := emit(g, e.LHS)
		rhs := emit(g, e.RHS)
		op, _ := gradgraph.LookupOp(arithmeticOps[e.Op])
		return g.Apply(op, lhs, rhs)

	case *hclsyntax.FunctionCallExpr:
		args := make([]gradgraph.Node, len(e.Args))
		for i, arg := range e.Args {
			args[i] = emit(g, arg)
		}
		op, _ := gradgraph.LookupOp(e.Name)
		return g.Apply(op, args...)

	default:
		panic(fmt.Errorf("expr: construct %T escaped validation", syntax))
	}
}

func litFloat(e *hclsyntax.LiteralValueExpr) float64 {
	f, _ := e.Val.AsBigFloat().Float64()
	return f
}
