/*
Package expr compiles arithmetic expressions into computation graph nodes.

# Overview

expr parses a source string with the HCL expression syntax and registers an
equivalent node structure on a gradgraph.Graph. The resulting root node
behaves exactly like one built by hand with the Graph builder methods:
forward evaluation and backward differentiation both work through it.

	g := gradgraph.New()
	loss, err := expr.Build(g, "d * (a + b * c)")
	if err != nil {
	    log.Fatal(err)
	}

	g.SetValues(map[string]float64{"a": 5, "b": 3, "c": 2, "d": 3})
	result, _ := g.Forward() // 33

# Supported Syntax

	<expr> := <expr> ('+' | '-' | '*' | '/') <expr>
	        | '-' <expr>
	        | '(' <expr> ')'
	        | <name> '(' <expr> {',' <expr>} ')'
	        | number
	        | identifier

Operator precedence and associativity follow HCL, which matches conventional
arithmetic: unary minus binds tightest, then '*' and '/', then '+' and '-'.

# Identifiers

An identifier binds to the named node already registered on the graph, of any
kind, so expressions can reference and extend subgraphs built earlier. An
unknown identifier creates a new Variable with that name, to be bound later
with SetValue or SetValues.

# Function Calls

Function names resolve through the operation registry. The built-in
operations (add, sub, mul, div, neg, exp, log) are always available;
operations added with gradgraph.RegisterOp become callable immediately:

	gradgraph.RegisterOp(gradgraph.NewOp("sqr", 1,
	    func(in []float64) float64 { return in[0] * in[0] },
	    func(in []float64, wrt int) float64 { return 2 * in[0] },
	))

	y, err := expr.Build(g, "sqr(x) + 1")

# Errors

Parse failures return the HCL diagnostics. Constructs with no graph
equivalent (strings, comparisons, conditionals, attribute access), unknown
functions, and arity mismatches each return a *BuildError carrying the
source range of the offending construct; multiple problems are joined into
one error. Validation runs before any node is registered, so a failed Build
leaves the graph unchanged.
*/
package expr
