/*
Package gradgraph provides reverse-mode automatic differentiation over scalar
computation graphs.

# Overview

gradgraph is a Go library for building directed acyclic graphs of scalar
operations, evaluating them (forward pass), and propagating derivatives of
the final result back to every node through the chain rule (backward pass).
Nodes are created through builder methods on a Graph; the first forward pass
computes the topological order once and freezes the node set, after which
leaf values can be reassigned and passes repeated indefinitely.

The library provides:
  - Chainable node construction with named leaves
  - One-time topological ordering with cycle detection
  - Derivative accumulation for nodes feeding multiple consumers
  - Custom differentiable operations via the Op interface
  - An expression compiler, pass recording, and OpenTelemetry integration

# Basic Usage

Build a graph, assign leaf values, then run passes:

	g := gradgraph.New()
	a := g.Variable("a").SetValue(5)
	b := g.Variable("b").SetValue(3)
	c := g.Variable("c").SetValue(2)
	d := g.Variable("d").SetValue(3)

	j := g.Mul(d, g.Add(a, g.Mul(b, c))) // J = d * (a + b*c)

	result, err := g.Forward()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(result) // 33

	if err := g.Backward(); err != nil {
	    log.Fatal(err)
	}
	da, _ := a.Derivative() // dJ/da = 3
	db, _ := b.Derivative() // dJ/db = 6

After the backward pass every node carries the derivative of the forward
result with respect to itself: j.Derivative() is 1, and leaves that feed
several operations accumulate one contribution per consumer.

# Repeated Evaluation

A frozen graph stays usable: SetValue and SetValues rebind leaves between
passes, so gradient-descent loops run forward and backward repeatedly on one
graph:

	x := g.Variable("x").SetValue(4)
	loss := g.Mul(x, x)

	for i := 0; i < 100; i++ {
	    if _, err := g.Forward(); err != nil {
	        return err
	    }
	    if err := g.Backward(); err != nil {
	        return err
	    }
	    dx, _ := x.Derivative()
	    v, _ := x.Value()
	    x.SetValue(v - 0.1*dx)
	}

# Expressions

The expr subpackage compiles arithmetic source strings into graph nodes, so
graph structure can come from configuration instead of code:

	root, err := expr.Build(g, "d * (a + b * c)")

# Custom Operations

Define an operation by its evaluation rule and partial-derivative rule, then
apply it directly or register it for the expression compiler:

	sqr := gradgraph.NewOp("sqr", 1,
	    func(in []float64) float64 { return in[0] * in[0] },
	    func(in []float64, wrt int) float64 { return 2 * in[0] },
	)
	y := g.Apply(sqr, x)

	gradgraph.RegisterOp(sqr) // now expr.Build understands "sqr(x)"

# Pass Recording

Record pass results durably and restore them later:

	store, err := passlog.NewSQLiteStore("./passes.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	result, err := g.Forward(
	    gradgraph.WithRecorder(store),
	    gradgraph.WithRunID("run-123"))

	// Later, in a fresh process:
	err = g.RestoreRun(context.Background(), store, "run-123")

Forward passes record the inputs and the result; backward passes also record
the leaf gradients. Restore rebinds the recorded inputs onto the graph's
named leaves.

# Observability

Enable logging, metrics, and tracing per pass:

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	result, err := g.Forward(
	    gradgraph.WithLogger(logger),
	    gradgraph.WithMetrics(observability.NewMetricsRecorder()),
	    gradgraph.WithSpans(observability.NewSpanManager()),
	    gradgraph.WithRunID("run-123"))

Logs include structured fields: run_id, pass, nodes, root, duration.
OpenTelemetry metrics: gradgraph.pass.count, gradgraph.pass.latency_ms, etc.
OpenTelemetry tracing: one gradgraph.pass.forward or gradgraph.pass.backward
span per pass. Everything is opt-in; passes run silent by default.

# Error Handling

Pass failures identify the node responsible:

	result, err := g.Forward()
	var nodeErr *gradgraph.NodeError
	if errors.As(err, &nodeErr) {
	    log.Printf("node %s failed during %s: %v", nodeErr.Node, nodeErr.Op, nodeErr.Err)
	}

	var panicErr *gradgraph.PanicError
	if errors.As(err, &panicErr) {
	    log.Printf("node %s panicked: %v\n%s", panicErr.Node, panicErr.Value, panicErr.Stack)
	}

Panics in Op implementations are recovered and converted to PanicError with
a stack trace. Sentinel errors (ErrCycleDetected, ErrUnsetInput, and the
rest) are matchable with errors.Is through any wrapping.

Misusing the builder is a programming error and panics rather than returning
an error: constructing nodes on a frozen graph, reusing a registered name,
mixing nodes across graphs, or applying an operation with the wrong number
of inputs. The panic values wrap the corresponding sentinels.

# Thread Safety

  - Graph is confined to a single goroutine: building, passes, and reads
    are strictly sequential
  - Distinct Graphs are fully independent and may run concurrently
  - passlog.Store implementations are safe for concurrent use
  - Registered operations are shared process-wide and safe to look up
    concurrently

# Subpackages

  - config: Experiment-file loading (YAML, JSON) with typed accessors
  - expr: Compiles arithmetic expressions into graph nodes
  - observability: Logging, metrics, and tracing helpers
  - passlog: Pass-result storage (memory, SQLite)
  - registry: Generic keyed registry backing the operation table
*/
package gradgraph
