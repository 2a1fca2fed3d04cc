package gradgraph

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/seljukgulcan/gradgraph/pkg/gradgraph/observability"
	"go.opentelemetry.io/otel/trace"
)

// Forward evaluates every node in topological order and returns the value of
// the order's final node, the designated graph output.
//
// The first call computes the order and freezes the node set; later calls
// reuse it. Each pass overwrites node values, so leaves may be reassigned
// between calls and the graph re-evaluated indefinitely. With unchanged leaf
// values the result is identical across calls.
//
// Pass flow:
//  1. Compute the topological order if absent (freezes the graph)
//  2. Evaluate each node in order; leaves keep their assigned value
//  3. Return the final node's value
//
// Fails with ErrEmptyGraph, with a NodeError wrapping ErrCycleDetected, or
// with a NodeError wrapping ErrUnsetInput when an operation reads a value
// that was never assigned.
//
// Example:
//
//	out, err := g.Forward(
//	    gradgraph.WithLogger(logger),
//	    gradgraph.WithRecorder(store),
//	)
func (g *Graph) Forward(opts ...PassOption) (result float64, passErr error) {
	cfg := defaultPassConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	wasFrozen := g.Frozen()
	observability.LogPassStart(cfg.logger, cfg.runID, "forward", g.Len())

	ctx := cfg.ctx
	var span trace.Span
	if cfg.tracingEnabled {
		ctx, span = cfg.spans.StartPassSpan(ctx, "forward", cfg.runID, g.Len())
		defer func() {
			cfg.spans.EndSpanWithError(span, passErr)
		}()
	}

	var evaluated int
	result, evaluated, passErr = g.runForward()

	if !wasFrozen && g.Frozen() {
		cfg.metrics.RecordGraphFrozen(ctx, g.Len())
	}

	duration := time.Since(start)
	cfg.metrics.RecordPass(ctx, "forward", duration, passErr)
	cfg.metrics.RecordNodesEvaluated(ctx, evaluated)

	if passErr != nil {
		observability.LogPassError(cfg.logger, cfg.runID, "forward", passErr, duration)
		return 0, passErr
	}
	observability.LogPassComplete(cfg.logger, cfg.runID, "forward", result, evaluated, duration)

	if cfg.recorder != nil {
		if err := g.recordPass(ctx, &cfg, "forward", result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Backward propagates derivatives from the graph output back to every node.
//
// Precondition: a forward pass has completed; otherwise Backward fails with
// ErrNoForwardPass. The pass resets every derivative to 0, seeds the final
// node's derivative with 1, then walks the order in reverse applying the
// chain-rule step to each operation node: every input's derivative
// accumulates the operation's partial for that position times the
// operation's own derivative. Contributions from multiple consumers sum.
//
// Leaves never have the step invoked on them; they receive derivatives
// purely as inputs of consuming operations. After the pass every node's
// derivative is defined — 0 for nodes that do not influence the output.
// Repeated calls yield identical derivatives.
func (g *Graph) Backward(opts ...PassOption) (passErr error) {
	cfg := defaultPassConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	observability.LogPassStart(cfg.logger, cfg.runID, "backward", g.Len())

	ctx := cfg.ctx
	var span trace.Span
	if cfg.tracingEnabled {
		ctx, span = cfg.spans.StartPassSpan(ctx, "backward", cfg.runID, g.Len())
		defer func() {
			cfg.spans.EndSpanWithError(span, passErr)
		}()
	}

	var stepped int
	stepped, passErr = g.runBackward()

	duration := time.Since(start)
	cfg.metrics.RecordPass(ctx, "backward", duration, passErr)
	cfg.metrics.RecordNodesEvaluated(ctx, stepped)

	if passErr != nil {
		observability.LogPassError(cfg.logger, cfg.runID, "backward", passErr, duration)
		return passErr
	}
	root, _ := g.Root()
	rootValue, _ := root.Value()
	observability.LogPassComplete(cfg.logger, cfg.runID, "backward", rootValue, stepped, duration)

	if cfg.recorder != nil {
		if err := g.recordPass(ctx, &cfg, "backward", rootValue); err != nil {
			return err
		}
	}
	return nil
}

// runForward drives the evaluation loop. It is free of observability so the
// pass semantics stay testable in isolation.
func (g *Graph) runForward() (float64, int, error) {
	if err := g.ensureOrder(); err != nil {
		return 0, 0, err
	}

	evaluated := 0
	for _, id := range g.order {
		rec := &g.nodes[id]
		if rec.kind == KindOperation {
			if err := g.evalOp(id, rec); err != nil {
				return 0, evaluated, err
			}
		}
		evaluated++
	}

	rootID := g.order[len(g.order)-1]
	root := &g.nodes[rootID]
	if !root.valueSet {
		// Only possible when the root is a leaf that was never assigned.
		return 0, evaluated, &NodeError{Node: root.ref(rootID), Op: "forward", Err: ErrUnsetInput}
	}
	g.forwarded = true
	return root.value, evaluated, nil
}

// evalOp computes one operation node's value from its inputs. A panic from a
// user-supplied Op is recovered into a PanicError rather than crashing the
// pass.
func (g *Graph) evalOp(id NodeID, rec *node) (err error) {
	var buf [2]float64
	in := buf[:len(rec.inputs)]
	for i, inID := range rec.inputs {
		inRec := &g.nodes[inID]
		if !inRec.valueSet {
			return &NodeError{
				Node: rec.ref(id),
				Op:   "forward",
				Err:  fmt.Errorf("input %s: %w", inRec.ref(inID), ErrUnsetInput),
			}
		}
		in[i] = inRec.value
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Node: rec.ref(id), Value: r, Stack: string(debug.Stack())}
		}
	}()

	rec.value = rec.op.Apply(in)
	rec.valueSet = true
	return nil
}

// runBackward drives the chain-rule loop, reverse topological order.
func (g *Graph) runBackward() (int, error) {
	if !g.forwarded {
		return 0, ErrNoForwardPass
	}

	for i := range g.nodes {
		g.nodes[i].deriv = 0
		g.nodes[i].derivSet = true
	}
	g.nodes[g.order[len(g.order)-1]].deriv = 1

	stepped := 0
	for i := len(g.order) - 1; i >= 0; i-- {
		id := g.order[i]
		rec := &g.nodes[id]
		if rec.kind != KindOperation {
			continue
		}
		if err := g.stepBackward(id, rec); err != nil {
			return stepped, err
		}
		stepped++
	}
	return stepped, nil
}

// stepBackward applies the shared chain-rule step for one operation node:
// inputs[i].derivative += Partial(in, i) * node.derivative. By the time a
// node is reached in the reverse walk all of its consumers have been
// processed, so its own derivative is final.
func (g *Graph) stepBackward(id NodeID, rec *node) (err error) {
	var buf [2]float64
	in := buf[:len(rec.inputs)]
	for i, inID := range rec.inputs {
		in[i] = g.nodes[inID].value
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Node: rec.ref(id), Value: r, Stack: string(debug.Stack())}
		}
	}()

	for i, inID := range rec.inputs {
		g.nodes[inID].deriv += rec.op.Partial(in, i) * rec.deriv
	}
	return nil
}
