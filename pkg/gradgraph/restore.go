package gradgraph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/seljukgulcan/gradgraph/pkg/gradgraph/observability"
	"github.com/seljukgulcan/gradgraph/pkg/gradgraph/passlog"
)

// SetValues assigns values to named leaves in bulk. It either applies every
// assignment or, if any name is unknown (ErrNodeNotFound) or targets an
// operation node (ErrNotLeaf), applies none and reports all failures joined.
//
// Names are processed in sorted order, so failure messages are
// deterministic.
func (g *Graph) SetValues(values map[string]float64) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	ids := make([]NodeID, len(names))
	var errs []error
	for i, name := range names {
		id, ok := g.byName[name]
		if !ok {
			errs = append(errs, fmt.Errorf("set %q: %w", name, ErrNodeNotFound))
			continue
		}
		if g.nodes[id].kind == KindOperation {
			errs = append(errs, fmt.Errorf("set %q: %w", name, ErrNotLeaf))
			continue
		}
		ids[i] = id
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for i, name := range names {
		rec := &g.nodes[ids[i]]
		rec.value = values[name]
		rec.valueSet = true
	}
	return nil
}

// Restore applies the named leaf inputs recorded in a pass entry, so a
// recorded run can be reproduced by a subsequent Forward.
func (g *Graph) Restore(entry passlog.Entry) error {
	if len(entry.Inputs) == 0 {
		return nil
	}
	return g.SetValues(entry.Inputs)
}

// RestoreRun loads the pass record for runID from the store and applies its
// inputs. The forward record is preferred; if only a backward record exists
// its inputs serve equally.
//
// Example:
//
//	// Reproduce an earlier experiment by run ID.
//	if err := g.RestoreRun(ctx, store, "run-123"); err != nil {
//	    return err
//	}
//	out, err := g.Forward()
func (g *Graph) RestoreRun(ctx context.Context, store passlog.Store, runID string) error {
	entry, err := store.Get(ctx, runID, passlog.KindForward)
	if errors.Is(err, passlog.ErrNotFound) {
		entry, err = store.Get(ctx, runID, passlog.KindBackward)
	}
	if err != nil {
		return fmt.Errorf("load pass record %s: %w", runID, err)
	}
	return g.Restore(entry)
}

// recordPass persists the outcome of a completed pass to the configured
// recorder.
func (g *Graph) recordPass(ctx context.Context, cfg *passConfig, kind string, root float64) error {
	entry := passlog.Entry{
		RunID:     cfg.runID,
		Kind:      passlog.Kind(kind),
		Root:      root,
		Inputs:    g.namedLeafValues(),
		CreatedAt: time.Now().UTC(),
	}
	if entry.Kind == passlog.KindBackward {
		entry.Gradients = g.namedGradients()
	}

	if err := cfg.recorder.Save(ctx, entry); err != nil {
		observability.LogRecordError(cfg.logger, cfg.runID, kind, err)
		return fmt.Errorf("record %s pass: %w", kind, err)
	}
	return nil
}

// namedLeafValues snapshots the values of all named leaves that have one.
func (g *Graph) namedLeafValues() map[string]float64 {
	out := make(map[string]float64)
	for name, id := range g.byName {
		rec := &g.nodes[id]
		if rec.kind != KindOperation && rec.valueSet {
			out[name] = rec.value
		}
	}
	return out
}

// namedGradients snapshots the derivatives of all named nodes.
func (g *Graph) namedGradients() map[string]float64 {
	out := make(map[string]float64)
	for name, id := range g.byName {
		rec := &g.nodes[id]
		if rec.derivSet {
			out[name] = rec.deriv
		}
	}
	return out
}
