package gradgraph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/seljukgulcan/gradgraph/pkg/gradgraph/observability"
	"github.com/seljukgulcan/gradgraph/pkg/gradgraph/passlog"
)

// passConfig holds configuration for a single pass.
type passConfig struct {
	ctx            context.Context
	runID          string
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	recorder       passlog.Store
}

// defaultPassConfig returns the silent defaults: background context, a fresh
// run ID, no logging, no-op metrics, tracing off, no recorder.
func defaultPassConfig() passConfig {
	return passConfig{
		ctx:     context.Background(),
		runID:   uuid.New().String(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// PassOption configures a single forward or backward pass.
type PassOption func(*passConfig)

// WithContext supplies the context used for span parenting, metric export
// and recorder I/O. The pass itself is synchronous and does not observe
// cancellation. A nil ctx is ignored.
func WithContext(ctx context.Context) PassOption {
	return func(c *passConfig) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithRunID sets the identifier correlating this pass's logs, spans, metrics
// and pass records. Default: a fresh UUID per pass.
//
// Use the same run ID across a forward/backward pair to tie the two records
// together:
//
//	runID := uuid.New().String()
//	out, err := g.Forward(gradgraph.WithRunID(runID), gradgraph.WithRecorder(store))
//	err = g.Backward(gradgraph.WithRunID(runID), gradgraph.WithRecorder(store))
func WithRunID(id string) PassOption {
	return func(c *passConfig) {
		if id != "" {
			c.runID = id
		}
	}
}

// WithLogger enables structured pass logging. Default: silent.
func WithLogger(logger *slog.Logger) PassOption {
	return func(c *passConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for the pass. Default: no-op.
//
// Example:
//
//	metrics := observability.NewMetricsRecorder()
//	out, err := g.Forward(gradgraph.WithMetrics(metrics))
func WithMetrics(m observability.MetricsRecorder) PassOption {
	return func(c *passConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpans enables tracing for the pass using the given span manager.
func WithSpans(s observability.SpanManager) PassOption {
	return func(c *passConfig) {
		if s != nil {
			c.spans = s
			c.tracingEnabled = true
		}
	}
}

// WithRecorder persists the pass outcome to a passlog store: a forward pass
// records the output value and the named leaf inputs, a backward pass
// additionally records the gradients of named nodes. A failed save fails the
// pass.
func WithRecorder(store passlog.Store) PassOption {
	return func(c *passConfig) {
		c.recorder = store
	}
}
