package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records gradgraph metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPass records a completed pass with its kind ("forward" or
	// "backward"), duration, and error status.
	RecordPass(ctx context.Context, pass string, duration time.Duration, err error)

	// RecordNodesEvaluated records how many nodes a pass visited.
	RecordNodesEvaluated(ctx context.Context, count int)

	// RecordGraphFrozen records that a graph's order was computed, with its
	// node count.
	RecordGraphFrozen(ctx context.Context, nodeCount int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	passes         metric.Int64Counter
	passLatency    metric.Float64Histogram
	passErrors     metric.Int64Counter
	nodesEvaluated metric.Int64Counter
	graphsFrozen   metric.Int64Counter
	graphSize      metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("gradgraph")

	passes, err := meter.Int64Counter("gradgraph.pass.count",
		metric.WithDescription("Number of passes run"),
	)
	if err != nil {
		return nil, err
	}

	passLatency, err := meter.Float64Histogram("gradgraph.pass.latency_ms",
		metric.WithDescription("Pass latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	passErrors, err := meter.Int64Counter("gradgraph.pass.errors",
		metric.WithDescription("Number of failed passes"),
	)
	if err != nil {
		return nil, err
	}

	nodesEvaluated, err := meter.Int64Counter("gradgraph.nodes.evaluated",
		metric.WithDescription("Number of nodes visited by passes"),
	)
	if err != nil {
		return nil, err
	}

	graphsFrozen, err := meter.Int64Counter("gradgraph.graph.frozen",
		metric.WithDescription("Number of graphs whose order was computed"),
	)
	if err != nil {
		return nil, err
	}

	graphSize, err := meter.Int64Histogram("gradgraph.graph.size",
		metric.WithDescription("Node count of graphs at freeze time"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		passes:         passes,
		passLatency:    passLatency,
		passErrors:     passErrors,
		nodesEvaluated: nodesEvaluated,
		graphsFrozen:   graphsFrozen,
		graphSize:      graphSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordPass records a completed pass.
func (m *otelMetrics) RecordPass(ctx context.Context, pass string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("pass", pass),
		attribute.Bool("success", err == nil),
	}

	m.passes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.passLatency.Record(ctx, float64(duration.Microseconds())/1000.0,
		metric.WithAttributes(attribute.String("pass", pass)))

	if err != nil {
		m.passErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("pass", pass)))
	}
}

// RecordNodesEvaluated records how many nodes a pass visited.
func (m *otelMetrics) RecordNodesEvaluated(ctx context.Context, count int) {
	if count <= 0 {
		return
	}
	m.nodesEvaluated.Add(ctx, int64(count))
}

// RecordGraphFrozen records an order computation.
func (m *otelMetrics) RecordGraphFrozen(ctx context.Context, nodeCount int) {
	m.graphsFrozen.Add(ctx, 1)
	m.graphSize.Record(ctx, int64(nodeCount))
}
