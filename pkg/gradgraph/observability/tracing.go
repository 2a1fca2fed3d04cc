package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the gradgraph tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("gradgraph")

// SpanManager handles trace span lifecycle for passes.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartPassSpan starts a span for one pass.
	// Returns the context with span and the span itself.
	StartPassSpan(ctx context.Context, pass, runID string, nodeCount int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartPassSpan starts a span for one pass.
func (m *otelSpanManager) StartPassSpan(ctx context.Context, pass, runID string, nodeCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "gradgraph.pass."+pass,
		trace.WithAttributes(
			attribute.String("pass", pass),
			attribute.String("run.id", runID),
			attribute.Int("graph.nodes", nodeCount),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Convenience functions that operate on the global tracer.
// These are useful for simple cases where you don't need the interface.

// StartPassSpan starts a span for one pass.
// Uses the global OTel tracer.
func StartPassSpan(ctx context.Context, pass, runID string, nodeCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "gradgraph.pass."+pass,
		trace.WithAttributes(
			attribute.String("pass", pass),
			attribute.String("run.id", runID),
			attribute.Int("graph.nodes", nodeCount),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
// Uses the same semantics as the SpanManager method.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
