package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// BuildMeta contains metadata about one artifact build for telemetry purposes.
type BuildMeta struct {
	Factory string // Factory identifier (required)
	Name    string // Derived artifact/cache name (optional)
	Library string // Component library grouping (optional)
}

// SpanName returns the deterministic span name for this build.
// Format: cell.build.<factory>
func (m BuildMeta) SpanName() string {
	return "cell.build." + m.Factory
}

// Tracer wraps OpenTelemetry tracing with build-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an artifact build.
	StartSpan(ctx context.Context, meta BuildMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with build metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta BuildMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("factory.id", meta.Factory),
		attribute.Bool("build.error", false), // Updated in EndSpan on error
	}

	if meta.Name != "" {
		attrs = append(attrs, attribute.String("artifact.name", meta.Name))
	}
	if meta.Library != "" {
		attrs = append(attrs, attribute.String("factory.library", meta.Library))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("build.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta BuildMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
