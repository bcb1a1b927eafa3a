package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("matchwatch/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startUsecaseSpan only creates child spans; scheduled cycles have no parent.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if name == "" || !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func cycleSpanAttributes(result CycleResult) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("matchwatch.cycle.id", result.ID),
		attribute.String("matchwatch.cycle.mode", string(result.Mode)),
		attribute.Int("matchwatch.cycle.teams", result.Teams),
		attribute.Int("matchwatch.cycle.failures", result.Failures),
		attribute.Bool("matchwatch.cycle.has_live", result.HasLive),
	}
}

func endCycleSpan(span trace.Span, result CycleResult, err error) {
	span.SetAttributes(cycleSpanAttributes(result)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
