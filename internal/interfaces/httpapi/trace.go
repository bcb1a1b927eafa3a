package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("matchwatch/internal/interfaces/httpapi")

// startHandlerSpan opens a child of the otelhttp request span, tagged with the player the route
// addresses. Filtered routes such as /healthz have no parent and get no span.
func startHandlerSpan(r *http.Request, handler string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return apiTracer.Start(ctx, "httpapi.Handler."+handler, trace.WithAttributes(handlerAttributes(r)...))
}

func handlerAttributes(r *http.Request) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if id := r.PathValue("playerID"); id != "" {
		attrs = append(attrs, attribute.String("matchwatch.player_id", id))
	}
	if status := r.URL.Query().Get("status"); status != "" {
		attrs = append(attrs, attribute.String("matchwatch.filter.status", status))
	}
	return attrs
}
