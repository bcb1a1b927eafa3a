package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestHandlerAttributes(t *testing.T) {
	var got []attribute.KeyValue
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/records/{playerID}", func(_ http.ResponseWriter, r *http.Request) {
		got = handlerAttributes(r)
	})
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/records/inter-barella?status=live", nil))

	if len(got) != 2 {
		t.Fatalf("expected 2 attributes, got %v", got)
	}
	if got[0].Key != "matchwatch.player_id" || got[0].Value.AsString() != "inter-barella" {
		t.Fatalf("unexpected player attribute %v", got[0])
	}
	if got[1].Value.AsString() != "live" {
		t.Fatalf("unexpected status attribute %v", got[1])
	}
}

func TestStartHandlerSpan_NoParent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	ctx, span := startHandlerSpan(req, "Healthz")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Fatalf("expected no span without a parent request span")
	}
	if ctx != req.Context() {
		t.Fatalf("expected the request context to be returned unchanged")
	}
}
