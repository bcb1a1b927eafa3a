package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/matchwatch/internal/usecase"
)

// envelope wraps every body the API writes. Exactly one of Data and Error is set.
type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
	Meta  meta       `json:"meta"`
}

type meta struct {
	ServedAt time.Time `json:"served_at"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorMapping struct {
	target error
	status int
	reason string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{target: usecase.ErrInvalidInput, status: http.StatusBadRequest, reason: "invalid_input"},
	{target: usecase.ErrNotFound, status: http.StatusNotFound, reason: "not_found"},
	{target: usecase.ErrUnauthorized, status: http.StatusUnauthorized, reason: "unauthorized"},
	{target: usecase.ErrDependencyUnavailable, status: http.StatusServiceUnavailable, reason: "feed_unavailable"},
	{target: context.DeadlineExceeded, status: http.StatusGatewayTimeout, reason: "cycle_timeout"},
	{target: context.Canceled, status: http.StatusServiceUnavailable, reason: "canceled"},
}

var servedAt = func() time.Time { return time.Now().UTC() }

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body envelope) {
	body.Meta.ServedAt = servedAt()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(body)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, envelope{Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, reason := mapError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Storage and feed internals stay in the logs.
		message = http.StatusText(status)
	}
	writeJSON(ctx, w, status, envelope{Error: &errorBody{Code: status, Reason: reason, Message: message}})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeJSON(ctx, w, http.StatusInternalServerError, envelope{Error: &errorBody{
		Code:    http.StatusInternalServerError,
		Reason:  "internal",
		Message: http.StatusText(http.StatusInternalServerError),
	}})
}

func mapError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.reason
		}
	}
	return http.StatusInternalServerError, "internal"
}
