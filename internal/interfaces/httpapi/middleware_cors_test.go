package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

const scoreboardOrigin = "https://scoreboard.matchwatch.dev"

func TestCORS_TrackerRoutes(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		method     string
		path       string
		origin     string
		wantStatus int
		wantOrigin string
		wantVary   bool
	}{
		{
			name:       "scoreboard reads a record",
			origins:    []string{" " + scoreboardOrigin + " ", ""},
			method:     http.MethodGet,
			path:       "/v1/records/milan-pulisic",
			origin:     scoreboardOrigin,
			wantStatus: http.StatusOK,
			wantOrigin: scoreboardOrigin,
			wantVary:   true,
		},
		{
			name:       "transfer preflight skips the token guard",
			origins:    []string{scoreboardOrigin},
			method:     http.MethodOptions,
			path:       "/v1/internal/players/milan-musah/team",
			origin:     scoreboardOrigin,
			wantStatus: http.StatusNoContent,
			wantOrigin: scoreboardOrigin,
			wantVary:   true,
		},
		{
			name:       "wildcard answers any origin",
			origins:    []string{"*"},
			method:     http.MethodOptions,
			path:       "/v1/internal/cycles",
			origin:     "https://ops.example.org",
			wantStatus: http.StatusNoContent,
			wantOrigin: "*",
		},
		{
			name:       "unknown origin gets no grant",
			origins:    []string{scoreboardOrigin},
			method:     http.MethodGet,
			path:       "/v1/status",
			origin:     "https://scoreboard.matchwatch.dev.evil.example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "same-origin request untouched",
			origins:    []string{"*"},
			method:     http.MethodGet,
			path:       "/v1/records",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(NewHandler(testTracker(), logging.NewNop()), logging.NewNop(), tt.origins, "job-secret")

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
				req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			h := rec.Header()
			if got := h.Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("unexpected Access-Control-Allow-Origin %q", got)
			}
			if got := h.Get("Vary") == "Origin"; got != tt.wantVary {
				t.Fatalf("unexpected Vary header %q", h.Get("Vary"))
			}
			if tt.wantOrigin == "" {
				if h.Get("Access-Control-Allow-Headers") != "" {
					t.Fatalf("no CORS headers expected without a grant")
				}
				return
			}
			if !strings.Contains(h.Get("Access-Control-Allow-Methods"), http.MethodPut) {
				t.Fatalf("transfer route needs PUT, got %q", h.Get("Access-Control-Allow-Methods"))
			}
			if !strings.Contains(h.Get("Access-Control-Allow-Headers"), internalJobTokenHeader) {
				t.Fatalf("job token header must be allowed, got %q", h.Get("Access-Control-Allow-Headers"))
			}
		})
	}
}
