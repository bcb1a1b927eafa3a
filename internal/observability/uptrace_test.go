package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/matchwatch/internal/config"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "matchwatch",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := InitUptrace(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestStartPprofServer_Disabled(t *testing.T) {
	srv, err := StartPprofServer(config.Config{PprofEnabled: false}, logging.NewNop())
	if err != nil || srv != nil {
		t.Fatalf("expected no server when disabled, got srv=%v err=%v", srv, err)
	}
	if err := StopPprofServer(nil, logging.NewNop(), 0); err != nil {
		t.Fatalf("stop nil server: %v", err)
	}
}

func TestStartPprofServer_RejectsAPIAddress(t *testing.T) {
	cfg := config.Config{PprofEnabled: true, PprofAddr: ":8080", HTTPAddr: ":8080"}
	srv, err := StartPprofServer(cfg, logging.NewNop())
	if err == nil || srv != nil {
		t.Fatalf("expected an error for a shared address, got srv=%v err=%v", srv, err)
	}
}

func TestPprofMux_ServesIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	newPprofMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from pprof index, got %d", rec.Code)
	}
}

func TestTrackerAttributes(t *testing.T) {
	cfg := config.Config{}
	cfg.Poll.LiveInterval = time.Minute
	attrs := trackerAttributes(cfg)
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Value.AsString() != "demo" {
		t.Fatalf("expected demo mode without feeds, got %s", attrs[0].Value.AsString())
	}
	if attrs[2].Value.AsInt64() != 60 {
		t.Fatalf("expected live interval in seconds, got %d", attrs[2].Value.AsInt64())
	}

	cfg.SportMonks.Enabled = true
	if got := trackerMode(cfg); got != "live" {
		t.Fatalf("expected live mode with a primary feed, got %s", got)
	}
}
