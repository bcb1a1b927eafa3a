package app

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchwatch/internal/config"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
	"github.com/riskibarqy/matchwatch/internal/usecase"
)

func TestNewTracker_DemoModeWithoutFeeds(t *testing.T) {
	cfg := config.Config{
		CacheDir:           t.TempDir(),
		HTTPAddr:           ":0",
		CORSAllowedOrigins: []string{"*"},
		Poll: config.PollConfig{
			LiveInterval: time.Minute,
			IdleInterval: 30 * time.Minute,
			MaxWorkers:   2,
		},
	}

	tracker, err := NewTracker(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	t.Cleanup(func() { _ = tracker.Close() })

	status := tracker.Service.Status(context.Background())
	if status.Mode != usecase.ModeDemo {
		t.Fatalf("expected demo mode, got %q", status.Mode)
	}
	if status.Players != 8 {
		t.Fatalf("expected the seeded roster, got %d players", status.Players)
	}
	if status.LastCycleAt != nil {
		t.Fatalf("expected no cycle before start")
	}

	srv, err := NewHTTPServer(cfg, tracker.Service, logging.NewNop())
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}
	if srv.Handler == nil {
		t.Fatalf("expected router to be set")
	}
}

func TestNewTracker_MissingRosterFile(t *testing.T) {
	cfg := config.Config{
		CacheDir:   t.TempDir(),
		RosterPath: t.TempDir() + "/missing.yaml",
	}
	if _, err := NewTracker(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for missing roster file")
	}
}
