package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

const sampleRoster = `
leagues:
  - id: ita-serie-a
    name: Serie A
    timezone: Europe/Rome
    primary_league_id: 384
teams:
  - name: AC Milan
    league: ita-serie-a
    primary_id: 113
    secondary_id: 8564
players:
  - id: milan-pulisic
    name: Christian Pulisic
    team: AC Milan
    league: ita-serie-a
    secondary_id: 422685
`

func TestParseRoster(t *testing.T) {
	r, err := ParseRoster(context.Background(), []byte(sampleRoster))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(r.Players) != 1 || r.Players[0].SecondaryID != 422685 {
		t.Fatalf("unexpected players %+v", r.Players)
	}
	if r.Leagues[0].Location().String() != "Europe/Rome" {
		t.Fatalf("unexpected location %s", r.Leagues[0].Location())
	}
	if r.Teams[0].PrimaryID != 113 {
		t.Fatalf("unexpected team %+v", r.Teams[0])
	}
}

func TestParseRoster_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "no players", doc: "leagues:\n  - id: x\n"},
		{name: "bad timezone", doc: "leagues:\n  - id: x\n    timezone: Mars/Olympus\nplayers:\n  - id: p\n    name: P\n    team: T\n"},
		{name: "unknown league", doc: "leagues:\n  - id: x\nplayers:\n  - id: p\n    name: P\n    team: T\n    league: y\n"},
		{name: "duplicate player", doc: "leagues:\n  - id: x\nplayers:\n  - id: p\n    name: P\n    team: T\n  - id: p\n    name: Q\n    team: T\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseRoster(context.Background(), []byte(tc.doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

const sampleOverrides = `
overrides:
  - player: milan-pulisic
    fixture_id: manual:milan-lazio
    kickoff: 2026-10-05T18:45:00Z
    competition: Serie A
    home_team: AC Milan
    away_team: Lazio
    home_score: 2
    away_score: 0
    team: AC Milan
    participated: true
    started: true
    minutes_played: 90
    rating: 7.4
    events:
      - type: goal
        minute: 34
  - player: milan-pulisic
    fixture_id: manual:como-milan
    kickoff: 2026-10-12T16:00:00Z
    home_team: Como
    away_team: AC Milan
    team: AC Milan
    status: FT
    on_bench: true
    participated: false
`

func TestOverridesSource_LoadManualOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	if err := os.WriteFile(path, []byte(sampleOverrides), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewOverridesSource(path).LoadManualOverrides(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	items := got["milan-pulisic"]
	if len(items) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(items))
	}
	if items[0].Fixture.ID != "manual:como-milan" {
		t.Fatalf("expected most recent first, got %s", items[0].Fixture.ID)
	}
	if items[0].Participated != match.False || !items[0].OnBench {
		t.Fatalf("unexpected bench entry %+v", items[0])
	}
	older := items[1]
	if older.Fixture.Status != match.StatusFinished {
		t.Fatalf("expected blank status to mean finished, got %s", older.Fixture.Status)
	}
	if !older.Fixture.Kickoff.Equal(time.Date(2026, 10, 5, 18, 45, 0, 0, time.UTC)) {
		t.Fatalf("unexpected kickoff %v", older.Fixture.Kickoff)
	}
	if len(older.Events) != 1 || older.Events[0].Type != match.EventGoal {
		t.Fatalf("unexpected events %+v", older.Events)
	}
}

func TestOverridesSource_MissingFileIsEmpty(t *testing.T) {
	got, err := NewOverridesSource(filepath.Join(t.TempDir(), "none.yaml")).LoadManualOverrides(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no overrides, got %d", len(got))
	}
}

func TestParseOverrides_RejectsUnknownEvent(t *testing.T) {
	doc := strings.Replace(sampleOverrides, "type: goal", "type: corner", 1)
	if _, err := ParseOverrides(context.Background(), []byte(doc)); err == nil {
		t.Fatalf("expected validation error")
	}
}
