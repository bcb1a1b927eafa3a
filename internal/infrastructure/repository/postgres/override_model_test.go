package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

func TestOverrideRow_RoundTrip(t *testing.T) {
	in := feed.PlayerMatch{
		Fixture: feed.Fixture{
			ID:          "manual:milan-lazio",
			Competition: "Serie A",
			Kickoff:     time.Date(2026, 10, 5, 18, 45, 0, 0, time.UTC),
			HomeTeam:    "AC Milan",
			AwayTeam:    "Lazio",
			HomeScore:   match.IntPtr(2),
			AwayScore:   match.IntPtr(0),
			Status:      match.StatusFinished,
		},
		Team:          "AC Milan",
		Participated:  match.True,
		Started:       match.False,
		MinutesPlayed: match.IntPtr(25),
		Rating:        match.FloatPtr(6.9),
		Events: []match.Event{
			{Type: match.EventSubIn, Minute: match.IntPtr(65)},
			{Type: match.EventGoal, Minute: nil},
		},
	}

	row, err := overrideRow("milan-pulisic", in)
	if err != nil {
		t.Fatalf("to row: %v", err)
	}
	if row.Started != (sql.NullBool{Bool: false, Valid: true}) {
		t.Fatalf("expected known false started, got %+v", row.Started)
	}

	out, err := row.playerMatch()
	if err != nil {
		t.Fatalf("from row: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestOverrideRow_UnknownTriIsNull(t *testing.T) {
	row, err := overrideRow("p", feed.PlayerMatch{Fixture: feed.Fixture{ID: "f"}})
	if err != nil {
		t.Fatalf("to row: %v", err)
	}
	if row.Participated.Valid || row.Started.Valid {
		t.Fatalf("expected unknown facts to be NULL")
	}
	if row.Status != string(match.StatusFinished) {
		t.Fatalf("expected blank status to default to finished, got %s", row.Status)
	}
	if string(row.Events) != "[]" {
		t.Fatalf("expected empty events array, got %s", row.Events)
	}
}
