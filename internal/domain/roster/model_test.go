package roster

import (
	"strings"
	"testing"
)

func TestRosterValidate(t *testing.T) {
	base := Roster{
		Leagues: []League{{ID: "serie-a", Timezone: "Europe/Rome", PrimaryLeagueID: 384}},
		Players: []Player{{ID: "p1", Name: "Christian Pulisic", Team: "AC Milan", League: "serie-a"}},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := base
	dup.Players = append(append([]Player{}, base.Players...), Player{ID: "p1", Name: "Other", Team: "Inter"})
	if err := dup.Validate(); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}

	unknownLeague := base
	unknownLeague.Players = []Player{{ID: "p2", Name: "Yunus Musah", Team: "AC Milan", League: "mls"}}
	if err := unknownLeague.Validate(); err == nil {
		t.Fatalf("expected unknown league error")
	}

	badZone := Roster{Leagues: []League{{ID: "x", Timezone: "Mars/Olympus"}}}
	if err := badZone.Validate(); err == nil {
		t.Fatalf("expected timezone error")
	}
}

func TestLeagueLocation_FallsBackToUTC(t *testing.T) {
	if loc := (League{}).Location(); loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %s", loc)
	}
	if loc := (League{Timezone: "Europe/Rome"}).Location(); loc.String() != "Europe/Rome" {
		t.Fatalf("expected Europe/Rome, got %s", loc)
	}
}
