package participation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/identity"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

var loose = identity.MatcherFunc(identity.PlayerNameMatches)

func minute(v int) *int { return match.IntPtr(v) }

func TestNormalize_SubInThenSubOut(t *testing.T) {
	detail := feed.MatchDetail{
		EndMinute: 90,
		Substitutions: []feed.Substitution{
			{PlayerIn: "Samuel Chukwueze", PlayerOut: "Christian Pulisic", Minute: minute(60), Side: feed.SideHome},
			{PlayerIn: "Noah Okafor", PlayerOut: "Samuel Chukwueze", Minute: minute(85), Side: feed.SideHome},
		},
	}

	got := Normalize(detail, feed.SideHome, "Samuel Chukwueze", loose)

	if got.MinutesPlayed == nil || *got.MinutesPlayed != 25 {
		t.Fatalf("expected 25 minutes, got %v", got.MinutesPlayed)
	}
	if got.Started != match.False {
		t.Fatalf("expected started=false, got %s", got.Started)
	}
	if got.Participated != match.True {
		t.Fatalf("expected participated=true, got %s", got.Participated)
	}
	want := []match.Event{
		{Type: match.EventSubIn, Minute: minute(60)},
		{Type: match.EventSubOut, Minute: minute(85)},
	}
	if diff := cmp.Diff(want, got.Events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_UnusedSubIsNotUnknown(t *testing.T) {
	withBench := feed.MatchDetail{
		EndMinute: 90,
		Home: &feed.TeamLineup{
			Team:     "AC Milan",
			Starters: []feed.LineupPlayer{{Name: "Mike Maignan"}},
			Bench:    []feed.LineupPlayer{{Name: "Lorenzo Torriani"}},
		},
	}
	unused := Normalize(withBench, feed.SideHome, "Lorenzo Torriani", loose)
	if unused.Participated != match.False {
		t.Fatalf("expected participated=false for unused sub, got %s", unused.Participated)
	}
	if unused.MinutesPlayed == nil || *unused.MinutesPlayed != 0 {
		t.Fatalf("expected 0 minutes for unused sub, got %v", unused.MinutesPlayed)
	}
	if unused.SquadRole != match.SquadBench {
		t.Fatalf("expected bench role, got %s", unused.SquadRole)
	}

	noData := Normalize(feed.MatchDetail{EndMinute: 90}, feed.SideHome, "Lorenzo Torriani", loose)
	if noData.Participated != match.Unknown || noData.Started != match.Unknown {
		t.Fatalf("expected unknown participation without data, got %+v", noData)
	}
	if noData.MinutesPlayed != nil {
		t.Fatalf("expected unknown minutes without data, got %v", *noData.MinutesPlayed)
	}
	if !noData.IsUnknown() {
		t.Fatalf("expected IsUnknown for empty detail")
	}
}

func TestNormalize_RatedBenchPlayerWithoutEvents(t *testing.T) {
	detail := feed.MatchDetail{
		EndMinute: 90,
		Home: &feed.TeamLineup{
			Team:     "AC Milan",
			Starters: []feed.LineupPlayer{{Name: "Mike Maignan"}},
			Bench:    []feed.LineupPlayer{{Name: "Samuel Chukwueze", Rating: match.FloatPtr(6.8)}},
		},
	}
	got := Normalize(detail, feed.SideHome, "Samuel Chukwueze", loose)

	want := match.Participation{
		Participated: match.True,
		Started:      match.False,
		Rating:       match.FloatPtr(6.8),
		Events:       []match.Event{},
		SquadRole:    match.SquadBench,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("participation mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_NotInSquad(t *testing.T) {
	detail := feed.MatchDetail{
		EndMinute: 90,
		Away: &feed.TeamLineup{
			Starters: []feed.LineupPlayer{{Name: "Yann Sommer"}},
			Bench:    []feed.LineupPlayer{{Name: "Josep Martínez"}},
		},
	}
	got := Normalize(detail, feed.SideAway, "Nicolò Barella", loose)
	if got.SquadRole != match.SquadAbsent {
		t.Fatalf("expected absent role, got %s", got.SquadRole)
	}
	if got.Participated != match.False {
		t.Fatalf("expected participated=false, got %s", got.Participated)
	}
}

func TestNormalize_StarterWithEvents(t *testing.T) {
	detail := feed.MatchDetail{
		EndMinute: 90,
		Away: &feed.TeamLineup{
			Starters: []feed.LineupPlayer{{Name: "Lautaro Martínez", Rating: match.FloatPtr(8.1)}},
		},
		Goals: []feed.Goal{
			{Scorer: "Lautaro Martínez", Assist: "Marcus Thuram", Minute: minute(51), Side: feed.SideAway},
			{Scorer: "Matteo Gabbia", Minute: minute(10), Side: feed.SideHome},
			{Scorer: "Lautaro Martínez", Minute: minute(77), Side: feed.SideAway, OwnGoal: true},
		},
		Bookings: []feed.Booking{
			{Player: "Lautaro Martinez", Card: feed.CardYellow, Minute: minute(30), Side: feed.SideAway},
			{Player: "Lautaro Martinez", Card: feed.CardSecondYellow, Minute: nil, Side: feed.SideAway},
		},
	}
	got := Normalize(detail, feed.SideAway, "Lautaro Martinez", loose)

	want := match.Participation{
		Participated:  match.True,
		Started:       match.True,
		MinutesPlayed: minute(90),
		Rating:        match.FloatPtr(8.1),
		Events: []match.Event{
			{Type: match.EventYellow, Minute: minute(30)},
			{Type: match.EventGoal, Minute: minute(51)},
			{Type: match.EventRed, Minute: nil},
		},
		SquadRole: match.SquadStarting,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("participation mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_EventsWithoutLineupImplyStart(t *testing.T) {
	detail := feed.MatchDetail{
		EndMinute: 90,
		Substitutions: []feed.Substitution{
			{PlayerIn: "Davide Frattesi", PlayerOut: "Hakan Çalhanoğlu", Minute: minute(70), Side: feed.SideAway},
		},
	}
	got := Normalize(detail, feed.SideAway, "Hakan Calhanoglu", loose)
	if got.Started != match.True {
		t.Fatalf("expected started=true, got %s", got.Started)
	}
	if got.MinutesPlayed == nil || *got.MinutesPlayed != 70 {
		t.Fatalf("expected 70 minutes, got %v", got.MinutesPlayed)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	detail := feed.MatchDetail{
		EndMinute: 90,
		Goals: []feed.Goal{
			{Scorer: "Rafael Leão", Minute: minute(88)},
			{Scorer: "Rafael Leão", Minute: nil},
			{Scorer: "Rafael Leão", Minute: minute(12)},
		},
	}
	first := Normalize(detail, feed.SideHome, "Rafael Leao", loose)
	second := Normalize(detail, feed.SideHome, "Rafael Leao", loose)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalize is not deterministic:\n%s", diff)
	}
	if len(first.Events) != 3 || first.Events[2].Minute != nil || *first.Events[0].Minute != 12 {
		t.Fatalf("expected minute order with unknown last, got %+v", first.Events)
	}
}
