package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := Select("player_id", "fixture_id").
		From("manual_overrides").
		Where(Eq("player_id", "milan-pulisic"), Gte("kickoff_at", since)).
		OrderBy("kickoff_at DESC", "id DESC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT player_id, fixture_id FROM manual_overrides WHERE player_id = $1 AND kickoff_at >= $2 ORDER BY kickoff_at DESC, id DESC LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "milan-pulisic" || args[1] != since {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("manual_overrides").
		Where(Eq("player_id", "inter-barella"), In("fixture_id", Strings([]string{"manual:1", "manual:2"}))).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM manual_overrides WHERE player_id = $1 AND fixture_id IN ($2, $3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != "manual:2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder_RequiresCondition(t *testing.T) {
	if _, _, err := DeleteFrom("manual_overrides").ToSQL(); err == nil {
		t.Fatalf("expected unconditional delete to be rejected")
	}
}

func TestExprAndEmptyIn(t *testing.T) {
	query, args, err := Select("id").
		From("manual_overrides").
		Where(Expr("lower(team) = lower(?)", "AC Milan"), In("player_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM manual_overrides WHERE lower(team) = lower($1) AND 1=0" {
		t.Fatalf("unexpected query %q", query)
	}
	if len(args) != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
