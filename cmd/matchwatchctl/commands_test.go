package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("run %v: %v", args, err)
	}
	return out.String()
}

func TestMatchTeam(t *testing.T) {
	cases := []struct {
		feed, roster string
		want         bool
	}{
		{"FC Internazionale Milano", "Inter", true},
		{"West Bromwich Albion", "West Ham United", false},
	}
	for _, tc := range cases {
		var got struct {
			Matches bool `json:"matches"`
		}
		if err := sonic.UnmarshalString(runCommand(t, "match-team", tc.feed, tc.roster), &got); err != nil {
			t.Fatalf("decode output: %v", err)
		}
		if got.Matches != tc.want {
			t.Fatalf("match-team %q %q: expected %v", tc.feed, tc.roster, tc.want)
		}
	}
}

func TestMatchPlayer_SquadMakesSurnameAmbiguous(t *testing.T) {
	var alone, shared struct {
		Matches bool `json:"matches"`
	}
	if err := sonic.UnmarshalString(runCommand(t, "match-player", "Sullivan", "Cavan Sullivan"), &alone); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !alone.Matches {
		t.Fatalf("expected surname match without squad context")
	}

	out := runCommand(t, "match-player", "Sullivan", "Cavan Sullivan", "--squad", "Quinn Sullivan")
	if err := sonic.UnmarshalString(out, &shared); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if shared.Matches {
		t.Fatalf("expected shared surname to stay ambiguous, got %s", out)
	}
}

func TestOverridesImport_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	doc := `overrides:
  - player: milan-pulisic
    fixture_id: manual:1
    kickoff: 2026-03-01T19:45:00Z
    home_team: AC Milan
    away_team: Lazio
    home_score: 2
    away_score: 0
    status: finished
    team: AC Milan
    participated: true
    started: true
    minutes_played: 90
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write overrides: %v", err)
	}

	out := runCommand(t, "overrides", "import", path, "--dry-run")
	if !strings.Contains(out, "1 override(s) for 1 player(s) are valid") {
		t.Fatalf("unexpected output %q", out)
	}
}
