package app

import (
	"strings"
	"testing"
)

func TestFormatDBQueryForTrace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses whitespace",
			in:   "SELECT player_id\n\tFROM manual_overrides\n  WHERE player_id = $1;",
			want: "SELECT player_id FROM manual_overrides WHERE player_id = $1",
		},
		{
			name: "folds long placeholder lists",
			in:   "DELETE FROM manual_overrides WHERE player_id = $1 AND fixture_id IN ($2, $3, $4, $5, $6)",
			want: "DELETE FROM manual_overrides WHERE player_id = $1 AND fixture_id IN ($2, ...)",
		},
		{
			name: "keeps short lists",
			in:   "SELECT 1 WHERE fixture_id IN ($1, $2)",
			want: "SELECT 1 WHERE fixture_id IN ($1, $2)",
		},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDBQueryForTrace(tt.in); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDBQueryForTrace_Truncates(t *testing.T) {
	got := formatDBQueryForTrace("SELECT " + strings.Repeat("x", 2*maxTracedQueryLength))
	if len(got) != maxTracedQueryLength+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated query, got length %d", len(got))
	}
}
