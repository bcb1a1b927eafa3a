package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	crerr "github.com/cockroachdb/errors"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "wrapped transient", err: crerr.Wrapf(ErrTransient, "fotmob status=503"), want: true},
		{name: "fmt wrapped block", err: fmt.Errorf("match page: %w", ErrBlocked), want: true},
		{name: "deadline", err: fmt.Errorf("get: %w", context.DeadlineExceeded), want: true},
		{name: "unsupported", err: ErrUnsupported, want: false},
		{name: "plain", err: errors.New("decode payload"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Fatalf("IsTransient(%v)=%v want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCacheBypass(t *testing.T) {
	ctx := context.Background()
	if CacheBypassed(ctx) {
		t.Fatalf("plain context must not bypass")
	}
	if !CacheBypassed(WithCacheBypass(ctx)) {
		t.Fatalf("expected bypass flag")
	}
}

func TestLineupSnapshotDetail_PlacesLineupOnSide(t *testing.T) {
	snapshot := LineupSnapshot{
		FixtureID: "fotmob:4193490",
		Lineup: TeamLineup{
			Team:     "AC Milan",
			Starters: []LineupPlayer{{Name: "Mike Maignan"}},
		},
	}
	detail := snapshot.Detail(Fixture{ID: "fotmob:4193490"}, SideAway, 90)
	if detail.Home != nil {
		t.Fatalf("expected home lineup to stay empty")
	}
	if detail.Away == nil || detail.Away.Team != "AC Milan" {
		t.Fatalf("expected away lineup from snapshot")
	}
	if !detail.HasLineups() {
		t.Fatalf("expected detail to report lineups")
	}
}
