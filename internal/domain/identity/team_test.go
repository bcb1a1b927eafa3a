package identity

import "testing"

func TestTeamMatches(t *testing.T) {
	tests := []struct {
		feed   string
		roster string
		want   bool
	}{
		{feed: "West Bromwich Albion", roster: "West Ham", want: false},
		{feed: "West Ham FC", roster: "West Ham", want: true},
		{feed: "1. FC Köln", roster: "FC Koln", want: true},
		{feed: "AC Milan", roster: "Milan", want: true},
		{feed: "Inter", roster: "Milan", want: false},
		{feed: "Internazionale", roster: "Inter", want: true},
		{feed: "Borussia Mönchengladbach", roster: "Borussia Dortmund", want: false},
		{feed: "Borussia Dortmund", roster: "Borussia Dortmund", want: true},
		{feed: "Arsenal FC", roster: "Arsenal", want: true},
		{feed: "Manchester City", roster: "Manchester United", want: false},
		{feed: "Sheffield Wednesday", roster: "Sheffield United", want: false},
		{feed: "Newcastle", roster: "Newcastle United", want: true},
		{feed: "Atlético Madrid", roster: "Real Madrid", want: false},
		{feed: "Brøndby IF", roster: "Brondby", want: true},
		{feed: "", roster: "Arsenal", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.feed+"/"+tt.roster, func(t *testing.T) {
			if got := TeamMatches(tt.feed, tt.roster); got != tt.want {
				t.Fatalf("TeamMatches(%q, %q)=%v want %v", tt.feed, tt.roster, got, tt.want)
			}
		})
	}
}

func TestTeamMatches_SymmetricForSingleWordNames(t *testing.T) {
	names := []string{
		"Milan", "AC Milan", "Inter", "FC Internazionale", "Arsenal", "Arsenal FC",
		"1. FC Köln", "Koln", "Liverpool", "Napoli", "SSC Napoli", "Everton", "Lazio",
	}
	for _, a := range names {
		for _, b := range names {
			if TeamMatches(a, b) != TeamMatches(b, a) {
				t.Fatalf("asymmetric result for %q / %q", a, b)
			}
		}
	}
}

func TestNormalizeTeam(t *testing.T) {
	if got := NormalizeTeam("1. FC Köln"); got != "koln" {
		t.Fatalf("unexpected normalized name %q", got)
	}
	if got := NormalizeTeam("  Paris  Saint-Germain FC "); got != "paris saint germain" {
		t.Fatalf("unexpected normalized name %q", got)
	}
}

func TestResolveSide(t *testing.T) {
	tests := []struct {
		name       string
		home, away string
		roster     string
		wantHome   bool
		wantOK     bool
	}{
		{name: "away side", home: "AC Milan", away: "Inter", roster: "Internazionale", wantHome: false, wantOK: true},
		{name: "home side", home: "AC Milan", away: "Inter", roster: "Milan", wantHome: true, wantOK: true},
		{name: "derby settled by exact name", home: "AC Milan", away: "Inter Milan", roster: "Inter Milan", wantHome: false, wantOK: true},
		{name: "not playing", home: "Lazio", away: "Roma", roster: "Napoli", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isHome, ok := ResolveSide(tt.home, tt.away, tt.roster)
			if ok != tt.wantOK || (ok && isHome != tt.wantHome) {
				t.Fatalf("ResolveSide=(%v,%v) want (%v,%v)", isHome, ok, tt.wantHome, tt.wantOK)
			}
		})
	}
}
