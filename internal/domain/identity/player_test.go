package identity

import "testing"

func TestPlayerNameMatches(t *testing.T) {
	tests := []struct {
		feed   string
		roster string
		want   bool
	}{
		{feed: "Rafael Leão", roster: "Rafael Leao", want: true},
		{feed: "R. Leão", roster: "Rafael Leao", want: true},
		{feed: "Leao", roster: "Rafael Leao", want: true},
		{feed: "Vinícius Júnior", roster: "Vinicius Junior", want: true},
		{feed: "Vinicius", roster: "Vinicius Junior", want: true},
		{feed: "J. Kim", roster: "Min-jae Kim", want: false},
		{feed: "Kim", roster: "Min-jae Kim", want: true},
		{feed: "Nicolò Barella", roster: "Davide Frattesi", want: false},
		{feed: "", roster: "Davide Frattesi", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.feed+"/"+tt.roster, func(t *testing.T) {
			if got := PlayerNameMatches(tt.feed, tt.roster); got != tt.want {
				t.Fatalf("PlayerNameMatches(%q, %q)=%v want %v", tt.feed, tt.roster, got, tt.want)
			}
		})
	}
}

func TestPlayerIndex_SharedLastNameNeedsInitial(t *testing.T) {
	idx := NewPlayerIndex([]string{"Quinn Sullivan", "Cavan Sullivan", "Christian Pulisic"})

	if idx.Matches("C. Sullivan", "Quinn Sullivan") {
		t.Fatalf("C. Sullivan must not match Quinn Sullivan")
	}
	if !idx.Matches("C. Sullivan", "Cavan Sullivan") {
		t.Fatalf("C. Sullivan must match Cavan Sullivan")
	}
	if idx.Matches("Sullivan", "Cavan Sullivan") {
		t.Fatalf("bare shared last name is ambiguous")
	}
	if !idx.Matches("Quinn Sullivan", "Quinn Sullivan") {
		t.Fatalf("exact name must always match")
	}
	if !idx.Matches("Pulisic", "Christian Pulisic") {
		t.Fatalf("unique last name should match without initial")
	}
}

func TestNormalizePlayer(t *testing.T) {
	if got := NormalizePlayer("C. Sullivan"); got != "c sullivan" {
		t.Fatalf("unexpected normalized name %q", got)
	}
	if got := NormalizePlayer("Martin Ødegaard"); got != "martin odegaard" {
		t.Fatalf("unexpected normalized name %q", got)
	}
}
