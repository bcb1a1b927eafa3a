package memory

import "github.com/riskibarqy/matchwatch/internal/domain/roster"

const (
	LeagueIDSerieA        = "ita-serie-a"
	LeagueIDPremierLeague = "eng-premier-league"
)

// SeedRoster is the roster used when no roster file is configured.
func SeedRoster() roster.Roster {
	return roster.Roster{
		Leagues: []roster.League{
			{ID: LeagueIDSerieA, Name: "Serie A", Timezone: "Europe/Rome", PrimaryLeagueID: 384},
			{ID: LeagueIDPremierLeague, Name: "Premier League", Timezone: "Europe/London", PrimaryLeagueID: 8},
		},
		Teams: []roster.Team{
			{Name: "AC Milan", League: LeagueIDSerieA, PrimaryID: 113, SecondaryID: 8564},
			{Name: "Inter", League: LeagueIDSerieA, PrimaryID: 2930, SecondaryID: 8636},
			{Name: "Arsenal", League: LeagueIDPremierLeague, PrimaryID: 19, SecondaryID: 9825},
			{Name: "Liverpool", League: LeagueIDPremierLeague, PrimaryID: 8, SecondaryID: 8650},
		},
		Players: []roster.Player{
			{ID: "milan-pulisic", Name: "Christian Pulisic", Team: "AC Milan", League: LeagueIDSerieA, SecondaryID: 422685},
			{ID: "milan-musah", Name: "Yunus Musah", Team: "AC Milan", League: LeagueIDSerieA, SecondaryID: 1052385},
			{ID: "inter-barella", Name: "Nicolò Barella", Team: "Inter", League: LeagueIDSerieA, SecondaryID: 655612},
			{ID: "inter-frattesi", Name: "Davide Frattesi", Team: "Inter", League: LeagueIDSerieA, SecondaryID: 742546},
			{ID: "arsenal-saliba", Name: "William Saliba", Team: "Arsenal", League: LeagueIDPremierLeague, SecondaryID: 873618},
			{ID: "arsenal-raya", Name: "David Raya", Team: "Arsenal", League: LeagueIDPremierLeague, SecondaryID: 362434},
			{ID: "liverpool-szoboszlai", Name: "Dominik Szoboszlai", Team: "Liverpool", League: LeagueIDPremierLeague, SecondaryID: 805296},
			{ID: "liverpool-nunez", Name: "Darwin Núñez", Team: "Liverpool", League: LeagueIDPremierLeague, SecondaryID: 1073307},
		},
	}
}
