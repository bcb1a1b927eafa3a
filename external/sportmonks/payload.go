package sportmonks

import (
	"strings"
)

const (
	eventTypeGoal         int64 = 14
	eventTypeOwnGoal      int64 = 15
	eventTypePenalty      int64 = 16
	eventTypeSubstitution int64 = 18
	eventTypeYellow       int64 = 19
	eventTypeRed          int64 = 20
	eventTypeYellowRed    int64 = 21

	lineupTypeStarting int64 = 11
	lineupTypeBench    int64 = 12

	detailTypeRating int64 = 118
)

type pagination struct {
	Count       int  `json:"count"`
	PerPage     int  `json:"per_page"`
	CurrentPage int  `json:"current_page"`
	HasMore     bool `json:"has_more"`
}

// rateLimit is the per-entity allowance SportMonks attaches to every response.
type rateLimit struct {
	ResetsInSeconds int    `json:"resets_in_seconds"`
	Remaining       int    `json:"remaining"`
	RequestedEntity string `json:"requested_entity"`
}

const lowRateLimitRemaining = 50

type fixturesEnvelope struct {
	Data       []fixtureItem `json:"data"`
	Pagination pagination    `json:"pagination"`
}

type fixtureEnvelope struct {
	Data fixtureItem `json:"data"`
}

type fixtureItem struct {
	ID           int64                `json:"id"`
	LeagueID     int64                `json:"league_id"`
	Name         string               `json:"name"`
	StartingAt   string               `json:"starting_at"`
	StateID      int64                `json:"state_id"`
	ResultInfo   string               `json:"result_info"`
	Length       int                  `json:"length"`
	League       relation[leagueRef]  `json:"league"`
	Participants []fixtureParticipant `json:"participants"`
	Scores       []fixtureScoreItem   `json:"scores"`
	Events       []fixtureEventItem   `json:"events"`
	Lineups      []fixtureLineupItem  `json:"lineups"`
	Periods      []fixturePeriodItem  `json:"periods"`
}

type leagueRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type fixtureParticipant struct {
	ID   int64                  `json:"id"`
	Name string                 `json:"name"`
	Meta fixtureParticipantMeta `json:"meta"`
}

type fixtureParticipantMeta struct {
	Location string `json:"location"`
}

func (p fixtureParticipant) location() string {
	return strings.ToLower(strings.TrimSpace(p.Meta.Location))
}

type fixtureScoreItem struct {
	ParticipantID int64          `json:"participant_id"`
	Description   string         `json:"description"`
	Score         map[string]any `json:"score"`
	Goals         any            `json:"goals"`
}

func (f fixtureScoreItem) numericScore() (int, bool) {
	for _, candidate := range []any{
		f.Goals,
		lookupMapValue(f.Score, "goals"),
		lookupMapValue(f.Score, "value"),
	} {
		if candidate == nil {
			continue
		}
		score := int(asFloat64(candidate))
		if score >= 0 {
			return score, true
		}
	}
	return 0, false
}

type fixtureEventItem struct {
	ID                int64  `json:"id"`
	ParticipantID     int64  `json:"participant_id"`
	TypeID            int64  `json:"type_id"`
	PlayerID          int64  `json:"player_id"`
	PlayerName        string `json:"player_name"`
	RelatedPlayerID   int64  `json:"related_player_id"`
	RelatedPlayerName string `json:"related_player_name"`
	Minute            *int   `json:"minute"`
	ExtraMinute       *int   `json:"extra_minute"`
	SortOrder         int    `json:"sort_order"`
}

type fixtureLineupItem struct {
	PlayerID   int64              `json:"player_id"`
	TeamID     int64              `json:"team_id"`
	TypeID     int64              `json:"type_id"`
	PlayerName string             `json:"player_name"`
	Details    []lineupDetailItem `json:"details"`
}

type lineupDetailItem struct {
	TypeID int64          `json:"type_id"`
	Data   map[string]any `json:"data"`
}

func (l lineupDetailItem) numericValue() float64 {
	if value, ok := l.Data["value"]; ok {
		return asFloat64(value)
	}
	return 0
}

type fixturePeriodItem struct {
	TypeID  int64 `json:"type_id"`
	Ticking bool  `json:"ticking"`
	Minutes int   `json:"minutes"`
}
