package feed

import (
	"strings"
	"time"

	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Fixture is a feed match mapped to canonical status. ID is prefixed with the feed name
// ("sportmonks:19135002") so ids from different feeds never collide.
type Fixture struct {
	ID          string
	ExternalID  int64
	LeagueID    int64
	Competition string
	Kickoff     time.Time
	HomeTeam    string
	AwayTeam    string
	HomeTeamID  int64
	AwayTeamID  int64
	HomeScore   *int
	AwayScore   *int
	Status      match.Status
	Minute      *int
}

func (f Fixture) Score(side Side) *int {
	if side == SideHome {
		return f.HomeScore
	}
	return f.AwayScore
}

func (f Fixture) TeamName(side Side) string {
	if side == SideHome {
		return f.HomeTeam
	}
	return f.AwayTeam
}

type CardType string

const (
	CardYellow       CardType = "yellow"
	CardRed          CardType = "red"
	CardSecondYellow CardType = "second_yellow"
)

type Goal struct {
	Scorer  string
	Assist  string
	Minute  *int
	OwnGoal bool
	Side    Side
}

type Substitution struct {
	PlayerIn  string
	PlayerOut string
	Minute    *int
	Side      Side
}

type Booking struct {
	Player string
	Card   CardType
	Minute *int
	Side   Side
}

type LineupPlayer struct {
	Name   string
	Rating *float64
}

type TeamLineup struct {
	Team     string
	Starters []LineupPlayer
	Bench    []LineupPlayer
}

func (l *TeamLineup) Empty() bool {
	return l == nil || (len(l.Starters) == 0 && len(l.Bench) == 0)
}

// MatchDetail is the per-match event and lineup payload. EndMinute is the regulation length
// for a finished match and the current minute for a live one.
type MatchDetail struct {
	Fixture       Fixture
	Goals         []Goal
	Substitutions []Substitution
	Bookings      []Booking
	Home          *TeamLineup
	Away          *TeamLineup
	EndMinute     int
}

func (d MatchDetail) Lineup(side Side) *TeamLineup {
	if side == SideHome {
		return d.Home
	}
	return d.Away
}

func (d MatchDetail) HasLineups() bool {
	return !d.Home.Empty() || !d.Away.Empty()
}

func (d MatchDetail) HasEvents() bool {
	return len(d.Goals) > 0 || len(d.Substitutions) > 0 || len(d.Bookings) > 0
}

// LineupSnapshot is a team-level lineup attached to a team overview. It can lag behind the
// overview's score, so GoalCount is kept to detect a stale snapshot. Kickoff and Opponent are
// set when the feed says which match the lineup belongs to.
type LineupSnapshot struct {
	FixtureID     string
	Team          string
	Kickoff       time.Time
	Opponent      string
	Lineup        TeamLineup
	Goals         []Goal
	Substitutions []Substitution
	Bookings      []Booking
	GoalCount     int
}

// FeedOf returns the feed prefix of a fixture id ("fotmob" for "fotmob:4193490").
func FeedOf(fixtureID string) string {
	prefix, _, found := strings.Cut(fixtureID, ":")
	if !found {
		return ""
	}
	return prefix
}

// Detail places the snapshot on side of fixture so it can go through the normalizer.
func (s LineupSnapshot) Detail(fixture Fixture, side Side, endMinute int) MatchDetail {
	lineup := s.Lineup
	detail := MatchDetail{
		Fixture:       fixture,
		Goals:         s.Goals,
		Substitutions: s.Substitutions,
		Bookings:      s.Bookings,
		EndMinute:     endMinute,
	}
	if side == SideHome {
		detail.Home = &lineup
	} else {
		detail.Away = &lineup
	}
	return detail
}

type TeamOverview struct {
	TeamID     int64
	TeamName   string
	NextMatch  *Fixture
	LastMatch  *Fixture
	LastLineup *LineupSnapshot
}

// PlayerMatch is one entry of a player's own match history.
type PlayerMatch struct {
	Fixture       Fixture
	Team          string
	Participated  match.Tri
	Started       match.Tri
	OnBench       bool
	MinutesPlayed *int
	Rating        *float64
	Events        []match.Event
}

// Appeared reports whether the entry proves the player was on the pitch.
func (m PlayerMatch) Appeared() bool {
	if m.Participated == match.True {
		return true
	}
	if m.Participated == match.False {
		return false
	}
	return m.MinutesPlayed != nil && *m.MinutesPlayed > 0
}
