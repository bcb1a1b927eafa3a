package match

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
	StatusSuspended Status = "suspended"
	StatusPostponed Status = "postponed"
	StatusCancelled Status = "cancelled"

	// StatusNoMatchToday is only used on an exposed Record, never on a Match.
	StatusNoMatchToday Status = "no_match_today"
)

// NormalizeStatus maps free-form status words (operator files, feed fallbacks) onto the
// canonical set. Unrecognized values become upcoming.
func NormalizeStatus(raw string) Status {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case string(StatusUpcoming), string(StatusLive), string(StatusFinished),
		string(StatusSuspended), string(StatusPostponed), string(StatusCancelled):
		return Status(value)
	}

	switch {
	case strings.Contains(value, "postpon"), strings.Contains(value, "delay"):
		return StatusPostponed
	case strings.Contains(value, "cancel"), strings.Contains(value, "abandon"):
		return StatusCancelled
	case strings.Contains(value, "suspend"), strings.Contains(value, "interrupt"):
		return StatusSuspended
	case strings.Contains(value, "live"), strings.Contains(value, "play"), strings.Contains(value, "half"):
		return StatusLive
	case strings.Contains(value, "finish"), strings.Contains(value, "full"), value == "ft", value == "aet", value == "pen":
		return StatusFinished
	default:
		return StatusUpcoming
	}
}

func (s Status) IsLive() bool {
	return s == StatusLive
}

func (s Status) IsFinished() bool {
	return s == StatusFinished
}

// HasPlay reports whether a match in this state can carry participation facts.
func (s Status) HasPlay() bool {
	return s == StatusLive || s == StatusFinished || s == StatusSuspended
}

// Tri is a three-valued fact. The zero value is unknown, so an unset field never reads as false.
type Tri int8

const (
	Unknown Tri = iota
	False
	True
)

func TriOf(v bool) Tri {
	if v {
		return True
	}
	return False
}

func TriFromPtr(v *bool) Tri {
	if v == nil {
		return Unknown
	}
	return TriOf(*v)
}

func (t Tri) Known() bool {
	return t == True || t == False
}

func (t Tri) Bool() (value bool, known bool) {
	switch t {
	case True:
		return true, true
	case False:
		return false, true
	default:
		return false, false
	}
}

func (t Tri) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

func (t Tri) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (t *Tri) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*t = True
	case "false":
		*t = False
	case "null", `"unknown"`, `""`:
		*t = Unknown
	default:
		return fmt.Errorf("invalid tri-state value %s", data)
	}
	return nil
}

type EventType string

const (
	EventGoal   EventType = "goal"
	EventAssist EventType = "assist"
	EventSubIn  EventType = "sub_in"
	EventSubOut EventType = "sub_out"
	EventYellow EventType = "yellow"
	EventRed    EventType = "red"
)

type Event struct {
	Type   EventType `json:"type"`
	Minute *int      `json:"minute"`
}

// SquadRole separates an unused substitute (bench) from a player who was not in the squad (absent).
type SquadRole string

const (
	SquadUnknown  SquadRole = "unknown"
	SquadStarting SquadRole = "starting"
	SquadBench    SquadRole = "bench"
	SquadAbsent   SquadRole = "absent"
)

// Tier names the source that produced a record or fact.
type Tier string

const (
	TierPlayerHistory  Tier = "player_history"
	TierSecondaryFeed  Tier = "secondary_feed"
	TierTeamSnapshot   Tier = "team_snapshot"
	TierPrimaryFeed    Tier = "primary_feed"
	TierManualOverride Tier = "manual_override"
	TierDemo           Tier = "demo"
)

// Rank orders tiers for merging: a higher rank overwrites a lower one for the same fixture.
func (t Tier) Rank() int {
	switch t {
	case TierPlayerHistory:
		return 50
	case TierSecondaryFeed:
		return 45
	case TierTeamSnapshot:
		return 40
	case TierPrimaryFeed:
		return 30
	case TierManualOverride:
		return 10
	case TierDemo:
		return 5
	default:
		return 0
	}
}

type Participation struct {
	Participated  Tri       `json:"participated"`
	Started       Tri       `json:"started"`
	MinutesPlayed *int      `json:"minutes_played"`
	Rating        *float64  `json:"rating"`
	Events        []Event   `json:"events"`
	SquadRole     SquadRole `json:"squad_role"`
	Source        Tier      `json:"source"`
}

func UnknownParticipation(source Tier) Participation {
	return Participation{
		Participated: Unknown,
		Started:      Unknown,
		Events:       []Event{},
		SquadRole:    SquadUnknown,
		Source:       source,
	}
}

// IsUnknown reports whether no fact at all is known.
func (p Participation) IsUnknown() bool {
	return !p.Participated.Known() && !p.Started.Known() && p.MinutesPlayed == nil && p.Rating == nil && len(p.Events) == 0
}

// Match is the canonical shape of TodayMatch, LastGame, NextGame and MissedGame.
type Match struct {
	FixtureID     string         `json:"fixture_id"`
	Kickoff       time.Time      `json:"kickoff"`
	HomeTeam      string         `json:"home_team"`
	AwayTeam      string         `json:"away_team"`
	HomeScore     *int           `json:"home_score"`
	AwayScore     *int           `json:"away_score"`
	Competition   string         `json:"competition"`
	IsHome        bool           `json:"is_home"`
	Status        Status         `json:"status"`
	Minute        *int           `json:"minute,omitempty"`
	Participation *Participation `json:"participation,omitempty"`
	Source        Tier           `json:"source"`
}

func (m Match) Opponent() string {
	if m.IsHome {
		return m.AwayTeam
	}
	return m.HomeTeam
}

// TeamScore returns the goals of the side the player belongs to.
func (m Match) TeamScore() *int {
	if m.IsHome {
		return m.HomeScore
	}
	return m.AwayScore
}

// Record is the per-player view handed to API consumers.
type Record struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Team       string    `json:"team"`
	Status     Status    `json:"status"`
	Today      *Match    `json:"today,omitempty"`
	LastGame   *Match    `json:"last_game,omitempty"`
	NextGame   *Match    `json:"next_game,omitempty"`
	MissedGame *Match    `json:"missed_game,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Slots holds the four derived records for one player.
type Slots struct {
	Today     *Match
	Last      *Match
	Next      *Match
	Missed    *Match
	UpdatedAt time.Time
}

func (s Slots) Empty() bool {
	return s.Today == nil && s.Last == nil && s.Next == nil && s.Missed == nil
}

func IntPtr(v int) *int {
	return &v
}

func FloatPtr(v float64) *float64 {
	return &v
}

// Clone returns a deep copy so stored records never alias caller memory.
func (m Match) Clone() Match {
	out := m
	out.HomeScore = cloneInt(m.HomeScore)
	out.AwayScore = cloneInt(m.AwayScore)
	out.Minute = cloneInt(m.Minute)
	if m.Participation != nil {
		p := *m.Participation
		p.MinutesPlayed = cloneInt(p.MinutesPlayed)
		if p.Rating != nil {
			p.Rating = FloatPtr(*p.Rating)
		}
		p.Events = make([]Event, len(m.Participation.Events))
		for i, ev := range m.Participation.Events {
			p.Events[i] = Event{Type: ev.Type, Minute: cloneInt(ev.Minute)}
		}
		out.Participation = &p
	}
	return out
}

func (m *Match) ClonePtr() *Match {
	if m == nil {
		return nil
	}
	c := m.Clone()
	return &c
}

func (s Slots) Clone() Slots {
	return Slots{
		Today:     s.Today.ClonePtr(),
		Last:      s.Last.ClonePtr(),
		Next:      s.Next.ClonePtr(),
		Missed:    s.Missed.ClonePtr(),
		UpdatedAt: s.UpdatedAt,
	}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	return IntPtr(*v)
}
