package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

// OverrideEntry is one operator-entered match result for one player.
type OverrideEntry struct {
	PlayerID      string          `yaml:"player" validate:"required"`
	FixtureID     string          `yaml:"fixture_id" validate:"required"`
	Kickoff       time.Time       `yaml:"kickoff" validate:"required"`
	Competition   string          `yaml:"competition"`
	HomeTeam      string          `yaml:"home_team" validate:"required"`
	AwayTeam      string          `yaml:"away_team" validate:"required"`
	HomeScore     *int            `yaml:"home_score" validate:"omitempty,gte=0"`
	AwayScore     *int            `yaml:"away_score" validate:"omitempty,gte=0"`
	Status        string          `yaml:"status"`
	Team          string          `yaml:"team" validate:"required"`
	Participated  *bool           `yaml:"participated"`
	Started       *bool           `yaml:"started"`
	OnBench       bool            `yaml:"on_bench"`
	MinutesPlayed *int            `yaml:"minutes_played" validate:"omitempty,gte=0,lte=130"`
	Rating        *float64        `yaml:"rating" validate:"omitempty,gte=0,lte=10"`
	Events        []OverrideEvent `yaml:"events" validate:"dive"`
}

type OverrideEvent struct {
	Type   string `yaml:"type" validate:"required,oneof=goal assist sub_in sub_out yellow red"`
	Minute *int   `yaml:"minute" validate:"omitempty,gte=0"`
}

type overridesDocument struct {
	Overrides []OverrideEntry `yaml:"overrides" validate:"dive"`
}

// ParseOverrides decodes and validates an overrides YAML document.
func ParseOverrides(ctx context.Context, data []byte) ([]OverrideEntry, error) {
	var doc overridesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	if err := validator.New().StructCtx(ctx, doc); err != nil {
		return nil, fmt.Errorf("validate overrides: %w", err)
	}
	return doc.Overrides, nil
}

func (e OverrideEntry) PlayerMatch() feed.PlayerMatch {
	events := make([]match.Event, 0, len(e.Events))
	for _, ev := range e.Events {
		events = append(events, match.Event{Type: match.EventType(ev.Type), Minute: ev.Minute})
	}
	return feed.PlayerMatch{
		Fixture: feed.Fixture{
			ID:          e.FixtureID,
			Competition: e.Competition,
			Kickoff:     e.Kickoff.UTC(),
			HomeTeam:    e.HomeTeam,
			AwayTeam:    e.AwayTeam,
			HomeScore:   e.HomeScore,
			AwayScore:   e.AwayScore,
			Status:      overrideStatus(e.Status),
		},
		Team:          e.Team,
		Participated:  match.TriFromPtr(e.Participated),
		Started:       match.TriFromPtr(e.Started),
		OnBench:       e.OnBench,
		MinutesPlayed: e.MinutesPlayed,
		Rating:        e.Rating,
		Events:        events,
	}
}

// overrideStatus treats a blank status as finished; operators only enter played matches.
func overrideStatus(raw string) match.Status {
	if strings.TrimSpace(raw) == "" {
		return match.StatusFinished
	}
	return match.NormalizeStatus(raw)
}

// GroupOverrides keys entries by player, most recent kickoff first.
func GroupOverrides(entries []OverrideEntry) map[string][]feed.PlayerMatch {
	out := make(map[string][]feed.PlayerMatch)
	for _, e := range entries {
		out[e.PlayerID] = append(out[e.PlayerID], e.PlayerMatch())
	}
	for _, items := range out {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Fixture.Kickoff.After(items[j].Fixture.Kickoff)
		})
	}
	return out
}

// OverridesSource serves manual overrides from a YAML file. The file is re-read on every call,
// so operators can edit it without a restart.
type OverridesSource struct {
	feed.Unsupported
	path string
}

func NewOverridesSource(path string) *OverridesSource {
	return &OverridesSource{path: path}
}

func (s *OverridesSource) Name() string {
	return "overrides_file"
}

func (s *OverridesSource) LoadManualOverrides(ctx context.Context) (map[string][]feed.PlayerMatch, error) {
	if strings.TrimSpace(s.path) == "" {
		return map[string][]feed.PlayerMatch{}, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]feed.PlayerMatch{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overrides %s: %w", s.path, err)
	}
	entries, err := ParseOverrides(ctx, data)
	if err != nil {
		return nil, err
	}
	return GroupOverrides(entries), nil
}
