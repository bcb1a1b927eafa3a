package file

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/riskibarqy/matchwatch/internal/domain/roster"
)

type rosterDocument struct {
	Leagues []rosterLeague `yaml:"leagues" validate:"required,min=1,dive"`
	Teams   []rosterTeam   `yaml:"teams" validate:"dive"`
	Players []rosterPlayer `yaml:"players" validate:"required,min=1,dive"`
}

type rosterLeague struct {
	ID              string `yaml:"id" validate:"required"`
	Name            string `yaml:"name"`
	Timezone        string `yaml:"timezone" validate:"omitempty,timezone"`
	PrimaryLeagueID int64  `yaml:"primary_league_id" validate:"gte=0"`
}

type rosterTeam struct {
	Name        string `yaml:"name" validate:"required"`
	League      string `yaml:"league"`
	PrimaryID   int64  `yaml:"primary_id" validate:"gte=0"`
	SecondaryID int64  `yaml:"secondary_id" validate:"gte=0"`
}

type rosterPlayer struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Team        string `yaml:"team" validate:"required"`
	League      string `yaml:"league"`
	SecondaryID int64  `yaml:"secondary_id" validate:"gte=0"`
}

// LoadRoster reads and validates a roster YAML file.
func LoadRoster(ctx context.Context, path string) (roster.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("read roster %s: %w", path, err)
	}
	return ParseRoster(ctx, data)
}

func ParseRoster(ctx context.Context, data []byte) (roster.Roster, error) {
	var doc rosterDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return roster.Roster{}, fmt.Errorf("decode roster: %w", err)
	}
	if err := validator.New().StructCtx(ctx, doc); err != nil {
		return roster.Roster{}, fmt.Errorf("validate roster: %w", err)
	}

	out := roster.Roster{
		Leagues: make([]roster.League, 0, len(doc.Leagues)),
		Teams:   make([]roster.Team, 0, len(doc.Teams)),
		Players: make([]roster.Player, 0, len(doc.Players)),
	}
	for _, l := range doc.Leagues {
		out.Leagues = append(out.Leagues, roster.League{
			ID:              strings.TrimSpace(l.ID),
			Name:            strings.TrimSpace(l.Name),
			Timezone:        strings.TrimSpace(l.Timezone),
			PrimaryLeagueID: l.PrimaryLeagueID,
		})
	}
	for _, t := range doc.Teams {
		out.Teams = append(out.Teams, roster.Team{
			Name:        strings.TrimSpace(t.Name),
			League:      strings.TrimSpace(t.League),
			PrimaryID:   t.PrimaryID,
			SecondaryID: t.SecondaryID,
		})
	}
	for _, p := range doc.Players {
		out.Players = append(out.Players, roster.Player{
			ID:          strings.TrimSpace(p.ID),
			Name:        strings.TrimSpace(p.Name),
			Team:        strings.TrimSpace(p.Team),
			League:      strings.TrimSpace(p.League),
			SecondaryID: p.SecondaryID,
		})
	}

	if err := out.Validate(); err != nil {
		return roster.Roster{}, fmt.Errorf("validate roster: %w", err)
	}
	return out, nil
}
