package roster

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// League is a competition the roster follows. Timezone decides which calendar day "today" is.
type League struct {
	ID              string
	Name            string
	Timezone        string
	PrimaryLeagueID int64
}

func (l League) Location() *time.Location {
	if l.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Timezone != "" {
		if _, err := time.LoadLocation(l.Timezone); err != nil {
			return fmt.Errorf("league %s timezone: %w", l.ID, err)
		}
	}
	return nil
}

// Team maps a display name to per-feed numeric ids. Zero means unknown on that feed.
type Team struct {
	Name        string
	League      string
	PrimaryID   int64
	SecondaryID int64
}

type Player struct {
	ID          string
	Name        string
	Team        string
	League      string
	SecondaryID int64
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player %s name is required", p.ID)
	}
	if p.Team == "" {
		return fmt.Errorf("player %s team is required", p.ID)
	}
	return nil
}

// Roster is the static set of tracked players plus the lookup tables their teams need.
type Roster struct {
	Leagues []League
	Teams   []Team
	Players []Player
}

func (r Roster) Validate() error {
	leagues := make(map[string]struct{}, len(r.Leagues))
	for _, l := range r.Leagues {
		if err := l.Validate(); err != nil {
			return err
		}
		leagues[l.ID] = struct{}{}
	}

	ids := make(map[string]struct{}, len(r.Players))
	for _, p := range r.Players {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := ids[p.ID]; dup {
			return fmt.Errorf("duplicate player id %s", p.ID)
		}
		ids[p.ID] = struct{}{}
		if p.League != "" {
			if _, ok := leagues[p.League]; !ok {
				return fmt.Errorf("player %s references unknown league %s", p.ID, p.League)
			}
		}
	}
	return nil
}
