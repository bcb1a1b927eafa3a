package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/matchwatch/internal/domain/identity"
	"github.com/riskibarqy/matchwatch/internal/domain/roster"
)

type RosterRepository struct {
	mu      sync.RWMutex
	players map[string]roster.Player
	order   []string
	leagues map[string]roster.League
	teams   []roster.Team
}

func NewRosterRepository(r roster.Roster) *RosterRepository {
	repo := &RosterRepository{
		players: make(map[string]roster.Player, len(r.Players)),
		order:   make([]string, 0, len(r.Players)),
		leagues: make(map[string]roster.League, len(r.Leagues)),
		teams:   append([]roster.Team(nil), r.Teams...),
	}
	for _, l := range r.Leagues {
		repo.leagues[l.ID] = l
	}
	for _, p := range r.Players {
		if _, dup := repo.players[p.ID]; !dup {
			repo.order = append(repo.order, p.ID)
		}
		repo.players[p.ID] = p
	}
	return repo
}

func (r *RosterRepository) ListPlayers(_ context.Context) ([]roster.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.players[id])
	}
	return out, nil
}

func (r *RosterRepository) GetPlayer(_ context.Context, playerID string) (roster.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[playerID]
	return p, ok, nil
}

func (r *RosterRepository) UpdateTeam(_ context.Context, playerID, team string) (roster.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return roster.Player{}, roster.ErrPlayerNotFound
	}
	p.Team = strings.TrimSpace(team)
	r.players[playerID] = p
	return p, nil
}

func (r *RosterRepository) ListLeagues(_ context.Context) ([]roster.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.League, 0, len(r.leagues))
	for _, l := range r.leagues {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RosterRepository) GetLeague(_ context.Context, leagueID string) (roster.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leagues[leagueID]
	return l, ok, nil
}

// LookupTeam prefers an exact normalized name and falls back to fuzzy team matching.
func (r *RosterRepository) LookupTeam(_ context.Context, name string) (roster.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := identity.NormalizeTeam(name)
	for _, t := range r.teams {
		if identity.NormalizeTeam(t.Name) == want {
			return t, true, nil
		}
	}
	for _, t := range r.teams {
		if identity.TeamMatches(t.Name, name) {
			return t, true, nil
		}
	}
	return roster.Team{}, false, nil
}
