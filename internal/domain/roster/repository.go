package roster

import (
	"context"
	"errors"
)

var ErrPlayerNotFound = errors.New("roster player not found")

// Repository serves the roster. UpdateTeam records a transfer.
type Repository interface {
	ListPlayers(ctx context.Context) ([]Player, error)
	GetPlayer(ctx context.Context, playerID string) (Player, bool, error)
	UpdateTeam(ctx context.Context, playerID, team string) (Player, error)
	ListLeagues(ctx context.Context) ([]League, error)
	GetLeague(ctx context.Context, leagueID string) (League, bool, error)
	// LookupTeam resolves a display name to its per-feed ids.
	LookupTeam(ctx context.Context, name string) (Team, bool, error)
}
