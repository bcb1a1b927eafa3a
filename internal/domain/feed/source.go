package feed

import (
	"context"
	"errors"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrUnsupported = crerr.New("feed query not supported")
	ErrBlocked     = crerr.New("feed blocked the request")
	ErrTransient   = crerr.New("feed transient failure")
	ErrNotFound    = crerr.New("feed resource not found")
)

// Source is the query surface every upstream feed exposes. Adapters return ErrUnsupported for
// queries their upstream cannot answer.
type Source interface {
	Name() string
	GetFixtures(ctx context.Context, from, to time.Time, leagueIDs []int64) ([]Fixture, error)
	GetMatchDetail(ctx context.Context, fixtureID string) (MatchDetail, error)
	GetTeamOverview(ctx context.Context, teamID int64) (TeamOverview, error)
	// GetPlayerRecentMatches returns the player's history, most recent first.
	GetPlayerRecentMatches(ctx context.Context, playerFeedID int64) ([]PlayerMatch, error)
	LoadManualOverrides(ctx context.Context) (map[string][]PlayerMatch, error)
}

// Unsupported answers every query with ErrUnsupported. Embed it and override what the feed supports.
type Unsupported struct{}

func (Unsupported) GetFixtures(context.Context, time.Time, time.Time, []int64) ([]Fixture, error) {
	return nil, ErrUnsupported
}

func (Unsupported) GetMatchDetail(context.Context, string) (MatchDetail, error) {
	return MatchDetail{}, ErrUnsupported
}

func (Unsupported) GetTeamOverview(context.Context, int64) (TeamOverview, error) {
	return TeamOverview{}, ErrUnsupported
}

func (Unsupported) GetPlayerRecentMatches(context.Context, int64) ([]PlayerMatch, error) {
	return nil, ErrUnsupported
}

func (Unsupported) LoadManualOverrides(context.Context) (map[string][]PlayerMatch, error) {
	return nil, ErrUnsupported
}

// IsTransient reports failures that say nothing about the data itself: network, 5xx, blocks, timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, ErrTransient) ||
		crerr.Is(err, ErrBlocked) ||
		errors.Is(err, context.DeadlineExceeded)
}

type bypassKey struct{}

// WithCacheBypass marks ctx so caching decorators go straight to the upstream.
// Fixture status queries always run with it.
func WithCacheBypass(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey{}, true)
}

func CacheBypassed(ctx context.Context) bool {
	v, _ := ctx.Value(bypassKey{}).(bool)
	return v
}
