package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	qb "github.com/riskibarqy/matchwatch/internal/platform/querybuilder"
)

const overridesTable = "manual_overrides"

var overrideColumns = []string{
	"id", "player_id", "fixture_id", "kickoff_at", "competition", "home_team", "away_team",
	"home_score", "away_score", "status", "team", "participated", "started", "on_bench",
	"minutes_played", "rating", "events", "created_at", "updated_at",
}

const upsertOverrideQuery = `
INSERT INTO manual_overrides (
    player_id, fixture_id, kickoff_at, competition, home_team, away_team,
    home_score, away_score, status, team, participated, started, on_bench,
    minutes_played, rating, events
) VALUES (
    :player_id, :fixture_id, :kickoff_at, :competition, :home_team, :away_team,
    :home_score, :away_score, :status, :team, :participated, :started, :on_bench,
    :minutes_played, :rating, :events
)
ON CONFLICT (player_id, fixture_id) DO UPDATE SET
    kickoff_at = EXCLUDED.kickoff_at,
    competition = EXCLUDED.competition,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    status = EXCLUDED.status,
    team = EXCLUDED.team,
    participated = EXCLUDED.participated,
    started = EXCLUDED.started,
    on_bench = EXCLUDED.on_bench,
    minutes_played = EXCLUDED.minutes_played,
    rating = EXCLUDED.rating,
    events = EXCLUDED.events,
    updated_at = NOW()`

// OverrideRepository is the Postgres-backed manual override tier.
type OverrideRepository struct {
	feed.Unsupported
	db *sqlx.DB
}

func NewOverrideRepository(db *sqlx.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

func (r *OverrideRepository) Name() string {
	return "overrides_postgres"
}

func (r *OverrideRepository) LoadManualOverrides(ctx context.Context) (map[string][]feed.PlayerMatch, error) {
	query, args, err := qb.Select(overrideColumns...).
		From(overridesTable).
		OrderBy("player_id", "kickoff_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select manual overrides query: %w", err)
	}
	return r.selectGrouped(ctx, query, args)
}

// ListForPlayer returns one player's overrides, most recent kickoff first.
func (r *OverrideRepository) ListForPlayer(ctx context.Context, playerID string) ([]feed.PlayerMatch, error) {
	query, args, err := qb.Select(overrideColumns...).
		From(overridesTable).
		Where(qb.Eq("player_id", playerID)).
		OrderBy("kickoff_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player overrides query: %w", err)
	}
	grouped, err := r.selectGrouped(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return grouped[playerID], nil
}

// Delete removes a player's overrides for the given fixtures and reports how many went.
func (r *OverrideRepository) Delete(ctx context.Context, playerID string, fixtureIDs ...string) (int64, error) {
	query, args, err := qb.DeleteFrom(overridesTable).
		Where(qb.Eq("player_id", playerID), qb.In("fixture_id", qb.Strings(fixtureIDs))).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete overrides query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete overrides for %s: %w", playerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete overrides for %s: %w", playerID, err)
	}
	return n, nil
}

func (r *OverrideRepository) selectGrouped(ctx context.Context, query string, args []any) (map[string][]feed.PlayerMatch, error) {
	var rows []overrideTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if isNotFound(err) {
			return map[string][]feed.PlayerMatch{}, nil
		}
		return nil, fmt.Errorf("select manual overrides: %w", err)
	}

	out := make(map[string][]feed.PlayerMatch)
	for _, row := range rows {
		item, err := row.playerMatch()
		if err != nil {
			return nil, err
		}
		out[row.PlayerID] = append(out[row.PlayerID], item)
	}
	return out, nil
}

// Upsert writes every override in one transaction, keyed by player and fixture.
func (r *OverrideRepository) Upsert(ctx context.Context, overrides map[string][]feed.PlayerMatch) (int, error) {
	playerIDs := make([]string, 0, len(overrides))
	for id := range overrides {
		playerIDs = append(playerIDs, id)
	}
	sort.Strings(playerIDs)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin override upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	written := 0
	for _, playerID := range playerIDs {
		for _, item := range overrides[playerID] {
			row, err := overrideRow(playerID, item)
			if err != nil {
				return 0, err
			}
			if _, err := tx.NamedExecContext(ctx, upsertOverrideQuery, row); err != nil {
				return 0, fmt.Errorf("upsert override %s/%s: %w", playerID, item.Fixture.ID, err)
			}
			written++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit override upsert: %w", err)
	}
	return written, nil
}
