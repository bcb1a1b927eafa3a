package usecase

import (
	"context"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/identity"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

// syncNextGame resolves NextGame from the persisted cache, then the secondary overview, then the
// earliest upcoming primary fixture.
func (s *ReconcileService) syncNextGame(ctx context.Context, state *cycleState, w *teamWork) {
	var (
		teamNext   *match.Match
		teamFailed bool
		teamLoaded bool
	)
	resolveTeam := func() {
		if teamLoaded {
			return
		}
		teamLoaded = true
		teamNext, teamFailed = s.teamNextGame(ctx, state, w)
	}

	for _, p := range w.players {
		logger := w.logger.With("player_id", p.ID)

		var next *match.Match
		if s.nextGames != nil {
			cached, ok, err := s.nextGames.Get(ctx, p.ID, state.now)
			switch {
			case err != nil:
				logger.WarnContext(ctx, "read next game cache failed", "error", err)
			case ok:
				if _, sideOK := identity.ResolveSide(cached.HomeTeam, cached.AwayTeam, p.Team); sideOK {
					next = &cached
				} else if err := s.nextGames.Delete(ctx, p.ID); err != nil {
					logger.WarnContext(ctx, "drop stale next game failed", "error", err)
				}
			}
		}

		if next == nil {
			resolveTeam()
			if teamNext != nil {
				if m, ok := rebase(*teamNext, p.Team); ok {
					next = &m
				}
			}
			if next != nil && s.nextGames != nil {
				if err := s.nextGames.Put(ctx, p.ID, *next, state.now); err != nil {
					logger.WarnContext(ctx, "store next game cache failed", "error", err)
				}
			}
		}

		if next == nil && teamFailed {
			continue
		}
		if err := s.records.Put(ctx, p.ID, match.KindNext, next, state.now); err != nil {
			logger.ErrorContext(ctx, "store next game failed", "error", err)
		}
	}
}

// teamNextGame returns the team's next match and whether every source failed to answer.
func (s *ReconcileService) teamNextGame(ctx context.Context, state *cycleState, w *teamWork) (*match.Match, bool) {
	failed := false
	ov, err := s.overview(ctx, state, w)
	switch {
	case err == nil && ov.NextMatch != nil && ov.NextMatch.Kickoff.After(state.now):
		if m, ok := matchFromFixture(*ov.NextMatch, w.team.Name, match.TierSecondaryFeed); ok {
			return &m, false
		}
		w.logger.DebugContext(ctx, "secondary next match does not involve team",
			"error_kind", errorKindIdentity,
			"fixture_id", ov.NextMatch.ID,
			"home_team", ov.NextMatch.HomeTeam,
			"away_team", ov.NextMatch.AwayTeam,
		)
	case err != nil && feed.IsTransient(err):
		failed = true
	}

	from := state.now
	to := state.now.AddDate(0, 0, s.cfg.LookaheadDays)
	fixtures, err := s.primaryWindow(ctx, state, w, from, to)
	if err != nil {
		s.logFailure(ctx, state, w.logger, "primary_next", s.cfg.PrimaryTier, err)
		return nil, failed || feed.IsTransient(err)
	}

	var best *match.Match
	for _, f := range fixtures {
		if !f.Kickoff.After(state.now) || f.Status != match.StatusUpcoming {
			continue
		}
		m, ok := matchFromFixture(f, w.team.Name, s.cfg.PrimaryTier)
		if !ok {
			continue
		}
		if best == nil || m.Kickoff.Before(best.Kickoff) {
			m := m
			best = &m
		}
	}
	return best, false
}

// rebase re-resolves the player's side, since team spellings differ between players.
func rebase(m match.Match, team string) (match.Match, bool) {
	isHome, ok := identity.ResolveSide(m.HomeTeam, m.AwayTeam, team)
	if !ok {
		return match.Match{}, false
	}
	out := m.Clone()
	out.IsHome = isHome
	return out, true
}
