package usecase

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/identity"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/domain/participation"
	"github.com/riskibarqy/matchwatch/internal/domain/roster"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

// snapshotKickoffSlack bounds how far two feeds may disagree on one kickoff.
const snapshotKickoffSlack = 3 * time.Hour

// todayResult is a team's resolved match of the day and the feed that can explain it.
type todayResult struct {
	match   match.Match
	fixture feed.Fixture
	source  feed.Source
	tier    match.Tier
}

// localDay returns [start, end) of the calendar day containing now in the league's timezone.
func localDay(l roster.League, now time.Time) (time.Time, time.Time) {
	local := now.In(l.Location())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return start, start.AddDate(0, 0, 1)
}

func sameLocalDay(l roster.League, a, b time.Time) bool {
	start, end := localDay(l, b)
	return !a.Before(start) && a.Before(end)
}

// syncToday runs the fixture status query once per league. Status is never served from a cache.
func (s *ReconcileService) syncToday(ctx context.Context, state *cycleState, work []*teamWork, logger *logging.Logger) map[string]leagueFixtures {
	out := make(map[string]leagueFixtures)
	bypass := feed.WithCacheBypass(ctx)
	for _, w := range work {
		if _, done := out[w.league.ID]; done {
			continue
		}
		from, to := localDay(w.league, state.now)
		callCtx, cancel := s.call(bypass)
		fixtures, err := s.sources.Primary.GetFixtures(callCtx, from, to.Add(-time.Second), leagueFilter(w.league))
		cancel()
		if err != nil {
			s.logFailure(ctx, state, logger.With("league", w.league.ID), "today_fixtures", s.cfg.PrimaryTier, err)
		}
		out[w.league.ID] = leagueFixtures{fixtures: fixtures, err: err}
	}
	return out
}

// resolveToday picks the team's match of the day from the primary fixtures, then from the
// secondary overview, and writes it for every player of the team.
func (s *ReconcileService) resolveToday(ctx context.Context, state *cycleState, w *teamWork) {
	lf := state.today[w.league.ID]
	failed := lf.err != nil

	if lf.err == nil {
		for _, f := range lf.fixtures {
			if !sameLocalDay(w.league, f.Kickoff, state.now) {
				continue
			}
			m, ok := matchFromFixture(f, w.team.Name, s.cfg.PrimaryTier)
			if !ok {
				continue
			}
			w.today = &todayResult{match: m, fixture: f, source: s.sources.Primary, tier: s.cfg.PrimaryTier}
			break
		}
	}

	if w.today == nil {
		found, gapErr := s.gapFillToday(ctx, state, w)
		if found != nil {
			w.today = found
		} else if gapErr != nil && feed.IsTransient(gapErr) {
			failed = true
		}
	}

	if w.today != nil {
		w.logger.DebugContext(ctx, "today match resolved",
			"fixture_id", w.today.match.FixtureID,
			"status", string(w.today.match.Status),
			"tier", string(w.today.tier),
		)
		return
	}

	for _, p := range w.players {
		if failed {
			// keep a same-day record when the lookup itself could not be completed
			slots, ok, err := s.records.Get(ctx, p.ID)
			if err == nil && ok && slots.Today != nil && sameLocalDay(w.league, slots.Today.Kickoff, state.now) {
				continue
			}
		}
		if err := s.records.Put(ctx, p.ID, match.KindToday, nil, state.now); err != nil {
			w.logger.ErrorContext(ctx, "clear today match failed", "player_id", p.ID, "error", err)
		}
	}
}

// gapFillToday accepts the secondary overview's last or next match when it is played today and
// belongs to the roster team. A cached overview only tells whether such a match exists; its
// status and score are taken from a refetch.
func (s *ReconcileService) gapFillToday(ctx context.Context, state *cycleState, w *teamWork) (*todayResult, error) {
	ov, err := s.overview(ctx, state, w)
	if err == nil && openMatchToday(w.league, ov, state.now) {
		ov, err = s.liveOverview(ctx, state, w)
	}
	if err != nil {
		if crerr.Is(err, errInconsistent) {
			return nil, nil
		}
		return nil, err
	}

	for _, candidate := range []*feed.Fixture{ov.LastMatch, ov.NextMatch} {
		if candidate == nil || !sameLocalDay(w.league, candidate.Kickoff, state.now) {
			continue
		}
		m, ok := matchFromFixture(*candidate, w.team.Name, match.TierSecondaryFeed)
		if !ok {
			w.logger.DebugContext(ctx, "secondary match does not involve team",
				"error_kind", errorKindIdentity,
				"fixture_id", candidate.ID,
				"home_team", candidate.HomeTeam,
				"away_team", candidate.AwayTeam,
			)
			continue
		}
		return &todayResult{match: m, fixture: *candidate, source: s.sources.Secondary, tier: match.TierSecondaryFeed}, nil
	}
	return nil, nil
}

// openMatchToday reports whether ov lists a match of the local day that has not finished.
func openMatchToday(l roster.League, ov *feed.TeamOverview, now time.Time) bool {
	for _, f := range []*feed.Fixture{ov.LastMatch, ov.NextMatch} {
		if f != nil && !f.Status.IsFinished() && sameLocalDay(l, f.Kickoff, now) {
			return true
		}
	}
	return false
}

// syncPlayerStats attaches participation facts to a live or finished match of the day.
func (s *ReconcileService) syncPlayerStats(ctx context.Context, state *cycleState, w *teamWork) {
	if w.today == nil {
		return
	}
	today := w.today
	side := sideOf(today.match.IsHome)

	var (
		detail    feed.MatchDetail
		haveData  bool
		statsTier = today.tier
	)
	if today.match.Status.HasPlay() {
		d, err := s.detail(ctx, state, today.source, today.fixture.ID)
		switch {
		case err == nil:
			detail, haveData = d, true
		case crerr.Is(err, feed.ErrBlocked) || feed.IsTransient(err):
			s.logFailure(ctx, state, w.logger, "match_detail", today.tier, err)
			if snap, ok := s.snapshotDetail(ctx, state, w, today.fixture, side, endMinute(today.fixture)); ok {
				detail, haveData, statsTier = snap, true, match.TierTeamSnapshot
			}
		default:
			s.logFailure(ctx, state, w.logger, "match_detail", today.tier, err)
		}
		if haveData && detail.EndMinute <= 0 {
			detail.EndMinute = endMinute(today.fixture)
		}
	}

	for _, p := range w.players {
		m := today.match.Clone()
		if m.Status.HasPlay() {
			facts := match.UnknownParticipation(statsTier)
			if haveData {
				facts = participation.Normalize(detail, side, p.Name, w.names)
				facts.Source = statsTier
			}
			m.Participation = &facts
		}
		if err := s.records.Put(ctx, p.ID, match.KindToday, &m, state.now); err != nil {
			w.logger.ErrorContext(ctx, "store today match failed", "player_id", p.ID, "error", err)
		}
	}
}

// snapshotDetail turns the overview's lineup snapshot into a detail for fixture. The snapshot is
// rejected when its goal count disagrees with the team's current score.
func (s *ReconcileService) snapshotDetail(ctx context.Context, state *cycleState, w *teamWork, fixture feed.Fixture, side feed.Side, end int) (feed.MatchDetail, bool) {
	ov, err := s.overview(ctx, state, w)
	if err != nil || ov.LastLineup == nil {
		return feed.MatchDetail{}, false
	}
	snap := ov.LastLineup
	if !snapshotDescribes(snap, fixture) {
		w.logger.DebugContext(ctx, "lineup snapshot belongs to another match",
			"fixture_id", fixture.ID,
			"snapshot_fixture_id", snap.FixtureID,
		)
		return feed.MatchDetail{}, false
	}
	score := fixture.Score(side)
	if score == nil || snap.GoalCount != *score {
		got := -1
		if score != nil {
			got = *score
		}
		w.logger.WarnContext(ctx, "lineup snapshot is stale",
			"error_kind", errorKindInconsistency,
			"tier", string(match.TierTeamSnapshot),
			"fixture_id", fixture.ID,
			"snapshot_goals", snap.GoalCount,
			"team_score", got,
		)
		return feed.MatchDetail{}, false
	}
	return snap.Detail(fixture, side, end), true
}

// snapshotDescribes reports whether snap was taken from fixture. Ids from the same feed must
// match exactly; a snapshot from another feed needs a kickoff and an opponent that agree.
func snapshotDescribes(snap *feed.LineupSnapshot, fixture feed.Fixture) bool {
	if snap.FixtureID == "" || snap.FixtureID == fixture.ID {
		return true
	}
	if feed.FeedOf(snap.FixtureID) == feed.FeedOf(fixture.ID) {
		return false
	}
	if snap.Kickoff.IsZero() || snap.Opponent == "" || snap.Team == "" {
		return false
	}
	if d := snap.Kickoff.Sub(fixture.Kickoff); d > snapshotKickoffSlack || d < -snapshotKickoffSlack {
		return false
	}
	isHome, ok := identity.ResolveSide(fixture.HomeTeam, fixture.AwayTeam, snap.Team)
	if !ok {
		return false
	}
	opponent := fixture.HomeTeam
	if isHome {
		opponent = fixture.AwayTeam
	}
	return identity.TeamMatches(opponent, snap.Opponent) || identity.TeamMatches(snap.Opponent, opponent)
}

func endMinute(f feed.Fixture) int {
	if f.Status.IsLive() && f.Minute != nil {
		return *f.Minute
	}
	return 90
}
