package usecase

import (
	"context"
	"sort"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/identity"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/domain/participation"
	"github.com/riskibarqy/matchwatch/internal/domain/roster"
)

const (
	// maxFixtureDetails bounds how many past team fixtures the primary tier opens per player.
	maxFixtureDetails = 3
	sameFixtureWindow = 12 * time.Hour
)

// lastOutcome is what one tier learned about a player's recent matches.
type lastOutcome struct {
	last   *match.Match
	missed *match.Match
	// fallback is a team match without participation facts, used when no tier finds a participated one.
	fallback *match.Match
}

// syncLastGame derives LastGame and MissedGame for every player of the team.
func (s *ReconcileService) syncLastGame(ctx context.Context, state *cycleState, w *teamWork) {
	teamLatest := s.teamLatestFinished(ctx, state, w)

	for _, p := range w.players {
		logger := w.logger.With("player_id", p.ID)
		prev, _, err := s.records.Get(ctx, p.ID)
		if err != nil {
			logger.ErrorContext(ctx, "load player record failed", "error", err)
			continue
		}

		found := s.lastFromTiers(ctx, state, w, p)
		last := found.last
		if last == nil {
			last = found.fallback
		}
		last = mergeRecord(prev.Last, last)

		missed := found.missed
		if teamLatest != nil && newerThan(teamLatest, last) && newerThan(teamLatest, missed) {
			// the player's own history lags behind the team
			synth := teamLatest.Clone()
			if _, ok := identity.ResolveSide(synth.HomeTeam, synth.AwayTeam, p.Team); ok {
				unknown := match.UnknownParticipation(synth.Source)
				synth.Participation = &unknown
				missed = &synth
			}
		}
		missed = mergeRecord(prev.Missed, missed)
		missed = s.validateMissed(ctx, w, p, last, missed)

		if err := s.records.Put(ctx, p.ID, match.KindLast, last, state.now); err != nil {
			logger.ErrorContext(ctx, "store last game failed", "error", err)
		}
		if err := s.records.Put(ctx, p.ID, match.KindMissed, missed, state.now); err != nil {
			logger.ErrorContext(ctx, "store missed game failed", "error", err)
		}
	}
}

// lastFromTiers walks player history, team snapshot, primary fixtures and manual overrides in
// that order. The first tier that finds a participated match wins; the first missed candidate
// seen is kept.
func (s *ReconcileService) lastFromTiers(ctx context.Context, state *cycleState, w *teamWork, p roster.Player) lastOutcome {
	var out lastOutcome
	tiers := []func() lastOutcome{
		func() lastOutcome { return s.lastFromPlayerHistory(ctx, state, w, p) },
		func() lastOutcome { return s.lastFromSnapshot(ctx, state, w, p) },
		func() lastOutcome { return s.lastFromPrimary(ctx, state, w, p) },
		func() lastOutcome { return s.lastFromOverrides(ctx, state, w, p) },
	}
	for _, tier := range tiers {
		got := tier()
		if out.missed == nil {
			out.missed = got.missed
		}
		if out.fallback == nil {
			out.fallback = got.fallback
		}
		if got.last != nil {
			out.last = got.last
			break
		}
	}
	if out.missed != nil && out.last != nil && !out.missed.Kickoff.After(out.last.Kickoff) {
		out.missed = nil
	}
	return out
}

func (s *ReconcileService) lastFromPlayerHistory(ctx context.Context, state *cycleState, w *teamWork, p roster.Player) lastOutcome {
	if s.sources.Secondary == nil || p.SecondaryID == 0 {
		return lastOutcome{}
	}
	callCtx, cancel := s.call(ctx)
	entries, err := s.sources.Secondary.GetPlayerRecentMatches(callCtx, p.SecondaryID)
	cancel()
	if err != nil {
		s.logFailure(ctx, state, w.logger.With("player_id", p.ID), "player_history", match.TierPlayerHistory, err)
		return lastOutcome{}
	}
	return s.fromHistory(ctx, w, p, entries, match.TierPlayerHistory)
}

func (s *ReconcileService) lastFromOverrides(ctx context.Context, state *cycleState, w *teamWork, p roster.Player) lastOutcome {
	if s.sources.Overrides == nil {
		return lastOutcome{}
	}
	v, err := state.perCycle.GetOrLoad(ctx, "overrides", func(ctx context.Context) (any, error) {
		callCtx, cancel := s.call(ctx)
		defer cancel()
		return s.sources.Overrides.LoadManualOverrides(callCtx)
	})
	if err != nil {
		s.logFailure(ctx, state, w.logger.With("player_id", p.ID), "manual_overrides", match.TierManualOverride, err)
		return lastOutcome{}
	}
	overrides, _ := v.(map[string][]feed.PlayerMatch)
	return s.fromHistory(ctx, w, p, overrides[p.ID], match.TierManualOverride)
}

// fromHistory reads a most-recent-first history. The newest entry the player did not appear in
// becomes the missed candidate; the newest appearance becomes LastGame.
func (s *ReconcileService) fromHistory(ctx context.Context, w *teamWork, p roster.Player, entries []feed.PlayerMatch, tier match.Tier) lastOutcome {
	var out lastOutcome
	first := true
	for _, e := range entries {
		if !e.Fixture.Status.IsFinished() {
			continue
		}
		m, ok := historyMatch(e, p.Team, tier)
		if !ok {
			w.logger.DebugContext(ctx, "history entry does not resolve to a side",
				"error_kind", errorKindIdentity,
				"player_id", p.ID,
				"fixture_id", e.Fixture.ID,
				"tier", string(tier),
			)
			continue
		}
		if e.Appeared() {
			out.last = m
			return out
		}
		if first && missedEntry(e) {
			out.missed = m
		}
		first = false
	}
	return out
}

func historyMatch(e feed.PlayerMatch, currentTeam string, tier match.Tier) (*match.Match, bool) {
	team := e.Team
	if team == "" {
		team = currentTeam
	}
	m, ok := matchFromFixture(e.Fixture, team, tier)
	if !ok && team != currentTeam {
		m, ok = matchFromFixture(e.Fixture, currentTeam, tier)
	}
	if !ok {
		return nil, false
	}

	role := match.SquadUnknown
	switch {
	case e.Started == match.True:
		role = match.SquadStarting
	case e.OnBench:
		role = match.SquadBench
	case e.Participated == match.False:
		role = match.SquadAbsent
	}
	events := make([]match.Event, len(e.Events))
	copy(events, e.Events)
	facts := match.Participation{
		Participated:  e.Participated,
		Started:       e.Started,
		MinutesPlayed: e.MinutesPlayed,
		Rating:        e.Rating,
		Events:        events,
		SquadRole:     role,
		Source:        tier,
	}
	if facts.Participated == match.Unknown && e.Appeared() {
		facts.Participated = match.True
	}
	m.Participation = &facts
	m = m.Clone()
	return &m, true
}

// missedEntry needs positive evidence of absence; an entry with no facts says nothing.
func missedEntry(e feed.PlayerMatch) bool {
	if e.Participated == match.False {
		return true
	}
	return e.Participated == match.Unknown && e.MinutesPlayed != nil && *e.MinutesPlayed == 0
}

// lastFromSnapshot reads the overview's lineup snapshot of the team's last match.
func (s *ReconcileService) lastFromSnapshot(ctx context.Context, state *cycleState, w *teamWork, p roster.Player) lastOutcome {
	ov, err := s.overview(ctx, state, w)
	if err != nil || ov.LastMatch == nil || ov.LastLineup == nil || !ov.LastMatch.Status.IsFinished() {
		return lastOutcome{}
	}
	m, ok := matchFromFixture(*ov.LastMatch, w.team.Name, match.TierTeamSnapshot)
	if !ok {
		return lastOutcome{}
	}
	detail, ok := s.snapshotDetail(ctx, state, w, *ov.LastMatch, sideOf(m.IsHome), 90)
	if !ok {
		return lastOutcome{}
	}
	return classify(m, participation.Normalize(detail, sideOf(m.IsHome), p.Name, w.names), match.TierTeamSnapshot)
}

// lastFromPrimary opens the details of the team's most recent finished primary fixtures.
func (s *ReconcileService) lastFromPrimary(ctx context.Context, state *cycleState, w *teamWork, p roster.Player) lastOutcome {
	recent, err := s.recentPrimaryMatches(ctx, state, w)
	if err != nil {
		s.logFailure(ctx, state, w.logger.With("player_id", p.ID), "primary_history", s.cfg.PrimaryTier, err)
		return lastOutcome{}
	}

	var out lastOutcome
	for i, r := range recent {
		if i >= maxFixtureDetails {
			break
		}
		detail, err := s.detail(ctx, state, s.sources.Primary, r.fixture.ID)
		if err != nil {
			s.logFailure(ctx, state, w.logger.With("player_id", p.ID), "primary_detail", s.cfg.PrimaryTier, err)
			if out.fallback == nil {
				fallback := r.match.Clone()
				unknown := match.UnknownParticipation(s.cfg.PrimaryTier)
				fallback.Participation = &unknown
				out.fallback = &fallback
			}
			continue
		}
		if detail.EndMinute <= 0 {
			detail.EndMinute = 90
		}
		got := classify(r.match, participation.Normalize(detail, sideOf(r.match.IsHome), p.Name, w.names), s.cfg.PrimaryTier)
		if i == 0 {
			out.missed = got.missed
		}
		if out.fallback == nil {
			out.fallback = got.fallback
		}
		if got.last != nil {
			out.last = got.last
			return out
		}
	}
	return out
}

// classify sorts one normalized match into last, missed or fallback.
func classify(m match.Match, facts match.Participation, tier match.Tier) lastOutcome {
	facts.Source = tier
	m.Participation = &facts
	m.Source = tier
	switch facts.Participated {
	case match.True:
		return lastOutcome{last: &m}
	case match.False:
		return lastOutcome{missed: &m}
	default:
		return lastOutcome{fallback: &m}
	}
}

type resolvedFixture struct {
	fixture feed.Fixture
	match   match.Match
}

// recentPrimaryMatches lists the team's finished primary fixtures over the lookback window,
// newest first.
func (s *ReconcileService) recentPrimaryMatches(ctx context.Context, state *cycleState, w *teamWork) ([]resolvedFixture, error) {
	from, _ := localDay(w.league, state.now.AddDate(0, 0, -s.cfg.LookbackDays))
	fixtures, err := s.primaryWindow(ctx, state, w, from, state.now)
	if err != nil {
		return nil, err
	}
	out := make([]resolvedFixture, 0, 4)
	for _, f := range fixtures {
		if !f.Status.IsFinished() || !f.Kickoff.Before(state.now) {
			continue
		}
		m, ok := matchFromFixture(f, w.team.Name, s.cfg.PrimaryTier)
		if !ok {
			continue
		}
		out = append(out, resolvedFixture{fixture: f, match: m})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].fixture.Kickoff.After(out[j].fixture.Kickoff) })
	return out, nil
}

// teamLatestFinished is the team's most recent completed match from the overview or, failing
// that, the primary fixtures.
func (s *ReconcileService) teamLatestFinished(ctx context.Context, state *cycleState, w *teamWork) *match.Match {
	if ov, err := s.overview(ctx, state, w); err == nil && ov.LastMatch != nil && ov.LastMatch.Status.IsFinished() {
		if m, ok := matchFromFixture(*ov.LastMatch, w.team.Name, match.TierSecondaryFeed); ok {
			return &m
		}
	}
	recent, err := s.recentPrimaryMatches(ctx, state, w)
	if err != nil || len(recent) == 0 {
		return nil
	}
	m := recent[0].match
	return &m
}

// validateMissed keeps a missed game only when it is newer than LastGame and the player's current
// team played in it. A former club's match is dropped after a transfer.
func (s *ReconcileService) validateMissed(ctx context.Context, w *teamWork, p roster.Player, last, missed *match.Match) *match.Match {
	if missed == nil {
		return nil
	}
	if last != nil && (sameFixture(last, missed) || !missed.Kickoff.After(last.Kickoff)) {
		return nil
	}
	if _, ok := identity.ResolveSide(missed.HomeTeam, missed.AwayTeam, p.Team); !ok {
		w.logger.DebugContext(ctx, "missed game belongs to another team",
			"error_kind", errorKindIdentity,
			"player_id", p.ID,
			"fixture_id", missed.FixtureID,
			"team", p.Team,
		)
		return nil
	}
	return missed
}

// ForgetOtherClubs clears the today, next and missed records of p that its current team does
// not play in, along with the persisted next game. LastGame stays: it describes a match the
// player took part in.
func (s *ReconcileService) ForgetOtherClubs(ctx context.Context, p roster.Player) error {
	slots, ok, err := s.records.Get(ctx, p.ID)
	if err != nil {
		return crerr.Wrapf(err, "read record of %s", p.ID)
	}
	now := s.now()
	if ok {
		for kind, m := range map[match.Kind]*match.Match{
			match.KindToday:  slots.Today,
			match.KindNext:   slots.Next,
			match.KindMissed: slots.Missed,
		} {
			if m == nil || playsFor(*m, p.Team) {
				continue
			}
			if err := s.records.Put(ctx, p.ID, kind, nil, now); err != nil {
				return crerr.Wrapf(err, "clear %s game of %s", kind, p.ID)
			}
		}
	}
	if s.nextGames == nil {
		return nil
	}
	cached, ok, err := s.nextGames.Get(ctx, p.ID, now)
	if err != nil || !ok || playsFor(cached, p.Team) {
		return err
	}
	return s.nextGames.Delete(ctx, p.ID)
}

func playsFor(m match.Match, team string) bool {
	_, ok := identity.ResolveSide(m.HomeTeam, m.AwayTeam, team)
	return ok
}

// mergeRecord applies the tier rule: for the same fixture a higher tier overwrites a lower one
// and never the reverse, unless the kept record has no facts at all. A different, newer fixture
// always replaces. A nil candidate keeps prev.
func mergeRecord(prev, next *match.Match) *match.Match {
	switch {
	case next == nil:
		return prev.ClonePtr()
	case prev == nil:
		return next.ClonePtr()
	case sameFixture(prev, next):
		if next.Source.Rank() >= prev.Source.Rank() || (unknownFacts(prev) && !unknownFacts(next)) {
			return next.ClonePtr()
		}
		return prev.ClonePtr()
	case next.Kickoff.After(prev.Kickoff):
		return next.ClonePtr()
	default:
		return prev.ClonePtr()
	}
}

func unknownFacts(m *match.Match) bool {
	return m.Participation == nil || m.Participation.IsUnknown()
}

// sameFixture matches by id, or across feeds by kickoff and both team names.
func sameFixture(a, b *match.Match) bool {
	if a == nil || b == nil {
		return false
	}
	if a.FixtureID != "" && a.FixtureID == b.FixtureID {
		return true
	}
	diff := a.Kickoff.Sub(b.Kickoff)
	if diff < 0 {
		diff = -diff
	}
	return diff <= sameFixtureWindow &&
		identity.TeamMatches(a.HomeTeam, b.HomeTeam) &&
		identity.TeamMatches(a.AwayTeam, b.AwayTeam)
}

// newerThan reports whether m is a different match played after ref. A nil ref is always older.
func newerThan(m, ref *match.Match) bool {
	if ref == nil {
		return true
	}
	return !sameFixture(m, ref) && m.Kickoff.After(ref.Kickoff)
}
