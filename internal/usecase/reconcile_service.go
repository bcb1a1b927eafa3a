package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/panics"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/identity"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/domain/roster"
	"github.com/riskibarqy/matchwatch/internal/platform/cache"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

// CycleMode selects how much of the pipeline a cycle runs.
type CycleMode string

const (
	// CycleFull runs today, gap-fill, player stats, last game and next game.
	CycleFull CycleMode = "full"
	// CycleToday re-runs only the today pipeline. Used on the live cadence.
	CycleToday CycleMode = "today"
)

// Sources are the upstream tiers the engine reconciles. Only Primary is required.
type Sources struct {
	Primary   feed.Source
	Secondary feed.Source
	Overrides feed.Source
}

type ReconcileConfig struct {
	MaxWorkers     int
	RequestDelay   time.Duration
	AdapterTimeout time.Duration
	LookbackDays   int
	LookaheadDays  int
	// PrimaryTier stamps records built from the primary feed. Demo mode uses match.TierDemo.
	PrimaryTier match.Tier
}

type CycleResult struct {
	ID         string        `json:"id"`
	Mode       CycleMode     `json:"mode"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Teams      int           `json:"teams"`
	Players    int           `json:"players"`
	Failures   int           `json:"failures"`
	HasLive    bool          `json:"has_live"`
	Duration   time.Duration `json:"-"`
}

// ReconcileService merges the feeds into per-player records. Cycles are serialized; within a
// cycle teams run in parallel on a worker pool and each team's lookups run in order.
type ReconcileService struct {
	roster    roster.Repository
	records   match.Repository
	nextGames match.NextGameCache
	sources   Sources
	cfg       ReconcileConfig
	logger    *logging.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration)

	cycleMu sync.Mutex
}

func NewReconcileService(
	rosterRepo roster.Repository,
	records match.Repository,
	nextGames match.NextGameCache,
	sources Sources,
	cfg ReconcileConfig,
	logger *logging.Logger,
) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = 15 * time.Second
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 21
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = 45
	}
	if cfg.PrimaryTier == "" {
		cfg.PrimaryTier = match.TierPrimaryFeed
	}

	return &ReconcileService{
		roster:    rosterRepo,
		records:   records,
		nextGames: nextGames,
		sources:   sources,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// teamWork is one team's slice of a cycle. It is only touched by the goroutine running the team.
type teamWork struct {
	key     string
	team    roster.Team
	league  roster.League
	players []roster.Player
	names   *identity.PlayerIndex
	logger  *logging.Logger

	overview       *feed.TeamOverview
	overviewErr    error
	overviewLoaded bool
	overviewLive   bool

	today *todayResult
}

// cycleState is shared by every team of one cycle.
type cycleState struct {
	id       string
	mode     CycleMode
	now      time.Time
	leagues  map[string]roster.League
	today    map[string]leagueFixtures
	perCycle *cache.Store
	failures atomic.Int32
}

type leagueFixtures struct {
	fixtures []feed.Fixture
	err      error
}

func (s *ReconcileService) Run(ctx context.Context, mode CycleMode) (result CycleResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.Run")
	defer func() { endCycleSpan(span, result, err) }()

	if s.sources.Primary == nil {
		return CycleResult{}, fmt.Errorf("%w: primary feed is not configured", ErrDependencyUnavailable)
	}
	if mode != CycleToday {
		mode = CycleFull
	}

	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	state := &cycleState{
		id:       uuid.NewString(),
		mode:     mode,
		now:      s.now(),
		perCycle: cache.NewStore(0),
	}
	result = CycleResult{ID: state.id, Mode: mode, StartedAt: state.now}
	logger := s.logger.With("cycle_id", state.id, "mode", string(mode))

	players, err := s.roster.ListPlayers(ctx)
	if err != nil {
		return result, fmt.Errorf("list roster players: %w", err)
	}
	leagues, err := s.roster.ListLeagues(ctx)
	if err != nil {
		return result, fmt.Errorf("list roster leagues: %w", err)
	}
	state.leagues = make(map[string]roster.League, len(leagues))
	for _, l := range leagues {
		state.leagues[l.ID] = l
	}

	work, err := s.groupByTeam(ctx, state, players, logger)
	if err != nil {
		return result, err
	}
	state.today = s.syncToday(ctx, state, work, logger)
	result.Teams = len(work)
	result.Players = len(players)

	if err := s.runTeams(ctx, state, work, logger); err != nil {
		return result, err
	}

	result.HasLive, _ = s.records.HasLive(ctx)
	result.Failures = int(state.failures.Load())
	result.FinishedAt = s.now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	logger.InfoContext(ctx, "reconcile cycle finished",
		"teams", result.Teams,
		"players", result.Players,
		"failures", result.Failures,
		"has_live", result.HasLive,
		"duration", result.Duration,
	)
	return result, nil
}

func (s *ReconcileService) groupByTeam(ctx context.Context, state *cycleState, players []roster.Player, logger *logging.Logger) ([]*teamWork, error) {
	byKey := make(map[string]*teamWork)
	for _, p := range players {
		key := p.League + "|" + identity.NormalizeTeam(p.Team)
		w, ok := byKey[key]
		if !ok {
			team, found, err := s.roster.LookupTeam(ctx, p.Team)
			if err != nil {
				return nil, fmt.Errorf("lookup team %s: %w", p.Team, err)
			}
			if !found {
				team = roster.Team{Name: p.Team, League: p.League}
			}
			// the player's own spelling wins; the lookup table only supplies ids
			team.Name = p.Team
			w = &teamWork{
				key:    key,
				team:   team,
				league: state.leagues[p.League],
				logger: logger.With("team", p.Team, "league", p.League),
			}
			byKey[key] = w
		}
		w.players = append(w.players, p)
	}

	out := make([]*teamWork, 0, len(byKey))
	for _, w := range byKey {
		names := make([]string, 0, len(w.players))
		for _, p := range w.players {
			names = append(names, p.Name)
		}
		w.names = identity.NewPlayerIndex(names)
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out, nil
}

func (s *ReconcileService) runTeams(ctx context.Context, state *cycleState, work []*teamWork, logger *logging.Logger) error {
	if len(work) == 0 {
		return nil
	}

	workers := s.cfg.MaxWorkers
	if workers > len(work) {
		workers = len(work)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, w := range work {
		w := w
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			s.reconcileTeam(ctx, state, w)
		}); err != nil {
			wg.Done()
			logger.ErrorContext(ctx, "submit team to worker pool failed", "team", w.team.Name, "error", err)
			state.failures.Add(1)
		}
	}
	wg.Wait()
	return nil
}

// reconcileTeam runs the stages for one team. A panic stays inside the team.
func (s *ReconcileService) reconcileTeam(ctx context.Context, state *cycleState, w *teamWork) {
	var catcher panics.Catcher
	catcher.Try(func() {
		s.resolveToday(ctx, state, w)
		s.syncPlayerStats(ctx, state, w)
		if state.mode == CycleFull {
			s.syncLastGame(ctx, state, w)
			s.syncNextGame(ctx, state, w)
		}
	})
	if recovered := catcher.Recovered(); recovered != nil {
		state.failures.Add(1)
		w.logger.ErrorContext(ctx, "team reconciliation panicked", "error", recovered.AsError())
	}
}

// call bounds one adapter request and spaces requests within a team.
func (s *ReconcileService) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestDelay > 0 {
		s.sleep(ctx, s.cfg.RequestDelay)
	}
	return context.WithTimeout(ctx, s.cfg.AdapterTimeout)
}

// overview fetches the secondary team overview once per team per cycle. It may be served from
// the feed cache, so it is only fit for history and next-game lookups.
func (s *ReconcileService) overview(ctx context.Context, state *cycleState, w *teamWork) (*feed.TeamOverview, error) {
	if w.overviewLoaded {
		return w.overview, w.overviewErr
	}
	return s.loadOverview(ctx, state, w, false)
}

// liveOverview refetches the overview past any cache. Status of a match of the day is read
// from this one.
func (s *ReconcileService) liveOverview(ctx context.Context, state *cycleState, w *teamWork) (*feed.TeamOverview, error) {
	if w.overviewLoaded && w.overviewLive {
		return w.overview, w.overviewErr
	}
	return s.loadOverview(feed.WithCacheBypass(ctx), state, w, true)
}

func (s *ReconcileService) loadOverview(ctx context.Context, state *cycleState, w *teamWork, live bool) (*feed.TeamOverview, error) {
	w.overviewLoaded, w.overviewLive = true, live
	w.overview, w.overviewErr = nil, nil
	if s.sources.Secondary == nil || w.team.SecondaryID == 0 {
		w.overviewErr = feed.ErrUnsupported
		return nil, w.overviewErr
	}

	callCtx, cancel := s.call(ctx)
	defer cancel()
	ov, err := s.sources.Secondary.GetTeamOverview(callCtx, w.team.SecondaryID)
	if err != nil {
		w.overviewErr = err
		s.logFailure(ctx, state, w.logger, "team_overview", match.TierSecondaryFeed, err)
		return nil, err
	}
	if ov.TeamName != "" && !identity.TeamMatches(ov.TeamName, w.team.Name) {
		w.overviewErr = errInconsistent
		w.logger.WarnContext(ctx, "secondary overview belongs to another team",
			"error_kind", errorKindInconsistency,
			"tier", string(match.TierSecondaryFeed),
			"feed_team", ov.TeamName,
			"secondary_id", w.team.SecondaryID,
		)
		return nil, w.overviewErr
	}
	w.overview = &ov
	return w.overview, nil
}

// primaryWindow loads finished or upcoming primary fixtures of a league once per cycle.
func (s *ReconcileService) primaryWindow(ctx context.Context, state *cycleState, w *teamWork, from, to time.Time) ([]feed.Fixture, error) {
	key := fmt.Sprintf("fixtures:%d:%d:%d", w.league.PrimaryLeagueID, from.Unix(), to.Unix())
	v, err := state.perCycle.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		callCtx, cancel := s.call(ctx)
		defer cancel()
		return s.sources.Primary.GetFixtures(callCtx, from, to, leagueFilter(w.league))
	})
	if err != nil {
		return nil, err
	}
	fixtures, _ := v.([]feed.Fixture)
	return fixtures, nil
}

// detail loads a fixture's match detail once per cycle, from the feed that issued the fixture.
func (s *ReconcileService) detail(ctx context.Context, state *cycleState, src feed.Source, fixtureID string) (feed.MatchDetail, error) {
	v, err := state.perCycle.GetOrLoad(ctx, "detail:"+fixtureID, func(ctx context.Context) (any, error) {
		callCtx, cancel := s.call(ctx)
		defer cancel()
		return src.GetMatchDetail(callCtx, fixtureID)
	})
	if err != nil {
		return feed.MatchDetail{}, err
	}
	detail, _ := v.(feed.MatchDetail)
	return detail, nil
}

func leagueFilter(l roster.League) []int64 {
	if l.PrimaryLeagueID == 0 {
		return nil
	}
	return []int64{l.PrimaryLeagueID}
}

// logFailure classifies an adapter error. Unsupported and not-found answers are not failures.
func (s *ReconcileService) logFailure(ctx context.Context, state *cycleState, logger *logging.Logger, stage string, tier match.Tier, err error) {
	switch {
	case err == nil:
		return
	case crerr.Is(err, feed.ErrUnsupported):
		return
	case crerr.Is(err, feed.ErrNotFound):
		logger.DebugContext(ctx, "feed has no data", "stage", stage, "tier", string(tier), "error", err)
	case feed.IsTransient(err):
		state.failures.Add(1)
		logger.WarnContext(ctx, "feed request failed", "error_kind", errorKindTransient, "stage", stage, "tier", string(tier), "error", err)
	default:
		state.failures.Add(1)
		logger.WarnContext(ctx, "feed request failed", "error_kind", errorKindUnexpected, "stage", stage, "tier", string(tier), "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// matchFromFixture builds the canonical record for rosterTeam's side of f.
func matchFromFixture(f feed.Fixture, rosterTeam string, tier match.Tier) (match.Match, bool) {
	isHome, ok := identity.ResolveSide(f.HomeTeam, f.AwayTeam, rosterTeam)
	if !ok {
		return match.Match{}, false
	}
	m := match.Match{
		FixtureID:   f.ID,
		Kickoff:     f.Kickoff.UTC(),
		HomeTeam:    f.HomeTeam,
		AwayTeam:    f.AwayTeam,
		HomeScore:   f.HomeScore,
		AwayScore:   f.AwayScore,
		Competition: f.Competition,
		IsHome:      isHome,
		Status:      f.Status,
		Source:      tier,
	}
	if f.Status.IsLive() {
		m.Minute = f.Minute
	}
	return m.Clone(), true
}

func sideOf(isHome bool) feed.Side {
	if isHome {
		return feed.SideHome
	}
	return feed.SideAway
}
