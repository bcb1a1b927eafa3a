package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/domain/roster"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

const (
	ModeLive = "live"
	ModeDemo = "demo"
)

// RecordPublisher pushes assembled records downstream after a cycle.
type RecordPublisher interface {
	PublishRecords(ctx context.Context, records []match.Record) (int, error)
}

// LiveAware is told whether the last cycle saw live matches, to pick its cache TTL.
type LiveAware interface {
	SetLive(live bool)
}

// Flusher persists state at the end of a cycle and on shutdown.
type Flusher interface {
	Flush(ctx context.Context) error
}

type TrackerConfig struct {
	Mode         string
	LiveInterval time.Duration
	IdleInterval time.Duration
}

type TrackerOption func(*TrackerService)

func WithPublisher(p RecordPublisher) TrackerOption {
	return func(s *TrackerService) { s.publisher = p }
}

func WithFlushers(f ...Flusher) TrackerOption {
	return func(s *TrackerService) { s.flushers = append(s.flushers, f...) }
}

func WithLiveAware(l ...LiveAware) TrackerOption {
	return func(s *TrackerService) { s.liveAware = append(s.liveAware, l...) }
}

type TrackerStatus struct {
	Mode        string     `json:"mode"`
	Cadence     Cadence    `json:"cadence"`
	HasLive     bool       `json:"has_live"`
	Players     int        `json:"players"`
	LastCycleAt *time.Time `json:"last_cycle_at,omitempty"`
	LastCycleID string     `json:"last_cycle_id,omitempty"`
	NextCycleAt *time.Time `json:"next_cycle_at,omitempty"`
}

// TrackerService is the surface the API and CLI use: per-player records, liveness and the
// scheduler lifecycle.
type TrackerService struct {
	engine    *ReconcileService
	roster    roster.Repository
	records   match.Repository
	scheduler *PollScheduler
	publisher RecordPublisher
	flushers  []Flusher
	liveAware []LiveAware
	mode      string
	logger    *logging.Logger

	mu        sync.RWMutex
	lastCycle *CycleResult
}

func NewTrackerService(
	engine *ReconcileService,
	rosterRepo roster.Repository,
	records match.Repository,
	cfg TrackerConfig,
	logger *logging.Logger,
	opts ...TrackerOption,
) *TrackerService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLive
	}
	s := &TrackerService{
		engine:  engine,
		roster:  rosterRepo,
		records: records,
		mode:    cfg.Mode,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scheduler = NewPollScheduler(s, PollSchedulerConfig{
		LiveInterval: cfg.LiveInterval,
		IdleInterval: cfg.IdleInterval,
	}, logger)
	return s
}

func (s *TrackerService) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "tracker starting", "mode", s.mode)
	return s.scheduler.Start(ctx)
}

// Stop halts the scheduler and flushes persisted caches even when the wait timed out.
func (s *TrackerService) Stop(ctx context.Context) error {
	stopErr := s.scheduler.Stop(ctx)
	flushErr := s.flush(context.WithoutCancel(ctx))
	return errors.Join(stopErr, flushErr)
}

// RunCycle runs one cycle and the post-cycle hooks: cache liveness, persistence and publishing.
func (s *TrackerService) RunCycle(ctx context.Context, mode CycleMode) (CycleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackerService.RunCycle")
	defer span.End()

	result, err := s.engine.Run(ctx, mode)
	if err != nil {
		return result, err
	}

	for _, l := range s.liveAware {
		l.SetLive(result.HasLive)
	}
	if err := s.flush(ctx); err != nil {
		s.logger.WarnContext(ctx, "flush caches failed", "cycle_id", result.ID, "error", err)
	}
	if s.publisher != nil {
		records, err := s.recordList(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "collect records for publishing failed", "cycle_id", result.ID, "error", err)
		} else if n, err := s.publisher.PublishRecords(ctx, records); err != nil {
			s.logger.WarnContext(ctx, "publish records failed", "cycle_id", result.ID, "error", err)
		} else if n > 0 {
			s.logger.DebugContext(ctx, "records published", "cycle_id", result.ID, "count", n)
		}
	}

	s.mu.Lock()
	s.lastCycle = &result
	s.mu.Unlock()
	return result, nil
}

// TriggerCycle runs a full cycle on demand and retargets the scheduler.
func (s *TrackerService) TriggerCycle(ctx context.Context) (CycleResult, error) {
	result, err := s.RunCycle(ctx, CycleFull)
	if err != nil {
		return result, err
	}
	s.scheduler.Reevaluate(result.HasLive)
	return result, nil
}

func (s *TrackerService) HasLiveMatches(ctx context.Context) bool {
	live, err := s.records.HasLive(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "read live state failed", "error", err)
		return false
	}
	return live
}

// GetRecord returns the exposed record of a player. ok is false when nothing is known yet.
func (s *TrackerService) GetRecord(ctx context.Context, playerID string) (match.Record, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackerService.GetRecord")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return match.Record{}, false, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	p, found, err := s.roster.GetPlayer(ctx, playerID)
	if err != nil {
		return match.Record{}, false, fmt.Errorf("get player %s: %w", playerID, err)
	}
	if !found {
		return match.Record{}, false, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}
	slots, ok, err := s.records.Get(ctx, playerID)
	if err != nil {
		return match.Record{}, false, fmt.Errorf("get record %s: %w", playerID, err)
	}
	if !ok {
		return match.Record{}, false, nil
	}
	rec, ok := assembleRecord(p, slots)
	return rec, ok, nil
}

func (s *TrackerService) GetAllRecords(ctx context.Context) (map[string]match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackerService.GetAllRecords")
	defer span.End()

	list, err := s.recordList(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]match.Record, len(list))
	for _, rec := range list {
		out[rec.PlayerID] = rec
	}
	return out, nil
}

// recordList assembles records in roster order.
func (s *TrackerService) recordList(ctx context.Context) ([]match.Record, error) {
	players, err := s.roster.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roster players: %w", err)
	}
	all, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	out := make([]match.Record, 0, len(players))
	for _, p := range players {
		slots, ok := all[p.ID]
		if !ok {
			continue
		}
		if rec, ok := assembleRecord(p, slots); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *TrackerService) Status(ctx context.Context) TrackerStatus {
	status := TrackerStatus{
		Mode:    s.mode,
		Cadence: s.scheduler.Cadence(),
		HasLive: s.HasLiveMatches(ctx),
	}
	if players, err := s.roster.ListPlayers(ctx); err == nil {
		status.Players = len(players)
	}
	if next := s.scheduler.NextRunAt(); !next.IsZero() {
		status.NextCycleAt = &next
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastCycle != nil {
		at := s.lastCycle.FinishedAt
		status.LastCycleAt = &at
		status.LastCycleID = s.lastCycle.ID
	}
	return status
}

// UpdatePlayerTeam records a transfer and drops the today, next and missed games of the old club.
func (s *TrackerService) UpdatePlayerTeam(ctx context.Context, playerID, team string) (roster.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackerService.UpdatePlayerTeam")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	team = strings.TrimSpace(team)
	if playerID == "" || team == "" {
		return roster.Player{}, fmt.Errorf("%w: player id and team are required", ErrInvalidInput)
	}
	p, err := s.roster.UpdateTeam(ctx, playerID, team)
	if errors.Is(err, roster.ErrPlayerNotFound) {
		return roster.Player{}, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}
	if err != nil {
		return roster.Player{}, fmt.Errorf("update team of %s: %w", playerID, err)
	}
	s.logger.InfoContext(ctx, "player team updated", "player_id", p.ID, "team", p.Team)
	if err := s.engine.ForgetOtherClubs(ctx, p); err != nil {
		s.logger.WarnContext(ctx, "drop former club records failed", "player_id", p.ID, "error", err)
	}
	return p, nil
}

func (s *TrackerService) flush(ctx context.Context) error {
	var errs []error
	for _, f := range s.flushers {
		if err := f.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// assembleRecord exposes the match of the day when there is one, otherwise no_match_today with
// the last and next games. A player with neither has no record. A missed game the player's
// current team did not play is left out.
func assembleRecord(p roster.Player, slots match.Slots) (match.Record, bool) {
	rec := match.Record{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Team:       p.Team,
		UpdatedAt:  slots.UpdatedAt,
	}
	if slots.Missed != nil && playsFor(*slots.Missed, p.Team) {
		rec.MissedGame = slots.Missed.ClonePtr()
	}
	switch {
	case slots.Today != nil:
		rec.Status = slots.Today.Status
		rec.Today = slots.Today.ClonePtr()
	case slots.Last != nil || slots.Next != nil:
		rec.Status = match.StatusNoMatchToday
		rec.LastGame = slots.Last.ClonePtr()
		rec.NextGame = slots.Next.ClonePtr()
	default:
		return match.Record{}, false
	}
	return rec, true
}
