package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

type Cadence string

const (
	CadenceIdle Cadence = "idle"
	CadenceLive Cadence = "live"
)

// CycleRunner runs one reconciliation cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context, mode CycleMode) (CycleResult, error)
}

type PollSchedulerConfig struct {
	LiveInterval time.Duration
	IdleInterval time.Duration
}

type timerHandle interface {
	Stop() bool
}

// PollScheduler drives cycles from a single timer. The live cadence re-runs the today pipeline,
// the idle cadence the full one; the cadence is re-evaluated after every cycle.
type PollScheduler struct {
	runner    CycleRunner
	cfg       PollSchedulerConfig
	logger    *logging.Logger
	afterFunc func(d time.Duration, f func()) timerHandle

	mu       sync.Mutex
	timer    timerHandle
	cadence  Cadence
	nextRun  time.Time
	started  bool
	stopped  bool
	inflight sync.WaitGroup
	runCtx   context.Context
	cancel   context.CancelFunc
}

func NewPollScheduler(runner CycleRunner, cfg PollSchedulerConfig, logger *logging.Logger) *PollScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = 30 * time.Minute
	}
	if cfg.LiveInterval <= 0 || cfg.LiveInterval > cfg.IdleInterval {
		cfg.LiveInterval = min(time.Minute, cfg.IdleInterval)
	}
	return &PollScheduler{
		runner:  runner,
		cfg:     cfg,
		logger:  logger,
		cadence: CadenceIdle,
		afterFunc: func(d time.Duration, f func()) timerHandle {
			return time.AfterFunc(d, f)
		},
	}
}

// Start runs the full pipeline once, then arms the timer on the cadence that cycle calls for.
func (s *PollScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("poll scheduler already started")
	}
	s.started = true
	s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Unlock()

	hasLive, err := s.run(CycleFull)
	if err != nil {
		s.logger.WarnContext(ctx, "initial cycle failed", "error", err)
	}
	s.retarget(cadenceFor(hasLive))
	return nil
}

// Stop cancels the pending timer and waits, bounded by ctx, for a running cycle to finish.
// No cycle starts after Stop.
func (s *PollScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	cancel := s.cancel
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if cancel != nil {
		cancel()
	}
	return err
}

// Reevaluate retargets after a cycle that ran outside the timer.
func (s *PollScheduler) Reevaluate(hasLive bool) {
	s.mu.Lock()
	armed := s.started && !s.stopped
	s.mu.Unlock()
	if armed {
		s.retarget(cadenceFor(hasLive))
	}
}

func (s *PollScheduler) Cadence() Cadence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cadence
}

func (s *PollScheduler) NextRunAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

func (s *PollScheduler) tick() {
	mode := CycleFull
	if s.Cadence() == CadenceLive {
		mode = CycleToday
	}
	hasLive, err := s.run(mode)
	if errors.Is(err, errSchedulerStopped) {
		return
	}
	if err != nil {
		s.logger.Warn("scheduled cycle failed", "mode", string(mode), "error", err)
		s.retarget(s.Cadence())
		return
	}
	s.retarget(cadenceFor(hasLive))
}

var errSchedulerStopped = errors.New("poll scheduler stopped")

func (s *PollScheduler) run(mode CycleMode) (bool, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false, errSchedulerStopped
	}
	s.inflight.Add(1)
	ctx := s.runCtx
	s.mu.Unlock()
	defer s.inflight.Done()

	result, err := s.runner.RunCycle(ctx, mode)
	if err != nil {
		return false, err
	}
	return result.HasLive, nil
}

// retarget replaces the timer so the next wake time follows the new cadence.
func (s *PollScheduler) retarget(c Cadence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	if c != s.cadence {
		s.logger.Info("poll cadence changed", "from", string(s.cadence), "to", string(c))
	}
	s.cadence = c
	interval := s.interval(c)
	s.nextRun = time.Now().Add(interval)
	s.timer = s.afterFunc(interval, s.tick)
}

func (s *PollScheduler) interval(c Cadence) time.Duration {
	if c == CadenceLive {
		return s.cfg.LiveInterval
	}
	return s.cfg.IdleInterval
}

func cadenceFor(hasLive bool) Cadence {
	if hasLive {
		return CadenceLive
	}
	return CadenceIdle
}
