package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/matchwatch/external/fotmob"
	"github.com/riskibarqy/matchwatch/external/sportmonks"
	"github.com/riskibarqy/matchwatch/internal/config"
	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/domain/roster"
	"github.com/riskibarqy/matchwatch/internal/infrastructure/publisher"
	"github.com/riskibarqy/matchwatch/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchwatch/internal/infrastructure/repository/file"
	"github.com/riskibarqy/matchwatch/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchwatch/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchwatch/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
	"github.com/riskibarqy/matchwatch/internal/platform/resilience"
	"github.com/riskibarqy/matchwatch/internal/usecase"
)

// Tracker is the assembled tracker with the resources it owns.
type Tracker struct {
	Service *usecase.TrackerService
	Roster  *memory.RosterRepository

	closers []func() error
}

// Close releases what NewTracker opened. Call it after Service.Stop.
func (t *Tracker) Close() error {
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewTracker wires repositories, feeds and publishers from cfg. Without any upstream feed
// configured the tracker runs on the demo feed.
func NewTracker(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Tracker, error) {
	if logger == nil {
		logger = logging.Default()
	}
	now := time.Now()

	r, err := loadRoster(ctx, cfg)
	if err != nil {
		return nil, err
	}
	t := &Tracker{Roster: memory.NewRosterRepository(r)}
	records := memory.NewRecordRepository()

	nextGames, err := file.OpenNextGameRepository(cfg.CacheDir, now, logger)
	if err != nil {
		return nil, fmt.Errorf("open next game cache: %w", err)
	}

	reconcileCfg := usecase.ReconcileConfig{
		MaxWorkers:     cfg.Poll.MaxWorkers,
		RequestDelay:   cfg.Poll.RequestDelay,
		AdapterTimeout: cfg.Poll.AdapterTimeout,
		LookbackDays:   cfg.Poll.LookbackDays,
		LookaheadDays:  cfg.Poll.LookaheadDays,
	}
	trackerCfg := usecase.TrackerConfig{
		Mode:         usecase.ModeLive,
		LiveInterval: cfg.Poll.LiveInterval,
		IdleInterval: cfg.Poll.IdleInterval,
	}
	opts := []usecase.TrackerOption{usecase.WithFlushers(nextGames)}

	var sources usecase.Sources
	if cfg.DemoMode() {
		logger.Info("no upstream feed configured, using demo feed")
		sources.Primary = memory.NewDemoFeed(r, time.Now)
		reconcileCfg.PrimaryTier = match.TierDemo
		trackerCfg.Mode = usecase.ModeDemo
	} else {
		if cfg.SportMonks.Enabled {
			sources.Primary = newSportMonks(cfg, logger)
		}
		if cfg.Secondary.Enabled {
			secondary, closeFn := newSecondary(ctx, cfg, logger)
			t.closers = append(t.closers, closeFn)
			sources.Secondary = secondary
			opts = append(opts, usecase.WithLiveAware(secondary), usecase.WithFlushers(secondary))
			if sources.Primary == nil {
				// The reconcile engine needs a fixture source; the secondary answers the rest.
				sources.Primary = secondary
				reconcileCfg.PrimaryTier = match.TierSecondaryFeed
			}
		}
	}

	overrides, closeDB, err := newOverrides(ctx, cfg, logger)
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	if closeDB != nil {
		t.closers = append(t.closers, closeDB)
	}
	sources.Overrides = overrides

	if cfg.RedisURL != "" {
		client, err := publisher.Dial(ctx, cfg.RedisURL)
		if err != nil {
			_ = t.Close()
			return nil, err
		}
		t.closers = append(t.closers, client.Close)
		opts = append(opts, usecase.WithPublisher(publisher.NewRecordStream(client, publisher.RecordStreamConfig{
			TTL:    cfg.RedisRecordTTL,
			Logger: logger,
		})))
	}

	engine := usecase.NewReconcileService(t.Roster, records, nextGames, sources, reconcileCfg, logger)
	t.Service = usecase.NewTrackerService(engine, t.Roster, records, trackerCfg, logger, opts...)
	return t, nil
}

func loadRoster(ctx context.Context, cfg config.Config) (roster.Roster, error) {
	if cfg.RosterPath == "" {
		return memory.SeedRoster(), nil
	}
	r, err := file.LoadRoster(ctx, cfg.RosterPath)
	if err != nil {
		return roster.Roster{}, fmt.Errorf("load roster: %w", err)
	}
	return r, nil
}

func newSportMonks(cfg config.Config, logger *logging.Logger) *sportmonks.Client {
	return sportmonks.NewClient(sportmonks.ClientConfig{
		HTTPClient: tracedHTTPClient(cfg.SportMonks.Timeout),
		BaseURL:    cfg.SportMonks.BaseURL,
		Token:      cfg.SportMonks.Token,
		Timeout:    cfg.SportMonks.Timeout,
		MaxRetries: cfg.SportMonks.MaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportMonks.CircuitEnabled,
			FailureThreshold: cfg.SportMonks.CircuitFailureCount,
			OpenTimeout:      cfg.SportMonks.CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportMonks.CircuitHalfOpenMaxReq,
		}.WithStateLogger(logger),
	})
}

func newSecondary(ctx context.Context, cfg config.Config, logger *logging.Logger) (*cache.FeedSource, func() error) {
	clientCfg := fotmob.ClientConfig{
		HTTPClient:     tracedHTTPClient(cfg.Secondary.Timeout),
		BaseURL:        cfg.Secondary.BaseURL,
		PageURL:        cfg.Secondary.PageURL,
		Timeout:        cfg.Secondary.Timeout,
		Logger:         logger,
		CircuitBreaker: resilience.ScrapedFeedCircuitBreakerConfig().WithStateLogger(logger),
	}
	closeFn := func() error { return nil }
	if cfg.Secondary.BrowserEnabled {
		renderer := fotmob.NewChromeRenderer(cfg.Secondary.Timeout)
		clientCfg.Renderer = renderer
		closeFn = func() error {
			renderer.Close()
			return nil
		}
	}

	source := cache.NewFeedSource(fotmob.NewClient(clientCfg), cache.FeedSourceConfig{
		GeneralTTL: cfg.Secondary.CacheTTL,
		LiveTTL:    cfg.Secondary.LiveTTL,
		Dir:        cfg.CacheDir,
		Logger:     logger,
	})
	restored, err := source.Restore(ctx)
	if err != nil {
		logger.Warn("restore secondary feed cache failed", "error", err)
	} else {
		logger.Info("secondary feed cache restored", "entries", restored)
	}
	return source, closeFn
}

// tracedHTTPClient gives outbound feed calls client spans under the cycle's trace.
func tracedHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func newOverrides(ctx context.Context, cfg config.Config, logger *logging.Logger) (feed.Source, func() error, error) {
	if cfg.DBURL != "" {
		dsn, err := ParseOverridesDSN(cfg.DBURL, cfg.DBDisablePreparedBinary)
		if err != nil {
			return nil, nil, err
		}
		db, err := OpenDB(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("manual overrides from postgres", "host", dsn.Host, "db", dsn.DBName)
		return postgres.NewOverrideRepository(db), db.Close, nil
	}
	if cfg.OverridesPath != "" {
		logger.Info("manual overrides from file", "path", cfg.OverridesPath)
		return file.NewOverridesSource(cfg.OverridesPath), nil, nil
	}
	return nil, nil, nil
}

// OpenDB opens the override database with query tracing.
func OpenDB(ctx context.Context, dsn OverridesDSN) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", dsn.Conn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dsn.DBName),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func NewHTTPServer(cfg config.Config, tracker *usecase.TrackerService, logger *logging.Logger) (*http.Server, error) {
	handler := httpapi.NewHandler(tracker, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
