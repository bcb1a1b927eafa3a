package cache

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/infrastructure/repository/file"
	basecache "github.com/riskibarqy/matchwatch/internal/platform/cache"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
	"github.com/riskibarqy/matchwatch/internal/platform/resilience"
)

const (
	SecondaryFeedFile = "secondary_feed.json"

	DefaultGeneralTTL = time.Hour
	DefaultLiveTTL    = 30 * time.Second

	keyDetail   = "detail:"
	keyOverview = "overview:"
	keyPlayer   = "player:"
)

type FeedSourceConfig struct {
	GeneralTTL time.Duration
	LiveTTL    time.Duration
	// Dir holds the persisted cache file. Empty disables persistence.
	Dir    string
	Logger *logging.Logger
	Now    func() time.Time
}

// FeedSource caches a secondary feed's detail, overview and player-history responses.
// While live mode is on, entries older than the live TTL are refetched.
// Fixture and override queries pass straight through.
type FeedSource struct {
	next       feed.Source
	store      *basecache.Store
	flight     resilience.SingleFlight
	generalTTL time.Duration
	liveTTL    time.Duration
	live       atomic.Bool
	path       string
	logger     *logging.Logger
	now        func() time.Time
}

func NewFeedSource(next feed.Source, cfg FeedSourceConfig) *FeedSource {
	if cfg.GeneralTTL <= 0 {
		cfg.GeneralTTL = DefaultGeneralTTL
	}
	if cfg.LiveTTL <= 0 {
		cfg.LiveTTL = DefaultLiveTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &FeedSource{
		next:       next,
		store:      basecache.NewStore(cfg.GeneralTTL).WithClock(cfg.Now),
		generalTTL: cfg.GeneralTTL,
		liveTTL:    cfg.LiveTTL,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if strings.TrimSpace(cfg.Dir) != "" {
		s.path = filepath.Join(cfg.Dir, SecondaryFeedFile)
	}
	return s
}

// SetLive switches between the general and the live TTL.
func (s *FeedSource) SetLive(live bool) {
	s.live.Store(live)
}

func (s *FeedSource) Live() bool {
	return s.live.Load()
}

func (s *FeedSource) Name() string {
	return s.next.Name()
}

func (s *FeedSource) GetFixtures(ctx context.Context, from, to time.Time, leagueIDs []int64) ([]feed.Fixture, error) {
	return s.next.GetFixtures(ctx, from, to, leagueIDs)
}

func (s *FeedSource) LoadManualOverrides(ctx context.Context) (map[string][]feed.PlayerMatch, error) {
	return s.next.LoadManualOverrides(ctx)
}

func (s *FeedSource) GetMatchDetail(ctx context.Context, fixtureID string) (feed.MatchDetail, error) {
	v, err := s.load(ctx, keyDetail+fixtureID, func(ctx context.Context) (any, error) {
		return s.next.GetMatchDetail(ctx, fixtureID)
	})
	if err != nil {
		return feed.MatchDetail{}, err
	}
	detail, _ := v.(feed.MatchDetail)
	return detail, nil
}

func (s *FeedSource) GetTeamOverview(ctx context.Context, teamID int64) (feed.TeamOverview, error) {
	v, err := s.load(ctx, keyOverview+strconv.FormatInt(teamID, 10), func(ctx context.Context) (any, error) {
		return s.next.GetTeamOverview(ctx, teamID)
	})
	if err != nil {
		return feed.TeamOverview{}, err
	}
	overview, _ := v.(feed.TeamOverview)
	return overview, nil
}

func (s *FeedSource) GetPlayerRecentMatches(ctx context.Context, playerFeedID int64) ([]feed.PlayerMatch, error) {
	v, err := s.load(ctx, keyPlayer+strconv.FormatInt(playerFeedID, 10), func(ctx context.Context) (any, error) {
		items, err := s.next.GetPlayerRecentMatches(ctx, playerFeedID)
		if err != nil {
			return nil, err
		}
		return append([]feed.PlayerMatch(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	items, _ := v.([]feed.PlayerMatch)
	return append([]feed.PlayerMatch(nil), items...), nil
}

func (s *FeedSource) load(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if !feed.CacheBypassed(ctx) {
		if e, ok := s.store.GetEntry(ctx, key); ok && s.fresh(e) {
			return e.Value, nil
		}
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.store.SetWithTTL(ctx, key, loaded, s.generalTTL)
		return loaded, nil
	})
	return v, err
}

func (s *FeedSource) fresh(e basecache.Entry[any]) bool {
	if !s.live.Load() {
		return true
	}
	return s.now().Sub(e.StoredAt) < s.liveTTL
}

type persistedFeedCache struct {
	Details   map[string]basecache.Entry[feed.MatchDetail]   `json:"details"`
	Overviews map[string]basecache.Entry[feed.TeamOverview]  `json:"overviews"`
	Players   map[string]basecache.Entry[[]feed.PlayerMatch] `json:"players"`
}

// Restore loads the persisted cache file. Entries past their TTL are skipped.
func (s *FeedSource) Restore(_ context.Context) (int, error) {
	if s.path == "" {
		return 0, nil
	}

	var doc persistedFeedCache
	found, err := file.ReadJSON(s.path, &doc)
	if err != nil || !found {
		return 0, err
	}

	entries := make(map[string]basecache.Entry[any], len(doc.Details)+len(doc.Overviews)+len(doc.Players))
	for key, e := range doc.Details {
		entries[key] = basecache.Entry[any]{Value: e.Value, StoredAt: e.StoredAt, TTL: e.TTL}
	}
	for key, e := range doc.Overviews {
		entries[key] = basecache.Entry[any]{Value: e.Value, StoredAt: e.StoredAt, TTL: e.TTL}
	}
	for key, e := range doc.Players {
		entries[key] = basecache.Entry[any]{Value: e.Value, StoredAt: e.StoredAt, TTL: e.TTL}
	}
	restored := s.store.Restore(entries)
	s.logger.Info("secondary feed cache restored", "path", s.path, "entries", restored)
	return restored, nil
}

// Flush writes every fresh entry to the cache file.
func (s *FeedSource) Flush(_ context.Context) error {
	if s.path == "" {
		return nil
	}

	doc := persistedFeedCache{
		Details:   make(map[string]basecache.Entry[feed.MatchDetail]),
		Overviews: make(map[string]basecache.Entry[feed.TeamOverview]),
		Players:   make(map[string]basecache.Entry[[]feed.PlayerMatch]),
	}
	for key, e := range s.store.Snapshot() {
		switch v := e.Value.(type) {
		case feed.MatchDetail:
			doc.Details[key] = basecache.Entry[feed.MatchDetail]{Value: v, StoredAt: e.StoredAt, TTL: e.TTL}
		case feed.TeamOverview:
			doc.Overviews[key] = basecache.Entry[feed.TeamOverview]{Value: v, StoredAt: e.StoredAt, TTL: e.TTL}
		case []feed.PlayerMatch:
			doc.Players[key] = basecache.Entry[[]feed.PlayerMatch]{Value: v, StoredAt: e.StoredAt, TTL: e.TTL}
		}
	}
	return file.WriteJSON(s.path, doc)
}
