package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/domain/roster"
	"github.com/riskibarqy/matchwatch/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchwatch/internal/infrastructure/repository/memory"
	feedmock "github.com/riskibarqy/matchwatch/internal/mocks/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

// overviewFeed serves a team overview that a test can change between cycles.
type overviewFeed struct {
	feed.Unsupported

	mu       sync.Mutex
	overview feed.TeamOverview
	calls    int
}

func (f *overviewFeed) Name() string { return "fotmob" }

func (f *overviewFeed) GetTeamOverview(context.Context, int64) (feed.TeamOverview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.overview, nil
}

func (f *overviewFeed) set(ov feed.TeamOverview) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overview = ov
}

func (f *overviewFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func lazioOverview(status match.Status, kickoff time.Time) feed.TeamOverview {
	f := feed.Fixture{
		ID:       "fotmob:4193555",
		Kickoff:  kickoff,
		HomeTeam: "Inter",
		AwayTeam: "Lazio",
		Status:   status,
	}
	if status.HasPlay() {
		f.HomeScore, f.AwayScore = match.IntPtr(0), match.IntPtr(0)
		f.Minute = match.IntPtr(3)
	}
	return feed.TeamOverview{TeamID: 8636, TeamName: "Inter", NextMatch: &f}
}

func TestReconcileService_KickoffSeenThroughCachedOverview(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Date(2026, 3, 8, 17, 0, 0, 0, time.UTC)}
	kickoff := clock.Now().Add(2 * time.Minute)

	primary := feedmock.NewSource(t)
	primary.
		On("GetFixtures", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]feed.Fixture{}, nil)

	upstream := &overviewFeed{overview: lazioOverview(match.StatusUpcoming, kickoff)}
	secondary := cache.NewFeedSource(upstream, cache.FeedSourceConfig{
		Logger: logging.NewNop(),
		Now:    clock.Now,
	})

	records := memory.NewRecordRepository()
	svc := newTestEngine(derbyRoster(8636), records, Sources{Primary: primary, Secondary: secondary}, clock.Now())
	svc.now = clock.Now

	if _, err := svc.Run(context.Background(), CycleToday); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	slots, ok, err := records.Get(context.Background(), "inter-frattesi")
	if err != nil || !ok || slots.Today == nil || slots.Today.Status != match.StatusUpcoming {
		t.Fatalf("expected upcoming match after first cycle, got %+v err=%v", slots.Today, err)
	}
	before := upstream.callCount()

	upstream.set(lazioOverview(match.StatusLive, kickoff))
	clock.Advance(5 * time.Minute)

	result, err := svc.Run(context.Background(), CycleToday)
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if got := upstream.callCount(); got <= before {
		t.Fatalf("expected the overview to be refetched, calls stayed at %d", got)
	}
	slots, _, err = records.Get(context.Background(), "inter-frattesi")
	if err != nil || slots.Today == nil {
		t.Fatalf("expected today match after second cycle, err=%v", err)
	}
	if slots.Today.Status != match.StatusLive {
		t.Fatalf("expected live match once kicked off, got %s", slots.Today.Status)
	}
	if !result.HasLive {
		t.Fatalf("expected cycle to report a live match")
	}
}

func TestReconcileService_FinishedOverviewServedFromCache(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: derbyNight}
	last := derbyFixture("fotmob:4193490")

	primary := feedmock.NewSource(t)
	primary.
		On("GetFixtures", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]feed.Fixture{}, nil)

	upstream := &overviewFeed{overview: feed.TeamOverview{TeamID: 8636, TeamName: "Inter", LastMatch: &last}}
	secondary := cache.NewFeedSource(upstream, cache.FeedSourceConfig{
		Logger: logging.NewNop(),
		Now:    clock.Now,
	})

	svc := newTestEngine(derbyRoster(8636), memory.NewRecordRepository(), Sources{Primary: primary, Secondary: secondary}, clock.Now())
	svc.now = clock.Now

	for i := 0; i < 2; i++ {
		if _, err := svc.Run(context.Background(), CycleToday); err != nil {
			t.Fatalf("cycle %d: %v", i+1, err)
		}
		clock.Advance(5 * time.Minute)
	}
	if got := upstream.callCount(); got != 1 {
		t.Fatalf("expected one overview fetch for a finished match, got %d", got)
	}
}

func TestOpenMatchToday(t *testing.T) {
	t.Parallel()

	league := roster.League{ID: serieA, Timezone: "Europe/Rome"}
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	at := func(status match.Status, kickoff time.Time) *feed.Fixture {
		return &feed.Fixture{Kickoff: kickoff, Status: status}
	}

	tests := []struct {
		name string
		ov   feed.TeamOverview
		want bool
	}{
		{name: "no matches", ov: feed.TeamOverview{}},
		{name: "upcoming tonight", ov: feed.TeamOverview{NextMatch: at(match.StatusUpcoming, now.Add(7*time.Hour))}, want: true},
		{name: "finished this afternoon", ov: feed.TeamOverview{LastMatch: at(match.StatusFinished, now.Add(-2*time.Hour))}},
		{name: "upcoming tomorrow", ov: feed.TeamOverview{NextMatch: at(match.StatusUpcoming, now.Add(30*time.Hour))}},
		{name: "live last match", ov: feed.TeamOverview{LastMatch: at(match.StatusLive, now.Add(-time.Hour))}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := openMatchToday(league, &tt.ov, now); got != tt.want {
				t.Fatalf("openMatchToday() = %v, want %v", got, tt.want)
			}
		})
	}
}
