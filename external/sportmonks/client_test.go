package sportmonks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
	"github.com/riskibarqy/matchwatch/internal/platform/resilience"
)

const fixtureDetailJSON = `{
  "data": {
    "id": 19135002,
    "league_id": 384,
    "starting_at": "2026-10-18 18:45:00",
    "state_id": 5,
    "result_info": "Inter won after full-time.",
    "length": 90,
    "league": {"id": 384, "name": "Serie A"},
    "participants": [
      {"id": 113, "name": "AC Milan", "meta": {"location": "home"}},
      {"id": 2930, "name": "Inter", "meta": {"location": "away"}}
    ],
    "scores": [
      {"participant_id": 113, "description": "1ST_HALF", "score": {"goals": 0, "participant": "home"}},
      {"participant_id": 2930, "description": "1ST_HALF", "score": {"goals": 1, "participant": "away"}},
      {"participant_id": 113, "description": "CURRENT", "score": {"goals": 1, "participant": "home"}},
      {"participant_id": 2930, "description": "CURRENT", "score": {"goals": 2, "participant": "away"}}
    ],
    "events": [
      {"id": 3, "participant_id": 113, "type_id": 18, "player_name": "Samuel Chukwueze", "related_player_name": "Christian Pulisic", "minute": 65, "sort_order": 3},
      {"id": 1, "participant_id": 2930, "type_id": 14, "player_name": "Lautaro Martínez", "related_player_name": "Nicolò Barella", "minute": 23, "sort_order": 1},
      {"id": 2, "participant_id": 113, "type_id": 19, "player_name": "Fikayo Tomori", "minute": 45, "extra_minute": 2, "sort_order": 2},
      {"id": 4, "participant_id": 2930, "type_id": 15, "player_name": "Francesco Acerbi", "minute": 70, "sort_order": 4}
    ],
    "lineups": [
      {"player_id": 1, "team_id": 113, "type_id": 11, "player_name": "Christian Pulisic", "details": [{"type_id": 118, "data": {"value": 7.2}}]},
      {"player_id": 2, "team_id": 113, "type_id": 12, "player_name": "Samuel Chukwueze"},
      {"player_id": 3, "team_id": 2930, "type_id": 11, "player_name": "Lautaro Martínez"}
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		BaseURL:      server.URL,
		Token:        "secret-token",
		Timeout:      2 * time.Second,
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
	})
}

func TestGetMatchDetail_MapsEventsAndLineups(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fixtures/19135002" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_token") != "secret-token" {
			t.Errorf("expected api token query param")
		}
		_, _ = w.Write([]byte(fixtureDetailJSON))
	})

	detail, err := client.GetMatchDetail(context.Background(), "sportmonks:19135002")
	if err != nil {
		t.Fatalf("GetMatchDetail: %v", err)
	}

	if detail.Fixture.Status != match.StatusFinished {
		t.Fatalf("expected finished, got %s", detail.Fixture.Status)
	}
	if detail.Fixture.HomeScore == nil || *detail.Fixture.HomeScore != 1 || *detail.Fixture.AwayScore != 2 {
		t.Fatalf("expected current score 1-2, got %v-%v", detail.Fixture.HomeScore, detail.Fixture.AwayScore)
	}
	if detail.Fixture.Competition != "Serie A" {
		t.Fatalf("expected competition from league include, got %q", detail.Fixture.Competition)
	}
	if detail.EndMinute != 90 {
		t.Fatalf("expected end minute 90, got %d", detail.EndMinute)
	}
	if len(detail.Goals) != 2 || detail.Goals[0].Scorer != "Lautaro Martínez" || detail.Goals[0].Assist != "Nicolò Barella" {
		t.Fatalf("unexpected goals %+v", detail.Goals)
	}
	if !detail.Goals[1].OwnGoal || detail.Goals[1].Side != feed.SideAway {
		t.Fatalf("expected own goal on away side, got %+v", detail.Goals[1])
	}
	if len(detail.Substitutions) != 1 || detail.Substitutions[0].PlayerIn != "Samuel Chukwueze" || detail.Substitutions[0].Side != feed.SideHome {
		t.Fatalf("unexpected substitutions %+v", detail.Substitutions)
	}
	if len(detail.Bookings) != 1 || *detail.Bookings[0].Minute != 47 {
		t.Fatalf("expected booking at 45+2, got %+v", detail.Bookings)
	}
	if detail.Home == nil || len(detail.Home.Starters) != 1 || len(detail.Home.Bench) != 1 {
		t.Fatalf("unexpected home lineup %+v", detail.Home)
	}
	if rating := detail.Home.Starters[0].Rating; rating == nil || *rating != 7.2 {
		t.Fatalf("expected rating 7.2, got %v", rating)
	}
}

func TestGetMatchDetail_RejectsForeignFixtureID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	_, err := client.GetMatchDetail(context.Background(), "fotmob:4193490")
	if !crerr.Is(err, feed.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestGetFixtures_PaginatesAndFiltersLeagues(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/fixtures/between/2026-10-18/2026-10-18" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("filters"); got != "fixtureLeagues:384,8" {
			t.Errorf("unexpected filters %q", got)
		}
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"data":[{"id":2,"starting_at":"2026-10-18 18:45:00","state_id":22,
				"participants":[{"id":113,"name":"AC Milan","meta":{"location":"home"}},{"id":2930,"name":"Inter","meta":{"location":"away"}}],
				"periods":[{"type_id":2,"ticking":true,"minutes":67}]}],
				"pagination":{"has_more":true,"current_page":1}}`))
		default:
			_, _ = w.Write([]byte(`{"data":[{"id":1,"starting_at":"2026-10-18 12:30:00","state_id":1,
				"participants":[{"id":8,"name":"Liverpool","meta":{"location":"home"}},{"id":9,"name":"Arsenal","meta":{"location":"away"}}]}],
				"pagination":{"has_more":false,"current_page":2}}`))
		}
	})

	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	fixtures, err := client.GetFixtures(context.Background(), day, day, []int64{384, 8})
	if err != nil {
		t.Fatalf("GetFixtures: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 page requests, got %d", calls.Load())
	}
	if len(fixtures) != 2 || fixtures[0].ID != "sportmonks:1" {
		t.Fatalf("expected fixtures sorted by kickoff, got %+v", fixtures)
	}
	live := fixtures[1]
	if live.Status != match.StatusLive || live.Minute == nil || *live.Minute != 67 {
		t.Fatalf("expected live fixture at 67', got %+v", live)
	}
}

func TestExecuteRequest_WrapsTransientAndRedactsToken(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:        server.URL,
		Token:          "secret-token",
		MaxRetries:     1,
		RetryBackoff:   time.Millisecond,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1},
	})

	_, err := client.GetMatchDetail(context.Background(), "42")
	if !feed.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Fatalf("token leaked into error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, got %d calls", calls.Load())
	}

	_, err = client.GetMatchDetail(context.Background(), "42")
	if !crerr.Is(err, resilience.ErrCircuitOpen) || !feed.IsTransient(err) {
		t.Fatalf("expected open circuit marked transient, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("open circuit must not reach upstream")
	}
}

func TestMapFixtureStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stateID int64
		info    string
		want    match.Status
	}{
		{stateID: 1, want: match.StatusUpcoming},
		{stateID: 22, want: match.StatusLive},
		{stateID: 3, want: match.StatusLive},
		{stateID: 8, want: match.StatusFinished},
		{stateID: 10, want: match.StatusPostponed},
		{stateID: 18, want: match.StatusSuspended},
		{stateID: 15, want: match.StatusCancelled},
		{stateID: 19, info: "Match postponed", want: match.StatusPostponed},
	}
	for _, tt := range tests {
		if got := mapFixtureStatus(tt.stateID, tt.info); got != tt.want {
			t.Fatalf("state %d: expected %s, got %s", tt.stateID, tt.want, got)
		}
	}
}

func TestOverviewQueriesAreUnsupported(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.GetTeamOverview(context.Background(), 113); !crerr.Is(err, feed.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := client.GetPlayerRecentMatches(context.Background(), 1); !crerr.Is(err, feed.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestExecuteRequest_HonorsRetryAfterAndWarnsOnRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data": [], "rate_limit": {"resets_in_seconds": 1200, "remaining": 3, "requested_entity": "Fixture"}}`))
	})
	client.maxRetries = 1

	raw, err := client.executeRequest(context.Background(), client.baseURL+"/fixtures")
	if err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if calls.Load() != 2 || !strings.Contains(string(raw), "rate_limit") {
		t.Fatalf("unexpected calls=%d body=%s", calls.Load(), raw)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":     0,
		"abc":  0,
		"-1":   0,
		"5":    5 * time.Second,
		"3600": maxRetryAfter,
	}
	for in, want := range tests {
		if got := retryAfter(in); got != want {
			t.Fatalf("retryAfter(%q)=%s want %s", in, got, want)
		}
	}
}
