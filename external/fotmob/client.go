package fotmob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
	"github.com/riskibarqy/matchwatch/internal/platform/resilience"
)

const (
	feedName       = "fotmob"
	idPrefix       = feedName + ":"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultBaseURL = "https://www.fotmob.com/api"
	defaultPageURL = "https://www.fotmob.com"
)

// PageRenderer returns the fully rendered HTML of a page. It is the last resort when both the
// JSON API and the plain page request are blocked.
type PageRenderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	PageURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	Renderer       PageRenderer
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the secondary feed: team overviews, match details and player match history.
type Client struct {
	feed.Unsupported

	httpClient     *http.Client
	baseURL        string
	pageURL        string
	logger         *logging.Logger
	renderer       PageRenderer
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pageURL := strings.TrimRight(strings.TrimSpace(cfg.PageURL), "/")
	if pageURL == "" {
		pageURL = defaultPageURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		pageURL:        pageURL,
		logger:         logger.With("feed", feedName),
		renderer:       cfg.Renderer,
		breaker:        resilience.NewCircuitBreaker(feedName, breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string {
	return feedName
}

func (c *Client) GetTeamOverview(ctx context.Context, teamID int64) (feed.TeamOverview, error) {
	if teamID <= 0 {
		return feed.TeamOverview{}, crerr.Wrapf(feed.ErrUnsupported, "team id %d", teamID)
	}

	var payload teamPayload
	if err := c.getJSON(ctx, "/teams", url.Values{"id": {strconv.FormatInt(teamID, 10)}}, &payload); err != nil {
		return feed.TeamOverview{}, fmt.Errorf("fetch team overview team_id=%d: %w", teamID, err)
	}
	return mapTeamOverview(teamID, payload), nil
}

// GetMatchDetail tries the JSON API first. When that is blocked it reads the match page's
// embedded __NEXT_DATA__, and finally asks the renderer for the page if one is configured.
func (c *Client) GetMatchDetail(ctx context.Context, fixtureID string) (feed.MatchDetail, error) {
	matchID, ok := parseMatchID(fixtureID)
	if !ok {
		return feed.MatchDetail{}, crerr.Wrapf(feed.ErrUnsupported, "fixture id %q", fixtureID)
	}

	var payload matchDetailsPayload
	err := c.getJSON(ctx, "/matchDetails", url.Values{"matchId": {strconv.FormatInt(matchID, 10)}}, &payload)
	if err == nil {
		return mapMatchDetail(payload), nil
	}
	if !crerr.Is(err, feed.ErrBlocked) {
		return feed.MatchDetail{}, fmt.Errorf("fetch match details match_id=%d: %w", matchID, err)
	}

	c.logger.WarnContext(ctx, "match details api blocked, trying page data", "match_id", matchID)
	payload, pageErr := c.matchDetailsFromPage(ctx, matchID)
	if pageErr != nil {
		return feed.MatchDetail{}, fmt.Errorf("fetch match page match_id=%d: %w", matchID, pageErr)
	}
	return mapMatchDetail(payload), nil
}

func (c *Client) GetPlayerRecentMatches(ctx context.Context, playerFeedID int64) ([]feed.PlayerMatch, error) {
	if playerFeedID <= 0 {
		return nil, crerr.Wrapf(feed.ErrUnsupported, "player id %d", playerFeedID)
	}

	var payload playerPayload
	if err := c.getJSON(ctx, "/playerData", url.Values{"id": {strconv.FormatInt(playerFeedID, 10)}}, &payload); err != nil {
		return nil, fmt.Errorf("fetch player data player_id=%d: %w", playerFeedID, err)
	}
	return mapRecentMatches(payload.RecentMatches), nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err := c.fetch(ctx, fullURL, "application/json")
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode fotmob payload: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, fullURL, accept string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fotmob circuit breaker rejected request", "state", c.breaker.State())
			return nil, crerr.Mark(crerr.Wrap(err, "fotmob"), feed.ErrTransient)
		}
	}

	out, err, _ := c.flight.Do(accept+" "+fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL, accept)
		if c.circuitEnabled {
			c.breaker.Record(reqErr, isCircuitFailure)
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}
	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", accept)
	req.Header.Set("user-agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(feed.ErrTransient, "send request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, crerr.Wrapf(feed.ErrTransient, "read response body: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusUnauthorized:
		return nil, crerr.Wrapf(feed.ErrBlocked, "status=%d", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, crerr.Wrapf(feed.ErrNotFound, "status=%d", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= http.StatusInternalServerError:
		return nil, crerr.Wrapf(feed.ErrTransient, "status=%d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("fotmob status=%d", resp.StatusCode)
	}

	// An anti-bot interstitial answers 200 with an HTML challenge instead of JSON.
	if accept == "application/json" && strings.Contains(strings.ToLower(resp.Header.Get("content-type")), "text/html") {
		return nil, crerr.Wrap(feed.ErrBlocked, "html challenge instead of json")
	}
	return raw, nil
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, feed.ErrTransient)
}

func parseMatchID(fixtureID string) (int64, bool) {
	raw := strings.TrimSpace(fixtureID)
	if strings.Contains(raw, ":") {
		if !strings.HasPrefix(raw, idPrefix) {
			return 0, false
		}
		raw = strings.TrimPrefix(raw, idPrefix)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
