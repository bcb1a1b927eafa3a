package sportmonks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
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
	feedName       = "sportmonks"
	defaultBaseURL = "https://api.sportmonks.com/v3/football"
	maxPages       = 20
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the primary fixture feed. It answers fixture and match-detail queries; the team
// overview, player history and override queries are not offered by this upstream.
type Client struct {
	feed.Unsupported

	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	retryBackoff   time.Duration
	logger         *logging.Logger
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     max(cfg.MaxRetries, 0),
		retryBackoff:   backoff,
		logger:         logger.With("feed", feedName),
		breaker:        resilience.NewCircuitBreaker(feedName, breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string {
	return feedName
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "state", c.breaker.State())
			return nil, crerr.Mark(crerr.Wrap(err, "sportmonks"), feed.ErrTransient)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			c.breaker.Record(reqErr, feed.IsTransient)
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

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
}

// maxRetryAfter caps how long a 429 may stall a team's slice of the cycle.
const maxRetryAfter = 30 * time.Second

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, wait, err := c.attempt(ctx, fullURL)
		if err == nil {
			c.noteRateLimit(ctx, raw)
			return raw, nil
		}
		if !feed.IsTransient(err) {
			return nil, err
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}
		if wait <= 0 {
			wait = time.Duration(attempt+1) * c.retryBackoff
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

// attempt performs one GET. The duration is the upstream's Retry-After hint, if any.
func (c *Client) attempt(ctx context.Context, fullURL string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, crerr.Wrapf(feed.ErrTransient, "send request: %s", sanitizeSensitiveText(err.Error(), c.token))
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
	_ = resp.Body.Close()

	switch {
	case readErr != nil:
		return nil, 0, crerr.Wrapf(feed.ErrTransient, "read response body: %v", readErr)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, 0, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, 0, crerr.Wrapf(feed.ErrNotFound, "provider status=%d", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, retryAfter(resp.Header.Get("Retry-After")), crerr.Wrapf(feed.ErrBlocked, "provider rate limited: %s", abbreviateBody(raw))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, 0, crerr.Wrapf(feed.ErrTransient, "provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	default:
		return nil, 0, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}

// noteRateLimit warns when the entity's hourly allowance is nearly spent.
func (c *Client) noteRateLimit(ctx context.Context, raw []byte) {
	var meta struct {
		RateLimit *rateLimit `json:"rate_limit"`
	}
	if err := sonic.Unmarshal(raw, &meta); err != nil || meta.RateLimit == nil {
		return
	}
	if rl := meta.RateLimit; rl.Remaining < lowRateLimitRemaining {
		c.logger.WarnContext(ctx, "sportmonks rate limit nearly exhausted",
			"entity", rl.RequestedEntity,
			"remaining", rl.Remaining,
			"resets_in_seconds", rl.ResetsInSeconds,
		)
	}
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

// relation decodes an include that arrives either bare or wrapped in {"data": ...}.
type relation[T any] struct {
	Data T
	Set  bool
}

func (r *relation[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Set = false
		return nil
	}

	var wrapped struct {
		Data *T `json:"data"`
	}
	if err := sonic.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Data != nil {
		r.Data = *wrapped.Data
		r.Set = true
		return nil
	}

	var direct T
	if err := sonic.Unmarshal(trimmed, &direct); err != nil {
		return err
	}
	r.Data = direct
	r.Set = true
	return nil
}

func lookupMapValue(src map[string]any, key string) any {
	if src == nil {
		return nil
	}
	return src[key]
}

func asFloat64(value any) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
