package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	CORSAllowedOrigins []string
	InternalJobToken   string

	RosterPath    string
	OverridesPath string
	CacheDir      string

	SportMonks SportMonksConfig
	Secondary  SecondaryConfig
	Poll       PollConfig

	DBURL                   string
	DBDisablePreparedBinary bool

	RedisURL       string
	RedisRecordTTL time.Duration

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

type SportMonksConfig struct {
	Enabled               bool
	BaseURL               string
	Token                 string
	Timeout               time.Duration
	MaxRetries            int
	CircuitEnabled        bool
	CircuitFailureCount   int
	CircuitOpenTimeout    time.Duration
	CircuitHalfOpenMaxReq int
}

type SecondaryConfig struct {
	Enabled        bool
	BaseURL        string
	PageURL        string
	Timeout        time.Duration
	BrowserEnabled bool
	CacheTTL       time.Duration
	LiveTTL        time.Duration
}

type PollConfig struct {
	LiveInterval   time.Duration
	IdleInterval   time.Duration
	RequestDelay   time.Duration
	AdapterTimeout time.Duration
	MaxWorkers     int
	LookbackDays   int
	LookaheadDays  int
}

// DemoMode reports whether no upstream feed is configured. The tracker then serves the demo feed.
func (c Config) DemoMode() bool {
	return !c.SportMonks.Enabled && !c.Secondary.Enabled
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "matchwatch"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		RosterPath:         strings.TrimSpace(getEnv("ROSTER_PATH", "")),
		OverridesPath:      strings.TrimSpace(getEnv("OVERRIDES_PATH", "")),
		CacheDir:           strings.TrimSpace(getEnv("CACHE_DIR", "./.cache")),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),
		RedisURL:           strings.TrimSpace(getEnv("REDIS_URL", "")),
		UptraceDSN:         strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PprofAddr:          strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.CacheDir == "" {
		return Config{}, fmt.Errorf("CACHE_DIR cannot be empty")
	}

	p := parser{}
	cfg.ReadTimeout = p.positiveDuration("APP_READ_TIMEOUT", "10s")
	cfg.WriteTimeout = p.positiveDuration("APP_WRITE_TIMEOUT", "15s")
	cfg.DBDisablePreparedBinary = p.boolean("DB_DISABLE_PREPARED_BINARY_RESULT", "true")
	cfg.RedisRecordTTL = p.positiveDuration("REDIS_RECORD_TTL", "24h")

	cfg.SportMonks = SportMonksConfig{
		BaseURL:               strings.TrimSpace(getEnv("SPORTMONKS_BASE_URL", "https://api.sportmonks.com/v3/football")),
		Token:                 strings.TrimSpace(getEnv("SPORTMONKS_TOKEN", "")),
		Timeout:               p.positiveDuration("SPORTMONKS_TIMEOUT", "20s"),
		MaxRetries:            p.minInt("SPORTMONKS_MAX_RETRIES", 1, 0),
		CircuitEnabled:        p.boolean("SPORTMONKS_CIRCUIT_ENABLED", "true"),
		CircuitFailureCount:   p.minInt("SPORTMONKS_CIRCUIT_FAILURE_COUNT", 5, 1),
		CircuitOpenTimeout:    p.positiveDuration("SPORTMONKS_CIRCUIT_OPEN_TIMEOUT", "15s"),
		CircuitHalfOpenMaxReq: p.minInt("SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ", 2, 1),
	}
	cfg.SportMonks.Enabled = p.boolean("SPORTMONKS_ENABLED", strconv.FormatBool(cfg.SportMonks.Token != ""))

	cfg.Secondary = SecondaryConfig{
		BaseURL:        strings.TrimSpace(getEnv("SECONDARY_BASE_URL", "")),
		PageURL:        strings.TrimSpace(getEnv("SECONDARY_PAGE_URL", "")),
		Timeout:        p.positiveDuration("SECONDARY_TIMEOUT", "15s"),
		BrowserEnabled: p.boolean("SECONDARY_BROWSER_ENABLED", "false"),
		CacheTTL:       p.positiveDuration("SECONDARY_CACHE_TTL", "1h"),
		LiveTTL:        p.positiveDuration("SECONDARY_LIVE_TTL", "30s"),
	}
	cfg.Secondary.Enabled = p.boolean("SECONDARY_ENABLED", strconv.FormatBool(cfg.Secondary.BaseURL != ""))

	cfg.Poll = PollConfig{
		LiveInterval:   p.positiveDuration("POLL_LIVE_INTERVAL", "1m"),
		IdleInterval:   p.positiveDuration("POLL_IDLE_INTERVAL", "30m"),
		RequestDelay:   p.nonNegativeDuration("REQUEST_DELAY", "250ms"),
		AdapterTimeout: p.positiveDuration("ADAPTER_TIMEOUT", "15s"),
		MaxWorkers:     p.minInt("MAX_WORKERS", 4, 1),
		LookbackDays:   p.minInt("LOOKBACK_DAYS", 21, 1),
		LookaheadDays:  p.minInt("LOOKAHEAD_DAYS", 45, 1),
	}

	cfg.UptraceEnabled = p.boolean("UPTRACE_ENABLED", "false")
	cfg.UptraceLogsEnabled = p.boolean("UPTRACE_LOGS_ENABLED", "true")
	cfg.PyroscopeEnabled = p.boolean("PYROSCOPE_ENABLED", "false")
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	cfg.PyroscopeUploadRate = p.positiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	cfg.PprofEnabled = p.boolean("PPROF_ENABLED", "false")

	if p.err != nil {
		return Config{}, p.err
	}

	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SportMonks.Enabled && c.SportMonks.Token == "" {
		return fmt.Errorf("SPORTMONKS_TOKEN is required when SPORTMONKS_ENABLED=true")
	}
	if c.Secondary.Enabled && c.Secondary.BaseURL == "" {
		return fmt.Errorf("SECONDARY_BASE_URL is required when SECONDARY_ENABLED=true")
	}
	if c.Poll.LiveInterval > c.Poll.IdleInterval {
		return fmt.Errorf("POLL_LIVE_INTERVAL must be <= POLL_IDLE_INTERVAL")
	}
	if c.UptraceEnabled && c.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if c.PyroscopeEnabled && c.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if c.PyroscopeEnabled && c.PyroscopeAppName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if c.PprofEnabled && c.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}
	return nil
}

// parser keeps the first error so Load can read every key before reporting.
type parser struct {
	err error
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *parser) boolean(key, fallback string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		p.fail(fmt.Errorf("parse %s: %w", key, err))
		return false
	}
	return v
}

func (p *parser) duration(key, fallback string) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		p.fail(fmt.Errorf("parse %s: %w", key, err))
		return 0
	}
	return v
}

func (p *parser) positiveDuration(key, fallback string) time.Duration {
	v := p.duration(key, fallback)
	if v <= 0 {
		p.fail(fmt.Errorf("%s must be > 0", key))
	}
	return v
}

func (p *parser) nonNegativeDuration(key, fallback string) time.Duration {
	v := p.duration(key, fallback)
	if v < 0 {
		p.fail(fmt.Errorf("%s must be >= 0", key))
	}
	return v
}

func (p *parser) minInt(key string, fallback, minimum int) int {
	v, err := getEnvAsInt(key, fallback)
	if err != nil {
		p.fail(fmt.Errorf("parse %s: %w", key, err))
		return fallback
	}
	if v < minimum {
		p.fail(fmt.Errorf("%s must be >= %d", key, minimum))
	}
	return v
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}
	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
