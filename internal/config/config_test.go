package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_DemoModeWithoutCredentials(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SPORTMONKS_TOKEN", "")
	t.Setenv("SECONDARY_BASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.DemoMode() {
		t.Fatalf("expected demo mode without feed credentials")
	}
	if cfg.Poll.LiveInterval != time.Minute || cfg.Poll.IdleInterval != 30*time.Minute {
		t.Fatalf("unexpected poll intervals %+v", cfg.Poll)
	}
	if cfg.Poll.MaxWorkers != 4 || cfg.Poll.RequestDelay != 250*time.Millisecond || cfg.Poll.AdapterTimeout != 15*time.Second {
		t.Fatalf("unexpected poll defaults %+v", cfg.Poll)
	}
	if cfg.Secondary.CacheTTL != time.Hour || cfg.Secondary.LiveTTL != 30*time.Second {
		t.Fatalf("unexpected secondary ttl defaults %+v", cfg.Secondary)
	}
}

func TestLoad_TokenEnablesSportMonks(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SPORTMONKS_TOKEN", "abc")
	t.Setenv("SPORTMONKS_TIMEOUT", "7s")
	t.Setenv("SPORTMONKS_MAX_RETRIES", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.SportMonks.Enabled || cfg.DemoMode() {
		t.Fatalf("expected sportmonks enabled and demo mode off")
	}
	if cfg.SportMonks.Timeout != 7*time.Second || cfg.SportMonks.MaxRetries != 3 {
		t.Fatalf("unexpected sportmonks config %+v", cfg.SportMonks)
	}
}

func TestLoad_SportMonksRequiresToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SPORTMONKS_ENABLED", "true")
	t.Setenv("SPORTMONKS_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when SPORTMONKS_ENABLED=true without token")
	}
}

func TestLoad_SecondaryFromBaseURL(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SECONDARY_BASE_URL", "https://feed.example.com/api")
	t.Setenv("SECONDARY_LIVE_TTL", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Secondary.Enabled {
		t.Fatalf("expected secondary feed enabled")
	}
	if cfg.Secondary.LiveTTL != 10*time.Second {
		t.Fatalf("unexpected live ttl %s", cfg.Secondary.LiveTTL)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "POLL_LIVE_INTERVAL", value: "0s"},
		{key: "POLL_IDLE_INTERVAL", value: "soon"},
		{key: "MAX_WORKERS", value: "0"},
		{key: "REQUEST_DELAY", value: "-1s"},
		{key: "ADAPTER_TIMEOUT", value: "0s"},
		{key: "SPORTMONKS_CIRCUIT_FAILURE_COUNT", value: "0"},
		{key: "SECONDARY_BROWSER_ENABLED", value: "maybe"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_LiveIntervalCannotExceedIdle(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("POLL_LIVE_INTERVAL", "1h")
	t.Setenv("POLL_IDLE_INTERVAL", "30m")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when live interval exceeds idle interval")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected dsn %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "matchwatch-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://pyroscope:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "matchwatch-test" {
		t.Fatalf("unexpected pyroscope app name %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("WARNING") != logging.LevelWarn {
		t.Fatalf("expected warn level")
	}
	if parseLogLevel("nonsense") != logging.LevelInfo {
		t.Fatalf("expected info fallback")
	}
}
