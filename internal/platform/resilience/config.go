package resilience

import (
	"time"

	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
	OnStateChange    StateChangeFunc
}

// DefaultCircuitBreakerConfig suits the licensed primary feed, which recovers quickly.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// ScrapedFeedCircuitBreakerConfig backs off longer and probes once.
func ScrapedFeedCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	}
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// WithStateLogger logs every transition, then calls any callback already set.
func (c CircuitBreakerConfig) WithStateLogger(logger *logging.Logger) CircuitBreakerConfig {
	if logger == nil {
		return c
	}
	prev := c.OnStateChange
	c.OnStateChange = func(name string, from, to CircuitState) {
		args := []any{"feed", name, "from", string(from), "to", string(to)}
		if to == CircuitStateOpen {
			logger.Warn("feed circuit opened", append(args, "error_kind", "transient")...)
		} else {
			logger.Info("feed circuit state changed", args...)
		}
		if prev != nil {
			prev(name, from, to)
		}
	}
	return c
}
