package goPass

import (
	"errors"
	"time"
)

// DefaultExpiry is the validity window used when no expiry is configured.
const DefaultExpiry = 30 * time.Second

// Config is the Engine configuration consumed by Builder.
type Config struct {
	Token   TokenConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// TokenConfig controls token validity.
type TokenConfig struct {
	// ExpiryDuration is how long a token verifies after its issue time.
	// A token presented exactly at issue time plus ExpiryDuration is rejected.
	ExpiryDuration time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters and latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			ExpiryDuration: DefaultExpiry,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// Validate reports the first invalid setting in c.
func (c *Config) Validate() error {
	if c.Token.ExpiryDuration <= 0 {
		return errors.New("Token ExpiryDuration must be > 0")
	}

	if c.Audit.BufferSize < 0 {
		return errors.New("Audit BufferSize must be >= 0")
	}
	if c.Audit.Enabled && c.Audit.BufferSize == 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
