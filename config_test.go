package goPass

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "one second expiry valid",
			mutate: func(c *Config) {
				c.Token.ExpiryDuration = time.Second
			},
			wantValid: true,
		},
		{
			name: "zero expiry invalid",
			mutate: func(c *Config) {
				c.Token.ExpiryDuration = 0
			},
			wantValid: false,
		},
		{
			name: "negative expiry invalid",
			mutate: func(c *Config) {
				c.Token.ExpiryDuration = -time.Second
			},
			wantValid: false,
		},
		{
			name: "negative audit buffer invalid",
			mutate: func(c *Config) {
				c.Audit.BufferSize = -1
			},
			wantValid: false,
		},
		{
			name: "enabled audit with zero buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "latency histograms without metrics invalid",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: false,
		},
		{
			name: "latency histograms with metrics valid",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDefaultConfigExpiry(t *testing.T) {
	if got := DefaultConfig().Token.ExpiryDuration; got != 30*time.Second {
		t.Fatalf("expected 30s default expiry, got %v", got)
	}
}
