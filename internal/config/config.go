// Package config defines load-generator configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"time"
)

// Sleep profile names accepted by SleepProfile.
const (
	SleepProfileScaled = "scaled" // [0.5 * base_interval, 2 * base_interval]
	SleepProfileFixed  = "fixed"  // [100ms, 1s] regardless of base_interval
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseURL is the leaderboard API endpoint under test.
	BaseURL string `koanf:"base_url"`

	// Workers sets the number of concurrent simulated users.
	Workers int `koanf:"workers"`

	// MaxUsers bounds the random user ID range [1, MaxUsers].
	MaxUsers int `koanf:"max_users"`

	// BaseInterval is the base think-time between a worker's requests.
	BaseInterval time.Duration `koanf:"base_interval"`

	// MaxIterations bounds each worker's loop; 0 runs until interrupted.
	MaxIterations int `koanf:"max_iterations"`

	// ReportPeriod is the interval between periodic metrics reports.
	ReportPeriod time.Duration `koanf:"report_period"`

	// ReportEvery additionally reports every N completed iterations; 0 disables.
	ReportEvery int `koanf:"report_every"`

	// RequestTimeout applies per HTTP request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// SleepProfile selects the think-time distribution: scaled or fixed.
	SleepProfile string `koanf:"sleep_profile"`

	// MetricsAddr exposes Prometheus metrics when non-empty, e.g. ":9190".
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config using defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:       "info",
		BaseURL:        "http://localhost:8000/api/leaderboard",
		Workers:        10,
		MaxUsers:       1_000_000,
		BaseInterval:   time.Second,
		MaxIterations:  0,
		ReportPeriod:   5 * time.Second,
		ReportEvery:    0,
		RequestTimeout: 10 * time.Second,
		SleepProfile:   SleepProfileScaled,
		MetricsAddr:    "",
	}
	return c
}
