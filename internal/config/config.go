// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New and are the lowest koanf layer.
// - Durations are carried as milliseconds and exposed through helpers.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CorpusPath is the JSON list of outfit pairs the model is trained on.
	CorpusPath string `koanf:"corpus_path"`

	// ImageIndexPath is the photo catalog (.csv or .json).
	ImageIndexPath string `koanf:"image_index_path"`

	// ImageBaseURL is prefixed to catalog filenames.
	ImageBaseURL string `koanf:"image_base_url"`

	// DefaultK is used when a request omits k; MaxK caps it.
	DefaultK int `koanf:"default_k"`
	MaxK     int `koanf:"max_k"`

	// FallbackFactor multiplies k when over-fetching Naive-Bayes candidates.
	FallbackFactor int `koanf:"fallback_factor"`

	// OracleURL is the label oracle's analyze endpoint. Empty disables photo uploads.
	OracleURL       string `koanf:"oracle_url"`
	OracleTimeoutMS int    `koanf:"oracle_timeout_ms"`

	// LabelCacheSize bounds the image label cache; 0 disables it.
	LabelCacheSize int `koanf:"label_cache_size"`

	// MaxUploadBytes caps multipart request bodies.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// Breaker settings for the oracle client.
	BreakerMaxRequests       uint32 `koanf:"breaker_max_requests"`
	BreakerTimeoutMS         int    `koanf:"breaker_timeout_ms"`
	BreakerFailureThreshold  uint32 `koanf:"breaker_failure_threshold"`
	ShutdownTimeoutMS        int    `koanf:"shutdown_timeout_ms"`
	MetricsRefreshIntervalMS int    `koanf:"metrics_refresh_interval_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":9080",
		CorpusPath:               "data/verified_photo_data.json",
		ImageIndexPath:           "data/image_label_index.csv",
		ImageBaseURL:             "",
		DefaultK:                 5,
		MaxK:                     50,
		FallbackFactor:           2,
		OracleURL:                "",
		OracleTimeoutMS:          30_000,
		LabelCacheSize:           1024,
		MaxUploadBytes:           10 << 20,
		BreakerMaxRequests:       1,
		BreakerTimeoutMS:         30_000,
		BreakerFailureThreshold:  5,
		ShutdownTimeoutMS:        10_000,
		MetricsRefreshIntervalMS: 15_000,
	}
}

// OracleTimeout returns the oracle request timeout.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.OracleTimeoutMS) * time.Millisecond
}

// BreakerTimeout returns how long the oracle breaker stays open.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown deadline.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// MetricsRefreshInterval returns the system metrics sampling period.
func (c *Config) MetricsRefreshInterval() time.Duration {
	return time.Duration(c.MetricsRefreshIntervalMS) * time.Millisecond
}

// Validate checks field ranges and cross-field constraints.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "addr must not be empty")
	}
	if strings.TrimSpace(c.CorpusPath) == "" {
		problems = append(problems, "corpus_path must not be empty")
	}
	if strings.TrimSpace(c.ImageIndexPath) == "" {
		problems = append(problems, "image_index_path must not be empty")
	}
	if c.DefaultK < 1 {
		problems = append(problems, "default_k must be at least 1")
	}
	if c.MaxK < c.DefaultK {
		problems = append(problems, "max_k must not be less than default_k")
	}
	if c.FallbackFactor < 1 {
		problems = append(problems, "fallback_factor must be at least 1")
	}
	if c.OracleTimeoutMS <= 0 {
		problems = append(problems, "oracle_timeout_ms must be positive")
	}
	if c.LabelCacheSize < 0 {
		problems = append(problems, "label_cache_size must not be negative")
	}
	if c.MaxUploadBytes <= 0 {
		problems = append(problems, "max_upload_bytes must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format %q must be text or json", c.LogFormat))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
