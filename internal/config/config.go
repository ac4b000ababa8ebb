// Package config defines the viewer configuration and how it is loaded.
//
// Conventions:
//   - New(ctx) returns defaults; Load(ctx) layers a YAML file and env vars on top.
//   - Durations are configured in milliseconds to keep env overrides plain integers.
package config

import (
	"context"
	"time"
	_ "time/tzdata" // contest timezones must resolve on minimal images
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the viewer HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// APIBaseURL is the scoreboard backend serving /api/*.
	APIBaseURL string `koanf:"api_base_url"`

	// RequestTimeoutMS bounds each backend call. 0 keeps the HTTP client default.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RateLimitPerSec caps outgoing backend calls. 0 disables the limiter.
	RateLimitPerSec int `koanf:"rate_limit_per_sec"`

	// SettleDelayMS is how long a view change must stay put before it is fetched.
	SettleDelayMS int `koanf:"settle_delay_ms"`

	// CacheTTLMS is how long a backend response may be reused.
	CacheTTLMS int `koanf:"cache_ttl_ms"`

	// CacheMaxEntries bounds each response cache.
	CacheMaxEntries int `koanf:"cache_max_entries"`

	// PageSize is the default submissions page size.
	PageSize int `koanf:"page_size"`

	// MailboxSize bounds the per-session event mailbox.
	MailboxSize int `koanf:"mailbox_size"`

	// MaxSessions caps concurrently mounted live sessions.
	MaxSessions int `koanf:"max_sessions"`

	// Timezone renders absolute contest timestamps.
	Timezone string `koanf:"timezone"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		APIBaseURL:       "http://localhost:8080",
		RequestTimeoutMS: 0,
		RateLimitPerSec:  0,
		SettleDelayMS:    300,
		CacheTTLMS:       30_000,
		CacheMaxEntries:  512,
		PageSize:         50,
		MailboxSize:      64,
		MaxSessions:      1024,
		Timezone:         "Asia/Shanghai",
	}
}

// SettleDelay returns SettleDelayMS as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// CacheTTL returns CacheTTLMS as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Location resolves Timezone. Callers get an error only for unknown zones.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}
