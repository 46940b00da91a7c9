// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the event store: memory or postgres.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseURL is the Postgres connection string (postgres driver only).
	DatabaseURL string `koanf:"database_url"`

	// Pool sizing for the postgres driver.
	DBMaxConns       int `koanf:"db_max_conns"`
	DBMaxConnIdleSec int `koanf:"db_max_conn_idle_sec"`
	DBMaxConnLifeSec int `koanf:"db_max_conn_life_sec"`

	// RunMigrations applies the embedded schema on startup (postgres driver only).
	RunMigrations bool `koanf:"run_migrations"`

	// FeedRetryMS is the fixed delay between change feed reconnect attempts.
	FeedRetryMS int `koanf:"feed_retry_ms"`

	// InFlightDriver selects where busy origins are tracked: memory or redis.
	InFlightDriver string `koanf:"inflight_driver"`

	// InFlightCapacity bounds the origins that may have a submission outstanding
	// (memory driver only).
	InFlightCapacity int `koanf:"inflight_capacity"`

	// InFlightTTLSec bounds how long a Redis slot survives without a release.
	InFlightTTLSec int `koanf:"inflight_ttl_sec"`

	// RedisAddr is the host:port of the Redis server (redis driver only).
	RedisAddr string `koanf:"redis_addr"`

	// CORSAllowedOrigins is a comma separated list of origins allowed to call
	// the JSON API from a browser. Empty disables CORS headers.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`

	// Wager amount input: minimum, default and step.
	MinWagerAmount     int `koanf:"min_wager_amount"`
	DefaultWagerAmount int `koanf:"default_wager_amount"`
	WagerStep          int `koanf:"wager_step"`

	// PullTimeoutMS bounds each full pull made by a live view.
	PullTimeoutMS int `koanf:"pull_timeout_ms"`

	// Live websocket tuning.
	LiveKeepaliveSec    int `koanf:"live_keepalive_sec"`
	LiveWriteTimeoutSec int `koanf:"live_write_timeout_sec"`
}

// Drivers accepted by StoreDriver and InFlightDriver.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		StoreDriver:         DriverMemory,
		DBMaxConns:          10,
		DBMaxConnIdleSec:    300,
		DBMaxConnLifeSec:    3600,
		RunMigrations:       true,
		FeedRetryMS:         2000,
		InFlightDriver:      DriverMemory,
		InFlightCapacity:    10_000,
		InFlightTTLSec:      30,
		MinWagerAmount:      10,
		DefaultWagerAmount:  100,
		WagerStep:           10,
		PullTimeoutMS:       5000,
		LiveKeepaliveSec:    25,
		LiveWriteTimeoutSec: 10,
	}
}

func ms(v int) time.Duration  { return time.Duration(v) * time.Millisecond }
func sec(v int) time.Duration { return time.Duration(v) * time.Second }

// FeedRetry returns FeedRetryMS as a duration.
func (c *Config) FeedRetry() time.Duration { return ms(c.FeedRetryMS) }

// PullTimeout returns PullTimeoutMS as a duration.
func (c *Config) PullTimeout() time.Duration { return ms(c.PullTimeoutMS) }

// DBMaxConnIdle returns DBMaxConnIdleSec as a duration.
func (c *Config) DBMaxConnIdle() time.Duration { return sec(c.DBMaxConnIdleSec) }

// DBMaxConnLife returns DBMaxConnLifeSec as a duration.
func (c *Config) DBMaxConnLife() time.Duration { return sec(c.DBMaxConnLifeSec) }

// InFlightTTL returns InFlightTTLSec as a duration.
func (c *Config) InFlightTTL() time.Duration { return sec(c.InFlightTTLSec) }

// LiveKeepalive returns LiveKeepaliveSec as a duration.
func (c *Config) LiveKeepalive() time.Duration { return sec(c.LiveKeepaliveSec) }

// LiveWriteTimeout returns LiveWriteTimeoutSec as a duration.
func (c *Config) LiveWriteTimeout() time.Duration { return sec(c.LiveWriteTimeoutSec) }

// AllowedOrigins splits CORSAllowedOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
