package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "TASSIBETS_"
	envConfig  = "TASSIBETS_CONFIG"
	dotEnvFile = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if TASSIBETS_CONFIG is set
//  3. env (prefix TASSIBETS_), after loading a .env file if one exists
func Load(ctx context.Context) (*Config, error) {
	// Missing .env is fine; real env vars always win over it.
	_ = godotenv.Load(dotEnvFile)

	base := New(ctx)
	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TASSIBETS_DATABASE_URL -> database_url (flat keys, underscores kept)
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreDriver != DriverMemory && c.StoreDriver != DriverPostgres:
		return fmt.Errorf("%w: store_driver must be %q or %q, got %q", ErrInvalidConfig, DriverMemory, DriverPostgres, c.StoreDriver)
	case c.StoreDriver == DriverPostgres && c.DatabaseURL == "":
		return fmt.Errorf("%w: database_url is required for the postgres driver", ErrInvalidConfig)
	case c.InFlightDriver != DriverMemory && c.InFlightDriver != DriverRedis:
		return fmt.Errorf("%w: inflight_driver must be %q or %q, got %q", ErrInvalidConfig, DriverMemory, DriverRedis, c.InFlightDriver)
	case c.InFlightDriver == DriverRedis && c.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr is required for the redis in-flight driver", ErrInvalidConfig)
	case c.MinWagerAmount <= 0:
		return fmt.Errorf("%w: min_wager_amount must be positive", ErrInvalidConfig)
	case c.WagerStep <= 0:
		return fmt.Errorf("%w: wager_step must be positive", ErrInvalidConfig)
	case c.DefaultWagerAmount < c.MinWagerAmount:
		return fmt.Errorf("%w: default_wager_amount below min_wager_amount", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}
