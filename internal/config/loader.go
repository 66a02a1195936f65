package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "TYPERANK_"
	envConfigFile = "TYPERANK_CONFIG"
	envDotenv     = "TYPERANK_DOTENV"
	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if TYPERANK_CONFIG is set
//  3. env (prefix TYPERANK_), after a dotenv file has been merged into the
//     process environment without overriding it
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	if err := loadDotenv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Environment variables: TYPERANK_ADDR, TYPERANK_TIERS=easy,hard, ...
	// Keys keep their underscores to match the koanf tags; list values are
	// split on commas.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "tiers" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy. A configured tier list replaces the default
	// one instead of being merged into it index by index.
	cfg := *base
	if k.Exists("tiers") {
		cfg.Tiers = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints and normalizes the tier list.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return invalid("addr must not be empty")
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return invalid("log_format must be text or json, got %q", c.LogFormat)
	}

	if c.TiersEnabled {
		tiers := make([]string, 0, len(c.Tiers))
		seen := make(map[string]struct{}, len(c.Tiers))
		for _, t := range c.Tiers {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				return invalid("duplicate tier %q", t)
			}
			seen[t] = struct{}{}
			tiers = append(tiers, t)
		}
		if len(tiers) == 0 {
			return invalid("tiers must not be empty when tiers_enabled is set")
		}
		c.Tiers = tiers
	}

	switch c.StorageBackend {
	case BackendFile:
		if c.DataFile == "" {
			return invalid("data_file is required for the file backend")
		}
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return invalid("sqlite_path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return invalid("redis_addr is required for the redis backend")
		}
	default:
		return invalid("unknown storage_backend %q", c.StorageBackend)
	}

	if c.AuthEnabled {
		if c.AdminUser == "" {
			return invalid("admin_user is required when auth_enabled is set")
		}
		if c.AdminPassword == "" && c.AdminPasswordHash == "" {
			return invalid("admin_password or admin_password_hash is required when auth_enabled is set")
		}
	}

	if c.ScoreRateLimit > 0 && c.ScoreRateBurst < 1 {
		return invalid("score_rate_burst must be at least 1 when score_rate_limit is set")
	}
	if c.MaxBodyBytes <= 0 {
		return invalid("max_body_bytes must be positive")
	}
	return nil
}

// loadDotenv merges a dotenv file into the environment. A missing default
// file is fine; a missing file named explicitly is not.
func loadDotenv() error {
	path, explicit := os.LookupEnv(envDotenv)
	if !explicit || path == "" {
		path = defaultDotenv
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("dotenv %s: %w", path, err)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
