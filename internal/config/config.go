// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a dotenv file, an optional YAML file and TYPERANK_* env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
)

// Storage backends accepted by StorageBackend.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3001".
	Addr string `koanf:"addr"`

	// TiersEnabled partitions scores by difficulty tier.
	TiersEnabled bool `koanf:"tiers_enabled"`

	// Tiers lists the recognized difficulty tiers in display order.
	Tiers []string `koanf:"tiers"`

	// AuthEnabled protects the admin surface with HTTP Basic auth.
	AuthEnabled bool   `koanf:"auth_enabled"`
	AdminUser   string `koanf:"admin_user"`
	AuthRealm   string `koanf:"auth_realm"`

	// AdminPassword is compared in constant time. Ignored when
	// AdminPasswordHash is set.
	AdminPassword string `koanf:"admin_password"`

	// AdminPasswordHash is a bcrypt hash of the admin password.
	AdminPasswordHash string `koanf:"admin_password_hash"`

	// StorageBackend is one of file, memory, sqlite, redis.
	StorageBackend string `koanf:"storage_backend"`
	DataFile       string `koanf:"data_file"`
	SQLitePath     string `koanf:"sqlite_path"`
	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
	RedisKey       string `koanf:"redis_key"`

	// ScoreRateLimit is the sustained POST /score rate per client IP, per
	// second. Zero or less disables limiting.
	ScoreRateLimit float64 `koanf:"score_rate_limit"`
	ScoreRateBurst int     `koanf:"score_rate_burst"`

	// TrustForwardedFor keys the limiter on the first X-Forwarded-For hop.
	// Enable only behind a proxy that sets it.
	TrustForwardedFor bool `koanf:"trust_forwarded_for"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":3001",
		TiersEnabled:   true,
		Tiers:          []string{"easy", "medium", "hard"},
		AuthEnabled:    true,
		AuthRealm:      "admin",
		StorageBackend: BackendFile,
		DataFile:       "leaderboard.json",
		SQLitePath:     "leaderboard.db",
		RedisAddr:      "localhost:6379",
		RedisKey:       "typerank:leaderboard",
		ScoreRateLimit: 5,
		ScoreRateBurst: 10,
		MaxBodyBytes:   64 << 10,
	}
}

// ActiveTiers returns the tiers the service should recognize: the configured
// list when tiering is enabled, nil otherwise.
func (c *Config) ActiveTiers() []string {
	if !c.TiersEnabled {
		return nil
	}
	out := make([]string, len(c.Tiers))
	copy(out, c.Tiers)
	return out
}
