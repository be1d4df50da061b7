// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/abhisek/mathstudent/internal/grading"
	"github.com/abhisek/mathstudent/internal/logging"
	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/store"
)

// EnvPrefix prefixes every environment variable read by ConfigFromEnv.
const EnvPrefix = "MATHSTUDENT_"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all runtime configuration.
type Config struct {
	// Backend selects where progress is persisted.
	// Values: "sqlite", "redis", "memory"
	Backend string `env:"BACKEND"`

	// DB is the SQLite database path. Empty means store.DefaultDBPath.
	DB string `env:"DB"`

	// Slot names the persisted progress record.
	Slot string `env:"SLOT"`

	// Catalog is the task catalog file. Empty means the built-in catalog.
	Catalog string `env:"CATALOG"`

	// Mode is the progression mode: "starred", "fixed" or "adaptive".
	Mode string `env:"MODE"`

	// SessionSize caps adaptive sessions.
	SessionSize int `env:"SESSION_SIZE"`

	// MemoryPolicy is "strict" or "lenient".
	MemoryPolicy string `env:"MEMORY_POLICY"`

	Redis RedisConfig `envPrefix:"REDIS_"`
	Log   LogConfig   `envPrefix:"LOG_"`
	HTTP  HTTPConfig  `envPrefix:"HTTP_"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"`
	Prefix   string `env:"PREFIX"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `env:"LEVEL"`  // debug, info, warn, error
	Format string `env:"FORMAT"` // text, json
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr        string   `env:"ADDR"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendSQLite,
		Slot:         store.DefaultSlotName,
		Mode:         string(progress.ModeStarred),
		SessionSize:  5,
		MemoryPolicy: string(grading.MemoryStrict),
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "mathstudent:",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTPConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
	}
}

// ConfigFromEnv builds a Config from MATHSTUDENT_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Load reads the given dotenv files (".env" if none) into the process
// environment without overriding variables already set, then parses and
// validates the configuration. Missing dotenv files are ignored.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	cfg, err := ConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks every enumerated setting.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%sREDIS_ADDR is required for the redis backend", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	if c.Slot == "" {
		return fmt.Errorf("%sSLOT must not be empty", EnvPrefix)
	}
	if _, err := progress.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := grading.ParseMemoryPolicy(c.MemoryPolicy); err != nil {
		return err
	}
	if c.SessionSize < 1 || c.SessionSize > progress.MaxRecentAnswers {
		return fmt.Errorf("session size %d out of range 1..%d", c.SessionSize, progress.MaxRecentAnswers)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	return nil
}

// ProgressMode returns the validated progression mode.
func (c Config) ProgressMode() progress.Mode {
	m, err := progress.ParseMode(c.Mode)
	if err != nil {
		return progress.ModeStarred
	}
	return m
}

// Policy returns the validated memory policy.
func (c Config) Policy() grading.MemoryPolicy {
	p, err := grading.ParseMemoryPolicy(c.MemoryPolicy)
	if err != nil {
		return grading.MemoryStrict
	}
	return p
}
