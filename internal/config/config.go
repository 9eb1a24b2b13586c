// Package config loads cohort defaults from the environment.
//
// Command-line flags override every value read here.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds environment-driven defaults for the CLI.
type Config struct {
	Seed     uint64 `env:"COHORT_SEED"      envDefault:"1"`
	DBPath   string `env:"COHORT_DB"`
	LogLevel string `env:"COHORT_LOG_LEVEL" envDefault:"info"`
	Format   string `env:"COHORT_FORMAT"    envDefault:"text"`
}

// Load parses the environment into a Config and checks its values.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	switch cfg.Format {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("COHORT_FORMAT: unknown format %q (want text or json)", cfg.Format)
	}
	return cfg, nil
}

// Level returns the configured slog level. Load has already validated it.
func (c Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel converts debug, info, warn or error to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("COHORT_LOG_LEVEL: unknown level %q", name)
	}
}
