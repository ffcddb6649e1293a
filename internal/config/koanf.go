// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/mlarcin/quoifaire/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/quoifaire/config.yaml",
	"/etc/quoifaire/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. These load
// first, then the config file and environment variables override them.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:         "/data/quoifaire.duckdb",
			MaxMemory:    "1GB",
			Threads:      0,
			QueryTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "/data/cache",
			TTL:     5 * time.Minute,
		},
		Pruner: PrunerConfig{
			Enabled:   true,
			Interval:  time.Hour,
			Retention: 30 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: *recommend.DefaultConfig(),
	}
}

// Load loads configuration using Koanf v2 with layered sources,
// precedence ENV > file > defaults, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// SERVER_PORT -> server.port, RECOMMEND_WEIGHTS_PRICE_FIT ->
	// recommend.weights.price_fit, and so on.
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sections maps env var prefixes onto koanf paths. Recommend subsections
// come first so RECOMMEND_WEIGHTS_ matches before RECOMMEND_.
var sections = []struct {
	prefix string
	path   string
}{
	{"RECOMMEND_WEIGHTS_", "recommend.weights."},
	{"RECOMMEND_AFFINITY_", "recommend.affinity."},
	{"RECOMMEND_TEMPORAL_", "recommend.temporal."},
	{"RECOMMEND_NOVELTY_", "recommend.novelty."},
	{"RECOMMEND_REASONS_", "recommend.reasons."},
	{"RECOMMEND_SELECTION_", "recommend.selection."},
	{"RECOMMEND_RANKING_", "recommend.ranking."},
	{"RECOMMEND_LIMITS_", "recommend.limits."},
	{"SERVER_", "server."},
	{"DATABASE_", "database."},
	{"CACHE_", "cache."},
	{"PRUNER_", "pruner."},
	{"LOGGING_", "logging."},
}

// envTransform maps an environment variable name to a koanf path.
// Unrecognized variables return "" and are ignored, so unrelated
// process environment never leaks into the configuration.
func envTransform(key string) string {
	for _, s := range sections {
		if strings.HasPrefix(key, s.prefix) {
			return s.path + strings.ToLower(strings.TrimPrefix(key, s.prefix))
		}
	}
	return ""
}
