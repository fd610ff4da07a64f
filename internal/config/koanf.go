// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

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
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelatlas/config.yaml",
	"/etc/reelatlas/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Timeout:     25 * time.Second,
			Environment: "development",
		},
		TMDB: TMDBConfig{
			BaseURL:               "https://api.themoviedb.org/3",
			ImageBaseURL:          "https://image.tmdb.org/t/p/w500",
			APIKey:                "",
			Language:              "en-US",
			Timeout:               20 * time.Second,
			CircuitBreakerEnabled: true,
		},
		Index: IndexConfig{
			Dir:         "/data/index",
			MoviesFile:  "movies.json",
			IndicesFile: "indices.json",
			MatrixFile:  "matrix.json",
			FuzzyCutoff: 0.6,
		},
		API: APIConfig{
			DefaultTopN:       12,
			MaxTopN:           50,
			DefaultGenreLimit: 12,
			MaxGenreLimit:     50,
			DefaultFeedLimit:  24,
			MaxFeedLimit:      50,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     60 * time.Second,
		},
		Limiter: LimiterConfig{
			Requests:    100,
			Window:      time.Minute,
			Disabled:    false,
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence: ENV > File > Defaults. The resulting config is validated
// before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// TMDB_API_KEY -> tmdb.api_key
	// HTTP_PORT -> server.port
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
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

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
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

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"limiter.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - TMDB_API_KEY -> tmdb.api_key
//   - INDEX_DIR -> index.dir
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// TMDB mappings
		"tmdb_base_url":        "tmdb.base_url",
		"tmdb_image_base_url":  "tmdb.image_base_url",
		"tmdb_api_key":         "tmdb.api_key",
		"tmdb_language":        "tmdb.language",
		"tmdb_timeout":         "tmdb.timeout",
		"tmdb_circuit_breaker": "tmdb.circuit_breaker_enabled",

		// Similarity index mappings
		"index_dir":          "index.dir",
		"index_movies_file":  "index.movies_file",
		"index_indices_file": "index.indices_file",
		"index_matrix_file":  "index.matrix_file",
		"index_fuzzy_cutoff": "index.fuzzy_cutoff",

		// API shaping mappings
		"api_default_top_n":       "api.default_top_n",
		"api_max_top_n":           "api.max_top_n",
		"api_default_genre_limit": "api.default_genre_limit",
		"api_max_genre_limit":     "api.max_genre_limit",
		"api_default_feed_limit":  "api.default_feed_limit",
		"api_max_feed_limit":      "api.max_feed_limit",

		// Response cache mappings
		"cache_enabled": "cache.enabled",
		"cache_ttl":     "cache.ttl",

		// Rate limiter mappings
		"rate_limit_requests": "limiter.requests",
		"rate_limit_window":   "limiter.window",
		"rate_limit_disabled": "limiter.disabled",
		"cors_origins":        "limiter.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if path, ok := envMappings[key]; ok {
		return path
	}

	// Unknown variables are ignored so unrelated environment noise
	// cannot leak into the configuration.
	return ""
}
