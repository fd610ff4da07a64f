// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

// Package config provides layered configuration for Reelatlas.
//
// Configuration is loaded with Koanf v2 in three layers with clear
// precedence (highest last):
//
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables
//
// See koanf.go for the loader.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	TMDB    TMDBConfig    `koanf:"tmdb"`
	Index   IndexConfig   `koanf:"index"`
	API     APIConfig     `koanf:"api"`
	Cache   CacheConfig   `koanf:"cache"`
	Limiter LimiterConfig `koanf:"limiter"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// TMDBConfig holds settings for the external TMDB catalog client.
type TMDBConfig struct {
	// BaseURL is the TMDB API root (override for testing).
	BaseURL string `koanf:"base_url"`

	// ImageBaseURL is the prefix for poster/backdrop paths.
	ImageBaseURL string `koanf:"image_base_url"`

	// APIKey authenticates every TMDB request. Required; the process
	// refuses to start without it.
	APIKey string `koanf:"api_key"`

	// Language is passed to TMDB for localized titles and overviews.
	Language string `koanf:"language"`

	// Timeout bounds each individual TMDB request.
	Timeout time.Duration `koanf:"timeout"`

	// CircuitBreakerEnabled wraps the client with a circuit breaker to
	// prevent cascading failures when TMDB is unavailable or slow.
	CircuitBreakerEnabled bool `koanf:"circuit_breaker_enabled"`
}

// IndexConfig holds settings for the precomputed similarity index artifacts.
// All three files are produced by an offline process and loaded once at
// startup; the process must not serve without them.
type IndexConfig struct {
	// Dir is the directory containing the index artifacts.
	Dir string `koanf:"dir"`

	// MoviesFile is the row table (one record per known movie).
	MoviesFile string `koanf:"movies_file"`

	// IndicesFile is the title to row-id map.
	IndicesFile string `koanf:"indices_file"`

	// MatrixFile is the rows x features similarity matrix.
	MatrixFile string `koanf:"matrix_file"`

	// FuzzyCutoff is the minimum sequence-matching ratio (0-1) for an
	// approximate title match to be accepted.
	FuzzyCutoff float64 `koanf:"fuzzy_cutoff"`
}

// APIConfig holds request-shaping defaults and limits.
type APIConfig struct {
	DefaultTopN       int `koanf:"default_top_n"`
	MaxTopN           int `koanf:"max_top_n"`
	DefaultGenreLimit int `koanf:"default_genre_limit"`
	MaxGenreLimit     int `koanf:"max_genre_limit"`
	DefaultFeedLimit  int `koanf:"default_feed_limit"`
	MaxFeedLimit      int `koanf:"max_feed_limit"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// LimiterConfig holds HTTP rate limiting settings.
type LimiterConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Disabled bool          `koanf:"disabled"`

	// CORSOrigins lists allowed origins for cross-origin requests.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid or missing values.
// It is called by the loader after all layers are applied.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, "server.timeout must be positive")
	}

	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key is required (set TMDB_API_KEY)")
	}
	if c.TMDB.BaseURL == "" {
		errs = append(errs, "tmdb.base_url must not be empty")
	}
	if c.TMDB.Timeout <= 0 {
		errs = append(errs, "tmdb.timeout must be positive")
	}

	if c.Index.Dir == "" {
		errs = append(errs, "index.dir must not be empty")
	}
	if c.Index.FuzzyCutoff < 0 || c.Index.FuzzyCutoff > 1 {
		errs = append(errs, fmt.Sprintf("index.fuzzy_cutoff must be 0-1, got %g", c.Index.FuzzyCutoff))
	}

	if c.API.DefaultTopN < 1 {
		errs = append(errs, "api.default_top_n must be at least 1")
	}
	if c.API.MaxTopN < c.API.DefaultTopN {
		errs = append(errs, "api.max_top_n must be >= api.default_top_n")
	}
	if c.API.MaxGenreLimit < c.API.DefaultGenreLimit {
		errs = append(errs, "api.max_genre_limit must be >= api.default_genre_limit")
	}
	if c.API.MaxFeedLimit < c.API.DefaultFeedLimit {
		errs = append(errs, "api.max_feed_limit must be >= api.default_feed_limit")
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, "cache.ttl must be positive when cache is enabled")
	}

	if !c.Limiter.Disabled {
		if c.Limiter.Requests < 1 {
			errs = append(errs, "limiter.requests must be at least 1")
		}
		if c.Limiter.Window <= 0 {
			errs = append(errs, "limiter.window must be positive")
		}
	}

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return errors.New("invalid configuration: " + strings.Join(errs, "; "))
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
