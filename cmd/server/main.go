// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

// Package main is the entry point for the Reelatlas server.
//
// Reelatlas is a movie recommendation service that combines a precomputed
// content-similarity index with live catalog data from The Movie Database
// (TMDB).
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered loading via Koanf v2 (defaults, YAML, env)
//  2. Logging: zerolog structured logging
//  3. Similarity index: the three offline artifacts are loaded and
//     validated; startup aborts if any is missing or inconsistent
//  4. TMDB client: optionally wrapped with a circuit breaker
//  5. HTTP server: Chi router with rate limiting, Prometheus metrics and a
//     short-TTL response cache
//
// # Configuration
//
// The only required setting is TMDB_API_KEY. See config.example.yaml for
// the full set of options.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections and waits up to 10 seconds for in-flight
// requests to complete.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reelatlas/reelatlas/internal/api"
	"github.com/reelatlas/reelatlas/internal/cache"
	"github.com/reelatlas/reelatlas/internal/config"
	"github.com/reelatlas/reelatlas/internal/logging"
	"github.com/reelatlas/reelatlas/internal/recommend"
	"github.com/reelatlas/reelatlas/internal/similarity"
	"github.com/reelatlas/reelatlas/internal/tmdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting Reelatlas")

	// The similarity index is load-bearing; the process must not serve
	// without it.
	idx, err := similarity.Load(cfg.Index)
	if err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Index.Dir).Msg("Failed to load similarity index")
	}
	logging.Info().Int("titles", idx.NumRows()).Msg("Similarity index loaded")

	var catalog tmdb.Catalog = tmdb.NewClient(cfg.TMDB)
	if cfg.TMDB.CircuitBreakerEnabled {
		catalog = tmdb.NewBreakerClient(catalog)
		logging.Info().Msg("TMDB circuit breaker enabled")
	}

	orchestrator := recommend.NewOrchestrator(catalog, idx, cfg.Index.FuzzyCutoff)

	var respCache *cache.ResponseCache
	if cfg.Cache.Enabled {
		respCache = cache.New(cfg.Cache.TTL)
		logging.Info().Dur("ttl", cfg.Cache.TTL).Msg("Response cache enabled")
	}

	handler := api.NewHandler(cfg, catalog, orchestrator, idx, respCache)
	router := api.NewRouter(cfg, handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
