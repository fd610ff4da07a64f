// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelatlas/reelatlas/internal/config"
	"github.com/reelatlas/reelatlas/internal/middleware"
)

// Router configures HTTP routing for the service.
type Router struct {
	cfg     *config.Config
	handler *Handler
}

// NewRouter creates a router around the given handler.
func NewRouter(cfg *config.Config, handler *Handler) *Router {
	return &Router{
		cfg:     cfg,
		handler: handler,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.Limiter.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag", "X-Request-ID", "X-Cache"},
		MaxAge:         86400,
	}))

	// Health endpoints skip rate limiting so monitoring is never throttled.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/home", router.handler.Home)
		r.Get("/tmdb/search", router.handler.TMDBSearch)
		r.Get("/movie/id/{id}", router.handler.MovieByID)
		r.Get("/movie/search", router.handler.MovieSearch)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// rateLimit returns an IP-keyed rate limiting middleware, or a no-op when
// limiting is disabled.
func (router *Router) rateLimit() func(http.Handler) http.Handler {
	if router.cfg.Limiter.Disabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		router.cfg.Limiter.Requests,
		router.cfg.Limiter.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, codeRateLimit, "Rate limit exceeded", nil)
		}),
	)
}
