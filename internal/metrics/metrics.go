// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

// Package metrics provides Prometheus instrumentation for Reelatlas:
//   - API endpoint latency and throughput
//   - TMDB client request performance and failures
//   - Circuit breaker state
//   - Response cache efficiency
//   - Recommendation pipeline outcomes (resolver paths, fallback use)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelatlas_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelatlas_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelatlas_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// TMDB Client Metrics
	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelatlas_tmdb_request_duration_seconds",
			Help:    "Duration of TMDB API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"operation"},
	)

	TMDBRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelatlas_tmdb_request_errors_total",
			Help: "Total number of failed TMDB API requests",
		},
		[]string{"operation", "error_type"}, // "not_found", "upstream", "transport"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelatlas_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelatlas_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Response Cache Metrics
	ResponseCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelatlas_response_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	ResponseCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelatlas_response_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// Recommendation Pipeline Metrics
	ResolverLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelatlas_resolver_lookups_total",
			Help: "Total number of local title resolutions by outcome",
		},
		[]string{"outcome"}, // "exact", "fuzzy", "miss"
	)

	FallbackActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelatlas_genre_fallback_total",
			Help: "Total number of bundles where genre cards backfilled an empty similarity list",
		},
	)

	BundleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelatlas_bundle_duration_seconds",
			Help:    "End-to-end duration of recommendation bundle construction",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
	)
)

// RecordAPIRequest records metrics for a completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordTMDBRequest records the duration of a TMDB call.
func RecordTMDBRequest(operation string, duration time.Duration) {
	TMDBRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTMDBError records a failed TMDB call by error class.
func RecordTMDBError(operation, errorType string) {
	TMDBRequestErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordResolverLookup records a local title resolution outcome.
func RecordResolverLookup(outcome string) {
	ResolverLookups.WithLabelValues(outcome).Inc()
}
