// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package tmdb

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/reelatlas/reelatlas/internal/logging"
	"github.com/reelatlas/reelatlas/internal/metrics"
	"github.com/reelatlas/reelatlas/internal/models"

	"github.com/goccy/go-json"
)

// BreakerClient wraps a Catalog with the circuit breaker pattern to prevent
// cascading failures when TMDB is unavailable or slow.
//
// ErrNotFound is a valid catalog answer, not an upstream failure, so it
// never counts against the breaker.
//
// DETERMINISM NOTE: the breaker uses real time (via sony/gobreaker) for its
// interval and timeout calculations. Tests should exercise the wrapped
// client directly rather than waiting out breaker state transitions.
type BreakerClient struct {
	catalog Catalog
	cb      *gobreaker.CircuitBreaker[interface{}]
	name    string
}

// Ensure BreakerClient implements Catalog.
var _ Catalog = (*BreakerClient)(nil)

// NewBreakerClient wraps catalog with a circuit breaker.
// Circuit breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewBreakerClient(catalog Catalog) *BreakerClient {
	cbName := "tmdb-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Need a minimum sample before tripping
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			// Not-found is a normal catalog answer.
			return err == nil || err == ErrNotFound
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{
		catalog: catalog,
		cb:      cb,
		name:    cbName,
	}
}

// execute wraps a catalog call with circuit breaker protection.
func (b *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	return b.cb.Execute(fn)
}

// SearchFirst implements Catalog.
func (b *BreakerClient) SearchFirst(ctx context.Context, query string) (*models.MovieCard, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.catalog.SearchFirst(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.MovieCard), nil
}

// MovieDetails implements Catalog.
func (b *BreakerClient) MovieDetails(ctx context.Context, id int) (*models.MovieDetails, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.catalog.MovieDetails(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.MovieDetails), nil
}

// DiscoverByGenre implements Catalog.
func (b *BreakerClient) DiscoverByGenre(ctx context.Context, genreID, limit int) ([]models.MovieCard, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.catalog.DiscoverByGenre(ctx, genreID, limit)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.MovieCard), nil
}

// SearchFirstCard implements Catalog. Breaker rejections degrade to an
// absent card like any other enrichment failure.
func (b *BreakerClient) SearchFirstCard(ctx context.Context, title string) *models.MovieCard {
	result, err := b.execute(func() (interface{}, error) {
		return b.catalog.SearchFirstCard(ctx, title), nil
	})
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("title", title).Msg("Enrichment rejected by circuit breaker")
		return nil
	}
	return result.(*models.MovieCard)
}

// Feed implements Catalog.
func (b *BreakerClient) Feed(ctx context.Context, category string, limit int) ([]models.MovieCard, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.catalog.Feed(ctx, category, limit)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.MovieCard), nil
}

// RawSearch implements Catalog.
func (b *BreakerClient) RawSearch(ctx context.Context, query string) (json.RawMessage, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.catalog.RawSearch(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}

// State returns the current breaker state for health reporting.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
