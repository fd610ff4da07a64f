// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/reelatlas/reelatlas/internal/config"
	"github.com/reelatlas/reelatlas/internal/models"
	"github.com/reelatlas/reelatlas/internal/recommend"
)

func TestRouterUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &stubCatalog{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown route, got %d", rec.Code)
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &stubCatalog{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/home", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST /home, got %d", rec.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubCatalog{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "reelatlas_") {
		t.Error("Expected reelatlas metrics in exposition output")
	}
}

func TestRouterRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, &stubCatalog{feed: []models.MovieCard{}}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/home", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header on API responses")
	}
}

func TestRouterRateLimitExceeded(t *testing.T) {
	cfg := testConfig()
	cfg.Limiter = config.LimiterConfig{Requests: 2, Window: time.Minute}

	idx := loadTestIndex(t)
	catalog := &stubCatalog{feed: []models.MovieCard{}}
	handler := NewHandler(cfg, catalog, recommend.NewOrchestrator(catalog, idx, 0), idx, nil)
	srv := NewRouter(cfg, handler).Setup()

	var lastCode int
	var lastBody string
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
		req.RemoteAddr = "10.1.2.3:1234"
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		lastCode = rec.Code
		lastBody = rec.Body.String()
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 on third request, got %d", lastCode)
	}
	if !strings.Contains(lastBody, codeRateLimit) {
		t.Errorf("Expected RATE_LIMIT_EXCEEDED body, got %s", lastBody)
	}
}

func TestRouterHealthSkipsRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Limiter = config.LimiterConfig{Requests: 1, Window: time.Minute}

	idx := loadTestIndex(t)
	catalog := &stubCatalog{}
	handler := NewHandler(cfg, catalog, recommend.NewOrchestrator(catalog, idx, 0), idx, nil)
	srv := NewRouter(cfg, handler).Setup()

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
		req.RemoteAddr = "10.1.2.3:1234"
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Health request %d throttled: %d", i, rec.Code)
		}
	}
}
