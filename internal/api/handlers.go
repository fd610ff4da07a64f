// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/reelatlas/reelatlas/internal/cache"
	"github.com/reelatlas/reelatlas/internal/config"
	"github.com/reelatlas/reelatlas/internal/logging"
	"github.com/reelatlas/reelatlas/internal/metrics"
	"github.com/reelatlas/reelatlas/internal/recommend"
	"github.com/reelatlas/reelatlas/internal/similarity"
	"github.com/reelatlas/reelatlas/internal/tmdb"
	"github.com/reelatlas/reelatlas/internal/validation"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	cfg          *config.Config
	catalog      tmdb.Catalog
	orchestrator *recommend.Orchestrator
	index        *similarity.Index
	cache        *cache.ResponseCache
	startTime    time.Time
}

// NewHandler creates a handler. respCache may be nil to disable response
// caching.
func NewHandler(cfg *config.Config, catalog tmdb.Catalog, orchestrator *recommend.Orchestrator, idx *similarity.Index, respCache *cache.ResponseCache) *Handler {
	return &Handler{
		cfg:          cfg,
		catalog:      catalog,
		orchestrator: orchestrator,
		index:        idx,
		cache:        respCache,
		startTime:    time.Now(),
	}
}

// homeRequest validates /home query parameters.
type homeRequest struct {
	Category string `validate:"omitempty,oneof=trending popular top_rated now_playing upcoming"`
	Limit    int    `validate:"min=1"`
}

// Home serves a catalog feed for the landing page.
// GET /api/v1/home?category=trending&limit=20
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := homeRequest{
		Category: r.URL.Query().Get("category"),
		Limit:    h.cfg.API.DefaultFeedLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, codeValidationError, "limit must be an integer", nil)
			return
		}
		req.Limit = limit
	}
	if err := validation.ValidateStruct(&req); err != nil {
		apiErr := err.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	if req.Limit > h.cfg.API.MaxFeedLimit {
		respondError(w, r, http.StatusBadRequest, codeValidationError,
			"limit must be at most "+strconv.Itoa(h.cfg.API.MaxFeedLimit), nil)
		return
	}
	if req.Category == "" {
		req.Category = "popular"
	}

	if h.serveFromCache(w, r) {
		return
	}

	cards, err := h.catalog.Feed(r.Context(), req.Category, req.Limit)
	if err != nil {
		h.respondCatalogError(w, r, err)
		return
	}

	h.respondCacheable(w, r, start, map[string]interface{}{
		"category": req.Category,
		"results":  cards,
	})
}

// TMDBSearch proxies a raw catalog search, returning TMDB's response
// untouched inside the standard envelope.
// GET /api/v1/tmdb/search?query=inception
func (h *Handler) TMDBSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query := r.URL.Query().Get("query")
	if query == "" {
		respondError(w, r, http.StatusBadRequest, codeValidationError, "query is required", nil)
		return
	}

	raw, err := h.catalog.RawSearch(r.Context(), query)
	if err != nil {
		h.respondCatalogError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, raw, start)
}

// MovieByID returns the full catalog record for a TMDB id.
// GET /api/v1/movie/id/{id}
func (h *Handler) MovieByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		respondError(w, r, http.StatusBadRequest, codeValidationError, "id must be a positive integer", nil)
		return
	}

	if h.serveFromCache(w, r) {
		return
	}

	details, err := h.catalog.MovieDetails(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, r, err)
		return
	}

	h.respondCacheable(w, r, start, details)
}

// searchRequest validates /movie/search query parameters.
type searchRequest struct {
	Query      string `validate:"required"`
	TopN       int    `validate:"min=1"`
	GenreLimit int    `validate:"min=1"`
}

// MovieSearch runs the full recommendation pipeline for a free-text query.
// GET /api/v1/movie/search?query=inception&tfidf_top_n=10&genre_limit=12
func (h *Handler) MovieSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := searchRequest{
		Query:      r.URL.Query().Get("query"),
		TopN:       h.cfg.API.DefaultTopN,
		GenreLimit: h.cfg.API.DefaultGenreLimit,
	}
	if raw := r.URL.Query().Get("tfidf_top_n"); raw != "" {
		topN, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, codeValidationError, "tfidf_top_n must be an integer", nil)
			return
		}
		req.TopN = topN
	}
	if raw := r.URL.Query().Get("genre_limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, codeValidationError, "genre_limit must be an integer", nil)
			return
		}
		req.GenreLimit = limit
	}
	if err := validation.ValidateStruct(&req); err != nil {
		apiErr := err.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	if req.TopN > h.cfg.API.MaxTopN {
		respondError(w, r, http.StatusBadRequest, codeValidationError,
			"tfidf_top_n must be at most "+strconv.Itoa(h.cfg.API.MaxTopN), nil)
		return
	}
	if req.GenreLimit > h.cfg.API.MaxGenreLimit {
		respondError(w, r, http.StatusBadRequest, codeValidationError,
			"genre_limit must be at most "+strconv.Itoa(h.cfg.API.MaxGenreLimit), nil)
		return
	}

	if h.serveFromCache(w, r) {
		return
	}

	bundle, err := h.orchestrator.BuildBundle(r.Context(), req.Query, req.TopN, req.GenreLimit)
	if err != nil {
		h.respondCatalogError(w, r, err)
		return
	}

	h.respondCacheable(w, r, start, bundle)
}

// Health reports service status with basic runtime statistics.
// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	payload := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"index_titles":   h.index.NumRows(),
	}
	if h.cache != nil {
		stats := h.cache.GetStats()
		payload["cache"] = map[string]interface{}{
			"keys":     stats.TotalKeys,
			"hit_rate": h.cache.HitRate(),
		}
	}

	respondJSON(w, r, http.StatusOK, payload, start)
}

// HealthLive is the liveness probe.
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady is the readiness probe. The similarity index is loaded before
// the server starts, so a serving process is always ready.
// GET /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"}, time.Now())
}

// respondCatalogError maps catalog failures to API error responses.
// Breaker rejections and other unexpected errors surface as upstream
// failures since the catalog could not be consulted.
func (h *Handler) respondCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		respondError(w, r, http.StatusNotFound, codeMovieNotFound, "No catalog match for query", nil)
	default:
		logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Catalog request failed")
		respondError(w, r, http.StatusBadGateway, codeUpstreamError, "Catalog service unavailable", nil)
	}
}

// serveFromCache serves a cached response when present. Returns true when
// the response was written (fresh body or 304).
func (h *Handler) serveFromCache(w http.ResponseWriter, r *http.Request) bool {
	if h.cache == nil {
		return false
	}

	key := cache.GenerateKey(r.URL.Path, r.URL.RawQuery)
	entry, ok := h.cache.Get(key)
	if !ok {
		metrics.ResponseCacheMisses.Inc()
		return false
	}
	metrics.ResponseCacheHits.Inc()

	w.Header().Set("ETag", entry.ETag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == entry.ETag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("X-Cache", "HIT")
	respondCachedJSON(w, r, entry.Status, entry.Body)
	return true
}

// respondCacheable writes a success response and stores the payload for
// subsequent identical requests.
func (h *Handler) respondCacheable(w http.ResponseWriter, r *http.Request, start time.Time, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal response payload")
		respondError(w, r, http.StatusInternalServerError, codeInternalError, "Failed to build response", nil)
		return
	}

	etag := generateETag(payload)
	if h.cache != nil {
		key := cache.GenerateKey(r.URL.Path, r.URL.RawQuery)
		h.cache.Set(key, http.StatusOK, payload, etag)
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("X-Cache", "MISS")
	respondJSON(w, r, http.StatusOK, json.RawMessage(payload), start)
}
