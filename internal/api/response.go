// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

// Package api provides HTTP routing and handlers for the Reelatlas REST API.
package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/reelatlas/reelatlas/internal/logging"
	"github.com/reelatlas/reelatlas/internal/models"
)

// Error codes used in API error responses.
const (
	codeValidationError = "VALIDATION_ERROR"
	codeMovieNotFound   = "MOVIE_NOT_FOUND"
	codeUpstreamError   = "UPSTREAM_ERROR"
	codeRateLimit       = "RATE_LIMIT_EXCEEDED"
	codeInternalError   = "INTERNAL_ERROR"
)

// respondJSON writes a success envelope around data with query timing
// metadata measured from start.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, start time.Time) {
	writeEnvelope(w, r, status, models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondCachedJSON writes a success envelope around an already-marshaled
// payload served from the response cache.
func respondCachedJSON(w http.ResponseWriter, r *http.Request, status int, payload []byte) {
	writeEnvelope(w, r, status, models.APIResponse{
		Status: "success",
		Data:   json.RawMessage(payload),
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			Cached:    true,
		},
	})
}

// respondError writes an error envelope with the given code and message.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	writeEnvelope(w, r, status, models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// generateETag computes a weak entity tag over body using FNV-1a.
func generateETag(body []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(body)
	return fmt.Sprintf(`W/"%x"`, h.Sum64())
}
