// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

// Package tmdb implements the external catalog client for The Movie
// Database REST API.
//
// Every operation is an independent network call with its own timeout and
// structured failure mode: ErrNotFound for empty catalog results and
// UpstreamError for non-success statuses or transport failures, so callers
// can apply differentiated handling. SearchFirstCard is the one deliberate
// exception: it is a best-effort enrichment lookup whose failures are
// swallowed into an absent result.
//
// API Reference: https://developer.themoviedb.org/reference
package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/reelatlas/reelatlas/internal/config"
	"github.com/reelatlas/reelatlas/internal/logging"
	"github.com/reelatlas/reelatlas/internal/metrics"
	"github.com/reelatlas/reelatlas/internal/models"
)

// Catalog defines the catalog operations consumed by the recommendation
// pipeline. Both Client and BreakerClient implement this interface.
type Catalog interface {
	// SearchFirst returns the top catalog hit for a free-text query, using
	// the catalog's own relevance ranking. ErrNotFound when no results.
	SearchFirst(ctx context.Context, query string) (*models.MovieCard, error)

	// MovieDetails returns the full catalog record for an id.
	MovieDetails(ctx context.Context, id int) (*models.MovieDetails, error)

	// DiscoverByGenre returns up to limit cards for a genre, ordered by the
	// catalog's popularity ranking.
	DiscoverByGenre(ctx context.Context, genreID, limit int) ([]models.MovieCard, error)

	// SearchFirstCard is the best-effort enrichment lookup: the first card
	// matching title, or nil when the lookup fails for any reason.
	SearchFirstCard(ctx context.Context, title string) *models.MovieCard

	// Feed returns cards from a catalog feed (trending, popular, top_rated,
	// now_playing, upcoming).
	Feed(ctx context.Context, category string, limit int) ([]models.MovieCard, error)

	// RawSearch returns the catalog's own search response untouched.
	RawSearch(ctx context.Context, query string) (json.RawMessage, error)
}

// Ensure Client implements Catalog.
var _ Catalog = (*Client)(nil)

// Client provides access to the TMDB REST API.
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	httpClient   *http.Client
}

// NewClient creates a TMDB API client from configuration.
func NewClient(cfg config.TMDBConfig) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// movieResult is the TMDB wire representation shared by search, discover and
// details responses.
type movieResult struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Overview     string         `json:"overview"`
	PosterPath   string         `json:"poster_path"`
	BackdropPath string         `json:"backdrop_path"`
	ReleaseDate  string         `json:"release_date"`
	VoteAverage  *float64       `json:"vote_average"`
	Genres       []models.Genre `json:"genres"`
}

// listResponse is the TMDB wire envelope for result lists.
type listResponse struct {
	Results []movieResult `json:"results"`
}

// SearchFirst returns the top hit of /search/movie for the query.
func (c *Client) SearchFirst(ctx context.Context, query string) (*models.MovieCard, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")

	body, err := c.get(ctx, "search", "/search/movie", params)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode tmdb search response: %w", err)
	}
	if len(resp.Results) == 0 {
		metrics.RecordTMDBError("search", "not_found")
		return nil, ErrNotFound
	}

	card := c.cardFromResult(resp.Results[0])
	return &card, nil
}

// MovieDetails returns the full record of /movie/{id}.
func (c *Client) MovieDetails(ctx context.Context, id int) (*models.MovieDetails, error) {
	body, err := c.get(ctx, "details", "/movie/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}

	var result movieResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode tmdb movie details: %w", err)
	}

	details := &models.MovieDetails{
		TMDBID:      result.ID,
		Title:       result.Title,
		Overview:    result.Overview,
		ReleaseDate: result.ReleaseDate,
		PosterURL:   c.imageURL(result.PosterPath),
		BackdropURL: c.imageURL(result.BackdropPath),
		Genres:      result.Genres,
	}
	if details.Genres == nil {
		details.Genres = []models.Genre{}
	}
	return details, nil
}

// DiscoverByGenre returns up to limit cards of /discover/movie for a genre,
// sorted by the catalog's popularity ordering.
func (c *Client) DiscoverByGenre(ctx context.Context, genreID, limit int) ([]models.MovieCard, error) {
	params := url.Values{}
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("sort_by", "popularity.desc")

	body, err := c.get(ctx, "discover", "/discover/movie", params)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode tmdb discover response: %w", err)
	}

	return c.cardsFromResults(resp.Results, limit), nil
}

// SearchFirstCard looks up the first card matching title. Any failure,
// including not-found, degrades to nil; enrichment must never abort the
// pipeline.
func (c *Client) SearchFirstCard(ctx context.Context, title string) *models.MovieCard {
	card, err := c.SearchFirst(ctx, title)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("title", title).Msg("Enrichment lookup failed")
		return nil
	}
	return card
}

// feedPaths maps feed categories to TMDB endpoints.
var feedPaths = map[string]string{
	"trending":    "/trending/movie/day",
	"popular":     "/movie/popular",
	"top_rated":   "/movie/top_rated",
	"now_playing": "/movie/now_playing",
	"upcoming":    "/movie/upcoming",
}

// Feed returns cards from a catalog feed. Unknown categories fall back to
// the popular feed; the API layer validates categories before calling.
func (c *Client) Feed(ctx context.Context, category string, limit int) ([]models.MovieCard, error) {
	path, ok := feedPaths[category]
	if !ok {
		path = feedPaths["popular"]
	}

	body, err := c.get(ctx, "feed", path, nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode tmdb feed response: %w", err)
	}

	return c.cardsFromResults(resp.Results, limit), nil
}

// RawSearch returns the catalog's search response body untouched.
func (c *Client) RawSearch(ctx context.Context, query string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")

	body, err := c.get(ctx, "raw_search", "/search/movie", params)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// get performs a GET against the TMDB API and returns the response body.
// Non-200 statuses map to ErrNotFound (404) or UpstreamError; transport
// failures map to UpstreamError with StatusCode 0.
func (c *Client) get(ctx context.Context, operation, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordTMDBRequest(operation, time.Since(start))
	if err != nil {
		metrics.RecordTMDBError(operation, "transport")
		return nil, &UpstreamError{Operation: operation, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordTMDBError(operation, "transport")
		return nil, &UpstreamError{Operation: operation, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordTMDBError(operation, "not_found")
		return nil, ErrNotFound
	default:
		metrics.RecordTMDBError(operation, "upstream")
		return nil, &UpstreamError{Operation: operation, StatusCode: resp.StatusCode}
	}
}

// imageURL expands a TMDB image path into a full URL, or returns empty for
// an absent path.
func (c *Client) imageURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + path
}

// cardFromResult converts a wire result into a MovieCard.
func (c *Client) cardFromResult(r movieResult) models.MovieCard {
	return models.MovieCard{
		TMDBID:      r.ID,
		Title:       r.Title,
		PosterURL:   c.imageURL(r.PosterPath),
		ReleaseDate: r.ReleaseDate,
		VoteAverage: r.VoteAverage,
	}
}

// cardsFromResults converts up to limit wire results into cards.
func (c *Client) cardsFromResults(results []movieResult, limit int) []models.MovieCard {
	if limit < 0 {
		limit = 0
	}
	if limit > len(results) {
		limit = len(results)
	}
	cards := make([]models.MovieCard, 0, limit)
	for _, r := range results[:limit] {
		cards = append(cards, c.cardFromResult(r))
	}
	return cards
}
