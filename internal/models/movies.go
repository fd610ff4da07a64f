// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package models

// Genre is a catalog genre record (id + display name), ordered as returned
// by the catalog.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieCard is the compact catalog representation used for grids and shelves.
// Fetched per request and never cached beyond the short-TTL response cache.
type MovieCard struct {
	TMDBID      int      `json:"tmdb_id"`
	Title       string   `json:"title"`
	PosterURL   string   `json:"poster_url,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	VoteAverage *float64 `json:"vote_average,omitempty"`
}

// MovieDetails is the full catalog record for a single movie.
type MovieDetails struct {
	TMDBID      int     `json:"tmdb_id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`
	BackdropURL string  `json:"backdrop_url,omitempty"`
	Genres      []Genre `json:"genres"`
}

// RecommendationItem is a single content-similarity hit: the locally known
// title, its similarity score, and an optional catalog card attached by
// best-effort enrichment. TMDB is nil when enrichment failed or the title
// could not be found in the catalog.
type RecommendationItem struct {
	Title string     `json:"title"`
	Score float64    `json:"score"`
	TMDB  *MovieCard `json:"tmdb,omitempty"`
}

// RecommendationBundle is the combined response of the recommendation
// pipeline: the resolved movie plus two ordered shelves. Both shelves may be
// empty; the bundle itself is always complete.
type RecommendationBundle struct {
	Query                string               `json:"query"`
	MovieDetails         *MovieDetails        `json:"movie_details"`
	TFIDFRecommendations []RecommendationItem `json:"tfidf_recommendations"`
	GenreRecommendations []MovieCard          `json:"genre_recommendations"`
}
