// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

// Package recommend builds recommendation bundles by combining the local
// content-similarity index with live TMDB catalog data.
//
// The pipeline tolerates partial failure: the initial catalog search, the
// detail fetch and genre discovery are load-bearing. Similarity resolution
// and per-item enrichment degrade to empty or unenriched results rather
// than failing the bundle.
package recommend

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/reelatlas/reelatlas/internal/logging"
	"github.com/reelatlas/reelatlas/internal/metrics"
	"github.com/reelatlas/reelatlas/internal/models"
	"github.com/reelatlas/reelatlas/internal/similarity"
	"github.com/reelatlas/reelatlas/internal/tmdb"
)

// Orchestrator assembles recommendation bundles.
type Orchestrator struct {
	catalog  tmdb.Catalog
	resolver *similarity.Resolver
	ranker   *similarity.Ranker
}

// NewOrchestrator creates a bundle orchestrator over the given catalog and
// similarity index.
func NewOrchestrator(catalog tmdb.Catalog, idx *similarity.Index, fuzzyCutoff float64) *Orchestrator {
	return &Orchestrator{
		catalog:  catalog,
		resolver: similarity.NewResolver(idx, fuzzyCutoff),
		ranker:   similarity.NewRanker(idx),
	}
}

// BuildBundle resolves query against the catalog and assembles the full
// recommendation bundle.
//
// Failure semantics:
//   - Catalog search, detail fetch and genre discovery errors abort the
//     bundle and propagate (tmdb.ErrNotFound, UpstreamError).
//   - A query outside the similarity index yields an empty similarity shelf.
//   - Enrichment failures leave individual items without a catalog card.
//   - A movie without genres yields an empty genre shelf.
//   - An empty similarity shelf is backfilled from genre cards at score 0 so
//     a successfully resolved movie always carries at least one shelf when
//     the catalog has anything to offer.
func (o *Orchestrator) BuildBundle(ctx context.Context, query string, topN, genreLimit int) (*models.RecommendationBundle, error) {
	start := time.Now()
	defer func() {
		metrics.BundleDuration.Observe(time.Since(start).Seconds())
	}()

	hit, err := o.catalog.SearchFirst(ctx, query)
	if err != nil {
		return nil, err
	}

	details, err := o.catalog.MovieDetails(ctx, hit.TMDBID)
	if err != nil {
		return nil, err
	}

	tfidf := o.similarityShelf(ctx, details.Title, topN)
	genre, err := o.genreShelf(ctx, details, genreLimit)
	if err != nil {
		return nil, err
	}

	// Guaranteed fallback: a movie known to the catalog but absent from the
	// similarity index still gets a populated similarity shelf when genre
	// cards exist.
	if len(tfidf) == 0 && len(genre) > 0 {
		tfidf = fallbackShelf(genre, topN)
		metrics.FallbackActivations.Inc()
		logging.Ctx(ctx).Info().
			Str("title", details.Title).
			Int("cards", len(tfidf)).
			Msg("Similarity shelf backfilled from genre cards")
	}

	return &models.RecommendationBundle{
		Query:                query,
		MovieDetails:         details,
		TFIDFRecommendations: tfidf,
		GenreRecommendations: genre,
	}, nil
}

// similarityShelf ranks the index neighbors of title and enriches each hit
// with a catalog card. Resolution or ranking failures degrade to an empty
// shelf.
func (o *Orchestrator) similarityShelf(ctx context.Context, title string, topN int) []models.RecommendationItem {
	row, err := o.resolver.Resolve(title)
	if err != nil {
		if errors.Is(err, similarity.ErrTitleNotFound) {
			logging.Ctx(ctx).Debug().Str("title", title).Msg("Title not in similarity index")
		} else {
			logging.Ctx(ctx).Warn().Err(err).Str("title", title).Msg("Title resolution failed")
		}
		return []models.RecommendationItem{}
	}

	scored, err := o.ranker.Rank(row, topN)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("row", row).Msg("Similarity ranking failed")
		return []models.RecommendationItem{}
	}

	items := make([]models.RecommendationItem, len(scored))

	// Enrich concurrently; each goroutine owns one slot so shelf order is
	// preserved regardless of completion order.
	var wg sync.WaitGroup
	for i, s := range scored {
		items[i] = models.RecommendationItem{Title: s.Title, Score: s.Score}

		wg.Add(1)
		go func(slot int, title string) {
			defer wg.Done()
			items[slot].TMDB = o.catalog.SearchFirstCard(ctx, title)
		}(i, s.Title)
	}
	wg.Wait()

	return items
}

// genreShelf fetches popular movies sharing the first genre of details.
// A movie without genres yields an empty shelf; discovery failures propagate.
func (o *Orchestrator) genreShelf(ctx context.Context, details *models.MovieDetails, limit int) ([]models.MovieCard, error) {
	if len(details.Genres) == 0 {
		return []models.MovieCard{}, nil
	}

	genreID := details.Genres[0].ID
	cards, err := o.catalog.DiscoverByGenre(ctx, genreID, limit)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("genre_id", genreID).Msg("Genre discovery failed")
		return nil, err
	}
	if cards == nil {
		cards = []models.MovieCard{}
	}
	return cards, nil
}

// fallbackShelf synthesizes similarity items from up to topN genre cards.
// Score 0 marks them as fallback content rather than similarity hits.
func fallbackShelf(genre []models.MovieCard, topN int) []models.RecommendationItem {
	if topN < 0 {
		topN = 0
	}
	if topN > len(genre) {
		topN = len(genre)
	}
	items := make([]models.RecommendationItem, 0, topN)
	for i := 0; i < topN; i++ {
		card := genre[i]
		items = append(items, models.RecommendationItem{
			Title: card.Title,
			Score: 0,
			TMDB:  &card,
		})
	}
	return items
}
