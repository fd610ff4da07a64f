// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package similarity

import (
	"errors"

	"github.com/reelatlas/reelatlas/internal/metrics"
)

// ErrTitleNotFound indicates a title has no exact or acceptable fuzzy match
// in the similarity index.
var ErrTitleNotFound = errors.New("title not found in similarity index")

// DefaultFuzzyCutoff is the minimum Ratio for a fuzzy match to be accepted.
const DefaultFuzzyCutoff = 0.6

// Resolver maps free-text titles to similarity-index row ids, trying an
// exact normalized match first and falling back to the best fuzzy match at
// or above the cutoff.
type Resolver struct {
	index  *Index
	cutoff float64
}

// NewResolver creates a resolver over the given index. A cutoff of 0 selects
// DefaultFuzzyCutoff.
func NewResolver(index *Index, cutoff float64) *Resolver {
	if cutoff == 0 {
		cutoff = DefaultFuzzyCutoff
	}
	return &Resolver{index: index, cutoff: cutoff}
}

// Resolve returns the row id for a title. Exact normalized matches win
// unconditionally; otherwise every known title is scored with Ratio and the
// single best candidate is accepted if it clears the cutoff. Keys are
// scanned in ascending row order and ties keep the first candidate, so
// resolution is deterministic.
//
// The fuzzy scan is O(K) over the key set. The index is small and static,
// so no incremental structure (such as a trigram index) is maintained; that
// is the first thing to revisit if the catalog grows by orders of magnitude.
func (r *Resolver) Resolve(title string) (int, error) {
	key := NormalizeTitle(title)

	if row, ok := r.index.titleToRow[key]; ok {
		metrics.RecordResolverLookup("exact")
		return row, nil
	}

	bestRow := -1
	bestScore := 0.0
	for _, candidate := range r.index.keys {
		score := Ratio(key, candidate.key)
		if score > bestScore {
			bestScore = score
			bestRow = candidate.row
		}
	}

	if bestRow >= 0 && bestScore >= r.cutoff {
		metrics.RecordResolverLookup("fuzzy")
		return bestRow, nil
	}

	metrics.RecordResolverLookup("miss")
	return 0, ErrTitleNotFound
}
