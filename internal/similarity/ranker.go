// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package similarity

import (
	"fmt"
	"sort"
)

// ScoredTitle is a single similarity hit: a known title and its cosine
// similarity to the query row.
type ScoredTitle struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Ranker ranks index rows by vector similarity. It is a pure function over
// the immutable index and safe for concurrent use.
type Ranker struct {
	index *Index
}

// NewRanker creates a ranker over the given index.
func NewRanker(index *Index) *Ranker {
	return &Ranker{index: index}
}

// Rank returns up to topN titles most similar to the given row, excluding
// the row itself, ordered by descending score. Ties keep ascending row
// order (stable sort), so output is deterministic. Returns fewer than topN
// when the index holds fewer than topN+1 rows.
func (r *Ranker) Rank(row, topN int) ([]ScoredTitle, error) {
	if row < 0 || row >= r.index.NumRows() {
		return nil, fmt.Errorf("row %d out of range (index has %d rows)", row, r.index.NumRows())
	}
	if topN <= 0 {
		return []ScoredTitle{}, nil
	}

	scores := r.index.similarityScores(row)

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	out := make([]ScoredTitle, 0, topN)
	for _, i := range order {
		if i == row {
			continue
		}
		out = append(out, ScoredTitle{
			Title: r.index.Title(i),
			Score: scores[i],
		})
		if len(out) >= topN {
			break
		}
	}

	return out, nil
}
