// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package similarity

import (
	"testing"
)

func TestRankOrdering(t *testing.T) {
	r := NewRanker(loadTestIndex(t))

	got, err := r.Rank(0, 3)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}

	want := []ScoredTitle{
		{Title: "Avengers: Age of Ultron", Score: 0.8},
		{Title: "Iron Man", Score: 0.6},
		{Title: "The Dark Knight", Score: 0.0},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Title != want[i].Title {
			t.Errorf("Result %d: expected %q, got %q", i, want[i].Title, got[i].Title)
		}
		if !almostEqual(got[i].Score, want[i].Score) {
			t.Errorf("Result %d: expected score %g, got %g", i, want[i].Score, got[i].Score)
		}
	}
}

func TestRankExcludesSelf(t *testing.T) {
	idx := loadTestIndex(t)
	r := NewRanker(idx)

	for row := 0; row < idx.NumRows(); row++ {
		results, err := r.Rank(row, idx.NumRows())
		if err != nil {
			t.Fatalf("Rank(%d) failed: %v", row, err)
		}
		self := idx.Title(row)
		for _, res := range results {
			if res.Title == self {
				t.Errorf("Rank(%d) included the query row itself", row)
			}
		}
	}
}

func TestRankNonIncreasingScores(t *testing.T) {
	idx := loadTestIndex(t)
	r := NewRanker(idx)

	for row := 0; row < idx.NumRows(); row++ {
		results, err := r.Rank(row, idx.NumRows())
		if err != nil {
			t.Fatalf("Rank(%d) failed: %v", row, err)
		}
		for i := 1; i < len(results); i++ {
			if results[i].Score > results[i-1].Score {
				t.Errorf("Rank(%d) scores increase at position %d: %g > %g",
					row, i, results[i].Score, results[i-1].Score)
			}
		}
	}
}

func TestRankRespectsTopN(t *testing.T) {
	r := NewRanker(loadTestIndex(t))

	results, err := r.Rank(0, 2)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(results))
	}
}

func TestRankSmallIndexReturnsFewer(t *testing.T) {
	r := NewRanker(loadTestIndex(t))

	results, err := r.Rank(0, 100)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	// 4 rows minus self.
	if len(results) != 3 {
		t.Errorf("Expected 3 results, got %d", len(results))
	}
}

func TestRankZeroTopN(t *testing.T) {
	r := NewRanker(loadTestIndex(t))

	results, err := r.Rank(0, 0)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty result for topN=0, got %d", len(results))
	}
}

func TestRankOutOfRange(t *testing.T) {
	r := NewRanker(loadTestIndex(t))

	if _, err := r.Rank(-1, 3); err == nil {
		t.Error("Expected error for negative row")
	}
	if _, err := r.Rank(99, 3); err == nil {
		t.Error("Expected error for out-of-range row")
	}
}

func TestRankTieBreaksByRowOrder(t *testing.T) {
	// Rows 1 and 2 are both orthogonal to row 0, so they tie at score 0
	// and must appear in ascending row order.
	table := []Row{{Title: "A"}, {Title: "B"}, {Title: "C"}}
	indices := map[string]int{"A": 0, "B": 1, "C": 2}
	matrix := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	idx, err := Load(writeArtifacts(t, table, indices, matrix))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	results, err := NewRanker(idx).Rank(0, 2)
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Title != "B" || results[1].Title != "C" {
		t.Errorf("Expected tie order B, C; got %q, %q", results[0].Title, results[1].Title)
	}
}

func TestRankConcurrentUse(t *testing.T) {
	r := NewRanker(loadTestIndex(t))

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				if _, err := r.Rank(j%4, 3); err != nil {
					t.Errorf("Rank failed: %v", err)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
