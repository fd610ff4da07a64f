// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package similarity

import (
	"errors"
	"testing"
)

func TestResolveExactMatch(t *testing.T) {
	r := NewResolver(loadTestIndex(t), 0)

	for title, want := range testIndices {
		row, err := r.Resolve(title)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", title, err)
			continue
		}
		if row != want {
			t.Errorf("Resolve(%q) = %d, want %d", title, row, want)
		}
	}
}

func TestResolveExactMatchNormalized(t *testing.T) {
	r := NewResolver(loadTestIndex(t), 0)

	row, err := r.Resolve("  the AVENGERS  ")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if row != 0 {
		t.Errorf("Expected row 0, got %d", row)
	}
}

func TestResolveFuzzyTypo(t *testing.T) {
	r := NewResolver(loadTestIndex(t), 0)

	// Misspelled query with no exact match; "the avengers" is the closest
	// key at ratio ~0.74, above the 0.6 floor.
	row, err := r.Resolve("Avngers")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if row != 0 {
		t.Errorf("Expected fuzzy match to row 0 (The Avengers), got %d", row)
	}
}

func TestResolveBelowCutoff(t *testing.T) {
	r := NewResolver(loadTestIndex(t), 0)

	_, err := r.Resolve("zzzzzzzzzz")
	if !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("Expected ErrTitleNotFound, got %v", err)
	}
}

func TestResolveExactBeatsFuzzy(t *testing.T) {
	// "Iron Man" is an exact key; the resolver must return its row without
	// consulting the fuzzy path even though other keys score above zero.
	r := NewResolver(loadTestIndex(t), 0)

	row, err := r.Resolve("Iron Man")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if row != 2 {
		t.Errorf("Expected exact row 2, got %d", row)
	}
}

func TestResolveCustomCutoff(t *testing.T) {
	// With an impossibly high cutoff the typo no longer resolves.
	r := NewResolver(loadTestIndex(t), 0.99)

	if _, err := r.Resolve("Avngers"); !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("Expected ErrTitleNotFound at cutoff 0.99, got %v", err)
	}
}

func TestResolveTieKeepsFirstRow(t *testing.T) {
	// Two keys equidistant from the query: the scan visits keys in
	// ascending row order and strict improvement keeps the first.
	table := []Row{{Title: "abcx"}, {Title: "abcy"}}
	indices := map[string]int{"abcx": 0, "abcy": 1}
	matrix := [][]float64{{1, 0}, {0, 1}}

	idx, err := Load(writeArtifacts(t, table, indices, matrix))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	r := NewResolver(idx, 0)

	row, err := r.Resolve("abcz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if row != 0 {
		t.Errorf("Expected tie to keep row 0, got %d", row)
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver(loadTestIndex(t), 0)

	first, err := r.Resolve("avengrs")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		row, err := r.Resolve("avengrs")
		if err != nil {
			t.Fatalf("Resolve failed on repeat %d: %v", i, err)
		}
		if row != first {
			t.Fatalf("Resolve not deterministic: got %d then %d", first, row)
		}
	}
}
