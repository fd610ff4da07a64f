// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package similarity

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRatioIdentical(t *testing.T) {
	if r := Ratio("the avengers", "the avengers"); !almostEqual(r, 1.0) {
		t.Errorf("Expected 1.0 for identical strings, got %g", r)
	}
}

func TestRatioBothEmpty(t *testing.T) {
	if r := Ratio("", ""); !almostEqual(r, 1.0) {
		t.Errorf("Expected 1.0 for two empty strings, got %g", r)
	}
}

func TestRatioOneEmpty(t *testing.T) {
	if r := Ratio("abc", ""); !almostEqual(r, 0.0) {
		t.Errorf("Expected 0.0 against empty string, got %g", r)
	}
}

func TestRatioDisjoint(t *testing.T) {
	if r := Ratio("abc", "xyz"); !almostEqual(r, 0.0) {
		t.Errorf("Expected 0.0 for disjoint strings, got %g", r)
	}
}

func TestRatioSymmetricInputsKnownValue(t *testing.T) {
	// Matching blocks: "ngers" (5) plus "av" (2) -> M=7, T=19.
	want := 2.0 * 7.0 / 19.0
	if r := Ratio("avngers", "the avengers"); !almostEqual(r, want) {
		t.Errorf("Ratio(avngers, the avengers) = %g, want %g", r, want)
	}
}

func TestRatioTypoAboveCutoff(t *testing.T) {
	cases := []struct{ a, b string }{
		{"avngers", "the avengers"},
		{"incepton", "inception"},
		{"the dark knigt", "the dark knight"},
	}
	for _, c := range cases {
		if r := Ratio(c.a, c.b); r < DefaultFuzzyCutoff {
			t.Errorf("Ratio(%q, %q) = %g, expected >= %g", c.a, c.b, r, DefaultFuzzyCutoff)
		}
	}
}

func TestRatioUnrelatedBelowCutoff(t *testing.T) {
	if r := Ratio("zzzzzzzz", "the avengers"); r >= DefaultFuzzyCutoff {
		t.Errorf("Expected unrelated strings below cutoff, got %g", r)
	}
}

func TestRatioUnicode(t *testing.T) {
	// Rune-based lengths: "amélie" (6 runes) vs "amelie" (6 runes) share
	// blocks "am" (2) and "lie" (3) -> M=5, T=12.
	want := 2.0 * 5.0 / 12.0
	if r := Ratio("amélie", "amelie"); !almostEqual(r, want) {
		t.Errorf("Ratio(amélie, amelie) = %g, want %g", r, want)
	}
}

func TestRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"}, {"abcd", "bcda"}, {"movie", "the movie"}, {"x", "xxxxxxx"},
	}
	for _, p := range pairs {
		r := Ratio(p[0], p[1])
		if r < 0.0 || r > 1.0 {
			t.Errorf("Ratio(%q, %q) = %g out of [0,1]", p[0], p[1], r)
		}
	}
}
