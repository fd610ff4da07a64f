// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package similarity

// Ratio computes a sequence-matching similarity ratio between two strings on
// a 0-1 scale: 2*M/T where M is the total size of the longest matching
// blocks (found by recursively splitting around the longest common
// substring) and T is the combined length of both inputs. Identical strings
// score 1.0, strings with nothing in common score 0.0.
//
// The measure is intentionally asymmetry-free and favors long contiguous
// matches, which works well for catalog titles where typos and dropped
// articles are the common failure modes.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchingTotal(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(total)
}

// matchingTotal sums matching-block sizes in a[alo:ahi] vs b[blo:bhi] by
// locating the longest common substring and recursing on both sides.
func matchingTotal(a, b []rune, alo, ahi, blo, bhi int) int {
	ai, bi, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	return size +
		matchingTotal(a, b, alo, ai, blo, bi) +
		matchingTotal(a, b, ai+size, ahi, bi+size, bhi)
}

// longestMatch finds the longest contiguous matching block in
// a[alo:ahi] x b[blo:bhi]. Among equally long blocks the one starting
// earliest in a (then earliest in b) wins, keeping results deterministic.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	// j2len[j] is the length of the longest match ending at a[i-1], b[j-1].
	j2len := make(map[int]int, bhi-blo)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int, bhi-blo)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	return besti, bestj, bestsize
}
