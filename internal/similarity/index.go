// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

// Package similarity implements the offline content-similarity index: loading
// the precomputed TF-IDF artifacts, resolving free-text titles to index rows,
// and ranking rows by vector similarity.
//
// The index is built once at process start from three co-indexed artifacts
// produced by an offline pipeline and is immutable afterwards, so all lookups
// are safe for unlimited concurrent readers without locking.
package similarity

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/reelatlas/reelatlas/internal/config"
	"github.com/reelatlas/reelatlas/internal/logging"
)

// Row is one similarity-index record. Source carries the upstream feature
// text (genre/cast keywords used to build the vectors) untouched; it is
// passed through and never reprocessed here.
type Row struct {
	Title  string          `json:"title"`
	Source json.RawMessage `json:"source,omitempty"`
}

// titleKey pairs a normalized title with its row id. The loader materializes
// these in ascending (row, key) order so fuzzy scans are deterministic.
type titleKey struct {
	key string
	row int
}

// Index is the immutable in-memory similarity index: the row table, the
// normalized title map and the document-term matrix, co-indexed by row id.
type Index struct {
	table      []Row
	matrix     [][]float64
	titleToRow map[string]int
	keys       []titleKey
}

// NormalizeTitle converts a title to its lookup form: whitespace-trimmed and
// case-folded. Matches the normalization the offline pipeline applies to the
// title map keys.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Load reads the three index artifacts from cfg and builds the lookup
// structures. Any missing or malformed artifact is a fatal error; the caller
// must not serve requests without a loaded index.
func Load(cfg config.IndexConfig) (*Index, error) {
	var table []Row
	if err := readArtifact(filepath.Join(cfg.Dir, cfg.MoviesFile), &table); err != nil {
		return nil, fmt.Errorf("similarity index row table: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("similarity index row table %s is empty", cfg.MoviesFile)
	}

	var indices map[string]int
	if err := readArtifact(filepath.Join(cfg.Dir, cfg.IndicesFile), &indices); err != nil {
		return nil, fmt.Errorf("similarity index title map: %w", err)
	}

	var matrix [][]float64
	if err := readArtifact(filepath.Join(cfg.Dir, cfg.MatrixFile), &matrix); err != nil {
		return nil, fmt.Errorf("similarity index matrix: %w", err)
	}

	if len(matrix) != len(table) {
		return nil, fmt.Errorf("similarity index shape mismatch: %d rows in table, %d in matrix", len(table), len(matrix))
	}
	features := len(matrix[0])
	if features == 0 {
		return nil, fmt.Errorf("similarity index matrix has zero features")
	}
	for i, row := range matrix {
		if len(row) != features {
			return nil, fmt.Errorf("similarity index matrix is ragged: row %d has %d features, expected %d", i, len(row), features)
		}
	}

	idx := &Index{
		table:      table,
		matrix:     matrix,
		titleToRow: make(map[string]int, len(indices)),
	}

	// Normalize the title map deterministically: original titles are
	// visited in lexicographic order, so when two distinct titles collapse
	// to the same normalized key the lexicographically later one wins.
	// Collisions are logged rather than rejected.
	originals := make([]string, 0, len(indices))
	for title := range indices {
		originals = append(originals, title)
	}
	sort.Strings(originals)

	for _, title := range originals {
		row := indices[title]
		if row < 0 || row >= len(table) {
			return nil, fmt.Errorf("similarity index title %q maps to out-of-range row %d", title, row)
		}
		key := NormalizeTitle(title)
		if prev, ok := idx.titleToRow[key]; ok && prev != row {
			logging.Warn().
				Str("title", title).
				Int("previous_row", prev).
				Int("row", row).
				Msg("Similarity index title collision after normalization; keeping later entry")
		}
		idx.titleToRow[key] = row
	}

	idx.keys = make([]titleKey, 0, len(idx.titleToRow))
	for key, row := range idx.titleToRow {
		idx.keys = append(idx.keys, titleKey{key: key, row: row})
	}
	sort.Slice(idx.keys, func(i, j int) bool {
		if idx.keys[i].row != idx.keys[j].row {
			return idx.keys[i].row < idx.keys[j].row
		}
		return idx.keys[i].key < idx.keys[j].key
	})

	logging.Info().
		Int("rows", len(table)).
		Int("features", features).
		Int("titles", len(idx.titleToRow)).
		Msg("Similarity index loaded")

	return idx, nil
}

// readArtifact reads and decodes a single JSON artifact.
func readArtifact(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// NumRows returns the number of rows in the index.
func (idx *Index) NumRows() int {
	return len(idx.table)
}

// Title returns the canonical title for a row id.
func (idx *Index) Title(row int) string {
	return idx.table[row].Title
}

// Row returns the full record for a row id.
func (idx *Index) Row(row int) Row {
	return idx.table[row]
}

// similarityScores computes the similarity of the given row against every
// row in the index. Rows are magnitude-normalized upstream, so the dot
// product is the cosine similarity.
func (idx *Index) similarityScores(row int) []float64 {
	query := idx.matrix[row]
	scores := make([]float64, len(idx.matrix))
	for i, vec := range idx.matrix {
		var dot float64
		for f, q := range query {
			dot += q * vec[f]
		}
		scores[i] = dot
	}
	return scores
}
