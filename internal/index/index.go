// Package index stores chunk embeddings in memory and answers top-k
// nearest-neighbor queries by cosine similarity, with whole-file persistence
// to disk.
//
// All vectors in one index share a dimensionality and an embedding-model
// identifier, both established by the first add; mixing models silently
// corrupts similarity scores, so adds from a different model are rejected.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Entry pairs one embedding vector with its chunk's metadata. Entries are
// append-only; the only deletion granularity is the whole index.
type Entry struct {
	ID      string
	DocID   string
	DocName string
	Seq     int
	Page    int
	Start   int
	End     int
	Text    string
	Vector  []float32
}

// Result is one search hit. Score is cosine similarity, higher is closer.
type Result struct {
	Entry Entry
	Score float64
}

// Index is the in-memory entry set plus its established metadata. Reads may
// proceed concurrently; writers (Add, Clear, Load) are exclusive, so readers
// see the index before or after an ingest, never mid-commit.
type Index struct {
	mu        sync.RWMutex
	entries   []Entry
	norms     []float64
	model     string
	dimension int
	docIDs    map[string]struct{}
}

// New creates an empty index. Dimension and model are established by the
// first Add (or by Load).
func New() *Index {
	return &Index{docIDs: make(map[string]struct{})}
}

// Add appends entries produced by the given embedding model. Every entry is
// validated against the index's established dimension and model before
// anything is appended, so a rejected add leaves the entry count unchanged.
// An empty index adopts the first add's dimension and model.
func (ix *Index) Add(entries []Entry, model string) error {
	if len(entries) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	dimension := ix.dimension
	if len(ix.entries) == 0 {
		dimension = len(entries[0].Vector)
		if dimension == 0 {
			return fmt.Errorf("%w: first entry has an empty vector", ErrDimensionMismatch)
		}
	} else if model != ix.model {
		return fmt.Errorf("%w: index was built with %q, add uses %q", ErrModelMismatch, ix.model, model)
	}

	for i, entry := range entries {
		if len(entry.Vector) != dimension {
			return fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(entry.Vector), dimension)
		}
	}

	if len(ix.entries) == 0 {
		ix.dimension = dimension
		ix.model = model
	}
	for _, entry := range entries {
		ix.entries = append(ix.entries, entry)
		ix.norms = append(ix.norms, norm(entry.Vector))
		ix.docIDs[entry.DocID] = struct{}{}
	}
	return nil
}

// Search returns the k entries most similar to the query vector, scores
// non-increasing. Fewer than k entries returns all of them; an empty index
// returns an empty result, not an error. Equal scores rank by insertion
// order, so results are deterministic for a given index state.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.entries) == 0 {
		return nil, nil
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			ErrDimensionMismatch, len(query), ix.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	queryNorm := norm(query)
	results := make([]Result, len(ix.entries))
	for i, entry := range ix.entries {
		results[i] = Result{Entry: entry, Score: cosine(query, queryNorm, entry.Vector, ix.norms[i])}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Clear drops all entries and the established metadata; the next Add
// establishes fresh values.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = nil
	ix.norms = nil
	ix.model = ""
	ix.dimension = 0
	ix.docIDs = make(map[string]struct{})
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// DocCount returns the number of distinct source documents.
func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docIDs)
}

// Model returns the embedding-model identifier the index was built with,
// empty for an empty index.
func (ix *Index) Model() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.model
}

// Dimension returns the established vector dimensionality, 0 for an empty
// index.
func (ix *Index) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dimension
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine computes cosine similarity given pre-computed norms. Zero-norm
// vectors score 0.
func cosine(a []float32, normA float64, b []float32, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}
