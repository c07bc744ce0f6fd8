package index

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "bge-base-en-v1.5"

func entry(id string, vector ...float32) Entry {
	return Entry{
		ID:     id,
		DocID:  "doc-" + id,
		Text:   "text " + id,
		Vector: vector,
	}
}

func TestAdd_EstablishesMetadata(t *testing.T) {
	ix := New()
	assert.Equal(t, 0, ix.Dimension())
	assert.Equal(t, "", ix.Model())

	err := ix.Add([]Entry{entry("a", 1, 0, 0)}, testModel)
	require.NoError(t, err)

	assert.Equal(t, 3, ix.Dimension())
	assert.Equal(t, testModel, ix.Model())
	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, 1, ix.DocCount())
}

func TestAdd_DimensionMismatchLeavesIndexUnchanged(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]Entry{entry("a", 1, 0, 0)}, testModel))

	// Second entry in the batch is bad: nothing from the batch commits.
	err := ix.Add([]Entry{entry("b", 0, 1, 0), entry("c", 1, 2)}, testModel)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 1, ix.Len())
}

func TestAdd_ModelMismatchRejected(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]Entry{entry("a", 1, 0)}, testModel))

	err := ix.Add([]Entry{entry("b", 0, 1)}, "some-other-model")
	require.ErrorIs(t, err, ErrModelMismatch)
	assert.Equal(t, 1, ix.Len())
}

func TestAdd_EmptyIndexAdoptsNewModelAfterClear(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]Entry{entry("a", 1, 0)}, testModel))

	ix.Clear()
	assert.Equal(t, 0, ix.Len())
	assert.Equal(t, 0, ix.DocCount())

	require.NoError(t, ix.Add([]Entry{entry("b", 1, 2, 3)}, "replacement-model"))
	assert.Equal(t, "replacement-model", ix.Model())
	assert.Equal(t, 3, ix.Dimension())
}

func TestSearch_EmptyIndex(t *testing.T) {
	ix := New()
	for _, k := range []int{0, 1, 5, 100} {
		results, err := ix.Search([]float32{1, 0}, k)
		require.NoError(t, err)
		assert.Empty(t, results, "k=%d", k)
	}
}

func TestSearch_RankingAndCapping(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]Entry{
		entry("x", 1, 0),     // orthogonal to query
		entry("y", 0.7, 0.7), // diagonal
		entry("z", 0, 1),     // aligned with query
	}, testModel))

	results, err := ix.Search([]float32{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "z", results[0].Entry.ID)
	assert.Equal(t, "y", results[1].Entry.ID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)

	// k larger than the entry count returns everything.
	results, err = ix.Search([]float32{0, 1}, 50)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearch_TieBreakIsInsertionOrder(t *testing.T) {
	ix := New()
	// Identical vectors score identically; order must be append order.
	require.NoError(t, ix.Add([]Entry{
		entry("first", 1, 1),
		entry("second", 1, 1),
		entry("third", 1, 1),
	}, testModel))

	for i := 0; i < 5; i++ {
		results, err := ix.Search([]float32{1, 1}, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "first", results[0].Entry.ID)
		assert.Equal(t, "second", results[1].Entry.ID)
		assert.Equal(t, "third", results[2].Entry.ID)
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]Entry{entry("a", 1, 0, 0)}, testModel))

	_, err := ix.Search([]float32{1, 0}, 1)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store", "index.gob")

	ix := New()
	var entries []Entry
	for i := 0; i < 10; i++ {
		e := entry(fmt.Sprintf("e%d", i), float32(i), 1, 0.5)
		e.DocID = fmt.Sprintf("doc-%d", i%3)
		e.Seq = i
		entries = append(entries, e)
	}
	require.NoError(t, ix.Add(entries, testModel))
	require.NoError(t, ix.Save(path))

	loaded := New()
	require.NoError(t, loaded.Load(path, nil))

	assert.Equal(t, ix.Len(), loaded.Len())
	assert.Equal(t, ix.Dimension(), loaded.Dimension())
	assert.Equal(t, ix.Model(), loaded.Model())
	assert.Equal(t, 3, loaded.DocCount())

	// Per-entry chunk text survives the round trip, and search still works.
	results, err := loaded.Search([]float32{9, 1, 0.5}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "text e9", results[0].Entry.Text)
}

func TestLoad_MissingFileYieldsEmptyIndex(t *testing.T) {
	ix := New()
	err := ix.Load(filepath.Join(t.TempDir(), "does-not-exist.gob"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())
}

func TestLoad_CorruptFileYieldsEmptyIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")
	require.NoError(t, os.WriteFile(path, []byte("this is not a gob stream"), 0o644))

	ix := New()
	err := ix.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())
	assert.Equal(t, "", ix.Model())
}

func TestSave_RewritesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")

	ix := New()
	require.NoError(t, ix.Add([]Entry{entry("a", 1, 0)}, testModel))
	require.NoError(t, ix.Save(path))

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, ix.Add([]Entry{entry("b", 0, 1)}, testModel))
	require.NoError(t, ix.Save(path))

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	loaded := New()
	require.NoError(t, loaded.Load(path, nil))
	assert.Equal(t, 2, loaded.Len())
}
