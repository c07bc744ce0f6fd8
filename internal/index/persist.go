package index

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// indexFile is the on-disk representation: the established metadata plus the
// ordered entry set. The file is fully rewritten on every save and fully
// read at load.
type indexFile struct {
	Model     string
	Dimension int
	Entries   []Entry
}

// Save serializes the index to path, creating parent directories as needed.
// The write goes to a temp file in the same directory and is renamed into
// place, so a failed save leaves the previous file generation intact.
func (ix *Index) Save(path string) error {
	ix.mu.RLock()
	snapshot := indexFile{
		Model:     ix.model,
		Dimension: ix.dimension,
		Entries:   ix.entries,
	}
	ix.mu.RUnlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(&snapshot); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// Load replaces the index contents from path. A missing file yields an
// empty index; a corrupt file also yields an empty index with a logged
// warning. Neither fails the caller, so process start never crashes on
// index state.
func (ix *Index) Load(path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("No persisted index found, starting empty", "path", path)
			return nil
		}
		logger.Warn("Could not open persisted index, starting empty", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	var stored indexFile
	if err := gob.NewDecoder(f).Decode(&stored); err != nil {
		logger.Warn("Persisted index is corrupt, starting empty", "path", path, "error", err)
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.model = stored.Model
	ix.dimension = stored.Dimension
	ix.entries = stored.Entries
	ix.norms = make([]float64, len(stored.Entries))
	ix.docIDs = make(map[string]struct{}, len(stored.Entries))
	for i, entry := range stored.Entries {
		ix.norms[i] = norm(entry.Vector)
		ix.docIDs[entry.DocID] = struct{}{}
	}

	logger.Info("Loaded persisted index",
		"path", path,
		"entries", len(stored.Entries),
		"model", stored.Model,
		"dimension", stored.Dimension,
	)
	return nil
}
