// Package staging persists per-day snapshot files: the raw upstream payload
// and the normalized projection. Raw snapshots double as the pipeline's
// fetch cache, so their writes must be atomic from a reader's perspective.
package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	apperrors "github.com/Akash-RK/federal-register-rag/pkg/errors"
)

const (
	rawDir       = "raw"
	processedDir = "processed"
)

// Store keeps one file per day per stage under its root directory, named
// by ISO date.
type Store struct {
	root   string
	logger *slog.Logger
}

func New(root string) *Store {
	return &Store{
		root:   root,
		logger: slog.Default().With("component", "staging"),
	}
}

// HasRaw reports whether a raw snapshot exists for the day.
func (s *Store) HasRaw(day ingest.Day) bool {
	_, err := os.Stat(s.rawPath(day))
	return err == nil
}

// ReadRaw returns the staged raw payload for the day, or
// ErrSnapshotNotFound if none was written.
func (s *Store) ReadRaw(day ingest.Day) ([]byte, error) {
	data, err := os.ReadFile(s.rawPath(day))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("raw snapshot for %s: %w", day, apperrors.ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading raw snapshot for %s: %w", day, err)
	}
	return data, nil
}

// WriteRaw stages the day's raw payload, overwriting any previous snapshot.
func (s *Store) WriteRaw(day ingest.Day, payload []byte) error {
	return s.writeAtomic(s.rawPath(day), payload)
}

// WriteProcessed stages the day's normalized documents as a JSON array,
// overwriting any previous snapshot.
func (s *Store) WriteProcessed(day ingest.Day, docs []ingest.Document) error {
	if docs == nil {
		docs = []ingest.Document{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encoding processed snapshot for %s: %w", day, err)
	}
	return s.writeAtomic(s.processedPath(day), data)
}

// ReadProcessed returns the day's normalized documents, or
// ErrSnapshotNotFound if the processed stage was never written.
func (s *Store) ReadProcessed(day ingest.Day) ([]ingest.Document, error) {
	data, err := os.ReadFile(s.processedPath(day))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("processed snapshot for %s: %w", day, apperrors.ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading processed snapshot for %s: %w", day, err)
	}
	var docs []ingest.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decoding processed snapshot for %s: %w", day, err)
	}
	return docs, nil
}

// writeAtomic writes to a temp file in the destination directory and
// renames it into place, so readers never observe a truncated snapshot.
func (s *Store) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalizing snapshot: %w", err)
	}
	s.logger.Debug("snapshot written", "path", path, "bytes", len(data))
	return nil
}

func (s *Store) rawPath(day ingest.Day) string {
	return filepath.Join(s.root, rawDir, day.String()+".json")
}

func (s *Store) processedPath(day ingest.Day) string {
	return filepath.Join(s.root, processedDir, day.String()+".json")
}
