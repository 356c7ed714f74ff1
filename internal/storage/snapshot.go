package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golevandrey/zoomagia-scraper/internal/types"
)

// SnapshotStore writes each batch twice: a timestamped file that is never
// touched again, and a fixed "latest" file that is overwritten every run.
type SnapshotStore struct {
	dir     string
	prefix  string
	archive *MongoArchive // nil when archiving is disabled
	logger  *slog.Logger
}

// NewSnapshotStore creates the store and ensures the output directory exists.
// An unusable output directory is a startup failure and is returned as-is.
func NewSnapshotStore(dir, prefix string, archive *MongoArchive, logger *slog.Logger) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &SnapshotStore{
		dir:     dir,
		prefix:  prefix,
		archive: archive,
		logger:  logger.With("component", "snapshot_store"),
	}, nil
}

// Save serializes the batch as indented UTF-8 JSON, non-ASCII preserved
// literally, and writes both snapshot targets. The archive, when configured,
// runs after a successful file write; its failure is logged only.
func (s *SnapshotStore) Save(ctx context.Context, products []*types.Product) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return &types.StorageError{Path: s.dir, Err: err}
	}

	timestamp := time.Now().Format("20060102_150405")
	stamped := filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", s.prefix, timestamp))
	latest := filepath.Join(s.dir, s.prefix+".json")

	if err := os.WriteFile(stamped, buf.Bytes(), 0o644); err != nil {
		return &types.StorageError{Path: stamped, Err: err}
	}
	if err := os.WriteFile(latest, buf.Bytes(), 0o644); err != nil {
		return &types.StorageError{Path: latest, Err: err}
	}

	s.logger.Info("snapshot saved", "latest", latest, "stamped", stamped, "products", len(products))

	if s.archive != nil {
		if err := s.archive.Store(ctx, products); err != nil {
			s.logger.Error("archive write failed", "error", err)
		}
	}

	return nil
}

// Close releases the archive connection, if any.
func (s *SnapshotStore) Close() error {
	if s.archive != nil {
		return s.archive.Close()
	}
	return nil
}
