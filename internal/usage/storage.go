package usage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Storage persists aggregated usage between runs.
type Storage interface {
	LoadStats(ctx context.Context) (*Stats, error)
	SaveStats(ctx context.Context, stats *Stats) error
}

// FileStorage keeps stats as one JSON document, replaced atomically.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage creates dataDir if needed and stores usage.json in it.
func NewFileStorage(dataDir string) (*FileStorage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileStorage{path: filepath.Join(dataDir, "usage.json")}, nil
}

// LoadStats returns empty stats when the file is missing or unreadable.
func (f *FileStorage) LoadStats(ctx context.Context) (*Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewStats(), nil
		}
		return nil, err
	}
	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		log.WithError(err).WithField("path", f.path).Warn("Failed to decode usage stats, starting fresh")
		return NewStats(), nil
	}
	stats.ensureMaps()
	return &stats, nil
}

func (f *FileStorage) SaveStats(ctx context.Context, stats *Stats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
