package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"vertexchat-go/internal/conversation"
)

// FileBackend appends exchange records as JSON lines, one file per
// session, under baseDir.
type FileBackend struct {
	baseDir string
	mu      sync.Mutex
}

// NewFileBackend creates a new file-based storage backend
func NewFileBackend(baseDir string) *FileBackend {
	return &FileBackend{baseDir: baseDir}
}

func (f *FileBackend) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(f.baseDir, 0o755); err != nil {
		return fmt.Errorf("create transcript directory: %w", err)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

func (f *FileBackend) Health(ctx context.Context) error {
	_, err := os.Stat(f.baseDir)
	return err
}

func (f *FileBackend) sessionPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return filepath.Join(f.baseDir, id+".jsonl"), nil
}

func (f *FileBackend) AppendExchange(ctx context.Context, ev conversation.ExchangeEvent) error {
	path, err := f.sessionPath(ev.SessionID)
	if err != nil {
		return err
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode exchange: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func (f *FileBackend) ListExchanges(ctx context.Context, sessionID string) ([]conversation.ExchangeEvent, error) {
	path, err := f.sessionPath(sessionID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ErrNotFound{Key: sessionID}
		}
		return nil, err
	}
	defer file.Close()

	var out []conversation.ExchangeEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var ev conversation.ExchangeEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		out = append(out, ev)
	}
	return out, scanner.Err()
}

func (f *FileBackend) ListSessions(ctx context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(f.baseDir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), ".jsonl"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *FileBackend) SessionSummary(ctx context.Context, sessionID string) (map[conversation.Outcome]int64, error) {
	exchanges, err := f.ListExchanges(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make(map[conversation.Outcome]int64)
	for _, ev := range exchanges {
		out[ev.Outcome]++
	}
	return out, nil
}
