package credential

import (
	"sync"
	"time"

	"vertexchat-go/internal/oauth"
)

// Store holds tokens in process memory under a key with a time-to-live.
type Store interface {
	Get(key string) (oauth.AccessToken, bool)
	Set(key string, tok oauth.AccessToken, expiresAt time.Time)
	Delete(key string)
}

type storeEntry struct {
	token     oauth.AccessToken
	expiresAt time.Time
}

// MemoryStore is the default Store. Reads take a shared lock only.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]storeEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty store. A nil now defaults to time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]storeEntry), now: now}
}

// Get returns the token stored under key if its entry has not expired.
func (s *MemoryStore) Get(key string) (oauth.AccessToken, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || !s.now().Before(entry.expiresAt) {
		return oauth.AccessToken{}, false
	}
	return entry.token, true
}

func (s *MemoryStore) Set(key string, tok oauth.AccessToken, expiresAt time.Time) {
	s.mu.Lock()
	s.entries[key] = storeEntry{token: tok, expiresAt: expiresAt}
	s.mu.Unlock()
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}
