package session

import (
	"context"
	"sync"
	"time"

	"github.com/gleamhq/estimator/internal/models"
)

// MemoryStore is the in-process Store used in development and when no redis
// address is configured. Expiry is checked lazily on Load.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryEntry
}

type memoryEntry struct {
	record    models.HandoffRecord
	expiresAt time.Time
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryEntry)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, record models.HandoffRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SessionID] = memoryEntry{
		record:    record,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (*models.HandoffRecord, error) {
	s.mu.RLock()
	entry, ok := s.records[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.records, sessionID)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	record := entry.record
	return &record, nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
