package confirm

import (
	"sync"
	"time"
)

// Entry is a live confirmation code.
type Entry struct {
	Code      string
	ExpiresAt time.Time
}

// Store holds at most one live Entry per gadget ID.
type Store interface {
	// Get returns the entry for gadgetID, if any.
	Get(gadgetID string) (Entry, bool)

	// Put stores e for gadgetID, replacing any previous entry.
	Put(gadgetID string, e Entry)

	// Delete removes the entry for gadgetID. Missing IDs are ignored.
	Delete(gadgetID string)

	// DeleteExpired removes every entry whose expiry is before now and
	// returns how many were removed.
	DeleteExpired(now time.Time) int
}

// MemoryStore is a Store backed by a mutex-guarded map. Codes do not survive
// a restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(gadgetID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[gadgetID]
	return e, ok
}

func (s *MemoryStore) Put(gadgetID string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[gadgetID] = e
}

func (s *MemoryStore) Delete(gadgetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, gadgetID)
}

func (s *MemoryStore) DeleteExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if now.After(e.ExpiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, live or expired.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
