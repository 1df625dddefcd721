package otp

import (
	"sync"
	"time"
)

// Entry is a pending one-time code for a delivery channel. At most one entry
// is live per channel; a new request overwrites the previous entry wholesale.
type Entry struct {
	Code      string
	ExpiresAt time.Time
	Attempts  int
}

// Store keeps pending codes keyed by formatted delivery channel. Entries
// move in and out by value so callers never share memory with the store;
// concurrent updates to the same channel resolve last-write-wins. The store
// is injected into the Service so tests can substitute their own.
type Store interface {
	Get(channel string) (Entry, bool)
	Put(channel string, entry Entry)
	Delete(channel string)
}

// MemoryStore is the in-process Store used in production. Codes for the
// pre-registration flow are transient and do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(channel string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[channel]
	return entry, ok
}

func (s *MemoryStore) Put(channel string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[channel] = entry
}

func (s *MemoryStore) Delete(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, channel)
}
