package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      json.RawMessage
	expiresAt time.Time
}

// MemoryStore is an in-process Store for local runs and tests. With a ttl,
// expired entries are swept from Put at most once per ttl.
type MemoryStore struct {
	mu        sync.Mutex
	data      map[string]memoryEntry
	ttl       time.Duration
	nextSweep time.Time
	closed    bool
	now       func() time.Time
}

// NewMemoryStore creates an empty store. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, commandUUID string, raw json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return unavailable("set", fmt.Errorf("store closed"))
	}

	now := s.now()
	if s.ttl > 0 && !now.Before(s.nextSweep) {
		s.sweep(now)
		s.nextSweep = now.Add(s.ttl)
	}

	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	s.data[commandUUID] = memoryEntry{data: cp, expiresAt: expiry(now, s.ttl)}
	return nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for key, entry := range s.data {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(s.data, key)
		}
	}
}

// Take implements Store.
func (s *MemoryStore) Take(_ context.Context, commandUUID string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, unavailable("get", fmt.Errorf("store closed"))
	}

	entry, ok := s.data[commandUUID]
	if !ok {
		return nil, false, nil
	}
	delete(s.data, commandUUID)
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.data, true, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return unavailable("ping", fmt.Errorf("store closed"))
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = make(map[string]memoryEntry)
	return nil
}
