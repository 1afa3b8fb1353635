package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps live session ids in a TTL map. Used in tests and when no
// redis address is configured.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]time.Time)}
}

func (s *MemoryStore) Save(_ context.Context, sid string, ttl time.Duration) error {
	s.mu.Lock()
	s.m[sid] = time.Now().Add(ttl)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Exists(_ context.Context, sid string) (bool, error) {
	now := time.Now()

	s.mu.RLock()
	exp, ok := s.m[sid]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if now.After(exp) {
		s.mu.Lock()
		delete(s.m, sid)
		s.mu.Unlock()

		return false, nil
	}

	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.m, sid)
	s.mu.Unlock()

	return nil
}
