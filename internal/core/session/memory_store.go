package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	values    Values
	expiresAt time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Load(ctx context.Context, sid string) (Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sid]
	if !ok {
		return Values{}, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, sid)
		return Values{}, nil
	}
	return e.values, nil
}

func (s *MemoryStore) Save(ctx context.Context, sid string, v Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sid] = memoryEntry{values: v, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sid)
	return nil
}

// Purge drops expired sessions and reports how many were removed.
func (s *MemoryStore) Purge(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	now := s.now()
	for sid, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, sid)
			n++
		}
	}
	return n, nil
}
