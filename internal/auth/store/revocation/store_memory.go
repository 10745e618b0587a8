package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is the single-instance denylist used when Redis is not
// configured. Expired entries are pruned lazily on write.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewInMemory constructs an empty denylist.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// WithClock overrides the clock; tests use it to expire entries.
func (s *InMemoryStore) WithClock(now func() time.Time) *InMemoryStore {
	s.now = now
	return s
}

func (s *InMemoryStore) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ok, err := admit(jti, ttl); !ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
		}
	}
	s.entries[jti] = now.Add(ttl)
	return nil
}

func (s *InMemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[jti]
	return ok && s.now().Before(exp), nil
}
