package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStateStore keeps pending attempts in process memory with a
// periodic sweep for abandoned attempts. Suitable for single-instance
// deployments and tests; use RedisStateStore behind a load balancer.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	ticker *time.Ticker
	done   chan struct{}
}

// NewMemoryStateStore creates the store. A positive cleanupInterval
// starts a background sweep of expired entries.
func NewMemoryStateStore(cleanupInterval time.Duration) *MemoryStateStore {
	s := &MemoryStateStore{
		states: make(map[string]time.Time),
		done:   make(chan struct{}),
	}
	if cleanupInterval > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		go s.cleanupLoop()
	}
	return s
}

func stateKey(provider, state string) string {
	return provider + "\x00" + state
}

func (s *MemoryStateStore) Store(ctx context.Context, provider, state string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[stateKey(provider, state)] = expiresAt
	return nil
}

func (s *MemoryStateStore) Consume(ctx context.Context, provider, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey(provider, state)
	expiresAt, ok := s.states[key]
	if !ok {
		return ErrStateNotFound
	}
	delete(s.states, key)

	if time.Now().After(expiresAt) {
		return ErrStateNotFound
	}
	return nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStateStore) Close() error {
	if s.ticker != nil {
		s.ticker.Stop()
		close(s.done)
	}
	return nil
}

func (s *MemoryStateStore) cleanupLoop() {
	for {
		select {
		case <-s.ticker.C:
			s.deleteExpired()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStateStore) deleteExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, expiresAt := range s.states {
		if now.After(expiresAt) {
			delete(s.states, key)
		}
	}
}

var _ StateStore = (*MemoryStateStore)(nil)
