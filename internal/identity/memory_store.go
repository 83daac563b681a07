package identity

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. It backs dev
// mode and tests; semantics mirror PgStore, including the uniqueness
// check under a single write lock.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*Identity
	byKey  map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		byID:   make(map[int64]*Identity),
		byKey:  make(map[string]int64),
	}
}

func key(provider, subjectID string) string {
	return provider + "\x00" + subjectID
}

func (s *MemoryStore) FindByProvider(ctx context.Context, provider, subjectID string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[key(provider, subjectID)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *MemoryStore) Create(ctx context.Context, in NewIdentity) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(in.Provider, in.SubjectID)
	if _, exists := s.byKey[k]; exists {
		return nil, ErrAlreadyExists
	}

	now := time.Now()
	ident := &Identity{
		ID:          s.nextID,
		Provider:    in.Provider,
		SubjectID:   in.SubjectID,
		Username:    in.Username,
		Email:       in.Email,
		AvatarURL:   in.AvatarURL,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	s.nextID++
	s.byID[ident.ID] = ident
	s.byKey[k] = ident.ID

	copied := *ident
	return &copied, nil
}

func (s *MemoryStore) TouchLastLogin(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	ident.LastLoginAt = time.Now()
	return nil
}

var _ Store = (*MemoryStore)(nil)
