package auth

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ssoweb/internal/identity"
)

// MockIdentityStore is a mock implementation of identity.Store.
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) FindByProvider(ctx context.Context, provider, subjectID string) (*identity.Identity, error) {
	args := m.Called(ctx, provider, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityStore) Create(ctx context.Context, in identity.NewIdentity) (*identity.Identity, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityStore) TouchLastLogin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStateStore is a mock implementation of StateStore.
type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) Store(ctx context.Context, provider, state string, expiresAt time.Time) error {
	args := m.Called(ctx, provider, state, expiresAt)
	return args.Error(0)
}

func (m *MockStateStore) Consume(ctx context.Context, provider, state string) error {
	args := m.Called(ctx, provider, state)
	return args.Error(0)
}

// MockProvider is a mock implementation of Provider.
type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string {
	if m.name != "" {
		return m.name
	}
	return "github"
}

func (m *MockProvider) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockProvider) ResolveProfile(ctx context.Context, code string) (Profile, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(Profile), args.Error(1)
}
