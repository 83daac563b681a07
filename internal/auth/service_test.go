package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ssoweb/internal/identity"
)

func TestNewService(t *testing.T) {
	t.Parallel()

	t.Run("creates service with defaults", func(t *testing.T) {
		t.Parallel()

		svc := NewService(&MockIdentityStore{}, &MockStateStore{}, []Provider{&MockProvider{}})
		require.NotNil(t, svc)
		assert.Equal(t, 10*time.Minute, svc.stateTTL)
		assert.NotNil(t, svc.log)
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		svc := NewService(&MockIdentityStore{}, &MockStateStore{}, nil, WithStateTTL(5*time.Minute))
		assert.Equal(t, 5*time.Minute, svc.stateTTL)
	})

	t.Run("registers providers by name", func(t *testing.T) {
		t.Parallel()

		svc := NewService(&MockIdentityStore{}, &MockStateStore{}, []Provider{
			&MockProvider{name: "github"},
			&MockProvider{name: "microsoft"},
		})
		assert.ElementsMatch(t, []string{"github", "microsoft"}, svc.Providers())
	})
}

func TestService_Begin(t *testing.T) {
	t.Parallel()

	t.Run("builds authorization URL and records attempt", func(t *testing.T) {
		t.Parallel()

		states := &MockStateStore{}
		provider := &MockProvider{}
		svc := NewService(&MockIdentityStore{}, states, []Provider{provider})

		var capturedState string
		states.On("Store", mock.Anything, "github", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Run(func(args mock.Arguments) {
				capturedState = args.Get(2).(string)
			}).Return(nil)
		provider.On("AuthCodeURL", mock.AnythingOfType("string")).Return("https://provider.example/authorize?state=s")

		url, err := svc.Begin(context.Background(), "github")

		require.NoError(t, err)
		assert.Equal(t, "https://provider.example/authorize?state=s", url)
		assert.NotEmpty(t, capturedState)
		assert.Greater(t, len(capturedState), 30)

		states.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("generates unique state per attempt", func(t *testing.T) {
		t.Parallel()

		states := &MockStateStore{}
		provider := &MockProvider{}
		svc := NewService(&MockIdentityStore{}, states, []Provider{provider})

		var captured []string
		states.On("Store", mock.Anything, "github", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Run(func(args mock.Arguments) {
				captured = append(captured, args.Get(2).(string))
			}).Return(nil).Twice()
		provider.On("AuthCodeURL", mock.AnythingOfType("string")).Return("url").Twice()

		_, err := svc.Begin(context.Background(), "github")
		require.NoError(t, err)
		_, err = svc.Begin(context.Background(), "github")
		require.NoError(t, err)

		require.Len(t, captured, 2)
		assert.NotEqual(t, captured[0], captured[1])
	})

	t.Run("fails for unknown provider", func(t *testing.T) {
		t.Parallel()

		svc := NewService(&MockIdentityStore{}, &MockStateStore{}, nil)

		_, err := svc.Begin(context.Background(), "gitlab")
		assert.ErrorIs(t, err, ErrProviderNotConfigured)
	})
}

func TestService_Complete(t *testing.T) {
	t.Parallel()

	profile := Profile{
		SubjectID: "42",
		Username:  "alice",
		Email:     "alice@example.com",
		AvatarURL: "https://example.com/alice.png",
	}

	existing := &identity.Identity{
		ID:        7,
		Provider:  "github",
		SubjectID: "42",
		Username:  "alice",
	}

	t.Run("mismatched state fails without touching the store", func(t *testing.T) {
		t.Parallel()

		identities := &MockIdentityStore{}
		states := &MockStateStore{}
		provider := &MockProvider{}
		svc := NewService(identities, states, []Provider{provider})

		states.On("Consume", mock.Anything, "github", "wrong").Return(ErrStateNotFound)

		_, err := svc.Complete(context.Background(), "github", "wrong", "c1")

		assert.ErrorIs(t, err, ErrStateMismatch)
		identities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		identities.AssertNotCalled(t, "FindByProvider", mock.Anything, mock.Anything, mock.Anything)
		provider.AssertNotCalled(t, "ResolveProfile", mock.Anything, mock.Anything)
	})

	t.Run("unknown provider fails before state validation", func(t *testing.T) {
		t.Parallel()

		states := &MockStateStore{}
		svc := NewService(&MockIdentityStore{}, states, nil)

		_, err := svc.Complete(context.Background(), "gitlab", "s1", "c1")

		assert.ErrorIs(t, err, ErrProviderNotConfigured)
		states.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("token exchange failure aborts the attempt", func(t *testing.T) {
		t.Parallel()

		identities := &MockIdentityStore{}
		states := &MockStateStore{}
		provider := &MockProvider{}
		svc := NewService(identities, states, []Provider{provider})

		states.On("Consume", mock.Anything, "github", "s1").Return(nil)
		provider.On("ResolveProfile", mock.Anything, "c1").
			Return(Profile{}, errors.Join(ErrTokenExchange, errors.New("boom")))

		_, err := svc.Complete(context.Background(), "github", "s1", "c1")

		assert.ErrorIs(t, err, ErrTokenExchange)
		identities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("first login creates identity with profile fields", func(t *testing.T) {
		t.Parallel()

		identities := &MockIdentityStore{}
		states := &MockStateStore{}
		provider := &MockProvider{}
		svc := NewService(identities, states, []Provider{provider})

		states.On("Consume", mock.Anything, "github", "s1").Return(nil)
		provider.On("ResolveProfile", mock.Anything, "c1").Return(profile, nil)
		identities.On("FindByProvider", mock.Anything, "github", "42").Return(nil, identity.ErrNotFound)
		identities.On("Create", mock.Anything, mock.MatchedBy(func(in identity.NewIdentity) bool {
			return in.Provider == "github" &&
				in.SubjectID == "42" &&
				in.Username == "alice" &&
				in.Email != nil && *in.Email == "alice@example.com" &&
				in.AvatarURL != nil
		})).Return(existing, nil)

		ident, err := svc.Complete(context.Background(), "github", "s1", "c1")

		require.NoError(t, err)
		assert.Equal(t, int64(7), ident.ID)
		identities.AssertExpectations(t)
	})

	t.Run("repeat login touches last-login and keeps stored fields", func(t *testing.T) {
		t.Parallel()

		identities := &MockIdentityStore{}
		states := &MockStateStore{}
		provider := &MockProvider{}
		svc := NewService(identities, states, []Provider{provider})

		// Remote display name changed; only the timestamp updates.
		changed := profile
		changed.Username = "alice-renamed"

		states.On("Consume", mock.Anything, "github", "s2").Return(nil)
		provider.On("ResolveProfile", mock.Anything, "c2").Return(changed, nil)
		identities.On("FindByProvider", mock.Anything, "github", "42").Return(existing, nil)
		identities.On("TouchLastLogin", mock.Anything, int64(7)).Return(nil)

		ident, err := svc.Complete(context.Background(), "github", "s2", "c2")

		require.NoError(t, err)
		assert.Equal(t, "alice", ident.Username)
		identities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		identities.AssertExpectations(t)
	})

	t.Run("create conflict resolves to the existing record", func(t *testing.T) {
		t.Parallel()

		identities := &MockIdentityStore{}
		states := &MockStateStore{}
		provider := &MockProvider{}
		svc := NewService(identities, states, []Provider{provider})

		states.On("Consume", mock.Anything, "github", "s1").Return(nil)
		provider.On("ResolveProfile", mock.Anything, "c1").Return(profile, nil)
		// First read sees nothing, the insert loses the race, the
		// re-read returns the winner's record.
		identities.On("FindByProvider", mock.Anything, "github", "42").Return(nil, identity.ErrNotFound).Once()
		identities.On("Create", mock.Anything, mock.AnythingOfType("identity.NewIdentity")).Return(nil, identity.ErrAlreadyExists)
		identities.On("FindByProvider", mock.Anything, "github", "42").Return(existing, nil).Once()
		identities.On("TouchLastLogin", mock.Anything, int64(7)).Return(nil)

		ident, err := svc.Complete(context.Background(), "github", "s1", "c1")

		require.NoError(t, err)
		assert.Equal(t, int64(7), ident.ID)
		identities.AssertExpectations(t)
	})

	t.Run("empty subject id is a profile failure", func(t *testing.T) {
		t.Parallel()

		identities := &MockIdentityStore{}
		states := &MockStateStore{}
		provider := &MockProvider{}
		svc := NewService(identities, states, []Provider{provider})

		states.On("Consume", mock.Anything, "github", "s1").Return(nil)
		provider.On("ResolveProfile", mock.Anything, "c1").Return(Profile{Username: "ghost"}, nil)

		_, err := svc.Complete(context.Background(), "github", "s1", "c1")

		assert.ErrorIs(t, err, ErrProfileFetch)
		identities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
