package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ssoweb/internal/identity"
)

// Manager issues, validates, and destroys sessions. Construction
// requires a store and transport via options; misconfiguration panics
// at startup rather than failing at request time.
type Manager struct {
	store     Store
	transport Transport
	config    Config
}

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets the session store.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithTransport sets the session transport.
func WithTransport(transport Transport) Option {
	return func(m *Manager) {
		m.transport = transport
	}
}

// WithConfig sets custom configuration.
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// New creates a session manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}
	if m.transport == nil {
		panic("session: transport is required")
	}

	return m
}

// Issue creates a session for a freshly authenticated identity and sets
// the session cookie. Username and provider are cached on the session.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, ident *identity.Identity) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:         uuid.New(),
		Token:      token,
		IdentityID: ident.ID,
		Username:   ident.Username,
		Provider:   ident.Provider,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.config.TTL),
	}

	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	if err := m.transport.SetToken(w, token, m.config.TTL); err != nil {
		_ = m.store.Delete(ctx, token)
		return nil, err
	}

	return session, nil
}

// Current resolves the request's session. Any absence (no cookie, an
// unknown token, expiry) comes back as ErrNotAuthenticated; callers
// redirect rather than render an error.
func (m *Manager) Current(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	return session, nil
}

// Destroy removes the request's session and clears the cookie. It is
// idempotent: destroying an absent session is not an error.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.transport.GetToken(r)
	if err == nil && token != "" {
		_ = m.store.Delete(ctx, token)
	}

	return m.transport.ClearToken(w)
}

// generateToken creates a cryptographically secure session token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
