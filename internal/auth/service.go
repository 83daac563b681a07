package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ssoweb/internal/identity"
	"ssoweb/internal/logger"
)

// Service drives the authorization-code flow end to end: it builds
// authorization URLs with per-attempt anti-forgery tokens, validates
// callbacks, exchanges codes, and upserts the resulting identity.
// It is provider-agnostic; everything provider-specific lives behind
// the Provider interface.
type Service struct {
	identities identity.Store
	states     StateStore
	providers  map[string]Provider
	log        *slog.Logger
	stateTTL   time.Duration
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger configures the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithStateTTL bounds the window in which a pending authorization
// attempt remains valid.
func WithStateTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.stateTTL = ttl
	}
}

// NewService constructs the auth orchestrator. Defaults: state TTL of
// 10 minutes, discarded logs.
func NewService(identities identity.Store, states StateStore, providers []Provider, opts ...Option) *Service {
	s := &Service{
		identities: identities,
		states:     states,
		providers:  make(map[string]Provider, len(providers)),
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		stateTTL:   10 * time.Minute,
	}
	for _, p := range providers {
		s.providers[p.Name()] = p
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers returns the registered provider names, for rendering the
// login choices.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}

// Begin starts a login attempt: it generates a fresh anti-forgery
// token, records the pending attempt, and returns the provider's
// authorization URL for redirection.
func (s *Service) Begin(ctx context.Context, provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", ErrProviderNotConfigured
	}

	state, err := generateState()
	if err != nil {
		return "", errors.Join(ErrStateGeneration, err)
	}

	if err := s.states.Store(ctx, provider, state, time.Now().Add(s.stateTTL)); err != nil {
		return "", fmt.Errorf("store pending attempt: %w", err)
	}

	return p.AuthCodeURL(state), nil
}

// Complete finishes a login attempt from the provider callback. The
// returned state must match a pending attempt for the provider; on
// match the code is exchanged, the remote profile fetched and
// normalized, and the identity record upserted. No identity or session
// state survives a failed attempt.
func (s *Service) Complete(ctx context.Context, provider, state, code string) (*identity.Identity, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, ErrProviderNotConfigured
	}

	// One-time consumption prevents replaying a captured state.
	if err := s.states.Consume(ctx, provider, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, ErrStateMismatch
		}
		return nil, fmt.Errorf("validate state: %w", err)
	}

	profile, err := p.ResolveProfile(ctx, code)
	if err != nil {
		return nil, err
	}
	if profile.SubjectID == "" {
		return nil, errors.Join(ErrProfileFetch, errors.New("provider returned empty subject id"))
	}

	ident, err := s.upsert(ctx, p.Name(), profile)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "login completed",
		logger.Component("auth"),
		logger.Provider(p.Name()),
		logger.IdentityID(ident.ID),
	)

	return ident, nil
}

// upsert resolves the profile to a local identity record: existing
// records get a last-login touch, new accounts get a record created.
// Profile fields are captured at creation only.
func (s *Service) upsert(ctx context.Context, provider string, profile Profile) (*identity.Identity, error) {
	ident, err := s.identities.FindByProvider(ctx, provider, profile.SubjectID)
	if err == nil {
		if err := s.identities.TouchLastLogin(ctx, ident.ID); err != nil {
			return nil, fmt.Errorf("touch last login: %w", err)
		}
		return ident, nil
	}
	if !errors.Is(err, identity.ErrNotFound) {
		return nil, fmt.Errorf("find identity: %w", err)
	}

	ident, err = s.identities.Create(ctx, identity.NewIdentity{
		Provider:  provider,
		SubjectID: profile.SubjectID,
		Username:  profile.Username,
		Email:     optional(profile.Email),
		AvatarURL: optional(profile.AvatarURL),
	})
	if err == nil {
		return ident, nil
	}

	// Two concurrent first logins for the same external account can
	// both pass the not-found check; the unique constraint decides the
	// winner and the loser re-reads the existing record.
	if errors.Is(err, identity.ErrAlreadyExists) {
		ident, err = s.identities.FindByProvider(ctx, provider, profile.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("re-read identity after conflict: %w", err)
		}
		if err := s.identities.TouchLastLogin(ctx, ident.ID); err != nil {
			return nil, fmt.Errorf("touch last login: %w", err)
		}
		return ident, nil
	}

	return nil, fmt.Errorf("create identity: %w", err)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// generateState creates a cryptographically random, URL-safe token.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
