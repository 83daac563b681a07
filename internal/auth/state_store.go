package auth

import (
	"context"
	"time"
)

// StateStore records pending authorization attempts. Each entry is the
// anti-forgery token issued when an authorization URL was built, scoped
// to the provider it was issued for.
type StateStore interface {
	// Store records a pending attempt that expires at expiresAt.
	Store(ctx context.Context, provider, state string, expiresAt time.Time) error

	// Consume atomically checks that the state exists for the provider
	// and removes it, returning ErrStateNotFound if it is absent,
	// expired, or was already consumed. Atomicity prevents a race
	// between concurrent callbacks replaying the same state.
	Consume(ctx context.Context, provider, state string) error
}
