package session

import "context"

// Store defines session persistence.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by token, returning ErrSessionNotFound
	// for unknown tokens and ErrSessionExpired past expiry.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session by token. Deleting a missing session is
	// not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all expired sessions.
	DeleteExpired(ctx context.Context) error
}
