package identity

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no record matches the lookup key.
	ErrNotFound = errors.New("identity.not_found")

	// ErrAlreadyExists indicates the (provider, subject id) uniqueness
	// constraint would be violated. Callers treat it as a retriable
	// read-then-return-existing path, not a fatal error.
	ErrAlreadyExists = errors.New("identity.already_exists")
)

// Store defines identity persistence.
type Store interface {
	// FindByProvider returns the record for (provider, subjectID) or ErrNotFound.
	FindByProvider(ctx context.Context, provider, subjectID string) (*Identity, error)

	// Create inserts a new record, returning ErrAlreadyExists when the
	// uniqueness constraint rejects it.
	Create(ctx context.Context, in NewIdentity) (*Identity, error)

	// TouchLastLogin updates the last-login timestamp, returning
	// ErrNotFound if the record no longer exists.
	TouchLastLogin(ctx context.Context, id int64) error
}
