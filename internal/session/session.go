// Package session ties an authenticated browser to an identity record.
// A session exists only after a successful login; its token travels in
// an encrypted cookie and resolves through a Store on every protected
// request.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session represents an authenticated browser. Username and Provider
// are cached from the identity record at issue time so protected pages
// render without a store round trip.
type Session struct {
	ID         uuid.UUID `json:"id"`
	Token      string    `json:"token"`
	IdentityID int64     `json:"identity_id"`
	Username   string    `json:"username"`
	Provider   string    `json:"provider"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has outlived its expiry.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}
