package session

import "errors"

var (
	// ErrNotAuthenticated is the normal "no valid session" outcome on
	// protected routes: missing cookie, unknown token, or expiry all
	// collapse into it. It is not an internal error condition.
	ErrNotAuthenticated = errors.New("session.not_authenticated")

	// ErrSessionNotFound indicates no session was found for a token.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the session has expired.
	ErrSessionExpired = errors.New("session.expired")

	// ErrInvalidSession indicates malformed session data in a store.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrTokenGeneration indicates session token generation failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")
)
