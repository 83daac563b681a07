package auth

import "errors"

var (
	// ErrProviderNotConfigured indicates the requested provider is not
	// registered or its client credentials are missing.
	ErrProviderNotConfigured = errors.New("auth.provider_not_configured")

	// ErrStateMismatch indicates the callback state does not match any
	// pending attempt for the provider. Treated as a potential forgery;
	// the flow never proceeds past it.
	ErrStateMismatch = errors.New("auth.state_mismatch")

	// ErrStateNotFound indicates the state token is absent from the
	// store or was already consumed.
	ErrStateNotFound = errors.New("auth.state_not_found")

	// ErrTokenExchange indicates the code-for-token exchange failed,
	// whether by transport error, timeout, or non-success response.
	ErrTokenExchange = errors.New("auth.token_exchange_failed")

	// ErrProfileFetch indicates the provider's user-info endpoint
	// failed or returned a malformed response.
	ErrProfileFetch = errors.New("auth.profile_fetch_failed")

	// ErrStateGeneration indicates the anti-forgery token could not be
	// generated.
	ErrStateGeneration = errors.New("auth.state_generation_failed")
)
