package auth

import "context"

// Provider identifiers used in storage, routing, and logging.
const (
	ProviderGitHub    = "github"
	ProviderMicrosoft = "microsoft"
)

// Provider abstracts provider-specific OAuth2 behavior behind a minimal
// interface. Implementations encapsulate all protocol details (the
// oauth2.Config, token exchange, API calls) and expose only the
// primitives the orchestrator needs, so the flow itself stays
// provider-agnostic.
type Provider interface {
	// Name returns the stable provider identifier, e.g. "github".
	Name() string

	// AuthCodeURL builds the provider authorization URL carrying the
	// given anti-forgery state token.
	AuthCodeURL(state string) string

	// ResolveProfile performs the end-to-end flow for an authorization
	// code: exchanges it for an access token (ErrTokenExchange on any
	// failure), calls the provider's user-info endpoint(s), and returns
	// a normalized profile (ErrProfileFetch on transport or decode
	// failures).
	ResolveProfile(ctx context.Context, code string) (Profile, error)
}

// Profile is the normalized user profile returned by a provider.
// Field mapping is provider-specific and documented on each adapter.
type Profile struct {
	// SubjectID is the provider's stable user identifier. Numeric ids
	// (GitHub) are stringified.
	SubjectID string

	// Username is the display name resolved through the provider's
	// fallback chain; never empty.
	Username string

	// Email is optional; empty when the provider exposes none.
	Email string

	// AvatarURL is optional.
	AvatarURL string
}
