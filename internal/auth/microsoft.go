package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// MicrosoftConfig holds client credentials for the Microsoft provider.
// The "common" tenant accepts both organizational and personal accounts.
type MicrosoftConfig struct {
	ClientID     string   `env:"MICROSOFT_CLIENT_ID,required"`
	ClientSecret string   `env:"MICROSOFT_CLIENT_SECRET,required"`
	Tenant       string   `env:"MICROSOFT_TENANT" envDefault:"common"`
	Scopes       []string `env:"MICROSOFT_SCOPES" envSeparator:"," envDefault:"openid,profile,email"`
}

// microsoftProvider resolves profiles from the Microsoft Graph API.
//
// Field mapping: subject id = Graph object id, username = displayName
// falling back to userPrincipalName falling back to "Microsoft User",
// email = mail (may be absent), no avatar.
type microsoftProvider struct {
	conf       *oauth2.Config
	httpClient *http.Client
	apiBaseURL string
}

// NewMicrosoft creates the Microsoft provider adapter. redirectURL is
// the externally visible callback for this provider.
func NewMicrosoft(cfg MicrosoftConfig, redirectURL string) Provider {
	return &microsoftProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     microsoft.AzureADEndpoint(cfg.Tenant),
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiBaseURL: "https://graph.microsoft.com",
	}
}

func (p *microsoftProvider) Name() string {
	return ProviderMicrosoft
}

func (p *microsoftProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

func (p *microsoftProvider) ResolveProfile(ctx context.Context, code string) (Profile, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, errors.Join(ErrTokenExchange, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+"/v1.0/me", nil)
	if err != nil {
		return Profile{}, errors.Join(ErrProfileFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Profile{}, errors.Join(ErrProfileFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, errors.Join(ErrProfileFetch, fmt.Errorf("graph api returned status %d", resp.StatusCode))
	}

	var user msUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Profile{}, errors.Join(ErrProfileFetch, err)
	}

	username := user.DisplayName
	if username == "" {
		username = user.UserPrincipalName
	}
	if username == "" {
		username = "Microsoft User"
	}

	return Profile{
		SubjectID: user.ID,
		Username:  username,
		Email:     user.Mail,
	}, nil
}

type msUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
	Mail              string `json:"mail"`
}

var _ Provider = (*microsoftProvider)(nil)
