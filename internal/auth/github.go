package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubConfig holds client credentials for the GitHub provider.
type GitHubConfig struct {
	ClientID     string   `env:"GITHUB_CLIENT_ID,required"`
	ClientSecret string   `env:"GITHUB_CLIENT_SECRET,required"`
	Scopes       []string `env:"GITHUB_SCOPES" envSeparator:"," envDefault:"user:email"`
}

// githubProvider resolves profiles from the GitHub REST API.
//
// Field mapping: subject id = numeric user id (stringified),
// username = profile name falling back to login, email = public email
// falling back to the primary verified address from /user/emails,
// avatar = avatar_url.
type githubProvider struct {
	conf       *oauth2.Config
	httpClient *http.Client
	apiBaseURL string
}

// NewGitHub creates the GitHub provider adapter. redirectURL is the
// externally visible callback for this provider.
func NewGitHub(cfg GitHubConfig, redirectURL string) Provider {
	return &githubProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     github.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiBaseURL: "https://api.github.com",
	}
}

func (p *githubProvider) Name() string {
	return ProviderGitHub
}

func (p *githubProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

func (p *githubProvider) ResolveProfile(ctx context.Context, code string) (Profile, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, errors.Join(ErrTokenExchange, err)
	}

	user, err := p.fetchUser(ctx, tok.AccessToken)
	if err != nil {
		return Profile{}, errors.Join(ErrProfileFetch, err)
	}

	email := user.Email
	if email == "" {
		// Not all accounts expose a public email; the emails endpoint
		// reports verification status.
		emails, err := p.fetchEmails(ctx, tok.AccessToken)
		if err != nil {
			return Profile{}, errors.Join(ErrProfileFetch, err)
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	username := user.Name
	if username == "" {
		username = user.Login
	}

	return Profile{
		SubjectID: strconv.FormatInt(user.ID, 10),
		Username:  username,
		Email:     email,
		AvatarURL: user.AvatarURL,
	}, nil
}

func (p *githubProvider) fetchUser(ctx context.Context, accessToken string) (*ghUser, error) {
	var user ghUser
	if err := p.getJSON(ctx, p.apiBaseURL+"/user", accessToken, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *githubProvider) fetchEmails(ctx context.Context, accessToken string) ([]ghEmail, error) {
	var emails []ghEmail
	if err := p.getJSON(ctx, p.apiBaseURL+"/user/emails", accessToken, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (p *githubProvider) getJSON(ctx context.Context, url, accessToken string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

type ghUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type ghEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

var _ Provider = (*githubProvider)(nil)
