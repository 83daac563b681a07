// Package config loads the application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"ssoweb/internal/auth"
	"ssoweb/internal/httpserver"
	"ssoweb/internal/pg"
	"ssoweb/internal/redis"
	"ssoweb/internal/session"
)

var (
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	dotenvLoaded sync.Once
)

// App holds application-level settings.
type App struct {
	// BaseURL is the externally visible origin used to construct
	// provider callback redirect URIs.
	BaseURL   string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// DevMode swaps PostgreSQL and Redis for in-memory stores so the
	// app runs locally with nothing but provider credentials.
	DevMode bool `env:"DEV_MODE" envDefault:"false"`

	// SessionSecrets encrypt session cookies; first entry encrypts,
	// the rest stay valid for key rotation. Each must be >= 32 chars.
	SessionSecrets []string `env:"SESSION_SECRET,required" envSeparator:","`

	// StateTTL bounds how long a pending authorization attempt stays valid.
	StateTTL time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
}

// CallbackURL builds the provider-specific OAuth callback URL.
func (a App) CallbackURL(provider string) string {
	return strings.TrimRight(a.BaseURL, "/") + "/auth/callback/" + provider
}

// Config aggregates every component's configuration.
type Config struct {
	App       App
	HTTP      httpserver.Config
	PG        pg.Config
	Redis     redis.Config
	Session   session.Config
	GitHub    auth.GitHubConfig
	Microsoft auth.MicrosoftConfig
}

// Load reads the .env file once (missing files are fine) and parses the
// full configuration from the environment.
func Load() (*Config, error) {
	dotenvLoaded.Do(func() {
		_ = godotenv.Load()
	})

	var cfg Config
	for _, target := range []any{
		&cfg.App, &cfg.HTTP, &cfg.PG, &cfg.Redis, &cfg.Session, &cfg.GitHub, &cfg.Microsoft,
	} {
		if err := env.Parse(target); err != nil {
			return nil, errors.Join(ErrParsingConfig, err)
		}
	}

	return &cfg, nil
}
