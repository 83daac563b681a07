package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssoweb/internal/auth"
	"ssoweb/internal/cookie"
	"ssoweb/internal/identity"
	"ssoweb/internal/session"
)

// stubProvider is a scriptable auth.Provider for exercising the routes
// without talking to a real identity provider.
type stubProvider struct {
	name    string
	profile auth.Profile
	err     error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://provider.example/authorize?state=" + url.QueryEscape(state)
}

func (p *stubProvider) ResolveProfile(ctx context.Context, code string) (auth.Profile, error) {
	if p.err != nil {
		return auth.Profile{}, p.err
	}
	return p.profile, nil
}

type testApp struct {
	handler http.Handler
	states  *auth.MemoryStateStore
	github  *stubProvider
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	github := &stubProvider{
		name: "github",
		profile: auth.Profile{
			SubjectID: "42",
			Username:  "alice",
			Email:     "alice@example.com",
			AvatarURL: "https://avatars.example.com/alice",
		},
	}

	states := auth.NewMemoryStateStore(0)
	t.Cleanup(func() { _ = states.Close() })

	authSvc := auth.NewService(identity.NewMemoryStore(), states, []auth.Provider{github})

	cookieMgr, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	store := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })

	cfg := session.DefaultConfig()
	sessions := session.New(
		session.WithConfig(cfg),
		session.WithStore(store),
		session.WithTransport(session.NewCookieTransport(cookieMgr, cfg.CookieName, false)),
	)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testApp{
		handler: NewRouter(log, authSvc, sessions),
		states:  states,
		github:  github,
	}
}

func (a *testApp) do(t *testing.T, method, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, r)
	return w
}

// login drives the full flow for the stub provider and returns the
// cookies an authenticated browser would hold.
func (a *testApp) login(t *testing.T) []*http.Cookie {
	t.Helper()

	begin := a.do(t, http.MethodGet, "/auth/github", nil)
	require.Equal(t, http.StatusSeeOther, begin.Code)

	authURL, err := url.Parse(begin.Header().Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	cb := a.do(t, http.MethodGet, "/auth/callback/github?code=c1&state="+url.QueryEscape(state), nil)
	require.Equal(t, http.StatusSeeOther, cb.Code)
	require.Equal(t, "/dashboard", cb.Header().Get("Location"))

	cookies := cb.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestRouter_Home(t *testing.T) {
	t.Parallel()

	t.Run("anonymous visitor lands on login", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		w := app.do(t, http.MethodGet, "/", nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("authenticated visitor lands on dashboard", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		cookies := app.login(t)

		w := app.do(t, http.MethodGet, "/", cookies)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	})
}

func TestRouter_LoginPage(t *testing.T) {
	t.Parallel()

	t.Run("lists providers", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		w := app.do(t, http.MethodGet, "/login", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), `href="/auth/github"`)
		assert.Contains(t, w.Body.String(), "Continue with GitHub")
	})

	t.Run("shows a neutral failure message", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		w := app.do(t, http.MethodGet, "/login?error=auth_failed", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Authentication failed. Please try again.")
	})

	t.Run("crafted error codes never echo back", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		w := app.do(t, http.MethodGet, "/login?error="+url.QueryEscape("<script>alert(1)</script>"), nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "<script>")
		assert.Contains(t, w.Body.String(), "Authentication failed. Please try again.")
	})
}

func TestRouter_Begin(t *testing.T) {
	t.Parallel()

	t.Run("redirects to the provider with a state", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		w := app.do(t, http.MethodGet, "/auth/github", nil)

		require.Equal(t, http.StatusSeeOther, w.Code)
		loc, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "provider.example", loc.Host)
		assert.NotEmpty(t, loc.Query().Get("state"))
	})

	t.Run("unknown provider redirects with not_configured", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		w := app.do(t, http.MethodGet, "/auth/gitlab", nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login?error=not_configured", w.Header().Get("Location"))
	})
}

func TestRouter_Callback(t *testing.T) {
	t.Parallel()

	t.Run("full flow issues a session", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		cookies := app.login(t)

		w := app.do(t, http.MethodGet, "/dashboard", cookies)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Welcome, alice")
		assert.Contains(t, w.Body.String(), "Signed in with GitHub.")
	})

	t.Run("forged state fails with a neutral indicator", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		w := app.do(t, http.MethodGet, "/auth/callback/github?code=c1&state=forged", nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login?error=auth_failed", w.Header().Get("Location"))
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("state cannot be replayed", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)

		begin := app.do(t, http.MethodGet, "/auth/github", nil)
		authURL, err := url.Parse(begin.Header().Get("Location"))
		require.NoError(t, err)
		state := url.QueryEscape(authURL.Query().Get("state"))

		first := app.do(t, http.MethodGet, "/auth/callback/github?code=c1&state="+state, nil)
		require.Equal(t, "/dashboard", first.Header().Get("Location"))

		second := app.do(t, http.MethodGet, "/auth/callback/github?code=c1&state="+state, nil)
		assert.Equal(t, "/login?error=auth_failed", second.Header().Get("Location"))
	})

	t.Run("missing code or state fails", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)

		w := app.do(t, http.MethodGet, "/auth/callback/github?code=c1", nil)
		assert.Equal(t, "/login?error=auth_failed", w.Header().Get("Location"))

		w = app.do(t, http.MethodGet, "/auth/callback/github?state=s1", nil)
		assert.Equal(t, "/login?error=auth_failed", w.Header().Get("Location"))
	})

	t.Run("provider error parameter fails", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		w := app.do(t, http.MethodGet, "/auth/callback/github?error=access_denied", nil)

		assert.Equal(t, "/login?error=auth_failed", w.Header().Get("Location"))
	})

	t.Run("exchange failure fails with a neutral indicator", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		app.github.err = auth.ErrTokenExchange

		begin := app.do(t, http.MethodGet, "/auth/github", nil)
		authURL, err := url.Parse(begin.Header().Get("Location"))
		require.NoError(t, err)
		state := url.QueryEscape(authURL.Query().Get("state"))

		w := app.do(t, http.MethodGet, "/auth/callback/github?code=c1&state="+state, nil)
		assert.Equal(t, "/login?error=auth_failed", w.Header().Get("Location"))
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("repeat login keeps the originally stored name", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		_ = app.login(t)

		// The remote display name changes between logins.
		app.github.profile.Username = "alice-renamed"
		cookies := app.login(t)

		w := app.do(t, http.MethodGet, "/dashboard", cookies)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Welcome, alice")
		assert.NotContains(t, w.Body.String(), "alice-renamed")
	})
}

func TestRouter_Dashboard(t *testing.T) {
	t.Parallel()

	t.Run("requires a session", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		w := app.do(t, http.MethodGet, "/dashboard", nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("rejects expired sessions", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		cookies := app.login(t)

		// Natural expiry is hours away; simulate it by clearing the
		// server side state.
		logout := app.do(t, http.MethodPost, "/logout", cookies)
		require.Equal(t, http.StatusSeeOther, logout.Code)

		w := app.do(t, http.MethodGet, "/dashboard", cookies)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}

func TestRouter_Logout(t *testing.T) {
	t.Parallel()

	t.Run("destroys the session and clears the cookie", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		cookies := app.login(t)

		w := app.do(t, http.MethodPost, "/logout", cookies)

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))

		cleared := w.Result().Cookies()
		require.Len(t, cleared, 1)
		assert.Negative(t, cleared[0].MaxAge)

		// The old cookie no longer grants access.
		after := app.do(t, http.MethodGet, "/dashboard", cookies)
		assert.Equal(t, "/login", after.Header().Get("Location"))
	})

	t.Run("requires a session", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		w := app.do(t, http.MethodPost, "/logout", nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Empty(t, errorMessage(""))
	assert.Equal(t, "This sign-in method is not available.", errorMessage("not_configured"))
	assert.Equal(t, "Authentication failed. Please try again.", errorMessage("auth_failed"))
	assert.Equal(t, "Authentication failed. Please try again.", errorMessage("anything-else"))
}
