// Package web maps HTTP routes onto the auth orchestrator and session
// manager and renders outcomes as redirects or server-side pages.
package web

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ssoweb/internal/auth"
	"ssoweb/internal/session"
)

// NewRouter assembles the application routes.
func NewRouter(log *slog.Logger, authSvc *auth.Service, sessions *session.Manager) http.Handler {
	providers := authSvc.Providers()
	sort.Strings(providers)

	h := &handlers{
		log:       log,
		auth:      authSvc,
		sessions:  sessions,
		providers: providers,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", h.home)
	r.Get("/login", h.loginPage)
	r.Get("/auth/{provider}", h.begin)
	r.Get("/auth/callback/{provider}", h.callback)

	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireAuth)
		r.Get("/dashboard", h.dashboard)
		r.Post("/logout", h.logout)
	})

	return r
}
