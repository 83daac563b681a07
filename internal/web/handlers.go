package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"ssoweb/internal/auth"
	"ssoweb/internal/logger"
	"ssoweb/internal/session"
	"ssoweb/internal/web/views"
)

// Neutral error indicators carried on the login redirect. The login
// page maps them to messages; internal error detail never reaches the
// browser.
const (
	errorAuthFailed    = "auth_failed"
	errorNotConfigured = "not_configured"
)

type handlers struct {
	log       *slog.Logger
	auth      *auth.Service
	sessions  *session.Manager
	providers []string
}

// home redirects to the dashboard when a session resolves, otherwise
// to the login page.
func (h *handlers) home(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.Current(r.Context(), r); err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, views.LoginPage(h.providers, errorMessage(r.URL.Query().Get("error"))))
}

// begin starts the authorization-code flow and redirects the browser to
// the provider.
func (h *handlers) begin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	authURL, err := h.auth.Begin(r.Context(), provider)
	if err != nil {
		if errors.Is(err, auth.ErrProviderNotConfigured) {
			h.redirectLoginError(w, r, errorNotConfigured)
			return
		}
		h.log.ErrorContext(r.Context(), "failed to begin login",
			logger.Component("web"), logger.Provider(provider), logger.Error(err))
		h.redirectLoginError(w, r, errorAuthFailed)
		return
	}

	http.Redirect(w, r, authURL, http.StatusSeeOther)
}

// callback completes the flow: state validation, token exchange,
// profile fetch, identity upsert, session issuance. Every failure lands
// back on the login page with a neutral indicator.
func (h *handlers) callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	if provErr := q.Get("error"); provErr != "" {
		h.log.WarnContext(r.Context(), "provider returned error on callback",
			logger.Component("web"), logger.Provider(provider), slog.String("provider_error", provErr))
		h.redirectLoginError(w, r, errorAuthFailed)
		return
	}

	code, state := q.Get("code"), q.Get("state")
	if code == "" || state == "" {
		h.redirectLoginError(w, r, errorAuthFailed)
		return
	}

	ident, err := h.auth.Complete(r.Context(), provider, state, code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrProviderNotConfigured):
			h.redirectLoginError(w, r, errorNotConfigured)
		case errors.Is(err, auth.ErrStateMismatch):
			h.log.WarnContext(r.Context(), "state mismatch on callback",
				logger.Component("web"), logger.Provider(provider))
			h.redirectLoginError(w, r, errorAuthFailed)
		default:
			h.log.ErrorContext(r.Context(), "failed to complete login",
				logger.Component("web"), logger.Provider(provider), logger.Error(err))
			h.redirectLoginError(w, r, errorAuthFailed)
		}
		return
	}

	if _, err := h.sessions.Issue(r.Context(), w, ident); err != nil {
		h.log.ErrorContext(r.Context(), "failed to issue session",
			logger.Component("web"), logger.IdentityID(ident.ID), logger.Error(err))
		h.redirectLoginError(w, r, errorAuthFailed)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// dashboard renders from the session's cached fields; RequireAuth has
// already placed the session in the context.
func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.render(w, r, views.DashboardPage(sess.Username, sess.Provider))
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.log.ErrorContext(r.Context(), "failed to destroy session",
			logger.Component("web"), logger.Error(err))
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *handlers) redirectLoginError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+code, http.StatusSeeOther)
}

func (h *handlers) render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		h.log.ErrorContext(r.Context(), "failed to render page",
			logger.Component("web"), logger.Error(err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
	}
}

// errorMessage maps a neutral indicator to the message shown on the
// login page. Unknown indicators collapse into the generic message so a
// crafted query string can never inject content.
func errorMessage(code string) string {
	switch code {
	case "":
		return ""
	case errorNotConfigured:
		return "This sign-in method is not available."
	default:
		return "Authentication failed. Please try again."
	}
}
