// Package views renders the application's server-side pages as templ
// components. Pages are deliberately plain: a login screen with one
// button per provider and a dashboard showing the signed-in identity.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// LoginPage renders the provider choice screen. providers are the
// registered provider names in display order; errorMsg, when non-empty,
// appears in a banner above the buttons.
func LoginPage(providers []string, errorMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeHeader(w, "Sign in"); err != nil {
			return err
		}

		if errorMsg != "" {
			if _, err := fmt.Fprintf(w, `<div class="error" role="alert">%s</div>`, templ.EscapeString(errorMsg)); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `<h1>Sign in</h1><ul class="providers">`); err != nil {
			return err
		}
		for _, p := range providers {
			if _, err := fmt.Fprintf(w,
				`<li><a class="provider-btn provider-%s" href="/auth/%s">Continue with %s</a></li>`,
				templ.EscapeString(p), templ.EscapeString(p), templ.EscapeString(providerLabel(p)),
			); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul>`); err != nil {
			return err
		}

		return writeFooter(w)
	})
}

// DashboardPage renders the personalized page for an authenticated
// session using its cached display name and provider.
func DashboardPage(username, provider string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeHeader(w, "Dashboard"); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w,
			`<h1>Welcome, %s</h1><p>Signed in with %s.</p>`+
				`<form method="post" action="/logout"><button type="submit">Sign out</button></form>`,
			templ.EscapeString(username), templ.EscapeString(providerLabel(provider)),
		); err != nil {
			return err
		}

		return writeFooter(w)
	})
}

func providerLabel(name string) string {
	switch name {
	case "github":
		return "GitHub"
	case "microsoft":
		return "Microsoft"
	default:
		return name
	}
}

func writeHeader(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w,
		`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>%s</title></head><body><main>`,
		templ.EscapeString(title),
	)
	return err
}

func writeFooter(w io.Writer) error {
	_, err := io.WriteString(w, `</main></body></html>`)
	return err
}
