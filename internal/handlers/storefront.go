package handlers

import (
	"fmt"
	"html"
	"net/http"

	"github.com/soudigital/storefront/internal/locale"
	"github.com/soudigital/storefront/internal/middleware"
)

// Storefront renders a minimal localized page. The production frontend is
// served separately; this handler keeps the edge deployable on its own and
// makes the locale decision visible.
func Storefront(resolver *locale.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, ok := resolver.PathLocale(r.URL.Path)
		if !ok {
			loc = resolver.Default()
		}

		greeting := "Welcome to the store"
		if loc == "pt" {
			greeting = "Bem-vindo à loja"
		}

		signedIn := ""
		if user, ok := middleware.CurrentUser(r.Context()); ok {
			signedIn = fmt.Sprintf("<p>%s</p>", html.EscapeString(user.Email))
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<!DOCTYPE html><html lang=%q><body><h1>%s</h1>%s</body></html>`,
			loc, greeting, signedIn)
	}
}
