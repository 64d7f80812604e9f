package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/fennwick/pressroom/internal/authservice"
)

const sessionCookieName = "blog_session"

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			ip     = r.RemoteAddr
			method = r.Method
			proto  = r.Proto
			uri    = r.URL.RequestURI()
		)

		app.logger.Info("request from", slog.String("method", method), slog.String("uri", uri), slog.String("remote_addr", ip), slog.String("proto", proto))

		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the session token from the Authorization header or the
// session cookie and stashes the session email in the request context. An
// unknown or expired token leaves the request anonymous rather than failing
// it, so the console gate can redirect instead of answering with JSON.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Authorization")

		token := app.extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		email, err := app.authService.SessionEmail(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, authservice.ErrSessionNotFound):
				next.ServeHTTP(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		r = app.createEmailContext(r, email)
		next.ServeHTTP(w, r)
	})
}

func (app *application) extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// requireAdmin guards the admin API: 401 for anonymous requests, 500 when the
// allowed email was never configured (details go to the log only), 403 when
// the session email is not the allowed one. The decision is re-evaluated on
// every request.
func (app *application) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := app.getEmailContext(r)
		if email == "" {
			app.authenticationRequiredErrorResponse(w, r)
			return
		}

		allowed := app.authService.AllowedEmail()
		if allowed == "" {
			app.serverErrorResponse(w, r, errors.New("admin allowed email not configured"))
			return
		}

		if email != allowed {
			app.notPermittedErrorResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// adminConsoleGate protects the console pages with redirects instead of JSON
// errors: anonymous visitors go to the login page with a redirectedFrom
// parameter, a missing allowed-email configuration sends everyone home, and a
// non-admin session bounces back to login flagged unauthorized.
func (app *application) adminConsoleGate(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := app.getEmailContext(r)
		if email == "" {
			http.Redirect(w, r, "/blog/login?redirectedFrom="+url.QueryEscape(r.URL.Path), http.StatusFound)
			return
		}

		allowed := app.authService.AllowedEmail()
		if allowed == "" {
			app.logger.Error("admin allowed email not configured")
			http.Redirect(w, r, "/?error=config_error", http.StatusFound)
			return
		}

		if email != allowed {
			http.Redirect(w, r, "/blog/login?error=unauthorized", http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *application) rateLimitLogin(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !app.loginLimiter.Allow(ip) {
			app.rateLimitExceededErrorResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
