package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"academyhub/internal/adapters/api"
	"academyhub/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

const sessionCookieName = "academyhub_session"

// SecureCookies marks session cookies Secure. Set once at startup in production.
var SecureCookies bool

// SessionLoader loads a persisted session by id.
type SessionLoader interface {
	Get(ctx context.Context, id string) (session.Session, error)
}

// Auth returns middleware that loads the session named by the cookie into the context
// and hands its access token to the marketplace client.
// It does NOT block unauthenticated requests; use RequireAuth or RequireRole for that.
func Auth(sessions SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := SessionIDFromRequest(r)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			s, err := sessions.Get(r.Context(), id)
			switch {
			case err == nil:
				r = r.WithContext(ContextWithSession(r.Context(), s))
			case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
				ClearSessionCookie(w)
			default:
				slog.Warn("session_load_failed", "error", err.Error())
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that blocks unauthenticated requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, session.RouteLogin, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that blocks requests from users without one of the specified roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := GetSessionFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, session.RouteLogin, http.StatusSeeOther)
				return
			}
			for _, role := range roles {
				if s.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
// POST: ok is true only for a session holding an access token
func GetSessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(session.Session)
	return s, ok && s.IsLoggedIn()
}

// ContextWithSession returns a context carrying s and its bearer token.
func ContextWithSession(ctx context.Context, s session.Session) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey, s)
	return api.WithToken(ctx, s.AccessToken)
}

// SessionIDFromRequest returns the session id from the cookie, or "".
func SessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetSessionCookie sets the session cookie on the response.
// PRE: ttl > 0
func SetSessionCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
