package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jafsabakes/storefront/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the request's *session.Manager
	ContextKeySession ContextKey = "session"
	// ContextKeyUser stores the authenticated *session.User
	ContextKeyUser ContextKey = "user"
)

// RequireSessionAuth is the route guard for session-backed HTML routes.
// It resolves the browser profile's session manager and decides per request:
// a still-hydrating session gets a neutral loading page, an unauthenticated
// one is sent to the login page with the original path in the next parameter,
// and an authenticated one passes through with the session on the context.
//
// Guarded responses carry no-store cache headers so back/forward navigation
// re-requests the page and re-runs the guard. That keeps stale pages out of
// the history after logout; it is not a security boundary, the credential
// store is.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			setNoStoreHeaders(w)

			mgr, err := s.sessions.Manager(r.Context(), s.profileID(w, r))
			if err != nil {
				s.log.Error().Err(err).Msg("failed to resolve session manager")
				http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
				return
			}

			if mgr.Loading() {
				s.renderLoadingPage(w)
				return
			}

			if !mgr.IsAuthenticated(r.Context()) {
				http.Redirect(w, r, loginRedirectURL(r), http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, mgr)
			ctx = context.WithValue(ctx, ContextKeyUser, mgr.CurrentUser())
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin gates back-office routes on the staff or superuser flag.
// Must be chained after RequireSessionAuth.
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			mgr := sessionFromContext(r.Context())
			if mgr == nil || !mgr.IsAdmin() {
				s.renderForbiddenPage(w)
				return
			}
			next(w, r)
		}
	}
}

func setNoStoreHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
}

func loginRedirectURL(r *http.Request) string {
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	return RouteLogin + "?next=" + url.QueryEscape(next)
}

func sessionFromContext(ctx context.Context) *session.Manager {
	mgr, _ := ctx.Value(ContextKeySession).(*session.Manager)
	return mgr
}

func userFromContext(ctx context.Context) *session.User {
	user, _ := ctx.Value(ContextKeyUser).(*session.User)
	return user
}
