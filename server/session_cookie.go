package server

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	// sessionCookieName identifies the browser profile. The cookie carries an
	// opaque ID only; credentials stay server-side in the credential store.
	sessionCookieName = "session_id"

	// sessionCookieMaxAge keeps the profile alive across browser restarts, so
	// a persisted session can hydrate without a fresh login.
	sessionCookieMaxAge = 30 * 24 * 60 * 60 // 30 days, in seconds
)

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, profileID string, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    profileID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// profileID returns the browser profile ID from the session cookie, minting a
// new one (and setting the cookie) on first contact.
func (s *Server) profileID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	s.SetSessionCookie(w, r, id, sessionCookieMaxAge)
	// Later lookups within this request must resolve the same profile.
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: id})
	return id
}
