package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jafsabakes/storefront/session"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName  string
	Error    string
	Next     string
	Username string // Preserve username on error
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		// An already-authenticated visitor has no business on the login page.
		if mgr, err := s.sessions.Manager(r.Context(), s.profileID(w, r)); err == nil && mgr.IsAuthenticated(r.Context()) {
			http.Redirect(w, r, postLoginPath(mgr, r.URL.Query().Get("next")), http.StatusSeeOther)
			return
		}

		data := LoginPageData{
			AppName:  s.config.GetAppName(),
			Error:    r.URL.Query().Get("error"),
			Next:     sanitizeNextPath(r.URL.Query().Get("next")),
			Username: r.URL.Query().Get("username"),
		}
		renderHTML(w, loginTmpl, data)
	}
}

// LoginSubmissionHandler processes the login form submission (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		next := sanitizeNextPath(r.FormValue("next"))

		if username == "" || password == "" {
			s.redirectLoginError(w, r, "Username and password are required", username, next)
			return
		}

		mgr, err := s.sessions.Manager(r.Context(), s.profileID(w, r))
		if err != nil {
			s.log.Error().Err(err).Msg("failed to resolve session manager")
			s.redirectLoginError(w, r, session.GenericLoginFailure, username, next)
			return
		}

		user, err := mgr.Login(r.Context(), session.Credentials{Username: username, Password: password})
		if err != nil {
			s.metrics.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
			s.redirectLoginError(w, r, session.FailureMessage(err), username, next)
			return
		}

		s.metrics.LoginsTotal.WithLabelValues("success").Inc()
		s.flashes.Add(s.profileID(w, r), "Welcome back, "+user.Username)

		if next != "" {
			http.Redirect(w, r, next, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, postLoginPath(mgr, ""), http.StatusSeeOther)
	}
}

// LogoutHandler ends the session (GET /auth/logout). Logging out twice is
// harmless.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr, err := s.sessions.Manager(r.Context(), s.profileID(w, r))
		if err != nil {
			s.log.Error().Err(err).Msg("failed to resolve session manager")
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}

		mgr.Logout(r.Context(), func(path string) {
			http.Redirect(w, r, path, http.StatusSeeOther)
		})
	}
}

// redirectLoginError sends the visitor back to the login page with the error
// message rendered inline and the form state preserved.
func (s *Server) redirectLoginError(w http.ResponseWriter, r *http.Request, errorMsg, username, next string) {
	redirectURL := RouteLogin + "?error=" + url.QueryEscape(errorMsg)
	if username != "" {
		redirectURL += "&username=" + url.QueryEscape(username)
	}
	if next != "" {
		redirectURL += "&next=" + url.QueryEscape(next)
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}

// postLoginPath picks the landing page: back office for staff, storefront
// otherwise, unless a sanctioned next path was carried through the form.
func postLoginPath(mgr *session.Manager, next string) string {
	if clean := sanitizeNextPath(next); clean != "" {
		return clean
	}
	if mgr.IsAdmin() {
		return RouteAdminPanel
	}
	return RouteHome
}

// sanitizeNextPath keeps redirects on-site: only rooted paths survive, which
// rules out scheme-relative and absolute URLs.
func sanitizeNextPath(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}

func loginOutcome(err error) string {
	if session.IsRejected(err) {
		return "rejected"
	}
	return "error"
}
