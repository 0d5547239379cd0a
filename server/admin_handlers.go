package server

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/jafsabakes/storefront/bakeryapi"
	"github.com/jafsabakes/storefront/session"
)

// AdminPageData is the shared template model for back-office pages
type AdminPageData struct {
	AppName string
	User    *session.User
	Tab     string
	Flashes []string
}

// AdminPanelHandler renders the back-office landing page (GET /admin)
func (s *Server) AdminPanelHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin_panel.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := AdminPageData{
			AppName: s.config.GetAppName(),
			User:    userFromContext(r.Context()),
			Tab:     "panel",
			Flashes: s.flashes.Pop(s.profileID(w, r)),
		}
		renderHTML(w, tmpl, data)
	}
}

// authedAPI returns an API client that authenticates with the session's
// persisted access token.
func (s *Server) authedAPI(ctx context.Context, mgr *session.Manager) (*bakeryapi.Client, error) {
	token, err := mgr.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})), nil
}
