package server

import (
	"net/http"
	"strconv"

	"github.com/jafsabakes/storefront/bakeryapi"
	"github.com/jafsabakes/storefront/catalog"
)

// StorefrontPageData contains data for rendering the public catalog page
type StorefrontPageData struct {
	AppName    string
	Search     string
	Category   string
	Categories []bakeryapi.Category
	Page       catalog.Page
	LoadError  bool
	LoggedIn   bool
	IsAdmin    bool
}

// StorefrontHandler renders the public catalog (GET /) with search, category
// and page query parameters.
func (s *Server) StorefrontHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		params := catalog.BrowseParams{
			Search:   query.Get("q"),
			Category: query.Get("category"),
		}
		if page, err := strconv.Atoi(query.Get("page")); err == nil {
			params.Page = page
		}

		data := StorefrontPageData{
			AppName:  s.config.GetAppName(),
			Search:   params.Search,
			Category: params.Category,
		}

		// The storefront never requires a session, but it greets a logged-in
		// visitor and links the back office for staff.
		if mgr, err := s.sessions.Manager(r.Context(), s.profileID(w, r)); err == nil {
			data.LoggedIn = mgr.IsAuthenticated(r.Context())
			data.IsAdmin = data.LoggedIn && mgr.IsAdmin()
		}

		products, err := s.api.ListProducts(r.Context(), bakeryapi.ListParams{
			Search:   params.Search,
			Category: params.Category,
		})
		if err != nil {
			s.log.Error().Err(err).Msg("failed to load products")
			data.LoadError = true
			renderHTML(w, tmpl, data)
			return
		}

		active := products[:0]
		for _, p := range products {
			if p.IsActive {
				active = append(active, p)
			}
		}

		data.Page = catalog.Paginate(active, params.Page, catalog.DefaultPerPage)

		if categories, err := s.api.ListCategories(r.Context()); err == nil {
			data.Categories = categories
		}

		renderHTML(w, tmpl, data)
	}
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
