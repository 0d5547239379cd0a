// Package server is the web surface of the storefront: public catalog pages,
// the login flow, and the session-guarded back office. Pages are rendered
// server-side from embedded templates.
package server

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jafsabakes/storefront/bakeryapi"
	"github.com/jafsabakes/storefront/customers"
	"github.com/jafsabakes/storefront/internal/config"
	"github.com/jafsabakes/storefront/session"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	sessions  *session.Registry
	api       *bakeryapi.Client
	customers customers.Repo
	flashes   *FlashStore
	metrics   *Metrics
	prom      *prometheus.Registry
	validate  *validator.Validate
	log       zerolog.Logger

	loadingPage   *template.Template
	forbiddenPage *template.Template
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Sessions  *session.Registry
	API       *bakeryapi.Client
	Customers customers.Repo
	Flashes   *FlashStore
	Metrics   *prometheus.Registry
	Logger    zerolog.Logger
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.Sessions == nil {
		return nil, errors.New("[Server New] session registry is required")
	}
	if deps.API == nil {
		return nil, errors.New("[Server New] api client is required")
	}
	if deps.Customers == nil {
		return nil, errors.New("[Server New] customer repo is required")
	}
	if deps.Flashes == nil {
		deps.Flashes = NewFlashStore()
	}
	if deps.Metrics == nil {
		deps.Metrics = prometheus.NewRegistry()
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    config,
		sessions:  deps.Sessions,
		api:       deps.API,
		customers: deps.Customers,
		flashes:   deps.Flashes,
		metrics:   NewMetrics(deps.Metrics),
		prom:      deps.Metrics,
		validate:  validator.New(),
		log:       deps.Logger,
	}
	s.env = config.GetEnv()
	s.loadingPage = mustParseTemplate("loading.html")
	s.forbiddenPage = mustParseTemplate("forbidden.html")

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
