package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// Storefront
	s.RegisterRouteHandler("GET "+RouteHome, ChainMiddleware(s.StorefrontHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Admin routes (session-guarded HTML UI)
	s.RegisterRouteHandler("GET "+RouteAdminPanel, ChainMiddleware(s.AdminPanelHandler(), s.HTMLMiddleWare(s.RequireSessionAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("GET "+RouteAdminProducts, ChainMiddleware(s.AdminProductsHandler(), s.HTMLMiddleWare(s.RequireSessionAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("POST "+RouteAdminProducts, ChainMiddleware(s.AdminProductCreateHandler(), s.HTMLMiddleWare(s.RequireSessionAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("POST "+RouteAdminProductByID, ChainMiddleware(s.AdminProductUpdateHandler(), s.HTMLMiddleWare(s.RequireSessionAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("POST "+RouteAdminProductDelete, ChainMiddleware(s.AdminProductDeleteHandler(), s.HTMLMiddleWare(s.RequireSessionAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("POST "+RouteAdminProductToggle, ChainMiddleware(s.AdminProductToggleHandler(), s.HTMLMiddleWare(s.RequireSessionAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("GET "+RouteAdminCustomers, ChainMiddleware(s.AdminCustomersHandler(), s.HTMLMiddleWare(s.RequireSessionAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("GET "+RouteAdminCustomersExport, ChainMiddleware(s.AdminCustomersExportHandler(), s.HTMLMiddleWare(s.RequireSessionAuth(), s.RequireAdmin())...))

	// Operational endpoints
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.prom, promhttp.HandlerOpts{}))
}
