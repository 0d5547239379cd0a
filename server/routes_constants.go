package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public Routes
	RouteHome    = "/"
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"

	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Admin Routes
	RouteAdminPanel           = "/admin"
	RouteAdminProducts        = "/admin/products"
	RouteAdminProductByID     = "/admin/products/{id}"
	RouteAdminProductDelete   = "/admin/products/{id}/delete"
	RouteAdminProductToggle   = "/admin/products/{id}/toggle"
	RouteAdminCustomers       = "/admin/customers"
	RouteAdminCustomersExport = "/admin/customers/export.csv"
)
