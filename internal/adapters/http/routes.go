package web

import (
	"net/http"

	"academyhub/internal/adapters/http/middleware"
	"academyhub/internal/domain/account"
)

// registerRoutes maps every page and endpoint onto mux.
func registerRoutes(mux *http.ServeMux) {
	// Public pages
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("GET /about", handleAbout)
	mux.HandleFunc("/contact", handleContact)
	mux.HandleFunc("GET /academies", handleAcademies)
	mux.HandleFunc("GET /academies/{id}", handleAcademyDetail)
	mux.HandleFunc("GET /courses", handleCourses)
	mux.HandleFunc("GET /courses/{id}", handleCourseDetail)
	mux.HandleFunc("GET /posts/{id}", handlePost)
	mux.HandleFunc("GET /healthz", handleHealthz)

	// Auth
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/signup", handleSignup)
	mux.HandleFunc("POST /logout", handleLogout)

	// Enrollment
	mux.HandleFunc("POST /enrollment-requests", handleRequestEnrollment)

	// Dashboards
	mux.Handle("GET /dashboard", middleware.RequireAuth(http.HandlerFunc(handleDashboardRedirect)))
	mux.Handle("GET /dashboard/{role}", middleware.RequireAuth(http.HandlerFunc(handleDashboard)))

	// Admin
	requireSuperAdmin := middleware.RequireRole(account.RoleSuperAdmin)
	mux.Handle("GET /admin/perf", requireSuperAdmin(http.HandlerFunc(handleAdminPerf)))
	mux.Handle("GET /admin/outbox", requireSuperAdmin(http.HandlerFunc(handleAdminOutboxList)))
	mux.Handle("POST /admin/outbox/{id}/{action}", requireSuperAdmin(http.HandlerFunc(handleAdminOutboxAction)))
}
