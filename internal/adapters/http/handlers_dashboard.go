package web

import (
	"net/http"

	"academyhub/internal/adapters/http/middleware"
	"academyhub/internal/application/projections"
	"academyhub/internal/domain/account"
	"academyhub/internal/domain/enrollment"
	"academyhub/internal/domain/session"
)

// dashboardTitles maps each dashboard route to its heading.
var dashboardTitles = map[string]string{
	session.RouteAdminDashboard:   "Admin dashboard",
	session.RouteAcademyDashboard: "Academy dashboard",
	session.RouteTeacherDashboard: "Teacher dashboard",
	session.RouteStudentDashboard: "My learning",
}

type dashboardPage struct {
	Title         string
	Route         string
	User          account.User
	UserError     string
	Roles         []string
	Requests      []enrollment.Request
	RequestsError string
	Pending       int
	Approved      int
}

// handleDashboardRedirect handles GET /dashboard by sending the visitor to their role's dashboard.
func handleDashboardRedirect(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	http.Redirect(w, r, sess.DashboardRoute(), http.StatusSeeOther)
}

// handleDashboard handles GET /dashboard/{role}. Super admins may open any dashboard;
// everyone else is redirected to their own.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	route := r.URL.Path
	title, ok := dashboardTitles[route]
	if !ok {
		renderError(w, r, http.StatusNotFound, "Page not found", errPageNotFound)
		return
	}
	if route != sess.DashboardRoute() && !sess.IsAdmin() {
		http.Redirect(w, r, sess.DashboardRoute(), http.StatusSeeOther)
		return
	}

	res := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{Session: sess},
		projections.GetDashboardDeps{Profile: app.API, Enrollments: app.API})

	page := dashboardPage{
		Title:         title,
		Route:         route,
		User:          res.User,
		UserError:     errText(res.UserErr),
		Roles:         res.Roles,
		Requests:      res.Requests,
		RequestsError: errText(res.RequestsErr),
		Pending:       res.Pending,
		Approved:      res.Approved,
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, page)
		return
	}
	renderTemplate(w, r, "dashboard.html", page)
}
