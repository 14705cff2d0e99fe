package session

import (
	"errors"
	"time"

	"academyhub/internal/domain/account"
)

// Dashboard routes per role.
const (
	RouteDashboard        = "/dashboard"
	RouteAdminDashboard   = "/dashboard/admin"
	RouteAcademyDashboard = "/dashboard/academy"
	RouteTeacherDashboard = "/dashboard/teacher"
	RouteStudentDashboard = "/dashboard/student"
	RouteLogin            = "/login"
)

// DefaultTTL is how long a session lives when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Domain errors
var (
	ErrEmptyID    = errors.New("session id is required")
	ErrEmptyToken = errors.New("access token is required")
	ErrNotFound   = errors.New("session not found")
	ErrExpired    = errors.New("session expired")
)

// Session is the server-side record of a logged-in visitor. It replaces the SPA's
// token-in-browser-storage: the browser only holds the opaque ID in a cookie.
type Session struct {
	ID           string
	AccessToken  string
	UserID       string
	Email        string
	IsSuperAdmin bool
	RoleList     []string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Validate checks that a session can be persisted.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if s.ID == "" {
		return ErrEmptyID
	}
	if s.AccessToken == "" {
		return ErrEmptyToken
	}
	return nil
}

// IsLoggedIn reports whether the session carries an access token.
// Token presence is the only signal; expiry is enforced by the store.
// INVARIANT: Session fields are not mutated
func (s Session) IsLoggedIn() bool {
	return s.AccessToken != ""
}

// IsExpired reports whether the session outlived its TTL at now.
// INVARIANT: Session fields are not mutated
func (s Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Roles returns the normalised roles, with SUPER_ADMIN added when the login response flagged it.
// INVARIANT: Session fields are not mutated
func (s Session) Roles() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(r string) {
		r = account.NormalizeRole(r)
		if r == "" || seen[r] {
			return
		}
		seen[r] = true
		out = append(out, r)
	}
	if s.IsSuperAdmin {
		add(account.RoleSuperAdmin)
	}
	for _, r := range s.RoleList {
		add(r)
	}
	return out
}

// HasRole reports whether the session has role (aliases accepted).
// INVARIANT: Session fields are not mutated
func (s Session) HasRole(role string) bool {
	want := account.NormalizeRole(role)
	for _, r := range s.Roles() {
		if r == want {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the session belongs to a super admin.
// INVARIANT: Session fields are not mutated
func (s Session) IsAdmin() bool {
	return s.HasRole(account.RoleSuperAdmin)
}

// DashboardRoute resolves where /dashboard sends this visitor.
// PRE: none
// POST: Returns RouteLogin for anonymous sessions, otherwise the most privileged dashboard
func (s Session) DashboardRoute() string {
	if !s.IsLoggedIn() {
		return RouteLogin
	}
	switch {
	case s.HasRole(account.RoleSuperAdmin):
		return RouteAdminDashboard
	case s.HasRole(account.RoleAcademyAdmin):
		return RouteAcademyDashboard
	case s.HasRole(account.RoleTeacher):
		return RouteTeacherDashboard
	default:
		return RouteStudentDashboard
	}
}
