package projections

import (
	"context"
	"log/slog"
	"sort"

	"academyhub/internal/domain/account"
	"academyhub/internal/domain/enrollment"
	domainSession "academyhub/internal/domain/session"
)

// GetDashboardQuery carries query parameters.
type GetDashboardQuery struct {
	Session domainSession.Session
}

// GetDashboardResult carries the query result.
type GetDashboardResult struct {
	User        account.User
	UserErr     error
	Roles       []string
	Requests    []enrollment.Request // newest first
	RequestsErr error
	Pending     int
	Approved    int
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	Profile     ProfileReader
	Enrollments EnrollmentReader
}

// QueryGetDashboard loads the signed-in user's profile and enrollment requests.
// PRE: query.Session.IsLoggedIn(); ctx carries the session's bearer token
// POST: never fails outright; profile and request errors are reported separately
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) GetDashboardResult {
	s := query.Session
	result := GetDashboardResult{Roles: s.Roles()}

	result.User, result.UserErr = deps.Profile.Me(ctx)
	if result.UserErr != nil {
		slog.Warn("dashboard_profile_failed", "user_id", s.UserID, "error", result.UserErr)
		result.User = account.User{ID: s.UserID, Email: s.Email}
	}

	userID := s.UserID
	if userID == "" {
		userID = result.User.ID
	}
	if userID == "" {
		return result
	}
	result.Requests, result.RequestsErr = deps.Enrollments.ListEnrollmentRequestsByUser(ctx, userID)
	if result.RequestsErr != nil {
		slog.Warn("dashboard_requests_failed", "user_id", userID, "error", result.RequestsErr)
		return result
	}
	sort.SliceStable(result.Requests, func(i, j int) bool {
		return result.Requests[i].CreatedAt.After(result.Requests[j].CreatedAt)
	})
	for _, r := range result.Requests {
		switch {
		case r.IsPending():
			result.Pending++
		case r.IsApproved():
			result.Approved++
		}
	}
	return result
}
