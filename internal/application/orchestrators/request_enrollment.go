package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"academyhub/internal/domain/enrollment"
	"academyhub/internal/domain/session"
)

// ErrLoginRequired is returned when an anonymous visitor tries to enroll.
var ErrLoginRequired = errors.New("log in to request enrollment")

// ErrUnknownUser is returned when the session carries no user id to enroll.
var ErrUnknownUser = errors.New("your account could not be identified; please log in again")

// EnrollmentAPI is the slice of the marketplace client used to request enrollment.
type EnrollmentAPI interface {
	CreateEnrollmentRequest(ctx context.Context, req enrollment.Request) (enrollment.Request, error)
	ListEnrollmentRequestsByGroup(ctx context.Context, groupID string) ([]enrollment.Request, error)
	ListEnrollmentRequestsByUser(ctx context.Context, userID string) ([]enrollment.Request, error)
}

// RequestEnrollmentInput carries input for the enrollment orchestrator.
type RequestEnrollmentInput struct {
	Session  session.Session
	GroupID  string
	CourseID string
}

// RequestEnrollmentResult reports what happened to the request.
type RequestEnrollmentResult struct {
	Requested      bool // a new request was accepted by the API
	AlreadyPending bool // a pending request existed; nothing was sent
	Request        enrollment.Request
	GroupRequests  []enrollment.Request // refreshed after a successful POST, nil when the refresh failed
	UserRequests   []enrollment.Request
}

// RequestEnrollmentDeps holds dependencies for RequestEnrollment.
type RequestEnrollmentDeps struct {
	API EnrollmentAPI
}

// ExecuteRequestEnrollment submits an enrollment request for the session's user.
// PRE: ctx carries the session's access token for the marketplace client
// POST: ErrLoginRequired without any network call when the session is anonymous
// POST: At most one create call; none when a pending request for the group already exists
// INVARIANT: Refresh failures after a successful create never fail the operation
func ExecuteRequestEnrollment(ctx context.Context, input RequestEnrollmentInput, deps RequestEnrollmentDeps) (RequestEnrollmentResult, error) {
	if !input.Session.IsLoggedIn() {
		return RequestEnrollmentResult{}, ErrLoginRequired
	}

	req := enrollment.Request{
		UserID:   input.Session.UserID,
		GroupID:  input.GroupID,
		CourseID: input.CourseID,
	}
	if err := req.Validate(); err != nil {
		if errors.Is(err, enrollment.ErrEmptyUserID) {
			return RequestEnrollmentResult{}, ErrUnknownUser
		}
		return RequestEnrollmentResult{}, err
	}

	existing, err := deps.API.ListEnrollmentRequestsByUser(ctx, req.UserID)
	if err != nil {
		slog.Warn("enrollment_precheck_failed", "user_id", req.UserID, "group_id", req.GroupID, "error", err.Error())
	} else if enrollment.HasPending(existing, req.UserID, req.GroupID) {
		slog.Info("enrollment_event", "event", "already_pending", "user_id", req.UserID, "group_id", req.GroupID)
		return RequestEnrollmentResult{AlreadyPending: true, UserRequests: existing}, nil
	}

	created, err := deps.API.CreateEnrollmentRequest(ctx, req)
	if err != nil {
		slog.Info("enrollment_event", "event", "request_failed", "user_id", req.UserID, "group_id", req.GroupID, "error", err.Error())
		return RequestEnrollmentResult{}, err
	}
	slog.Info("enrollment_event", "event", "requested", "user_id", req.UserID, "group_id", req.GroupID, "course_id", req.CourseID, "request_id", created.ID)

	result := RequestEnrollmentResult{Requested: true, Request: created}
	if rs, err := deps.API.ListEnrollmentRequestsByGroup(ctx, req.GroupID); err != nil {
		slog.Warn("enrollment_refresh_failed", "scope", "group", "group_id", req.GroupID, "error", err.Error())
	} else {
		result.GroupRequests = rs
	}
	if rs, err := deps.API.ListEnrollmentRequestsByUser(ctx, req.UserID); err != nil {
		slog.Warn("enrollment_refresh_failed", "scope", "user", "user_id", req.UserID, "error", err.Error())
	} else {
		result.UserRequests = rs
	}
	return result, nil
}
