package enrollment

import (
	"errors"
	"strings"
	"time"
)

// Status constants for the enrollment request lifecycle. The remote API owns transitions.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// Button labels shown for the enrollment action on a group card.
const (
	LabelRequest  = "Request Enrollment"
	LabelSent     = "Request Sent"
	LabelPending  = "Pending"
	LabelEnrolled = "Enrolled"
	LabelLogin    = "Log in to enroll"
)

// Domain errors
var (
	ErrEmptyUserID  = errors.New("user id is required")
	ErrEmptyGroupID = errors.New("group id is required")
)

// Request is a user's application to join a group.
type Request struct {
	ID        string
	UserID    string
	GroupID   string
	CourseID  string
	Status    string
	CreatedAt time.Time
}

// Validate checks that a request can be submitted.
// PRE: Request struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Request) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(r.GroupID) == "" {
		return ErrEmptyGroupID
	}
	return nil
}

// IsPending returns true while the academy has not decided on the request.
// Requests without a status are treated as pending.
// INVARIANT: Request fields are not mutated
func (r Request) IsPending() bool {
	s := strings.ToLower(strings.TrimSpace(r.Status))
	return s == "" || s == StatusPending
}

// IsApproved returns true once the academy accepted the request.
// INVARIANT: Request fields are not mutated
func (r Request) IsApproved() bool {
	return strings.EqualFold(strings.TrimSpace(r.Status), StatusApproved)
}

// HasPending reports whether userID has a pending request for groupID.
// PRE: none
// POST: Linear scan over requests; true on first pending match
func HasPending(requests []Request, userID, groupID string) bool {
	for _, r := range requests {
		if r.UserID == userID && r.GroupID == groupID && r.IsPending() {
			return true
		}
	}
	return false
}

// HasRequested reports whether userID has any request for groupID, whatever its status.
// PRE: none
// POST: Linear scan over requests
func HasRequested(requests []Request, userID, groupID string) bool {
	return Find(requests, userID, groupID) != nil
}

// Find returns the most recent request of userID for groupID, or nil.
// PRE: none
// POST: Returned pointer aliases an element of requests
func Find(requests []Request, userID, groupID string) *Request {
	var found *Request
	for i := range requests {
		r := &requests[i]
		if r.UserID != userID || r.GroupID != groupID {
			continue
		}
		if found == nil || r.CreatedAt.After(found.CreatedAt) {
			found = r
		}
	}
	return found
}

// Action is the rendered state of the enrollment button on a group card.
type Action struct {
	Label      string
	Disabled   bool
	NeedsLogin bool
	Status     string // status of the existing request, empty if none
}

// ActionState derives the enrollment button for a visitor and a group.
// justSent is true right after this visitor's request was accepted by the API.
// PRE: requests are the visitor's own requests (or nil when unknown)
// POST: Disabled is true whenever submitting again would be a no-op
func ActionState(loggedIn bool, requests []Request, userID, groupID string, justSent bool) Action {
	if !loggedIn {
		return Action{Label: LabelLogin, NeedsLogin: true}
	}
	if justSent {
		return Action{Label: LabelSent, Disabled: true, Status: StatusPending}
	}
	existing := Find(requests, userID, groupID)
	if existing == nil {
		return Action{Label: LabelRequest}
	}
	switch {
	case existing.IsPending():
		return Action{Label: LabelPending, Disabled: true, Status: StatusPending}
	case existing.IsApproved():
		return Action{Label: LabelEnrolled, Disabled: true, Status: StatusApproved}
	default:
		// Denied requests may be re-submitted.
		return Action{Label: LabelRequest, Status: strings.ToLower(existing.Status)}
	}
}
