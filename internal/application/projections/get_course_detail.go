package projections

import (
	"context"
	"errors"
	"log/slog"

	"academyhub/internal/domain/course"
	"academyhub/internal/domain/enrollment"
	"academyhub/internal/domain/group"
)

// GetCourseDetailQuery carries query parameters.
type GetCourseDetailQuery struct {
	CourseID string
	LoggedIn bool
	UserID   string // may be empty for a logged-in user whose token has no id claim
	// JustSentGroupID is the group the visitor requested a moment ago, if any.
	JustSentGroupID string
}

// CourseGroupView is one group of the course with its enrollment state.
type CourseGroupView struct {
	Group          group.Group
	Members        []group.Member
	MembersFailed  bool
	Requests       []enrollment.Request
	RequestsFailed bool
	PendingCount   int
	Action         enrollment.Action
}

// GetCourseDetailResult carries the query result.
type GetCourseDetailResult struct {
	Course course.Course
	Groups Partial[CourseGroupView]
	// UserRequestsErr is set when the visitor's own requests could not be loaded;
	// actions are then computed as if there were none.
	UserRequestsErr error
}

// GetCourseDetailDeps holds dependencies for GetCourseDetail.
type GetCourseDetailDeps struct {
	Courses     CourseReader
	Groups      GroupReader
	Enrollments EnrollmentReader
}

// QueryGetCourseDetail assembles a course page: the course, its groups, and per
// group the members, the pending requests and the visitor's enrollment action.
// PRE: query.CourseID is non-empty
// POST: returns an error when the course or its group list cannot be loaded;
// member and request failures are isolated per group
func QueryGetCourseDetail(ctx context.Context, query GetCourseDetailQuery, deps GetCourseDetailDeps) (GetCourseDetailResult, error) {
	c, err := deps.Courses.GetCourse(ctx, query.CourseID)
	if err != nil {
		return GetCourseDetailResult{}, err
	}
	groups, err := deps.Groups.ListGroupsByCourse(ctx, c.ID)
	if err != nil {
		return GetCourseDetailResult{}, err
	}
	result := GetCourseDetailResult{Course: c}

	var mine []enrollment.Request
	if query.LoggedIn && query.UserID != "" {
		mine, err = deps.Enrollments.ListEnrollmentRequestsByUser(ctx, query.UserID)
		if err != nil {
			slog.Warn("course_user_requests_failed", "course_id", c.ID, "user_id", query.UserID, "error", err)
			result.UserRequestsErr = err
			mine = nil
		}
	}

	for _, g := range groups {
		// a client disconnect abandons the page; an expired deadline degrades per item
		if err := ctx.Err(); errors.Is(err, context.Canceled) {
			return GetCourseDetailResult{}, err
		}
		view := CourseGroupView{Group: g}

		members, err := deps.Groups.ListGroupMembers(ctx, g.ID)
		if err != nil {
			slog.Warn("course_group_members_failed", "course_id", c.ID, "group_id", g.ID, "error", err)
			view.MembersFailed = true
			result.Groups.fail(g.ID)
		} else {
			view.Members = members
		}

		requests, err := deps.Enrollments.ListEnrollmentRequestsByGroup(ctx, g.ID)
		if err != nil {
			slog.Warn("course_group_requests_failed", "course_id", c.ID, "group_id", g.ID, "error", err)
			view.RequestsFailed = true
			result.Groups.fail(g.ID)
		} else {
			view.Requests = requests
			for _, r := range requests {
				if r.IsPending() {
					view.PendingCount++
				}
			}
		}

		known := mine
		if known == nil && !view.RequestsFailed && query.UserID != "" {
			// the group's own list also reveals the visitor's request
			known = requests
		}
		view.Action = enrollment.ActionState(query.LoggedIn, known, query.UserID, g.ID, g.ID == query.JustSentGroupID)
		result.Groups.Items = append(result.Groups.Items, view)
	}
	return result, nil
}
