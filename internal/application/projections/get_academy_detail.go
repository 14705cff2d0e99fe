package projections

import (
	"context"
	"errors"
	"log/slog"

	"academyhub/internal/domain/academy"
	"academyhub/internal/domain/course"
	"academyhub/internal/domain/group"
)

// GetAcademyDetailQuery carries query parameters.
type GetAcademyDetailQuery struct {
	AcademyID string
}

// AcademyGroupView is one group referenced by the academy's students or teachers.
type AcademyGroupView struct {
	Group         group.Group
	Members       []group.Member
	MembersFailed bool
}

// GetAcademyDetailResult carries the query result.
type GetAcademyDetailResult struct {
	Academy    academy.Academy
	Courses    []course.Course
	CoursesErr error // courses degrade to empty; the page still renders
	Groups     Partial[AcademyGroupView]
}

// GetAcademyDetailDeps holds dependencies for GetAcademyDetail.
type GetAcademyDetailDeps struct {
	Academies AcademyReader
	Courses   CourseReader
	Groups    GroupReader
}

// QueryGetAcademyDetail assembles an academy page: the academy, its courses and
// every group its participants belong to.
// PRE: query.AcademyID is non-empty
// POST: returns an error only when the academy itself cannot be loaded;
// group failures are isolated per group id in Groups.Failed
func QueryGetAcademyDetail(ctx context.Context, query GetAcademyDetailQuery, deps GetAcademyDetailDeps) (GetAcademyDetailResult, error) {
	a, err := deps.Academies.GetAcademy(ctx, query.AcademyID)
	if err != nil {
		return GetAcademyDetailResult{}, err
	}
	result := GetAcademyDetailResult{Academy: a}

	result.Courses, result.CoursesErr = deps.Courses.ListCoursesByAcademy(ctx, a.ID)
	if result.CoursesErr != nil {
		slog.Warn("academy_courses_failed", "academy_id", a.ID, "error", result.CoursesErr)
		result.Courses = nil
	}

	// one group at a time: the group, then its members
	for _, id := range academy.UniqueGroupIDs(a) {
		// a client disconnect abandons the page; an expired deadline degrades per item
		if err := ctx.Err(); errors.Is(err, context.Canceled) {
			return GetAcademyDetailResult{}, err
		}
		g, err := deps.Groups.GetGroup(ctx, id)
		if err != nil {
			slog.Warn("academy_group_failed", "academy_id", a.ID, "group_id", id, "error", err)
			result.Groups.fail(id)
			continue
		}
		view := AcademyGroupView{Group: g}
		members, err := deps.Groups.ListGroupMembers(ctx, id)
		if err != nil {
			slog.Warn("academy_group_members_failed", "academy_id", a.ID, "group_id", id, "error", err)
			view.MembersFailed = true
			result.Groups.fail(id)
		} else {
			view.Members = members
		}
		result.Groups.Items = append(result.Groups.Items, view)
	}
	return result, nil
}
