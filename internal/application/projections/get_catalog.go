package projections

import (
	"context"

	"academyhub/internal/application/listutil"
	"academyhub/internal/domain/academy"
	"academyhub/internal/domain/course"
)

// GetAcademyListQuery carries query parameters.
type GetAcademyListQuery struct {
	Search string
}

// GetAcademyListResult carries the query result.
type GetAcademyListResult struct {
	Academies []academy.Academy
	Search    string
	Total     int // before filtering
}

// GetAcademyListDeps holds dependencies for GetAcademyList.
type GetAcademyListDeps struct {
	Academies AcademyReader
}

// QueryGetAcademyList fetches every academy and filters by name.
// PRE: deps.Academies is non-nil
// POST: Academies is the name-filtered subsequence of the API list
func QueryGetAcademyList(ctx context.Context, query GetAcademyListQuery, deps GetAcademyListDeps) (GetAcademyListResult, error) {
	all, err := deps.Academies.ListAcademies(ctx)
	if err != nil {
		return GetAcademyListResult{}, err
	}
	return GetAcademyListResult{
		Academies: listutil.FilterByName(all, query.Search),
		Search:    query.Search,
		Total:     len(all),
	}, nil
}

// GetCourseListQuery carries query parameters.
type GetCourseListQuery struct {
	Search string
}

// GetCourseListResult carries the query result.
type GetCourseListResult struct {
	Courses []course.Course
	Search  string
	Total   int
}

// GetCourseListDeps holds dependencies for GetCourseList.
type GetCourseListDeps struct {
	Courses CourseReader
}

// QueryGetCourseList fetches the catalogue and filters by name.
// PRE: deps.Courses is non-nil
// POST: Courses is the name-filtered subsequence of the API list
func QueryGetCourseList(ctx context.Context, query GetCourseListQuery, deps GetCourseListDeps) (GetCourseListResult, error) {
	all, err := deps.Courses.ListCourses(ctx)
	if err != nil {
		return GetCourseListResult{}, err
	}
	return GetCourseListResult{
		Courses: listutil.FilterByName(all, query.Search),
		Search:  query.Search,
		Total:   len(all),
	}, nil
}
