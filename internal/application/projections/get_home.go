package projections

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"academyhub/internal/domain/academy"
	"academyhub/internal/domain/course"
	"academyhub/internal/domain/post"
)

// GetHomeQuery carries query parameters.
type GetHomeQuery struct {
	AcademyLimit int // 0 means no limit
	CourseLimit  int
	PostLimit    int
}

// GetHomeResult carries the three independent home page sections.
// Each section has its own error; one failing does not hide the others.
type GetHomeResult struct {
	Academies    []academy.Academy
	AcademiesErr error
	Courses      []course.Course
	CoursesErr   error
	Posts        []post.Post // newest first
	PostsErr     error
}

// GetHomeDeps holds dependencies for GetHome.
type GetHomeDeps struct {
	Academies AcademyReader
	Courses   CourseReader
	Posts     PostReader
}

// QueryGetHome fetches academies, courses and posts concurrently.
// PRE: all deps are non-nil
// POST: never returns an error; failures are reported per section
func QueryGetHome(ctx context.Context, query GetHomeQuery, deps GetHomeDeps) GetHomeResult {
	var result GetHomeResult
	// a plain Group: one failing fetch must not cancel the others
	var g errgroup.Group

	g.Go(func() error {
		items, err := deps.Academies.ListAcademies(ctx)
		result.Academies, result.AcademiesErr = limit(items, query.AcademyLimit), err
		return nil
	})
	g.Go(func() error {
		items, err := deps.Courses.ListCourses(ctx)
		result.Courses, result.CoursesErr = limit(items, query.CourseLimit), err
		return nil
	})
	g.Go(func() error {
		items, err := deps.Posts.ListPosts(ctx)
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
		result.Posts, result.PostsErr = limit(items, query.PostLimit), err
		return nil
	})
	_ = g.Wait()

	for section, err := range map[string]error{
		"academies": result.AcademiesErr,
		"courses":   result.CoursesErr,
		"posts":     result.PostsErr,
	} {
		if err != nil {
			slog.Warn("home_section_failed", "section", section, "error", err)
		}
	}
	return result
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
