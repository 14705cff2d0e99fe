package projections

import (
	"context"

	"academyhub/internal/domain/academy"
	"academyhub/internal/domain/account"
	"academyhub/internal/domain/course"
	"academyhub/internal/domain/enrollment"
	"academyhub/internal/domain/group"
	"academyhub/internal/domain/post"
)

// AcademyReader reads academies from the marketplace.
type AcademyReader interface {
	ListAcademies(ctx context.Context) ([]academy.Academy, error)
	GetAcademy(ctx context.Context, id string) (academy.Academy, error)
}

// CourseReader reads courses from the marketplace.
type CourseReader interface {
	ListCourses(ctx context.Context) ([]course.Course, error)
	ListCoursesByAcademy(ctx context.Context, academyID string) ([]course.Course, error)
	GetCourse(ctx context.Context, id string) (course.Course, error)
}

// GroupReader reads course groups and their members.
type GroupReader interface {
	GetGroup(ctx context.Context, id string) (group.Group, error)
	ListGroupsByCourse(ctx context.Context, courseID string) ([]group.Group, error)
	ListGroupMembers(ctx context.Context, groupID string) ([]group.Member, error)
}

// EnrollmentReader reads enrollment requests.
type EnrollmentReader interface {
	ListEnrollmentRequestsByGroup(ctx context.Context, groupID string) ([]enrollment.Request, error)
	ListEnrollmentRequestsByUser(ctx context.Context, userID string) ([]enrollment.Request, error)
}

// PostReader reads blog posts.
type PostReader interface {
	ListPosts(ctx context.Context) ([]post.Post, error)
}

// ProfileReader reads the signed-in user's profile.
type ProfileReader interface {
	Me(ctx context.Context) (account.User, error)
}
