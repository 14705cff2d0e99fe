package projections

import (
	"context"
	"errors"
	"sort"
	"sync"

	"academyhub/internal/domain/academy"
	"academyhub/internal/domain/account"
	"academyhub/internal/domain/course"
	"academyhub/internal/domain/enrollment"
	"academyhub/internal/domain/group"
	"academyhub/internal/domain/post"
)

var errUpstream = errors.New("upstream unavailable")

// fakeMarketplace implements every reader interface from in-memory data.
// fail maps a call key such as "members:g2" to the error it should return.
type fakeMarketplace struct {
	mu sync.Mutex

	academies     []academy.Academy
	courses       []course.Course
	posts         []post.Post
	groups        map[string]group.Group
	members       map[string][]group.Member
	groupRequests map[string][]enrollment.Request
	userRequests  map[string][]enrollment.Request
	me            account.User

	fail  map[string]error
	calls []string
}

func (f *fakeMarketplace) record(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	return f.fail[key]
}

// callErr records key and, like a real client, fails once ctx is done.
func (f *fakeMarketplace) callErr(ctx context.Context, key string) error {
	if err := f.record(key); err != nil {
		return err
	}
	return ctx.Err()
}

func (f *fakeMarketplace) ListAcademies(context.Context) ([]academy.Academy, error) {
	if err := f.record("academies"); err != nil {
		return nil, err
	}
	return f.academies, nil
}

func (f *fakeMarketplace) GetAcademy(_ context.Context, id string) (academy.Academy, error) {
	if err := f.record("academy:" + id); err != nil {
		return academy.Academy{}, err
	}
	for _, a := range f.academies {
		if a.ID == id {
			return a, nil
		}
	}
	return academy.Academy{}, errors.New("not found")
}

func (f *fakeMarketplace) ListCourses(context.Context) ([]course.Course, error) {
	if err := f.record("courses"); err != nil {
		return nil, err
	}
	return f.courses, nil
}

func (f *fakeMarketplace) ListCoursesByAcademy(_ context.Context, academyID string) ([]course.Course, error) {
	if err := f.record("courses-by-academy:" + academyID); err != nil {
		return nil, err
	}
	var out []course.Course
	for _, c := range f.courses {
		if c.AcademyID == academyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeMarketplace) GetCourse(_ context.Context, id string) (course.Course, error) {
	if err := f.record("course:" + id); err != nil {
		return course.Course{}, err
	}
	for _, c := range f.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return course.Course{}, errors.New("not found")
}

func (f *fakeMarketplace) GetGroup(ctx context.Context, id string) (group.Group, error) {
	if err := f.callErr(ctx, "group:"+id); err != nil {
		return group.Group{}, err
	}
	g, ok := f.groups[id]
	if !ok {
		return group.Group{}, errors.New("not found")
	}
	return g, nil
}

func (f *fakeMarketplace) ListGroupsByCourse(_ context.Context, courseID string) ([]group.Group, error) {
	if err := f.record("groups-by-course:" + courseID); err != nil {
		return nil, err
	}
	var out []group.Group
	for _, id := range sortedKeys(f.groups) {
		if g := f.groups[id]; g.CourseID == courseID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeMarketplace) ListGroupMembers(ctx context.Context, groupID string) ([]group.Member, error) {
	if err := f.callErr(ctx, "members:"+groupID); err != nil {
		return nil, err
	}
	return f.members[groupID], nil
}

func (f *fakeMarketplace) ListEnrollmentRequestsByGroup(ctx context.Context, groupID string) ([]enrollment.Request, error) {
	if err := f.callErr(ctx, "requests-by-group:"+groupID); err != nil {
		return nil, err
	}
	return f.groupRequests[groupID], nil
}

func (f *fakeMarketplace) ListEnrollmentRequestsByUser(_ context.Context, userID string) ([]enrollment.Request, error) {
	if err := f.record("requests-by-user:" + userID); err != nil {
		return nil, err
	}
	return f.userRequests[userID], nil
}

func (f *fakeMarketplace) ListPosts(context.Context) ([]post.Post, error) {
	if err := f.record("posts"); err != nil {
		return nil, err
	}
	return f.posts, nil
}

func (f *fakeMarketplace) Me(context.Context) (account.User, error) {
	if err := f.record("me"); err != nil {
		return account.User{}, err
	}
	return f.me, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
