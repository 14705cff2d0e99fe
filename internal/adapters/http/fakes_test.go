package web

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"academyhub/internal/adapters/api"
	"academyhub/internal/adapters/http/middleware"
	"academyhub/internal/domain/academy"
	"academyhub/internal/domain/account"
	"academyhub/internal/domain/course"
	"academyhub/internal/domain/enrollment"
	"academyhub/internal/domain/group"
	outboxDomain "academyhub/internal/domain/outbox"
	"academyhub/internal/domain/post"
	"academyhub/internal/domain/session"
)

var errUpstream = &api.Error{Kind: api.KindHTTP, Status: http.StatusInternalServerError, Message: "marketplace unavailable"}

// fakeMarketplace serves every marketplace call from memory.
// fail maps a call key such as "members:g2" or "create-request" to the error it returns.
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
	loginToken    string

	fail    map[string]error
	calls   []string
	created []enrollment.Request
}

func (f *fakeMarketplace) record(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	return f.fail[key]
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
	return academy.Academy{}, &api.Error{Kind: api.KindHTTP, Status: http.StatusNotFound, Message: "Academy not found"}
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
	return course.Course{}, &api.Error{Kind: api.KindHTTP, Status: http.StatusNotFound, Message: "Course not found"}
}

func (f *fakeMarketplace) GetGroup(_ context.Context, id string) (group.Group, error) {
	if err := f.record("group:" + id); err != nil {
		return group.Group{}, err
	}
	g, ok := f.groups[id]
	if !ok {
		return group.Group{}, &api.Error{Kind: api.KindHTTP, Status: http.StatusNotFound, Message: "Group not found"}
	}
	return g, nil
}

func (f *fakeMarketplace) ListGroupsByCourse(_ context.Context, courseID string) ([]group.Group, error) {
	if err := f.record("groups-by-course:" + courseID); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(f.groups))
	for id := range f.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []group.Group
	for _, id := range ids {
		if g := f.groups[id]; g.CourseID == courseID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeMarketplace) ListGroupMembers(_ context.Context, groupID string) ([]group.Member, error) {
	if err := f.record("members:" + groupID); err != nil {
		return nil, err
	}
	return f.members[groupID], nil
}

func (f *fakeMarketplace) ListEnrollmentRequestsByGroup(_ context.Context, groupID string) ([]enrollment.Request, error) {
	if err := f.record("requests-by-group:" + groupID); err != nil {
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

func (f *fakeMarketplace) CreateEnrollmentRequest(_ context.Context, req enrollment.Request) (enrollment.Request, error) {
	if err := f.record("create-request"); err != nil {
		return enrollment.Request{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	req.ID = "req-new"
	req.Status = enrollment.StatusPending
	f.created = append(f.created, req)
	return req, nil
}

func (f *fakeMarketplace) ListPosts(context.Context) ([]post.Post, error) {
	if err := f.record("posts"); err != nil {
		return nil, err
	}
	return f.posts, nil
}

func (f *fakeMarketplace) Login(_ context.Context, creds api.Credentials) (api.LoginResult, error) {
	if err := f.record("login:" + creds.Email); err != nil {
		return api.LoginResult{}, err
	}
	return api.LoginResult{AccessToken: f.loginToken}, nil
}

func (f *fakeMarketplace) Register(_ context.Context, reg api.Registration) (api.LoginResult, error) {
	if err := f.record("register:" + reg.Email); err != nil {
		return api.LoginResult{}, err
	}
	return api.LoginResult{AccessToken: f.loginToken}, nil
}

func (f *fakeMarketplace) Me(context.Context) (account.User, error) {
	if err := f.record("me"); err != nil {
		return account.User{}, err
	}
	return f.me, nil
}

func (f *fakeMarketplace) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

// memSessions is an in-memory session store.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]session.Session)}
}

func (m *memSessions) Create(_ context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// memOutbox is an in-memory outbox store.
type memOutbox struct {
	mu      sync.Mutex
	entries []outboxDomain.Entry
}

func (m *memOutbox) GetByID(_ context.Context, id string) (outboxDomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return outboxDomain.Entry{}, sql.ErrNoRows
}

func (m *memOutbox) Save(_ context.Context, e outboxDomain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == e.ID {
			m.entries[i] = e
			return nil
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memOutbox) ListPending(_ context.Context, limit int) ([]outboxDomain.Entry, error) {
	return m.filter(limit, func(e outboxDomain.Entry) bool {
		return e.Status == outboxDomain.StatusPending || e.Status == outboxDomain.StatusRetrying
	}), nil
}

func (m *memOutbox) ListFailed(_ context.Context, limit int) ([]outboxDomain.Entry, error) {
	return m.filter(limit, func(e outboxDomain.Entry) bool { return e.Status == outboxDomain.StatusFailed }), nil
}

func (m *memOutbox) CountByStatus(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range m.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (m *memOutbox) filter(limit int, keep func(outboxDomain.Entry) bool) []outboxDomain.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outboxDomain.Entry
	for _, e := range m.entries {
		if keep(e) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out
}

// errPinger fails every ping with err.
type errPinger struct{ err error }

func (p errPinger) PingContext(context.Context) error { return p.err }

var errDiskGone = errors.New("disk I/O error")

// --- Test helpers ---

// newTestDeps returns Deps backed by fm and in-memory stores.
func newTestDeps(fm *fakeMarketplace) *Deps {
	return &Deps{
		API:        fm,
		Sessions:   newMemSessions(),
		Outbox:     &memOutbox{},
		ContactTo:  "hello@academyhub.test",
		SessionTTL: time.Hour,
		Version:    "test",
	}
}

// newCatalog returns a marketplace with one academy, one course and two groups.
func newCatalog() *fakeMarketplace {
	return &fakeMarketplace{
		academies: []academy.Academy{{
			ID: "a1", Name: "Harbour Academy", Location: "Lisbon", StudentCount: 2,
			Students: []academy.Participant{
				{ID: "s1", FirstName: "Ana", Group: &academy.GroupRef{ID: "g1", Name: "Mornings"}},
				{ID: "s2", FirstName: "Rui", Group: &academy.GroupRef{ID: "g2", Name: "Evenings"}},
			},
		}},
		courses: []course.Course{
			{ID: "c1", Name: "Intro to Sailing", Price: 120, AcademyID: "a1", AcademyName: "Harbour Academy", Description: "Learn the **basics**."},
			{ID: "c2", Name: "Knots", AcademyID: "a1", AcademyName: "Harbour Academy"},
		},
		posts: []post.Post{{ID: "p1", Title: "Season opens", Content: "The season opens in *May*.", CreatedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}},
		groups: map[string]group.Group{
			"g1": {ID: "g1", Name: "Mornings", CourseID: "c1"},
			"g2": {ID: "g2", Name: "Evenings", CourseID: "c1"},
		},
		members: map[string][]group.Member{
			"g1": {{ID: "s1", FirstName: "Ana", LastName: "Silva"}},
			"g2": {{ID: "s2", FirstName: "Rui", LastName: "Costa"}},
		},
		groupRequests: map[string][]enrollment.Request{},
		userRequests:  map[string][]enrollment.Request{},
		me:            account.User{ID: "u1", FirstName: "Maria", LastName: "Lopes", Email: "maria@example.com", Role: account.RoleStudent},
		loginToken:    "opaque-token",
		fail:          map[string]error{},
	}
}

var studentSession = session.Session{
	ID:          "sess-student",
	AccessToken: "tok-student",
	UserID:      "u1",
	Email:       "maria@example.com",
	RoleList:    []string{account.RoleStudent},
	CreatedAt:   time.Now(),
	ExpiresAt:   time.Now().Add(time.Hour),
}

var adminSession = session.Session{
	ID:           "sess-admin",
	AccessToken:  "tok-admin",
	UserID:       "u-admin",
	Email:        "admin@example.com",
	IsSuperAdmin: true,
	CreatedAt:    time.Now(),
	ExpiresAt:    time.Now().Add(time.Hour),
}

// withSession returns r carrying s in its context.
func withSession(r *http.Request, s session.Session) *http.Request {
	return r.WithContext(middleware.ContextWithSession(r.Context(), s))
}
