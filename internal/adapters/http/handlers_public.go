package web

import (
	"errors"
	"net/http"
	"strings"

	"academyhub/internal/adapters/http/middleware"
	"academyhub/internal/application/listutil"
	"academyhub/internal/application/projections"
	"academyhub/internal/domain/academy"
	"academyhub/internal/domain/course"
	"academyhub/internal/domain/post"
)

// Home page section sizes.
const (
	homeAcademies = 6
	homeCourses   = 6
	homePosts     = 3
)

type homePage struct {
	Academies      []academy.Academy
	AcademiesError string
	Courses        []course.Course
	CoursesError   string
	Posts          []post.Post
	PostsError     string
}

// handleHome handles GET / and answers 404 for any path no other route claims.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		renderError(w, r, http.StatusNotFound, "Page not found", errPageNotFound)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	res := projections.QueryGetHome(r.Context(), projections.GetHomeQuery{
		AcademyLimit: homeAcademies,
		CourseLimit:  homeCourses,
		PostLimit:    homePosts,
	}, projections.GetHomeDeps{Academies: app.API, Courses: app.API, Posts: app.API})

	page := homePage{
		Academies:      res.Academies,
		AcademiesError: errText(res.AcademiesErr),
		Courses:        res.Courses,
		CoursesError:   errText(res.CoursesErr),
		Posts:          res.Posts,
		PostsError:     errText(res.PostsErr),
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, page)
		return
	}
	renderTemplate(w, r, "home.html", page)
}

// handleAbout handles GET /about.
func handleAbout(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "about.html", nil)
}

type listPage[T any] struct {
	Items  []T
	Search string
	Total  int
	Error  string
}

// handleAcademies handles GET /academies?q=
func handleAcademies(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseFilterParams(r.URL.Query())
	res, err := projections.QueryGetAcademyList(r.Context(), projections.GetAcademyListQuery{Search: params.Search},
		projections.GetAcademyListDeps{Academies: app.API})
	renderList(w, r, "academies.html", listPage[academy.Academy]{
		Items: res.Academies, Search: params.Search, Total: res.Total, Error: errText(err),
	}, err)
}

// handleCourses handles GET /courses?q=
func handleCourses(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseFilterParams(r.URL.Query())
	res, err := projections.QueryGetCourseList(r.Context(), projections.GetCourseListQuery{Search: params.Search},
		projections.GetCourseListDeps{Courses: app.API})
	renderList(w, r, "courses.html", listPage[course.Course]{
		Items: res.Courses, Search: params.Search, Total: res.Total, Error: errText(err),
	}, err)
}

// renderList shows a catalogue page; a failed fetch renders the page with its error in place of the list.
func renderList[T any](w http.ResponseWriter, r *http.Request, templateName string, page listPage[T], err error) {
	status := http.StatusOK
	if err != nil {
		status = upstreamStatus(err)
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, page)
		return
	}
	renderTemplateStatus(w, r, status, templateName, page)
}

type academyPage struct {
	Academy      academy.Academy
	Courses      []course.Course
	CoursesError string
	Groups       []projections.AcademyGroupView
	FailedGroups []string // group ids whose details could not be loaded at all
}

// handleAcademyDetail handles GET /academies/{id}
func handleAcademyDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := projections.QueryGetAcademyDetail(r.Context(), projections.GetAcademyDetailQuery{AcademyID: id},
		projections.GetAcademyDetailDeps{Academies: app.API, Courses: app.API, Groups: app.API})
	if err != nil {
		renderError(w, r, upstreamStatus(err), "Academy unavailable", err)
		return
	}

	page := academyPage{
		Academy:      res.Academy,
		Courses:      res.Courses,
		CoursesError: errText(res.CoursesErr),
	}
	page.Groups = res.Groups.Items
	shown := make([]string, 0, len(res.Groups.Items))
	for _, g := range res.Groups.Items {
		shown = append(shown, g.Group.ID)
	}
	page.FailedGroups = unloadedGroups(res.Groups.Failed, shown)

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, page)
		return
	}
	renderTemplate(w, r, "academy.html", page)
}

type coursePage struct {
	Course          course.Course
	Groups          []projections.CourseGroupView
	FailedGroups    []string
	LoggedIn        bool
	UserRequestsErr string
	// EnrollError is shown on the card of EnrollGroupID after a failed request.
	EnrollError   string
	EnrollGroupID string
}

// handleCourseDetail handles GET /courses/{id}. ?sent={groupId} marks a request that was just accepted.
func handleCourseDetail(w http.ResponseWriter, r *http.Request) {
	renderCourse(w, r, r.PathValue("id"), strings.TrimSpace(r.URL.Query().Get("sent")), "", "")
}

// renderCourse loads and renders a course page, optionally with an enrollment error on one group.
func renderCourse(w http.ResponseWriter, r *http.Request, courseID, justSent, enrollGroupID, enrollErr string) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())
	res, err := projections.QueryGetCourseDetail(r.Context(), projections.GetCourseDetailQuery{
		CourseID:        courseID,
		LoggedIn:        loggedIn,
		UserID:          sess.UserID,
		JustSentGroupID: justSent,
	}, projections.GetCourseDetailDeps{Courses: app.API, Groups: app.API, Enrollments: app.API})
	if err != nil {
		renderError(w, r, upstreamStatus(err), "Course unavailable", err)
		return
	}

	page := coursePage{
		Course:          res.Course,
		Groups:          res.Groups.Items,
		LoggedIn:        loggedIn,
		UserRequestsErr: errText(res.UserRequestsErr),
		EnrollError:     enrollErr,
		EnrollGroupID:   enrollGroupID,
	}
	shown := make([]string, 0, len(res.Groups.Items))
	for _, g := range res.Groups.Items {
		shown = append(shown, g.Group.ID)
	}
	page.FailedGroups = unloadedGroups(res.Groups.Failed, shown)

	status := http.StatusOK
	if enrollErr != "" {
		status = http.StatusUnprocessableEntity
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, page)
		return
	}
	renderTemplateStatus(w, r, status, "course.html", page)
}

// unloadedGroups returns the failed ids that have no card at all on the page.
func unloadedGroups(failed, shown []string) []string {
	loaded := make(map[string]bool, len(shown))
	for _, id := range shown {
		loaded[id] = true
	}
	var out []string
	for _, id := range failed {
		if !loaded[id] {
			out = append(out, id)
		}
	}
	return out
}

// handlePost handles GET /posts/{id}
func handlePost(w http.ResponseWriter, r *http.Request) {
	p, err := projections.QueryGetPost(r.Context(), projections.GetPostQuery{PostID: r.PathValue("id")},
		projections.GetPostDeps{Posts: app.API})
	if err != nil {
		status := upstreamStatus(err)
		if errors.Is(err, projections.ErrPostNotFound) {
			status = http.StatusNotFound
		}
		renderError(w, r, status, "Post unavailable", err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, p)
		return
	}
	renderTemplate(w, r, "post.html", p)
}

// handleHealthz handles GET /healthz: local database reachability and outbox backlog.
// The marketplace is not probed; its outages are reported per page.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok", "version": app.Version}
	status := http.StatusOK
	if app.DB != nil {
		if err := app.DB.PingContext(r.Context()); err != nil {
			body["status"] = "degraded"
			body["db"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if app.Outbox != nil && status == http.StatusOK {
		if counts, err := app.Outbox.CountByStatus(r.Context()); err == nil {
			body["outbox"] = counts
		}
	}
	writeJSON(w, status, body)
}
