package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"academyhub/internal/adapters/api"
	"academyhub/internal/adapters/http/perf"
	"academyhub/internal/application/orchestrators"
	"academyhub/internal/domain/academy"
	"academyhub/internal/domain/enrollment"
	outboxDomain "academyhub/internal/domain/outbox"
)

func htmlRequest(method, target string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Accept", "text/html")
	return req
}

// serve routes req through the page mux without the middleware chain.
func serve(req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	registerRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "academyhub_session" {
			return c
		}
	}
	return nil
}

// --- Public pages ---

func TestHome_RendersAllSections(t *testing.T) {
	fm := newCatalog()
	app = newTestDeps(fm)

	rec := serve(htmlRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200. Body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Harbour Academy", "Intro to Sailing", "€120", "Season opens", "Free"} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestHome_SectionFailureKeepsOtherSections(t *testing.T) {
	fm := newCatalog()
	fm.fail["posts"] = errUpstream
	app = newTestDeps(fm)

	rec := serve(htmlRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-testid="posts-error"`) || !strings.Contains(body, "marketplace unavailable") {
		t.Error("expected the posts section to show the upstream error")
	}
	if !strings.Contains(body, "Harbour Academy") {
		t.Error("academies section should still render")
	}
}

func TestHome_UnknownPathIs404(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(htmlRequest("GET", "/no-such-page", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestAcademies_FiltersByName(t *testing.T) {
	fm := newCatalog()
	fm.academies = append(fm.academies, academy.Academy{ID: "a2", Name: "Mountain School"})
	app = newTestDeps(fm)

	rec := serve(httptest.NewRequest("GET", "/academies?q=harbour", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	var page struct {
		Items  []struct{ ID string }
		Search string
		Total  int
	}
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "a1" {
		t.Errorf("got %+v, want only a1", page.Items)
	}
	if page.Total != 2 || page.Search != "harbour" {
		t.Errorf("got total %d search %q", page.Total, page.Search)
	}
}

func TestCourses_UpstreamFailureRendersError(t *testing.T) {
	fm := newCatalog()
	fm.fail["courses"] = errUpstream
	app = newTestDeps(fm)

	rec := serve(htmlRequest("GET", "/courses", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("got %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "marketplace unavailable") {
		t.Error("expected the upstream message on the page")
	}
}

func TestAcademyDetail_PartialGroupFailure(t *testing.T) {
	fm := newCatalog()
	fm.fail["members:g2"] = errUpstream
	app = newTestDeps(fm)

	rec := serve(htmlRequest("GET", "/academies/a1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200. Body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Ana Silva") {
		t.Error("members of the healthy group should render")
	}
	if !strings.Contains(body, `data-testid="group-members-error"`) {
		t.Error("failed group should show a members error")
	}
	if strings.Contains(body, `data-testid="group-error"`) {
		t.Error("a group with a card must not also be listed as unloaded")
	}
}

func TestAcademyDetail_GroupLookupFailure(t *testing.T) {
	fm := newCatalog()
	fm.fail["group:g2"] = errUpstream
	app = newTestDeps(fm)

	rec := serve(htmlRequest("GET", "/academies/a1", nil))

	if !strings.Contains(rec.Body.String(), "Group g2 could not be loaded.") {
		t.Error("expected the unloaded group to be reported")
	}
}

func TestAcademyDetail_NotFound(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(htmlRequest("GET", "/academies/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestCourseDetail_AnonymousSeesLoginAction(t *testing.T) {
	app = newTestDeps(newCatalog())

	rec := serve(htmlRequest("GET", "/courses/c1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, enrollment.LabelLogin) {
		t.Error("anonymous visitors should be asked to log in")
	}
	if !strings.Contains(body, "<strong>basics</strong>") {
		t.Error("course description should render as markdown")
	}
	if !strings.Contains(body, `id="group-g1"`) || !strings.Contains(body, `id="group-g2"`) {
		t.Error("every group should have an anchored card")
	}
}

func TestCourseDetail_PendingRequestDisablesButton(t *testing.T) {
	fm := newCatalog()
	fm.userRequests["u1"] = []enrollment.Request{{ID: "r1", UserID: "u1", GroupID: "g1", Status: enrollment.StatusPending}}
	app = newTestDeps(fm)

	rec := serve(withSession(htmlRequest("GET", "/courses/c1", nil), studentSession))

	body := rec.Body.String()
	if !strings.Contains(body, enrollment.LabelPending) {
		t.Error("g1 should show the pending label")
	}
	if !strings.Contains(body, enrollment.LabelRequest) {
		t.Error("g2 should still offer a request")
	}
	if !strings.Contains(body, "disabled") {
		t.Error("pending group button should be disabled")
	}
}

func TestPost_NotFound(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(htmlRequest("GET", "/posts/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestPost_RendersMarkdown(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(htmlRequest("GET", "/posts/p1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<em>May</em>") {
		t.Error("post content should render as markdown")
	}
}

// --- Auth ---

func TestLogin_SuccessOpensSession(t *testing.T) {
	fm := newCatalog()
	app = newTestDeps(fm)

	form := url.Values{"email": {"maria@example.com"}, "password": {"secret123"}}
	rec := serve(htmlRequest("POST", "/login", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303. Body: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("redirected to %q, want /dashboard", loc)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a session cookie")
	}
	s, err := app.Sessions.Get(t.Context(), cookie.Value)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if s.UserID != "u1" || s.AccessToken != "opaque-token" {
		t.Errorf("got session %+v", s)
	}
}

func TestLogin_FailureShowsInlineError(t *testing.T) {
	fm := newCatalog()
	fm.fail["login:maria@example.com"] = &api.Error{Kind: api.KindApp, Status: http.StatusOK, Message: "Invalid credentials"}
	app = newTestDeps(fm)

	form := url.Values{"email": {"maria@example.com"}, "password": {"wrong-password"}}
	rec := serve(htmlRequest("POST", "/login", form))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if sessionCookie(rec) != nil {
		t.Error("failed login must not set a session cookie")
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Invalid credentials") {
		t.Error("expected the API message inline")
	}
	if !strings.Contains(body, `value="maria@example.com"`) {
		t.Error("email should be kept in the form")
	}
}

func TestLogin_ValidationErrorSkipsAPI(t *testing.T) {
	fm := newCatalog()
	app = newTestDeps(fm)

	rec := serve(htmlRequest("POST", "/login", url.Values{"email": {"not-an-email"}, "password": {"x"}}))

	if !strings.Contains(rec.Body.String(), `data-testid="login-error"`) {
		t.Error("expected a validation error")
	}
	if fm.count("login:not-an-email") != 0 {
		t.Error("invalid input must not reach the API")
	}
}

func TestLogin_GetRedirectsWhenLoggedIn(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(withSession(htmlRequest("GET", "/login", nil), studentSession))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("got %d, want 303", rec.Code)
	}
}

func TestSignup_WithoutTokenRedirectsToLogin(t *testing.T) {
	fm := newCatalog()
	fm.loginToken = ""
	app = newTestDeps(fm)

	form := url.Values{"firstName": {"Maria"}, "lastName": {"Lopes"}, "email": {"maria@example.com"}, "password": {"longenough"}}
	rec := serve(htmlRequest("POST", "/signup", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303. Body: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/login?registered=1" {
		t.Errorf("redirected to %q", loc)
	}
	if sessionCookie(rec) != nil {
		t.Error("no session without a token")
	}
	counts, _ := app.Outbox.CountByStatus(t.Context())
	if counts[outboxDomain.StatusPending] != 1 {
		t.Errorf("expected one queued welcome email, got %v", counts)
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	app = newTestDeps(newCatalog())
	_ = app.Sessions.Create(t.Context(), studentSession)

	req := htmlRequest("POST", "/logout", url.Values{})
	req.AddCookie(&http.Cookie{Name: "academyhub_session", Value: studentSession.ID})
	rec := serve(req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303", rec.Code)
	}
	if _, err := app.Sessions.Get(t.Context(), studentSession.ID); err == nil {
		t.Error("session should be deleted")
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Error("cookie should be cleared")
	}
}

// --- Enrollment ---

func TestRequestEnrollment_AnonymousRedirectsWithoutPosting(t *testing.T) {
	fm := newCatalog()
	app = newTestDeps(fm)

	rec := serve(htmlRequest("POST", "/enrollment-requests", url.Values{"groupId": {"g1"}, "courseId": {"c1"}}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirected to %q, want /login", loc)
	}
	if fm.count("create-request") != 0 {
		t.Error("no request should reach the API")
	}
}

func TestRequestEnrollment_SuccessRedirectsToGroup(t *testing.T) {
	fm := newCatalog()
	app = newTestDeps(fm)

	req := withSession(htmlRequest("POST", "/enrollment-requests", url.Values{"groupId": {"g1"}, "courseId": {"c1"}}), studentSession)
	rec := serve(req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303. Body: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/courses/c1?sent=g1#group-g1" {
		t.Errorf("redirected to %q", loc)
	}
	if len(fm.created) != 1 || fm.created[0].UserID != "u1" || fm.created[0].GroupID != "g1" {
		t.Errorf("got created %+v", fm.created)
	}
}

func TestRequestEnrollment_AlreadyPendingDoesNotPost(t *testing.T) {
	fm := newCatalog()
	fm.userRequests["u1"] = []enrollment.Request{{ID: "r1", UserID: "u1", GroupID: "g1", Status: enrollment.StatusPending}}
	app = newTestDeps(fm)

	req := withSession(htmlRequest("POST", "/enrollment-requests", url.Values{"groupId": {"g1"}, "courseId": {"c1"}}), studentSession)
	rec := serve(req)

	if loc := rec.Header().Get("Location"); loc != "/courses/c1#group-g1" {
		t.Errorf("redirected to %q", loc)
	}
	if fm.count("create-request") != 0 {
		t.Error("a pending request must not be duplicated")
	}
}

func TestRequestEnrollment_FailureShowsErrorOnCard(t *testing.T) {
	fm := newCatalog()
	fm.fail["create-request"] = &api.Error{Kind: api.KindApp, Status: http.StatusOK, Message: "Group is full"}
	app = newTestDeps(fm)

	req := withSession(htmlRequest("POST", "/enrollment-requests", url.Values{"groupId": {"g2"}, "courseId": {"c1"}}), studentSession)
	rec := serve(req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-testid="enroll-error"`) || !strings.Contains(body, "Group is full") {
		t.Error("expected the API error on the group card")
	}
}

func TestRequestEnrollment_JSON(t *testing.T) {
	tests := []struct {
		name     string
		withSess bool
		body     string
		want     int
	}{
		{"anonymous", false, `{"groupId":"g1","courseId":"c1"}`, http.StatusUnauthorized},
		{"missing group", true, `{"courseId":"c1"}`, http.StatusUnprocessableEntity},
		{"unknown field", true, `{"groupId":"g1","extra":1}`, http.StatusBadRequest},
		{"ok", true, `{"groupId":"g1","courseId":"c1"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app = newTestDeps(newCatalog())
			req := httptest.NewRequest("POST", "/enrollment-requests", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.withSess {
				req = withSession(req, studentSession)
			}
			rec := serve(req)
			if rec.Code != tt.want {
				t.Errorf("got %d, want %d. Body: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

// --- Contact ---

func TestContact_QueuesEmail(t *testing.T) {
	app = newTestDeps(newCatalog())

	form := url.Values{"name": {"Rui"}, "email": {"rui@example.com"}, "subject": {"Hello"}, "message": {"Do you run weekend groups?"}}
	rec := serve(htmlRequest("POST", "/contact", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303. Body: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/contact?sent=1" {
		t.Errorf("redirected to %q", loc)
	}
	pending, _ := app.Outbox.ListPending(t.Context(), 10)
	if len(pending) != 1 || pending[0].ActionType != outboxDomain.ActionTypeContactEmail {
		t.Fatalf("got pending %+v", pending)
	}
}

func TestContact_InvalidInputIs422(t *testing.T) {
	app = newTestDeps(newCatalog())

	rec := serve(htmlRequest("POST", "/contact", url.Values{"name": {"Rui"}, "email": {"nope"}}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="Rui"`) {
		t.Error("submitted values should be kept")
	}
	pending, _ := app.Outbox.ListPending(t.Context(), 10)
	if len(pending) != 0 {
		t.Error("nothing should be queued")
	}
}

func TestContact_JSONAccepted(t *testing.T) {
	app = newTestDeps(newCatalog())
	req := httptest.NewRequest("POST", "/contact", strings.NewReader(`{"name":"Rui","email":"rui@example.com","message":"Hi there"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("got %d, want 202. Body: %s", rec.Code, rec.Body.String())
	}
}

// --- Dashboards ---

func TestDashboard_RedirectsToRoleRoute(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(withSession(htmlRequest("GET", "/dashboard", nil), studentSession))
	if loc := rec.Header().Get("Location"); loc != "/dashboard/student" {
		t.Errorf("redirected to %q, want /dashboard/student", loc)
	}
}

func TestDashboard_AnonymousGoesToLogin(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(htmlRequest("GET", "/dashboard/student", nil))
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirected to %q, want /login", loc)
	}
}

func TestDashboard_StudentCannotOpenAdmin(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(withSession(htmlRequest("GET", "/dashboard/admin", nil), studentSession))
	if loc := rec.Header().Get("Location"); loc != "/dashboard/student" {
		t.Errorf("redirected to %q, want /dashboard/student", loc)
	}
}

func TestDashboard_ShowsRequests(t *testing.T) {
	fm := newCatalog()
	fm.userRequests["u1"] = []enrollment.Request{
		{ID: "r1", UserID: "u1", GroupID: "g1", CourseID: "c1", Status: enrollment.StatusPending},
		{ID: "r2", UserID: "u1", GroupID: "g2", CourseID: "c1", Status: enrollment.StatusApproved},
	}
	app = newTestDeps(fm)

	rec := serve(withSession(htmlRequest("GET", "/dashboard/student", nil), studentSession))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200. Body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if strings.Count(body, `data-testid="request-row"`) != 2 {
		t.Error("expected two request rows")
	}
	if !strings.Contains(body, "Maria Lopes") {
		t.Error("expected the profile name")
	}
}

func TestDashboard_UnknownRouteIs404(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(withSession(htmlRequest("GET", "/dashboard/pirate", nil), adminSession))
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

// --- Admin ---

func TestAdminPerf_ForbiddenForStudents(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(withSession(htmlRequest("GET", "/admin/perf", nil), studentSession))
	if rec.Code != http.StatusForbidden {
		t.Errorf("got %d, want 403", rec.Code)
	}
}

func TestAdminPerf_ShowsTimingsAndOutbox(t *testing.T) {
	app = newTestDeps(newCatalog())
	app.Collector = perf.NewCollector(100)
	app.Collector.Record(perf.Entry{Kind: perf.KindRequest, Path: "/courses", DurationMs: 42, Timestamp: time.Now()})
	_ = app.Outbox.Save(t.Context(), outboxDomain.Entry{
		ID: "o1", ActionType: outboxDomain.ActionTypeContactEmail, Payload: "{}", Status: outboxDomain.StatusFailed,
		Attempts: 5, MaxAttempts: 5, ErrorMessage: "provider rejected", CreatedAt: time.Now(),
	})

	rec := serve(withSession(htmlRequest("GET", "/admin/perf?window=15m", nil), adminSession))

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200. Body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"/courses", "provider rejected", "/admin/outbox/o1/retry"} {
		if !strings.Contains(body, want) {
			t.Errorf("perf page missing %q", want)
		}
	}
}

func TestAdminOutboxAction_AbandonJSON(t *testing.T) {
	app = newTestDeps(newCatalog())
	app.Processor = orchestrators.NewOutboxProcessor(app.Outbox, nil)
	_ = app.Outbox.Save(t.Context(), outboxDomain.Entry{
		ID: "o1", ActionType: outboxDomain.ActionTypeContactEmail, Payload: "{}", Status: outboxDomain.StatusFailed,
		Attempts: 5, MaxAttempts: 5, CreatedAt: time.Now(),
	})

	req := withSession(httptest.NewRequest("POST", "/admin/outbox/o1/abandon", nil), adminSession)
	rec := serve(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200. Body: %s", rec.Code, rec.Body.String())
	}
	e, _ := app.Outbox.GetByID(t.Context(), "o1")
	if e.Status != outboxDomain.StatusAbandoned {
		t.Errorf("got status %q, want abandoned", e.Status)
	}

	// an abandoned entry cannot be retried
	rec = serve(withSession(httptest.NewRequest("POST", "/admin/outbox/o1/retry", nil), adminSession))
	if rec.Code != http.StatusConflict {
		t.Errorf("got %d, want 409", rec.Code)
	}
}

// --- Health ---

func TestHealthz(t *testing.T) {
	app = newTestDeps(newCatalog())
	rec := serve(httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}

	app.DB = errPinger{err: errDiskGone}
	rec = serve(httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got %d, want 503", rec.Code)
	}
	var body map[string]any
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "degraded" {
		t.Errorf("got %v", body)
	}
}

// --- Full chain ---

func TestNewMux_SessionCookieReachesDashboard(t *testing.T) {
	d := newTestDeps(newCatalog())
	_ = d.Sessions.Create(t.Context(), studentSession)
	h := NewMux(d, Options{StaticDir: t.TempDir(), CSRFKey: "test-key"})

	req := htmlRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "academyhub_session", Value: studentSession.ID})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard/student" {
		t.Errorf("redirected to %q", loc)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("every response should carry a request id")
	}
	if rec.Header().Get("X-Frame-Options") == "" {
		t.Error("security headers missing")
	}
}

func TestNewMux_PostWithoutCSRFTokenRejected(t *testing.T) {
	fm := newCatalog()
	h := NewMux(newTestDeps(fm), Options{StaticDir: t.TempDir(), CSRFKey: "test-key"})

	req := htmlRequest("POST", "/login", url.Values{"email": {"maria@example.com"}, "password": {"secret123"}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("got %d, want 403", rec.Code)
	}
	if fm.count("login:maria@example.com") != 0 {
		t.Error("a rejected form must not reach the API")
	}
}

func TestUpstreamStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&api.Error{Kind: api.KindHTTP, Status: 404}, http.StatusNotFound},
		{&api.Error{Kind: api.KindHTTP, Status: 401}, http.StatusUnauthorized},
		{&api.Error{Kind: api.KindTransport, Err: errors.New("dial tcp: refused")}, http.StatusGatewayTimeout},
		{errUpstream, http.StatusBadGateway},
	}
	for _, tt := range tests {
		if got := upstreamStatus(tt.err); got != tt.want {
			t.Errorf("upstreamStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
