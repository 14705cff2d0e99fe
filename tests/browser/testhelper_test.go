package browser_test

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"academyhub/internal/adapters/api"
	web "academyhub/internal/adapters/http"
	"academyhub/internal/adapters/http/perf"
	"academyhub/internal/adapters/storage"
	outboxStore "academyhub/internal/adapters/storage/outbox"
	sessionStore "academyhub/internal/adapters/storage/session"
)

const (
	studentEmail    = "maria@example.com"
	studentPassword = "correct-horse"
)

// fakeAPI is an in-memory marketplace speaking the JSON the client expects.
type fakeAPI struct {
	mu        sync.Mutex
	requests  []map[string]any
	creates   int
	failPaths map[string]bool
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, r *http.Request, v any) {
		f.mu.Lock()
		fail := f.failPaths[r.URL.Path]
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "marketplace unavailable"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	academy := map[string]any{
		"_id": "a1", "name": "Harbour Academy", "location": "Lisbon",
		"students": []any{
			map[string]any{"_id": "s1", "firstName": "Ana", "lastName": "Silva", "group": map[string]any{"_id": "g1", "name": "Mornings"}},
			map[string]any{"_id": "s2", "firstName": "Rui", "lastName": "Costa", "group": map[string]any{"_id": "g2", "name": "Evenings"}},
		},
	}
	course := map[string]any{"_id": "c1", "name": "Intro to Sailing", "price": 120, "academy": map[string]any{"_id": "a1", "name": "Harbour Academy"}, "description": "Learn the **basics**."}
	groups := map[string]map[string]any{
		"g1": {"_id": "g1", "name": "Mornings", "courseId": "c1"},
		"g2": {"_id": "g2", "name": "Evenings", "courseId": "c1"},
	}

	mux.HandleFunc("GET /api/academy/all", func(w http.ResponseWriter, r *http.Request) { reply(w, r, []any{academy}) })
	mux.HandleFunc("GET /api/academy/{id}", func(w http.ResponseWriter, r *http.Request) { reply(w, r, academy) })
	mux.HandleFunc("GET /api/course/all", func(w http.ResponseWriter, r *http.Request) { reply(w, r, []any{course}) })
	mux.HandleFunc("GET /api/course/by-academy", func(w http.ResponseWriter, r *http.Request) { reply(w, r, []any{course}) })
	mux.HandleFunc("GET /api/course/{id}", func(w http.ResponseWriter, r *http.Request) { reply(w, r, course) })
	mux.HandleFunc("GET /api/post/all", func(w http.ResponseWriter, r *http.Request) {
		reply(w, r, []any{map[string]any{"_id": "p1", "title": "Season opens", "content": "The season opens in May.", "createdAt": "2026-04-01T00:00:00Z"}})
	})
	mux.HandleFunc("GET /api/group/by-course", func(w http.ResponseWriter, r *http.Request) {
		reply(w, r, []any{groups["g1"], groups["g2"]})
	})
	mux.HandleFunc("GET /api/group/{id}", func(w http.ResponseWriter, r *http.Request) { reply(w, r, groups[r.PathValue("id")]) })
	mux.HandleFunc("GET /api/group/{id}/members", func(w http.ResponseWriter, r *http.Request) {
		reply(w, r, []any{map[string]any{"_id": "m-" + r.PathValue("id"), "firstName": "Member", "lastName": r.PathValue("id")}})
	})
	mux.HandleFunc("GET /api/enrollment-request/by-group", func(w http.ResponseWriter, r *http.Request) {
		reply(w, r, f.filterRequests("groupId", r.URL.Query().Get("groupId")))
	})
	mux.HandleFunc("GET /api/enrollment-request/by-user", func(w http.ResponseWriter, r *http.Request) {
		reply(w, r, f.filterRequests("userId", r.URL.Query().Get("userId")))
	})
	mux.HandleFunc("POST /api/enrollment-request/create", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.creates++
		created := map[string]any{
			"_id": fmt.Sprintf("r%d", f.creates), "userId": body["userId"], "groupId": body["groupId"],
			"courseId": body["courseId"], "status": "pending", "createdAt": time.Now().UTC().Format(time.RFC3339),
		}
		f.requests = append(f.requests, created)
		f.mu.Unlock()
		reply(w, r, created)
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] != studentEmail || creds["password"] != studentPassword {
			reply(w, r, map[string]any{"Response": "False", "Message": "Invalid email or password"})
			return
		}
		reply(w, r, map[string]any{"accessToken": "tok-student"})
	})
	mux.HandleFunc("GET /api/user/me", func(w http.ResponseWriter, r *http.Request) {
		reply(w, r, map[string]any{"_id": "u1", "firstName": "Maria", "lastName": "Lopes", "email": studentEmail, "role": "STUDENT"})
	})
	return mux
}

func (f *fakeAPI) filterRequests(key, value string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []any{}
	for _, r := range f.requests {
		if r[key] == value {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeAPI) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

func (f *fakeAPI) failPath(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPaths[path] = true
}

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	API     *fakeAPI
	Outbox  outboxStore.Store
}

// newTestApp wires the app against a fake marketplace and a temp SQLite DB, then starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	fake := &fakeAPI{failPaths: make(map[string]bool)}
	upstream := httptest.NewServer(fake.handler())
	t.Cleanup(upstream.Close)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}
	sealer, err := storage.NewSealer("browser-test-session-key")
	if err != nil {
		t.Fatalf("failed to build sealer: %v", err)
	}

	collector := perf.NewCollector(1000)
	client, err := api.NewClient(upstream.URL+"/api", api.Options{Timeout: 5 * time.Second, Collector: collector})
	if err != nil {
		t.Fatalf("failed to build API client: %v", err)
	}
	outbox := outboxStore.NewSQLiteStore(db)

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Change to project root so the relative static path works
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	handler := web.NewMux(&web.Deps{
		API:        client,
		Sessions:   sessionStore.NewSQLiteStore(db, sealer),
		Outbox:     outbox,
		Collector:  collector,
		DB:         db,
		ContactTo:  "hello@academyhub.test",
		SessionTTL: time.Hour,
		Version:    "browser-test",
	}, web.Options{
		StaticDir:      "static",
		CSRFKey:        "browser-test-csrf-key",
		TrustedOrigins: []string{fmt.Sprintf("127.0.0.1:%d", port), fmt.Sprintf("localhost:%d", port)},
		RateLimit:      100,
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		API:     fake,
		Outbox:  outbox,
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})
	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in as the seeded student and waits for their dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(studentEmail); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(studentPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("[data-testid=login-submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/dashboard/student", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to the student dashboard: %v", err)
	}
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
