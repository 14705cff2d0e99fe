package web

import (
	"context"
	"crypto/sha256"
	"net/http"
	"time"

	"academyhub/internal/adapters/http/middleware"
	"academyhub/internal/adapters/http/perf"
	outboxStore "academyhub/internal/adapters/storage/outbox"
	sessionStore "academyhub/internal/adapters/storage/session"
	"academyhub/internal/application/orchestrators"
	"academyhub/internal/application/projections"
)

// Marketplace is everything the pages need from the remote marketplace API.
// *api.Client satisfies it.
type Marketplace interface {
	projections.AcademyReader
	projections.CourseReader
	projections.GroupReader
	projections.EnrollmentReader
	projections.PostReader
	orchestrators.AuthAPI
	orchestrators.EnrollmentAPI
}

// Pinger reports whether the local database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds everything the handlers use.
type Deps struct {
	API        Marketplace
	Sessions   sessionStore.Store
	Outbox     outboxStore.Store
	Processor  *orchestrators.OutboxProcessor // admin retry; nil disables it
	Collector  *perf.Collector
	DB         Pinger
	ContactTo  string
	SessionTTL time.Duration
	Version    string
}

// Options configures the middleware chain.
type Options struct {
	StaticDir      string
	CSRFKey        string // any length; hashed to the 32 bytes gorilla/csrf needs
	Production     bool
	TrustedOrigins []string // host[:port] accepted for CSRF Origin checks
	AllowedOrigins []string // CORS origins for the JSON read endpoints
	RateLimit      int      // POSTs per IP per minute
	SlowRequestMs  float64
	PageTimeout    time.Duration // 0 disables the per-request deadline
}

// Global dependencies (set by NewMux)
var app *Deps

// NewMux wires HTTP handlers for the app.
func NewMux(d *Deps, opts Options) http.Handler {
	app = d
	if app.SessionTTL <= 0 {
		app.SessionTTL = 24 * time.Hour
	}
	middleware.SecureCookies = opts.Production

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	registerRoutes(mux)

	csrfKey := sha256.Sum256([]byte(opts.CSRFKey))

	rate := opts.RateLimit
	if rate <= 0 {
		rate = 10
	}
	limiter := middleware.NewRateLimiter(rate, time.Minute)

	// Apply middleware: Timing -> RateLimit -> CORS -> Auth -> CSRF -> SecurityHeaders -> Deadline -> Mux
	return middleware.Chain(mux,
		middleware.Deadline(opts.PageTimeout),
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey[:], middleware.CSRFOptions{
			Secure:         opts.Production,
			TrustedOrigins: opts.TrustedOrigins,
		}),
		middleware.Auth(d.Sessions),
		middleware.CORS(opts.AllowedOrigins),
		middleware.RateLimit(limiter),
		middleware.Timing(d.Collector, opts.SlowRequestMs),
	)
}
