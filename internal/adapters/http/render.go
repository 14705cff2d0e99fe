package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"academyhub/internal/adapters/api"
	"academyhub/internal/adapters/http/middleware"
	"academyhub/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var errPageNotFound = errors.New("the page you are looking for does not exist")

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err.Error())
	}
}

// errText turns an error into the message shown on the page, or "" for nil.
// Validation failures show their first message in the order of fields.
func errText(err error, fields ...string) string {
	if err == nil {
		return ""
	}
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return fe.First(fields...)
	}
	return err.Error()
}

// upstreamStatus maps a marketplace failure to the status this service answers with.
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrUnauthorized):
		return http.StatusUnauthorized
	case api.IsKind(err, api.KindTransport):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// renderError answers a failed page load as HTML or JSON.
func renderError(w http.ResponseWriter, r *http.Request, status int, title string, err error) {
	msg := errText(err)
	if status >= 500 && err != nil {
		slog.Warn("page_load_failed", "path", r.URL.Path, "status", status, "error", msg)
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	renderTemplateStatus(w, r, status, "error.html", map[string]any{
		"Title": title,
		"Error": msg,
	})
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"isLoggedIn":     func() bool { return loggedIn },
		"isAdmin":        func() bool { return loggedIn && sess.IsAdmin() },
		"currentEmail":   func() string { return sess.Email },
		"dashboardRoute": func() string { return sess.DashboardRoute() },
		"csrfToken":      func() string { return csrf.Token(r) },
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"currentPath":    func() string { return r.URL.Path },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 Jan 2006")
		},
		"price": func(p float64) string {
			if p <= 0 {
				return "Free"
			}
			if p == math.Trunc(p) {
				return fmt.Sprintf("€%.0f", p)
			}
			return fmt.Sprintf("€%.2f", p)
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
