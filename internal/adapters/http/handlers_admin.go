package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"academyhub/internal/adapters/http/perf"
	"academyhub/internal/application/orchestrators"
	"academyhub/internal/domain/outbox"
)

type perfPage struct {
	Window       string
	Snapshot     perf.Snapshot
	OutboxCounts map[string]int
	Failed       []outbox.Entry
	Error        string
}

// perfWindows are the selectable dashboard windows.
var perfWindows = map[string]time.Duration{
	"15m": 15 * time.Minute,
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
}

// handleAdminPerf handles GET /admin/perf?window=15m|1h|24h: request, upstream and query timings
// plus the outbox backlog.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	window := r.URL.Query().Get("window")
	d, ok := perfWindows[window]
	if !ok {
		window, d = "1h", time.Hour
	}

	page := perfPage{Window: window}
	if app.Collector != nil {
		page.Snapshot = app.Collector.Snapshot(time.Now().Add(-d), 10)
	}
	if app.Outbox != nil {
		counts, err := app.Outbox.CountByStatus(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		failed, err := app.Outbox.ListFailed(r.Context(), 20)
		if err != nil {
			internalError(w, err)
			return
		}
		page.OutboxCounts, page.Failed = counts, failed
	}
	page.Error = r.URL.Query().Get("error")

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, page)
		return
	}
	renderTemplate(w, r, "perf.html", page)
}

// handleAdminOutboxList handles GET /admin/outbox?status=failed|pending&limit=N
func handleAdminOutboxList(w http.ResponseWriter, r *http.Request) {
	if app.Outbox == nil {
		writeJSON(w, http.StatusOK, []outbox.Entry{})
		return
	}
	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}

	var entries []outbox.Entry
	var err error
	if r.URL.Query().Get("status") == outbox.StatusPending {
		entries, err = app.Outbox.ListPending(r.Context(), limit)
	} else {
		entries, err = app.Outbox.ListFailed(r.Context(), limit)
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if entries == nil {
		entries = []outbox.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleAdminOutboxAction handles POST /admin/outbox/{id}/retry and POST /admin/outbox/{id}/abandon.
// Form posts from the perf page are redirected back to it.
func handleAdminOutboxAction(w http.ResponseWriter, r *http.Request) {
	if app.Processor == nil {
		http.Error(w, "outbox delivery is not running", http.StatusServiceUnavailable)
		return
	}
	id := r.PathValue("id")

	var err error
	var status string
	switch r.PathValue("action") {
	case "retry":
		err = app.Processor.ProcessSingle(r.Context(), id)
		status = "retry triggered"
	case "abandon":
		err = app.Processor.AbandonEntry(r.Context(), id)
		status = "abandoned"
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	if !isJSONBody(r) && isHTMLRequest(r) {
		target := "/admin/perf"
		if err != nil {
			target += "?error=" + url.QueryEscape(err.Error())
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, orchestrators.ErrTerminalEntry) {
			code = http.StatusConflict
		}
		writeJSON(w, code, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}
