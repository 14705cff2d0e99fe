package logging

import (
	"context"
	"log/slog"

	"github.com/rollbar/rollbar-go"
)

// Reporter delivers one error record to an error tracker.
type Reporter func(msg string, err error, extras map[string]any)

// ReportToRollbar sends the record through the global rollbar client.
func ReportToRollbar(msg string, err error, extras map[string]any) {
	if err != nil {
		rollbar.Error(err, extras, msg)
		return
	}
	rollbar.Error(msg, extras)
}

// RollbarHandler forwards ERROR records to a Reporter and passes every record on.
type RollbarHandler struct {
	next   slog.Handler
	report Reporter
	attrs  []slog.Attr
	group  string
}

var _ slog.Handler = (*RollbarHandler)(nil)

// NewRollbarHandler wraps next.
// PRE: next and report are non-nil
func NewRollbarHandler(next slog.Handler, report Reporter) *RollbarHandler {
	return &RollbarHandler{next: next, report: report}
}

// Enabled defers to the wrapped handler.
func (h *RollbarHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle reports ERROR records, then hands the record to the wrapped handler.
func (h *RollbarHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		extras := make(map[string]any, len(h.attrs)+r.NumAttrs())
		var errVal error
		collect := func(a slog.Attr) bool {
			if e, ok := a.Value.Any().(error); ok && errVal == nil {
				errVal = e
				return true
			}
			key := a.Key
			if h.group != "" {
				key = h.group + "." + key
			}
			extras[key] = a.Value.Resolve().Any()
			return true
		}
		for _, a := range h.attrs {
			collect(a)
		}
		r.Attrs(collect)
		h.report(r.Message, errVal, extras)
	}
	return h.next.Handle(ctx, r)
}

// WithAttrs keeps the attributes for reports and passes them to the wrapped handler.
func (h *RollbarHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &RollbarHandler{next: h.next.WithAttrs(attrs), report: h.report, attrs: merged, group: h.group}
}

// WithGroup prefixes later report keys with name.
func (h *RollbarHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &RollbarHandler{next: h.next.WithGroup(name), report: h.report, attrs: h.attrs, group: group}
}
