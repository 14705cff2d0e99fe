// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/rollbar/rollbar-go"
)

// Options selects the handler built by Setup.
type Options struct {
	Env          string
	Level        string
	Version      string
	RollbarToken string
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Setup builds the logger, installs it as slog's default and returns it.
// Production logs JSON; everything else logs text. With a Rollbar token,
// ERROR records are also reported to Rollbar.
// POST: slog.Default() returns the new logger
func Setup(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var h slog.Handler
	if opts.Env == "production" {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}

	if opts.RollbarToken != "" {
		rollbar.SetToken(opts.RollbarToken)
		rollbar.SetEnvironment(opts.Env)
		rollbar.SetCodeVersion(opts.Version)
		rollbar.SetServerRoot("academyhub")
		h = NewRollbarHandler(h, ReportToRollbar)
	}

	logger := slog.New(h).With("version", opts.Version)
	slog.SetDefault(logger)
	return logger
}

// Flush waits for queued Rollbar reports; call before exit.
func Flush() {
	rollbar.Close()
}
