package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"academyhub/internal/adapters/api"
	emailPkg "academyhub/internal/adapters/email"
	web "academyhub/internal/adapters/http"
	"academyhub/internal/adapters/http/perf"
	"academyhub/internal/adapters/storage"
	outboxStorePkg "academyhub/internal/adapters/storage/outbox"
	sessionStorePkg "academyhub/internal/adapters/storage/session"
	"academyhub/internal/application/orchestrators"
	"academyhub/internal/config"
	"academyhub/internal/domain/outbox"
	"academyhub/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", "error", err)
		logging.Flush()
		os.Exit(1)
	}
	logging.Flush()
}

func run() error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	logging.Setup(os.Stdout, logging.Options{
		Env:          cfg.Env,
		Level:        cfg.LogLevel,
		Version:      version,
		RollbarToken: cfg.RollbarToken,
	})

	// WAL mode, busy timeout and foreign keys for the local session/outbox database
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.Ping(); err != nil {
		return err
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		return err
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)

	sealer, err := storage.NewSealer(cfg.SessionKey)
	if err != nil {
		return err
	}
	sessions := sessionStorePkg.NewSQLiteStore(timedDB, sealer)
	outboxStore := outboxStorePkg.NewSQLiteStore(timedDB)

	client, err := api.NewClient(cfg.APIURL, api.Options{
		Timeout:   cfg.APITimeout,
		SlowMs:    float64(cfg.SlowUpstreamMs),
		Collector: collector,
	})
	if err != nil {
		return err
	}

	sender := emailPkg.NewSender(cfg.ResendKey, cfg.SendGridKey, cfg.EmailFrom)
	if _, noop := sender.(*emailPkg.NoopSender); noop && cfg.IsProduction() {
		slog.Warn("email_disabled", "reason", "no provider key configured")
	}
	executor := &orchestrators.EmailExecutor{Sender: sender}
	processor := orchestrators.NewOutboxProcessor(outboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeContactEmail: executor,
		outbox.ActionTypeWelcomeEmail: executor,
	})
	stopCh := make(chan struct{})
	orchestrators.StartBackgroundWorker(processor, sessions, time.Minute, stopCh)
	defer close(stopCh)

	handler := web.NewMux(&web.Deps{
		API:        client,
		Sessions:   sessions,
		Outbox:     outboxStore,
		Processor:  processor,
		Collector:  collector,
		DB:         timedDB,
		ContactTo:  cfg.ContactTo,
		SessionTTL: cfg.SessionTTL,
		Version:    version,
	}, web.Options{
		StaticDir:      "static",
		CSRFKey:        cfg.CSRFKey,
		Production:     cfg.IsProduction(),
		TrustedOrigins: cfg.AllowedOrigins,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		PageTimeout:    cfg.PageTimeout,
		SlowRequestMs:  float64(cfg.SlowRequestMs),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.PageTimeout + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "addr", cfg.Addr, "env", cfg.Env, "api", cfg.APIURL, "schema", storage.LatestSchemaVersion())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
