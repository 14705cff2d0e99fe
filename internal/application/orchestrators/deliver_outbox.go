package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"academyhub/internal/adapters/email"
	outboxStore "academyhub/internal/adapters/storage/outbox"
	domain "academyhub/internal/domain/outbox"
)

// ErrTerminalEntry is returned when a manual retry targets a finished entry.
var ErrTerminalEntry = errors.New("outbox entry is finished and cannot be retried")

// ActionExecutor delivers one kind of outbox action.
type ActionExecutor interface {
	// Execute performs the side effect described by entry.
	// POST: returns the provider's id for the delivered action
	Execute(ctx context.Context, entry domain.Entry) (string, error)
}

// OutboxProcessor replays pending outbox entries through their executors.
type OutboxProcessor struct {
	store     outboxStore.Store
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a processor with 30s..1h exponential backoff.
func NewOutboxProcessor(store outboxStore.Store, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  time.Hour,
		batchSize: 10,
		now:       time.Now,
	}
}

// ProcessPending attempts every due entry in one batch.
// PRE: Context is valid
// POST: Attempted entries are saved with their new status; entries still in backoff are untouched
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (int, error) {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending outbox entries: %w", err)
	}

	attempted := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return attempted, ctx.Err()
		}
		if p.now().Before(entry.DueAt(p.baseDelay, p.maxDelay)) {
			continue
		}
		attempted++
		if err := p.processEntry(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}
	return attempted, nil
}

// processEntry runs one attempt and persists the outcome.
func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) error {
	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkAttempt(p.now())
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}

	entry.MarkAttempt(p.now())
	externalID, err := executor.Execute(ctx, entry)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "max_attempts", entry.MaxAttempts, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return p.store.Save(ctx, entry)
}

// ProcessSingle retries one entry immediately, ignoring its backoff.
// PRE: entryID is non-empty
// POST: Entry attempted once and saved; ErrTerminalEntry when already finished
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminalEntry, entryID)
	}
	if _, ok := p.executors[entry.ActionType]; !ok {
		return fmt.Errorf("no executor registered for action type: %s", entry.ActionType)
	}
	return p.processEntry(ctx, entry)
}

// AbandonEntry stops delivery of an entry.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.MarkAbandoned()
	return p.store.Save(ctx, entry)
}

// --- Email Executor ---

// EmailExecutor sends email actions through the configured provider.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute sends the email stored in entry's payload.
// PRE: entry carries an EmailPayload
// POST: returns the provider message id
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, entry domain.Entry) (string, error) {
	p, err := entry.EmailPayload()
	if err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if len(p.To) == 0 {
		return "", errors.New("email payload has no recipients")
	}
	res, err := e.Sender.Send(ctx, email.SendRequest{
		To:      p.To,
		Subject: p.Subject,
		HTML:    p.HTML,
		ReplyTo: p.ReplyTo,
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// --- Background Worker ---

// SessionSweeper removes expired sessions.
type SessionSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// StartBackgroundWorker periodically delivers pending outbox entries and, when sessions
// is non-nil, sweeps expired sessions.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartBackgroundWorker(processor *OutboxProcessor, sessions SessionSweeper, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if _, err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				}
				if sessions != nil {
					n, err := sessions.DeleteExpired(ctx, time.Now())
					if err != nil {
						slog.Error("session_sweep_failed", "error", err.Error())
					} else if n > 0 {
						slog.Info("session_sweep", "deleted", n)
					}
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
}
