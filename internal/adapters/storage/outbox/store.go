package outbox

import (
	"context"

	domain "academyhub/internal/domain/outbox"
)

// Store persists outbound side effects until the delivery worker is done with them.
type Store interface {
	// GetByID retrieves an entry.
	// POST: returns sql.ErrNoRows when missing
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save inserts or updates an entry.
	// PRE: e.Validate() == nil
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries still awaiting delivery (pending or retrying), oldest first.
	// PRE: limit > 0
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that exhausted their attempts, most recent first.
	// PRE: limit > 0
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)

	// CountByStatus returns the number of entries per status.
	CountByStatus(ctx context.Context) (map[string]int, error)
}
