package session

import (
	"context"
	"time"

	domain "academyhub/internal/domain/session"
)

// Store persists login sessions. The access token never leaves the store unsealed
// except through Get.
type Store interface {
	// Create persists a new session.
	// PRE: s.Validate() == nil
	Create(ctx context.Context, s domain.Session) error

	// Get loads a live session.
	// POST: returns domain.ErrNotFound for unknown ids and domain.ErrExpired once ExpiresAt has passed
	Get(ctx context.Context, id string) (domain.Session, error)

	// Delete removes a session; deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session that expired before now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
