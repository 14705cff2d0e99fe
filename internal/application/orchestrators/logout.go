package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
)

// SessionStoreForLogout defines the store interface needed by Logout.
type SessionStoreForLogout interface {
	Delete(ctx context.Context, id string) error
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	SessionStore SessionStoreForLogout
}

// ExecuteLogout ends a session. An empty id is a no-op.
// POST: The session can no longer be loaded
func ExecuteLogout(ctx context.Context, sessionID string, deps LogoutDeps) error {
	if sessionID == "" {
		return nil
	}
	if err := deps.SessionStore.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	slog.Info("auth_event", "event", "logout", "session_id", sessionID)
	return nil
}
