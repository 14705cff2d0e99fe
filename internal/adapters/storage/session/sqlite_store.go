package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"academyhub/internal/adapters/storage"
	domain "academyhub/internal/domain/session"
)

// dateLayout is fixed width in UTC so stored timestamps sort lexically in time order.
const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store on SQLite with the access token sealed at rest.
type SQLiteStore struct {
	db     storage.SQLDB
	sealer *storage.Sealer
	now    func() time.Time
}

// NewSQLiteStore creates a session store.
// PRE: db has been migrated; sealer is non-nil
func NewSQLiteStore(db storage.SQLDB, sealer *storage.Sealer) *SQLiteStore {
	return &SQLiteStore{db: db, sealer: sealer, now: time.Now}
}

// Create persists a new session.
func (s *SQLiteStore) Create(ctx context.Context, sess domain.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	sealed, err := s.sealer.Seal([]byte(sess.AccessToken))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (id, sealed_token, user_id, email, is_super_admin, roles, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sealed, sess.UserID, sess.Email, boolToInt(sess.IsSuperAdmin),
		strings.Join(sess.RoleList, ","),
		sess.CreatedAt.UTC().Format(dateLayout), sess.ExpiresAt.UTC().Format(dateLayout))
	return err
}

// Get loads a live session.
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Session, error) {
	var (
		sess                 domain.Session
		sealed               []byte
		superAdmin           int
		roles                string
		createdAt, expiresAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, sealed_token, user_id, email, is_super_admin, roles, created_at, expires_at
		 FROM session WHERE id = ?`, id).
		Scan(&sess.ID, &sealed, &sess.UserID, &sess.Email, &superAdmin, &roles, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}

	sess.IsSuperAdmin = superAdmin != 0
	if roles != "" {
		sess.RoleList = strings.Split(roles, ",")
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	sess.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil {
		slog.Warn("session_expiry_unreadable", "session_id", sess.ID, "error", err)
		return domain.Session{}, domain.ErrExpired
	}
	if sess.IsExpired(s.now()) {
		return domain.Session{}, domain.ErrExpired
	}

	token, err := s.sealer.Open(sealed)
	if err != nil {
		// a rotated session key invalidates every stored session
		return domain.Session{}, domain.ErrNotFound
	}
	sess.AccessToken = string(token)
	return sess, nil
}

// Delete removes a session.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = ?`, id)
	return err
}

// DeleteExpired removes sessions whose expiry is before now.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at < ?`, now.UTC().Format(dateLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
