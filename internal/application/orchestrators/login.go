package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"academyhub/internal/adapters/api"
	"academyhub/internal/adapters/token"
	"academyhub/internal/domain/account"
	"academyhub/internal/domain/session"
	"academyhub/internal/validation"
)

var formValidator = validation.New()

// AuthAPI is the slice of the marketplace client used to authenticate.
type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (api.LoginResult, error)
	Register(ctx context.Context, reg api.Registration) (api.LoginResult, error)
	Me(ctx context.Context) (account.User, error)
}

// SessionStoreForLogin defines the store interface needed to open a session.
type SessionStoreForLogin interface {
	Create(ctx context.Context, s session.Session) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	API          AuthAPI
	SessionStore SessionStoreForLogin
	TTL          time.Duration
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteLogin exchanges credentials for an access token and opens a session.
// PRE: none; input is validated before any network call
// POST: On success a session holding the token is persisted and returned
// POST: On failure no session exists and the error's message is fit for display
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (session.Session, error) {
	if err := formValidator.Struct(input); err != nil {
		return session.Session{}, err
	}

	res, err := deps.API.Login(ctx, api.Credentials{Email: input.Email, Password: input.Password})
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", err.Error())
		return session.Session{}, err
	}

	s, err := openSession(ctx, input.Email, res, deps)
	if err != nil {
		return session.Session{}, err
	}
	slog.Info("auth_event", "event", "login_success", "email", input.Email, "user_id", s.UserID, "roles", s.Roles())
	return s, nil
}

// openSession builds and persists a session for a freshly issued token.
// User id and roles come from the token's claims; /user/me fills what the claims lack.
func openSession(ctx context.Context, email string, res api.LoginResult, deps LoginDeps) (session.Session, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	genID := uuid.NewString
	if deps.GenerateID != nil {
		genID = deps.GenerateID
	}
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}

	created := now()
	s := session.Session{
		ID:           genID(),
		AccessToken:  res.AccessToken,
		Email:        email,
		IsSuperAdmin: res.IsSuperAdmin,
		CreatedAt:    created,
		ExpiresAt:    created.Add(ttl),
	}

	claims, err := token.Parse(res.AccessToken)
	if err != nil {
		slog.Warn("auth_token_claims_unreadable", "email", email, "error", err.Error())
	} else {
		s.UserID = claims.UserID
		s.RoleList = claims.Roles
		if claims.Email != "" {
			s.Email = claims.Email
		}
		if !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(s.ExpiresAt) {
			s.ExpiresAt = claims.ExpiresAt
		}
	}

	if s.UserID == "" || len(s.RoleList) == 0 {
		me, err := deps.API.Me(api.WithToken(ctx, res.AccessToken))
		if err != nil {
			slog.Warn("auth_profile_lookup_failed", "email", email, "error", err.Error())
		} else {
			if s.UserID == "" {
				s.UserID = me.ID
			}
			if len(s.RoleList) == 0 && me.Role != "" {
				s.RoleList = []string{me.Role}
			}
		}
	}

	if err := deps.SessionStore.Create(ctx, s); err != nil {
		return session.Session{}, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}
