package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"academyhub/internal/adapters/api"
	"academyhub/internal/domain/outbox"
	"academyhub/internal/domain/session"
)

// OutboxStoreForOrchestrator defines the store interface needed to queue side effects.
type OutboxStoreForOrchestrator interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	FirstName string `form:"firstName" validate:"required,notblank,max=80"`
	LastName  string `form:"lastName" validate:"required,notblank,max=80"`
	Email     string `form:"email" validate:"required,email"`
	Password  string `form:"password" validate:"required,min=8"`
}

// SignupResult reports whether the new account was logged straight in.
type SignupResult struct {
	Session  session.Session
	LoggedIn bool
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	LoginDeps
	OutboxStore OutboxStoreForOrchestrator // optional; queues the welcome email
}

// ExecuteSignup registers an account and logs it in when the API hands back a token.
// PRE: none; input is validated before any network call
// POST: LoggedIn is true iff a session was persisted
// POST: A welcome email is queued when OutboxStore is set; queueing failures are logged only
func ExecuteSignup(ctx context.Context, input SignupInput, deps SignupDeps) (SignupResult, error) {
	if err := formValidator.Struct(input); err != nil {
		return SignupResult{}, err
	}

	res, err := deps.API.Register(ctx, api.Registration{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		slog.Info("auth_event", "event", "signup_failed", "email", input.Email, "reason", err.Error())
		return SignupResult{}, err
	}
	slog.Info("auth_event", "event", "signup_success", "email", input.Email, "token_issued", res.AccessToken != "")

	queueWelcomeEmail(ctx, input, deps)

	if res.AccessToken == "" {
		return SignupResult{}, nil
	}
	s, err := openSession(ctx, input.Email, res, deps.LoginDeps)
	if err != nil {
		return SignupResult{}, err
	}
	return SignupResult{Session: s, LoggedIn: true}, nil
}

func queueWelcomeEmail(ctx context.Context, input SignupInput, deps SignupDeps) {
	if deps.OutboxStore == nil {
		return
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to AcademyHub. Browse the course catalogue and request a spot in any group that suits you.</p>",
		html.EscapeString(input.FirstName))
	entry, err := outbox.NewEmailEntry(uuid.NewString(), outbox.ActionTypeWelcomeEmail, outbox.EmailPayload{
		To:      []string{input.Email},
		Subject: "Welcome to AcademyHub",
		HTML:    body,
	}, now())
	if err == nil {
		err = deps.OutboxStore.Save(ctx, entry)
	}
	if err != nil {
		slog.Error("welcome_email_queue_failed", "email", input.Email, "error", err.Error())
	}
}
