package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"academyhub/internal/domain/contact"
	"academyhub/internal/domain/outbox"
)

// ErrContactUnconfigured is returned when no staff inbox is configured.
var ErrContactUnconfigured = errors.New("the contact form is not available right now")

// SubmitContactInput carries input for the contact orchestrator.
type SubmitContactInput struct {
	Name    string `form:"name" validate:"required,notblank,max=120"`
	Email   string `form:"email" validate:"required,email"`
	Subject string `form:"subject" validate:"max=200"`
	Message string `form:"message" validate:"required,notblank,max=4000"`
}

// SubmitContactDeps holds dependencies for SubmitContact.
type SubmitContactDeps struct {
	OutboxStore OutboxStoreForOrchestrator
	ContactTo   string
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteSubmitContact queues a visitor's message for email delivery to staff.
// PRE: none; input is validated before anything is stored
// POST: One contact_email outbox entry exists, replying to the visitor
func ExecuteSubmitContact(ctx context.Context, input SubmitContactInput, deps SubmitContactDeps) (contact.Message, error) {
	if err := formValidator.Struct(input); err != nil {
		return contact.Message{}, err
	}
	if deps.ContactTo == "" {
		return contact.Message{}, ErrContactUnconfigured
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	genID := uuid.NewString
	if deps.GenerateID != nil {
		genID = deps.GenerateID
	}

	msg := contact.Message{
		ID:        genID(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Subject:   strings.TrimSpace(input.Subject),
		Body:      strings.TrimSpace(input.Message),
		CreatedAt: now(),
	}
	if err := msg.Validate(); err != nil {
		return contact.Message{}, err
	}

	entry, err := outbox.NewEmailEntry(msg.ID, outbox.ActionTypeContactEmail, outbox.EmailPayload{
		To:      []string{deps.ContactTo},
		ReplyTo: msg.Email,
		Subject: msg.EmailSubject(),
		HTML:    contactHTML(msg),
	}, msg.CreatedAt)
	if err != nil {
		return contact.Message{}, fmt.Errorf("build contact email: %w", err)
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		return contact.Message{}, fmt.Errorf("queue contact email: %w", err)
	}

	slog.Info("contact_event", "event", "message_queued", "message_id", msg.ID, "from", msg.Email)
	return msg, nil
}

func contactHTML(m contact.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p><strong>From:</strong> %s &lt;%s&gt;</p>", html.EscapeString(m.Name), html.EscapeString(m.Email))
	if m.Subject != "" {
		fmt.Fprintf(&b, "<p><strong>Subject:</strong> %s</p>", html.EscapeString(m.Subject))
	}
	for _, para := range strings.Split(m.Body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
	}
	return b.String()
}
