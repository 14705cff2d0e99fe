package email

import (
	"context"
	"fmt"
	"log/slog"
	netmail "net/mail"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender sends emails via the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   string
}

// NewSendGridSender creates a sender with the given API key and default from address.
func NewSendGridSender(apiKey, from string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

// Send sends a single email via SendGrid.
// PRE: req has at least one recipient and a subject
// POST: a 2xx reply means SendGrid accepted the message
func (s *SendGridSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	msg, err := buildSendGridMail(fromOrDefault(req.From, s.from), req)
	if err != nil {
		return SendResult{}, err
	}

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		slog.Error("sendgrid_send_failed", "error", err, "to", req.To)
		return SendResult{}, fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("sendgrid_send_rejected", "status", resp.StatusCode, "body", resp.Body, "to", req.To)
		return SendResult{}, fmt.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
	}

	id := ""
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		id = ids[0]
	}
	slog.Info("sendgrid_sent", "message_id", id, "to", req.To)
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}

// buildSendGridMail converts a SendRequest into a SendGrid v3 payload.
func buildSendGridMail(from string, req SendRequest) (*mail.SGMailV3, error) {
	sender, err := netmail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", from, err)
	}
	if len(req.To) == 0 {
		return nil, fmt.Errorf("no recipients")
	}

	p := mail.NewPersonalization()
	for _, to := range req.To {
		p.AddTos(mail.NewEmail("", to))
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(sender.Name, sender.Address))
	m.Subject = req.Subject
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", req.HTML))
	if req.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", req.ReplyTo))
	}
	return m, nil
}
