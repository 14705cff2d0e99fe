package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address, e.g. "AcademyHub <noreply@academyhub.io>"; empty uses the sender default
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender delivers a single email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// NewSender picks the provider for the configured keys.
// Resend wins when both keys are set; with neither, mail is only logged.
// POST: never returns nil
func NewSender(resendKey, sendgridKey, from string) Sender {
	switch {
	case resendKey != "":
		return NewResendSender(resendKey, from)
	case sendgridKey != "":
		return NewSendGridSender(sendgridKey, from)
	}
	return NewNoopSender()
}
