package contact

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength    = 120
	MaxMessageLength = 4000
)

// Domain errors
var (
	ErrEmptyName      = errors.New("name is required")
	ErrInvalidEmail   = errors.New("email must contain '@'")
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = errors.New("message cannot exceed 4000 characters")
	ErrNameTooLong    = errors.New("name cannot exceed 120 characters")
)

// Message is a visitor's enquiry from the contact page.
type Message struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// Validate checks if the Message has valid data.
// PRE: Message struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(m.Body) == "" {
		return ErrEmptyMessage
	}
	if len(m.Body) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// EmailSubject returns the subject line used when forwarding the message to staff.
// INVARIANT: Message fields are not mutated
func (m Message) EmailSubject() string {
	if s := strings.TrimSpace(m.Subject); s != "" {
		return "[Contact] " + s
	}
	return "[Contact] Message from " + m.Name
}
