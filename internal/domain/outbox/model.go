package outbox

import (
	"encoding/json"
	"errors"
	"time"
)

// Status constants for outbox entry lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Action types the delivery worker knows how to replay.
const (
	ActionTypeContactEmail = "contact_email"
	ActionTypeWelcomeEmail = "welcome_email"
)

// DefaultMaxAttempts is used when an entry is created without an explicit limit.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyActionType = errors.New("action type is required")
	ErrEmptyPayload    = errors.New("payload is required")
	ErrMissingCreated  = errors.New("created_at must be set")
)

// EmailPayload is the JSON body stored for email actions.
type EmailPayload struct {
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Entry is one outbound side effect waiting to be delivered.
type Entry struct {
	ID              string
	ActionType      string
	Payload         string // JSON, replayed verbatim
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	ExternalID      string // provider message id once delivered
	ErrorMessage    string
}

// NewEmailEntry builds a pending entry carrying an email payload.
// PRE: id is unique; payload has at least one recipient
// POST: Returned entry passes Validate
func NewEmailEntry(id, actionType string, payload EmailPayload, now time.Time) (Entry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		ID:          id,
		ActionType:  actionType,
		Payload:     string(raw),
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
	}
	return e, e.Validate()
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid; MaxAttempts defaulted when unset
func (e *Entry) Validate() error {
	if e.ActionType == "" {
		return ErrEmptyActionType
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return ErrMissingCreated
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// EmailPayload decodes the payload of an email action.
// PRE: ActionType is an email action
// INVARIANT: Entry fields are not mutated
func (e Entry) EmailPayload() (EmailPayload, error) {
	var p EmailPayload
	err := json.Unmarshal([]byte(e.Payload), &p)
	return p, err
}

// CanRetry returns true while the entry is unfinished and below its attempt limit.
// INVARIANT: Entry fields are not mutated
func (e Entry) CanRetry() bool {
	switch e.Status {
	case StatusPending, StatusRetrying, StatusFailed:
		return e.Attempts < e.MaxAttempts
	}
	return false
}

// IsTerminal returns true once no further delivery will be attempted.
// INVARIANT: Entry fields are not mutated
func (e Entry) IsTerminal() bool {
	switch e.Status {
	case StatusDone, StatusAbandoned:
		return true
	case StatusFailed:
		return e.Attempts >= e.MaxAttempts
	}
	return false
}

// DueAt returns when the next attempt may run, using exponential backoff
// (base * 2^attempts, capped at max). A never-attempted entry is due immediately.
// INVARIANT: Entry fields are not mutated
func (e Entry) DueAt(base, max time.Duration) time.Time {
	if e.LastAttemptedAt.IsZero() {
		return e.CreatedAt
	}
	delay := base * (1 << e.Attempts)
	if delay > max || delay <= 0 {
		delay = max
	}
	return e.LastAttemptedAt.Add(delay)
}

// MarkAttempt records a delivery attempt at now.
// PRE: CanRetry() is true
// POST: Attempts incremented, status retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// MarkSuccess records a delivered entry.
// POST: Status done, ExternalID set, error cleared
func (e *Entry) MarkSuccess(externalID string) {
	e.Status = StatusDone
	e.ExternalID = externalID
	e.ErrorMessage = ""
}

// MarkFailed records a failed attempt; the entry becomes failed once attempts are exhausted.
// POST: ErrorMessage set
func (e *Entry) MarkFailed(err error) {
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}

// MarkAbandoned stops all further delivery.
// POST: Status abandoned
func (e *Entry) MarkAbandoned() {
	e.Status = StatusAbandoned
}
