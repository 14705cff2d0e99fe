package api

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies where a call failed.
type Kind string

const (
	// KindTransport: the request never produced an HTTP response (DNS, refused, timeout, cancelled).
	KindTransport Kind = "transport"
	// KindHTTP: the API answered with a non-2xx status.
	KindHTTP Kind = "http"
	// KindApp: the API answered 2xx with the {"Response":"False","Message":...} convention.
	KindApp Kind = "app"
	// KindDecode: the API answered 2xx with a body that is not the expected JSON shape.
	KindDecode Kind = "decode"
)

// Sentinel errors matched with errors.Is against *Error.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is returned by every Client method that fails.
// Error() is the message to show the visitor verbatim.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Method  string
	Path    string
	Err     error
}

// Error returns the visitor-facing message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrNotFound and ErrUnauthorized by status.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// classify turns a decoded response into an error, or nil when the call succeeded.
//
// Precedence: a non-2xx status always wins and yields KindHTTP, using the body's
// message when one is present. Only a 2xx response is inspected for the
// {"Response":"False"} convention, which yields KindApp.
func classify(status int, payload any) *Error {
	if status < 200 || status > 299 {
		msg := bodyMessage(payload)
		if msg == "" {
			msg = http.StatusText(status)
			if msg == "" {
				msg = "unexpected response from server"
			}
		}
		return &Error{Kind: KindHTTP, Status: status, Message: msg}
	}
	if obj, ok := payload.(map[string]any); ok && isSoftFailure(obj) {
		msg := bodyMessage(obj)
		if msg == "" {
			msg = "request failed"
		}
		return &Error{Kind: KindApp, Status: status, Message: msg}
	}
	return nil
}

func isSoftFailure(obj map[string]any) bool {
	for _, key := range []string{"Response", "response"} {
		switch v := obj[key].(type) {
		case string:
			if strings.EqualFold(v, "false") {
				return true
			}
		case bool:
			if !v {
				return true
			}
		}
	}
	return false
}

func bodyMessage(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"Message", "message", "error", "Error"} {
		switch v := obj[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case []any:
			// validation libraries on the API side return message arrays
			var parts []string
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	return ""
}
