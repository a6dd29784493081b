// Package feedback talks to the AI critique service: it sends a flattened
// drawing plus a short description of what the artist wants feedback on and
// returns the critique text.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Context describes what the artist is working on.
type Context struct {
	Style   string `json:"style"`
	Subject string `json:"subject"`
	Focus   string `json:"focus"`
}

// IsZero reports whether no field is set.
func (c Context) IsZero() bool {
	return c.Style == "" && c.Subject == "" && c.Focus == ""
}

// Prompt renders the context as instructions for a language model.
func (c Context) Prompt() string {
	var b strings.Builder
	b.WriteString("Give concise, constructive feedback on this drawing.")
	if c.Subject != "" {
		fmt.Fprintf(&b, " The subject is %s.", c.Subject)
	}
	if c.Style != "" {
		fmt.Fprintf(&b, " The intended style is %s.", c.Style)
	}
	if c.Focus != "" {
		fmt.Fprintf(&b, " Focus on %s.", c.Focus)
	}
	return b.String()
}

// Critic produces written feedback for a PNG-encoded image.
type Critic interface {
	Critique(ctx context.Context, png []byte, c Context) (string, error)
}

// Kind classifies critique failures.
type Kind int

const (
	KindMissingCredentials Kind = iota + 1
	KindMalformedResponse
	KindHTTPStatus
	KindTimeout
	KindImageEncoding
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredentials:
		return "missing credentials"
	case KindMalformedResponse:
		return "malformed response"
	case KindHTTPStatus:
		return "http status"
	case KindTimeout:
		return "timeout"
	case KindImageEncoding:
		return "image encoding"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is returned by every Critic in this package.
type Error struct {
	Kind Kind
	// Status is the HTTP status code for KindHTTPStatus.
	Status int
	// Message is an optional server-provided explanation.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingCredentials:
		return "feedback: no API credentials configured"
	case KindMalformedResponse:
		if e.Err != nil {
			return fmt.Sprintf("feedback: unexpected response from server: %v", e.Err)
		}
		return "feedback: unexpected response from server"
	case KindHTTPStatus:
		msg := fmt.Sprintf("feedback: server returned %d %s", e.Status, http.StatusText(e.Status))
		if e.Message != "" {
			msg += ": " + e.Message
		}
		return msg
	case KindTimeout:
		return "feedback: request timed out"
	case KindImageEncoding:
		return fmt.Sprintf("feedback: could not encode drawing: %v", e.Err)
	default:
		return fmt.Sprintf("feedback: request failed: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether retrying the request may succeed.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindTransport:
		return true
	case KindHTTPStatus:
		return e.Status == http.StatusRequestTimeout ||
			e.Status == http.StatusTooManyRequests ||
			e.Status >= 500
	}
	return false
}

// IsKind reports whether err is a feedback *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}

// classify maps a transport-level failure to an *Error. Context cancellation
// is returned unchanged so callers can test for context.Canceled.
func classify(ctx context.Context, err error) error {
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindTransport, Err: err}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
