// Package notification delivers reminder messages to customers.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/resend/resend-go/v2"
)

// Message is one outgoing notification
type Message struct {
	To      string
	From    string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string

	// IdempotencyKey is forwarded to providers that deduplicate requests
	IdempotencyKey string
}

// Sender is the notification collaborator used by the dispatcher.
// Send returns the provider message id, or an error carrying a category (see CategoryOf).
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SendError is a delivery failure classified into the reminder failure taxonomy
type SendError struct {
	Category types.ReminderFailureReason
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// NewSendError wraps err as a transport error of the given category
func NewSendError(category types.ReminderFailureReason, err error) error {
	return ierr.WithError(&SendError{Category: category, Err: err}).
		WithHintf("Notification could not be delivered (%s)", category).
		WithReportableDetails(map[string]any{
			"category": category,
		}).
		Mark(ierr.ErrTransport)
}

// CategoryOf returns the failure category of a send error. Errors that were not
// produced by a Sender are treated as transport errors.
func CategoryOf(err error) types.ReminderFailureReason {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Category
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.ReminderFailureTimeout
	}
	return types.ReminderFailureTransport
}

// categorize maps a resend client error to a failure category
func categorize(err error) types.ReminderFailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.ReminderFailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return types.ReminderFailureTimeout
	}

	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) || errors.Is(err, resend.ErrRateLimit) {
		return types.ReminderFailureRateLimited
	}

	msg := strings.ToLower(err.Error())
	if !strings.HasPrefix(msg, "[error]") {
		return types.ReminderFailureTransport
	}

	switch {
	case strings.Contains(msg, "domain"),
		strings.Contains(msg, "verify"),
		strings.Contains(msg, "testing emails"):
		return types.ReminderFailureDomainRestricted
	case strings.Contains(msg, "`to`"),
		strings.Contains(msg, "recipient"),
		strings.Contains(msg, "invalid email"):
		return types.ReminderFailureInvalidRecipient
	default:
		return types.ReminderFailureProviderRejected
	}
}
