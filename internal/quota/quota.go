// Package quota decides whether an account may send another reminder.
package quota

import (
	"context"
	"time"
)

// LimitType names the limit that denied a send
type LimitType string

const (
	LimitTypePerInvoice LimitType = "per_invoice"
	LimitTypePerPeriod  LimitType = "per_period"
	LimitTypeAccount    LimitType = "account"
)

// Decision is the outcome of a quota lookup
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason,omitempty"`
	LimitType LimitType `json:"limit_type,omitempty"`
}

// Allow is the decision for an unrestricted send
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny builds a denial for limit
func Deny(limit LimitType, reason string) Decision {
	return Decision{Allowed: false, Reason: reason, LimitType: limit}
}

// Checker answers whether a reminder may be sent. invoiceID may be empty for
// account-level checks.
type Checker interface {
	CanSendReminder(ctx context.Context, accountID, invoiceID string) (Decision, error)
}

// Recorder counts a reminder against the account's period allowance
type Recorder interface {
	RecordReminderSent(ctx context.Context, accountID string, at time.Time) error
}

// UsageCounter tracks how many reminders an account sent in a period
type UsageCounter interface {
	Usage(ctx context.Context, accountID string, at time.Time) (int64, error)
	Increment(ctx context.Context, accountID string, at time.Time) (int64, error)
}
