package types

import (
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/samber/lo"
)

// ReminderKind is the severity tier of a dunning message
type ReminderKind string

const (
	ReminderKindFriendly ReminderKind = "FRIENDLY"
	ReminderKindPolite   ReminderKind = "POLITE"
	ReminderKindFirm     ReminderKind = "FIRM"
	ReminderKindUrgent   ReminderKind = "URGENT"
)

// ReminderKinds lists all kinds in ascending severity
var ReminderKinds = []ReminderKind{
	ReminderKindFriendly,
	ReminderKindPolite,
	ReminderKindFirm,
	ReminderKindUrgent,
}

func (k ReminderKind) String() string {
	return string(k)
}

func (k ReminderKind) Validate() error {
	if !lo.Contains(ReminderKinds, k) {
		return ierr.NewError("invalid reminder kind").
			WithHint("Please provide a valid reminder kind").
			WithReportableDetails(map[string]any{
				"allowed": ReminderKinds,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Severity returns the position of the kind in the escalation ladder, -1 if unknown
func (k ReminderKind) Severity() int {
	return lo.IndexOf(ReminderKinds, k)
}

// ReminderStatus is the lifecycle state of a reminder record
type ReminderStatus string

const (
	ReminderStatusScheduled ReminderStatus = "SCHEDULED"
	ReminderStatusSent      ReminderStatus = "SENT"
	ReminderStatusFailed    ReminderStatus = "FAILED"
	ReminderStatusCancelled ReminderStatus = "CANCELLED"
)

func (s ReminderStatus) String() string {
	return string(s)
}

func (s ReminderStatus) Validate() error {
	allowed := []ReminderStatus{
		ReminderStatusScheduled,
		ReminderStatusSent,
		ReminderStatusFailed,
		ReminderStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid reminder status").
			WithHint("Please provide a valid reminder status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether the record can no longer change
func (s ReminderStatus) IsTerminal() bool {
	return s == ReminderStatusSent || s == ReminderStatusCancelled
}

// reminderTransitions holds the allowed in-place status changes of a record.
// A failed record is reused by the next attempt, so it may fail again.
var reminderTransitions = map[ReminderStatus][]ReminderStatus{
	ReminderStatusScheduled: {ReminderStatusSent, ReminderStatusFailed, ReminderStatusCancelled},
	ReminderStatusFailed:    {ReminderStatusSent, ReminderStatusFailed, ReminderStatusCancelled},
}

// CanTransitionTo reports whether a record in status s may move to next
func (s ReminderStatus) CanTransitionTo(next ReminderStatus) bool {
	return lo.Contains(reminderTransitions[s], next)
}

// ReminderFailureReason categorises why a reminder was not delivered or not counted
type ReminderFailureReason string

const (
	// Send-side failures, eligible for retry on the next pass
	ReminderFailureTransport        ReminderFailureReason = "TRANSPORT_ERROR"
	ReminderFailureTimeout          ReminderFailureReason = "TIMEOUT"
	ReminderFailureRateLimited      ReminderFailureReason = "RATE_LIMITED"
	ReminderFailureDomainRestricted ReminderFailureReason = "DOMAIN_RESTRICTED"
	ReminderFailureInvalidRecipient ReminderFailureReason = "INVALID_RECIPIENT"
	ReminderFailureProviderRejected ReminderFailureReason = "PROVIDER_REJECTED"

	// Policy failures
	ReminderFailureQuotaExceeded ReminderFailureReason = "QUOTA_EXCEEDED"

	// Cancellation reasons
	ReminderCancelInvoicePaid      ReminderFailureReason = "INVOICE_PAID"
	ReminderCancelInvoiceCancelled ReminderFailureReason = "INVOICE_CANCELLED"
	ReminderCancelInvoiceSettled   ReminderFailureReason = "INVOICE_SETTLED"
	ReminderCancelRaceVeto         ReminderFailureReason = "QUOTA_RACE_VETO"
)

func (r ReminderFailureReason) String() string {
	return string(r)
}

// IsRetryable reports whether a failed record should be picked up again by reconciliation
func (r ReminderFailureReason) IsRetryable() bool {
	switch r {
	case ReminderFailureInvalidRecipient, ReminderFailureDomainRestricted:
		return false
	}
	return true
}

// ReminderRecordFilter represents the filter options for listing reminder records
type ReminderRecordFilter struct {
	InvoiceID      string           `json:"invoice_id,omitempty" form:"invoice_id"`
	Kinds          []ReminderKind   `json:"kinds,omitempty" form:"kinds"`
	ReminderStatus []ReminderStatus `json:"reminder_status,omitempty" form:"reminder_status"`
}

// ReminderDispatchResult is the outcome of one dispatch call
type ReminderDispatchResult string

const (
	ReminderDispatchSent      ReminderDispatchResult = "sent"
	ReminderDispatchFailed    ReminderDispatchResult = "failed"
	ReminderDispatchCancelled ReminderDispatchResult = "cancelled"
	ReminderDispatchVetoed    ReminderDispatchResult = "vetoed"
	ReminderDispatchSkipped   ReminderDispatchResult = "skipped"
)

func (r ReminderDispatchResult) String() string {
	return string(r)
}
