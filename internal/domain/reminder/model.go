package reminder

import (
	"time"

	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
)

// Record tracks the lifecycle of one reminder occasion, an (invoice, kind) pair.
// Records are never deleted; failed and cancelled ones remain as history.
type Record struct {
	ID             string               `db:"id" json:"id"`
	InvoiceID      string               `db:"invoice_id" json:"invoice_id"`
	AccountID      string               `db:"account_id" json:"account_id"`
	Kind           types.ReminderKind   `db:"kind" json:"kind"`
	ReminderStatus types.ReminderStatus `db:"reminder_status" json:"reminder_status"`
	// OverdueDays is the days overdue when the record last changed state
	OverdueDays int `db:"overdue_days" json:"overdue_days"`
	// ExternalMessageID is set once the notification provider accepted the message
	ExternalMessageID *string                      `db:"external_message_id" json:"external_message_id,omitempty"`
	FailureReason     *types.ReminderFailureReason `db:"failure_reason" json:"failure_reason,omitempty"`
	FailureDetail     *string                      `db:"failure_detail" json:"failure_detail,omitempty"`
	Attempts          int                          `db:"attempts" json:"attempts"`
	Manual            bool                         `db:"manual" json:"manual"`
	SentAt            *time.Time                   `db:"sent_at" json:"sent_at,omitempty"`
	types.BaseModel
}

// Delivered reports whether a message for this occasion reached the provider.
// A record cancelled by the post send quota veto was still delivered.
func (r *Record) Delivered() bool {
	return r.ReminderStatus == types.ReminderStatusSent || r.ExternalMessageID != nil
}

// Transition moves the record to next, enforcing the reminder state machine
func (r *Record) Transition(next types.ReminderStatus) error {
	if r.ReminderStatus == next && next == types.ReminderStatusScheduled {
		return nil
	}
	if !r.ReminderStatus.CanTransitionTo(next) {
		return ierr.NewError("invalid reminder status transition").
			WithHintf("Reminder cannot move from %s to %s", r.ReminderStatus, next).
			WithReportableDetails(map[string]any{
				"record_id": r.ID,
				"from":      r.ReminderStatus,
				"to":        next,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	r.ReminderStatus = next
	return nil
}

// MarkSent records a successful delivery and clears any earlier failure
func (r *Record) MarkSent(messageID string, at time.Time) error {
	if err := r.Transition(types.ReminderStatusSent); err != nil {
		return err
	}
	r.ExternalMessageID = lo.ToPtr(messageID)
	r.SentAt = lo.ToPtr(at)
	r.FailureReason = nil
	r.FailureDetail = nil
	return nil
}

// MarkFailed records a failed attempt with its category
func (r *Record) MarkFailed(reason types.ReminderFailureReason, detail string) error {
	if err := r.Transition(types.ReminderStatusFailed); err != nil {
		return err
	}
	r.FailureReason = lo.ToPtr(reason)
	r.FailureDetail = lo.EmptyableToPtr(detail)
	return nil
}

// MarkCancelled cancels the record. The message id of a vetoed send is kept.
func (r *Record) MarkCancelled(reason types.ReminderFailureReason, detail string) error {
	if err := r.Transition(types.ReminderStatusCancelled); err != nil {
		return err
	}
	r.FailureReason = lo.ToPtr(reason)
	r.FailureDetail = lo.EmptyableToPtr(detail)
	return nil
}

// MarkVetoed records a delivered message that was not counted because the quota was
// exhausted by a concurrent dispatch. The record is cancelled but keeps the message id.
func (r *Record) MarkVetoed(messageID string, at time.Time, detail string) error {
	if err := r.MarkCancelled(types.ReminderCancelRaceVeto, detail); err != nil {
		return err
	}
	r.ExternalMessageID = lo.ToPtr(messageID)
	r.SentAt = lo.ToPtr(at)
	return nil
}

// RecordLateDelivery stamps a message the provider accepted after the record had been
// cancelled, for example when the invoice was settled while the send was in flight.
// The cancel reason is kept; the message id makes the occasion count as delivered.
func (r *Record) RecordLateDelivery(messageID string, at time.Time) error {
	if r.ReminderStatus != types.ReminderStatusCancelled {
		return ierr.NewError("late delivery on a record that is not cancelled").
			WithHintf("Reminder in status %s cannot record a late delivery", r.ReminderStatus).
			WithReportableDetails(map[string]any{
				"record_id": r.ID,
				"status":    r.ReminderStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	r.ExternalMessageID = lo.ToPtr(messageID)
	r.SentAt = lo.ToPtr(at)
	return nil
}

func (r *Record) Validate() error {
	if r.InvoiceID == "" {
		return ierr.NewError("invoice_id is required").
			WithHint("Reminder must reference an invoice").
			Mark(ierr.ErrValidation)
	}
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	return r.ReminderStatus.Validate()
}
