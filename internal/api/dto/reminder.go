package dto

import (
	"time"

	"github.com/flexprice/dunning/internal/domain/reminder"
	"github.com/flexprice/dunning/internal/types"
	"github.com/flexprice/dunning/internal/validator"
)

// SendReminderRequest triggers a manual reminder for an invoice
type SendReminderRequest struct {
	Kind types.ReminderKind `json:"kind" validate:"required"`
}

func (r *SendReminderRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Kind.Validate()
}

// ReminderRecordResponse represents a reminder record in history listings
type ReminderRecordResponse struct {
	*reminder.Record
}

// ListReminderHistoryResponse lists an invoice's reminder records, newest first
type ListReminderHistoryResponse = types.ListResponse[*ReminderRecordResponse]

// DispatchResponse describes what one dispatch call did
type DispatchResponse struct {
	InvoiceID     string                       `json:"invoice_id"`
	Kind          types.ReminderKind           `json:"kind"`
	Result        types.ReminderDispatchResult `json:"result"`
	RecordID      string                       `json:"record_id,omitempty"`
	MessageID     string                       `json:"message_id,omitempty"`
	FailureReason types.ReminderFailureReason  `json:"failure_reason,omitempty"`
	Detail        string                       `json:"detail,omitempty"`
}

// ReconciliationSummary is the only contract of a reconciliation run with its trigger
type ReconciliationSummary struct {
	Found     int       `json:"found"`
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Vetoed    int       `json:"vetoed"`
	Cancelled int       `json:"cancelled"`
	Errors    int       `json:"errors"`
	Invoices  int       `json:"invoices"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Add tallies one dispatch outcome
func (s *ReconciliationSummary) Add(result types.ReminderDispatchResult) {
	switch result {
	case types.ReminderDispatchSent:
		s.Sent++
	case types.ReminderDispatchFailed:
		s.Failed++
	case types.ReminderDispatchVetoed:
		s.Vetoed++
	case types.ReminderDispatchCancelled:
		s.Cancelled++
	default:
		s.Skipped++
	}
}
