package events

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/types"
)

// Event is an audit record of a ledger or reminder state change
type Event struct {
	// Unique identifier for the event
	ID string `json:"id"`

	// EventName identifies what happened, e.g. invoice.paid
	EventName types.AuditEventName `json:"event_name"`

	AccountID string `json:"account_id"`
	InvoiceID string `json:"invoice_id"`

	// Properties holds event specific fields such as payment_id or kind
	Properties map[string]interface{} `json:"properties,omitempty"`

	// UserID is the actor, system for background jobs
	UserID    string    `json:"user_id"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds an event for the invoice, taking the actor and request id from ctx
func NewEvent(ctx context.Context, name types.AuditEventName, accountID, invoiceID string, at time.Time, props map[string]interface{}) *Event {
	userID := types.GetUserID(ctx)
	if userID == "" {
		userID = types.SystemUserID
	}
	return &Event{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		EventName:  name,
		AccountID:  accountID,
		InvoiceID:  invoiceID,
		Properties: props,
		UserID:     userID,
		RequestID:  types.GetRequestID(ctx),
		Timestamp:  at.UTC(),
	}
}
