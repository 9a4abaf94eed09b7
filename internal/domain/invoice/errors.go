package invoice

import (
	ierr "github.com/flexprice/dunning/internal/errors"
)

// NewNotFoundError is returned when an invoice does not exist or is not visible to the account
func NewNotFoundError(id string) error {
	return ierr.NewError("invoice not found").
		WithHintf("Invoice %s was not found", id).
		WithReportableDetails(map[string]any{
			"invoice_id": id,
		}).
		Mark(ierr.ErrNotFound)
}

// NewInvalidTransitionError is returned when a lifecycle action does not apply to the current status
func NewInvalidTransitionError(inv *Invoice, action string) error {
	return ierr.NewError("invalid invoice status transition").
		WithHintf("Cannot %s an invoice in status %s", action, inv.InvoiceStatus).
		WithReportableDetails(map[string]any{
			"invoice_id":     inv.ID,
			"invoice_status": inv.InvoiceStatus,
			"action":         action,
		}).
		Mark(ierr.ErrInvalidOperation)
}
