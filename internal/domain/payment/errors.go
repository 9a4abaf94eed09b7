package payment

import (
	"fmt"

	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/shopspring/decimal"
)

// ExceedsPayableError carries the largest amount the invoice would currently accept.
// It is always marked with ierr.ErrExceedsPayable.
type ExceedsPayableError struct {
	InvoiceID     string
	Requested     decimal.Decimal
	MaxAcceptable decimal.Decimal
}

func (e *ExceedsPayableError) Error() string {
	return fmt.Sprintf("payment of %s exceeds payable amount %s for invoice %s",
		e.Requested.String(), e.MaxAcceptable.String(), e.InvoiceID)
}

// NewExceedsPayableError builds the marked error returned by the ledger
func NewExceedsPayableError(invoiceID string, requested, maxAcceptable decimal.Decimal) error {
	return ierr.WithError(&ExceedsPayableError{
		InvoiceID:     invoiceID,
		Requested:     requested,
		MaxAcceptable: maxAcceptable,
	}).
		WithHintf("Payment amount exceeds the amount payable. Maximum acceptable amount is %s", maxAcceptable.String()).
		WithReportableDetails(map[string]any{
			"invoice_id":     invoiceID,
			"requested":      requested.String(),
			"max_acceptable": maxAcceptable.String(),
		}).
		Mark(ierr.ErrExceedsPayable)
}

// NewAlreadyPaidError is returned when a payment targets a settled invoice
func NewAlreadyPaidError(invoiceID string) error {
	return ierr.NewError("invoice already paid").
		WithHint("This invoice is already fully paid").
		WithReportableDetails(map[string]any{
			"invoice_id": invoiceID,
		}).
		Mark(ierr.ErrAlreadyPaid)
}

// NewNotFoundError is returned when a payment does not exist on the invoice
func NewNotFoundError(invoiceID, paymentID string) error {
	return ierr.NewError("payment not found").
		WithHintf("Payment %s was not found", paymentID).
		WithReportableDetails(map[string]any{
			"invoice_id": invoiceID,
			"payment_id": paymentID,
		}).
		Mark(ierr.ErrNotFound)
}
