package payment

import (
	"time"

	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is one entry of an invoice ledger. It is immutable once recorded;
// removal is a soft delete that keeps the row for audit display.
type Payment struct {
	// Unique identifier for this payment
	ID string `db:"id" json:"id"`
	// The invoice this payment settles
	InvoiceID string `db:"invoice_id" json:"invoice_id"`
	// The amount paid, always positive
	Amount decimal.Decimal `db:"amount" json:"amount"`
	// The currency of the owning invoice
	Currency string `db:"currency" json:"currency"`
	// The date the customer paid, which may differ from when it was recorded
	PaymentDate time.Time `db:"payment_date" json:"payment_date"`
	// How the payment was made (optional)
	PaymentMethodType *types.PaymentMethodType `db:"payment_method_type" json:"payment_method_type,omitempty"`
	// Free form notes (optional)
	Notes *string `db:"notes" json:"notes,omitempty"`

	types.BaseModel
}

// IsActive reports whether the payment counts towards the ledger
func (p *Payment) IsActive() bool {
	return p.Status != types.StatusDeleted
}

// Validate validates the payment
func (p *Payment) Validate() error {
	if p.InvoiceID == "" {
		return ierr.NewError("invoice_id is required").
			WithHint("Payment must reference an invoice").
			Mark(ierr.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			WithReportableDetails(map[string]any{
				"amount": p.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if p.PaymentDate.IsZero() {
		return ierr.NewError("payment_date is required").
			WithHint("Please provide the payment date").
			Mark(ierr.ErrValidation)
	}
	if p.PaymentMethodType != nil {
		if err := p.PaymentMethodType.Validate(); err != nil {
			return ierr.WithError(err).
				WithHint("Payment method type is invalid").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// TotalPaid sums the amounts of all active payments
func TotalPaid(payments []*Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p == nil || !p.IsActive() {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}
