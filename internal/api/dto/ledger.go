package dto

import (
	"context"
	"time"

	"github.com/flexprice/dunning/internal/domain/payment"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/flexprice/dunning/internal/validator"
	"github.com/shopspring/decimal"
)

// AddPaymentRequest records a payment against an invoice
type AddPaymentRequest struct {
	Amount            decimal.Decimal          `json:"amount" swaggertype:"string"`
	PaymentDate       *time.Time               `json:"payment_date,omitempty"`
	PaymentMethodType *types.PaymentMethodType `json:"payment_method_type,omitempty"`
	Notes             *string                  `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *AddPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			WithReportableDetails(map[string]any{
				"amount": r.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if r.PaymentMethodType != nil {
		if err := r.PaymentMethodType.Validate(); err != nil {
			return ierr.WithError(err).
				WithHint("Payment method type is invalid").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// ToPayment builds the payment for invoiceID. The payment date defaults to now.
func (r *AddPaymentRequest) ToPayment(ctx context.Context, invoiceID, currency string, now time.Time) *payment.Payment {
	base := types.GetDefaultBaseModel(ctx)
	base.CreatedAt = now
	base.UpdatedAt = now

	paymentDate := now
	if r.PaymentDate != nil {
		paymentDate = r.PaymentDate.UTC()
	}

	return &payment.Payment{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:         invoiceID,
		Amount:            types.RoundToCurrency(r.Amount, currency),
		Currency:          currency,
		PaymentDate:       paymentDate,
		PaymentMethodType: r.PaymentMethodType,
		Notes:             r.Notes,
		BaseModel:         base,
	}
}

// PaymentResponse represents a payment response
type PaymentResponse struct {
	*payment.Payment
}

// LedgerResponse is the read side of the ledger. External callers use it instead of
// re-deriving balances.
type LedgerResponse struct {
	InvoiceID         string             `json:"invoice_id"`
	Currency          string             `json:"currency"`
	Payments          []*PaymentResponse `json:"payments"`
	TotalPaid         decimal.Decimal    `json:"total_paid" swaggertype:"string"`
	RemainingBalance  decimal.Decimal    `json:"remaining_balance" swaggertype:"string"`
	LateFee           decimal.Decimal    `json:"late_fee" swaggertype:"string"`
	LateFeeChargeable bool               `json:"late_fee_chargeable"`
	TotalPayable      decimal.Decimal    `json:"total_payable" swaggertype:"string"`
	DaysOverdue       int                `json:"days_overdue"`
	AsOf              time.Time          `json:"as_of"`
}
