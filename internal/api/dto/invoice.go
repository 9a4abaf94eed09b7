package dto

import (
	"context"
	"strings"
	"time"

	"github.com/flexprice/dunning/internal/domain/invoice"
	"github.com/flexprice/dunning/internal/domain/latefee"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/flexprice/dunning/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest issues a new draft invoice
type CreateInvoiceRequest struct {
	AccountID      string                  `json:"account_id,omitempty"`
	InvoiceNumber  string                  `json:"invoice_number,omitempty" validate:"omitempty,max=64"`
	CustomerName   string                  `json:"customer_name" validate:"required,max=255"`
	CustomerEmail  string                  `json:"customer_email" validate:"required,email"`
	Currency       string                  `json:"currency" validate:"required,len=3"`
	Total          decimal.Decimal         `json:"total" swaggertype:"string"`
	DueDate        time.Time               `json:"due_date" validate:"required"`
	LateFeePolicy  *latefee.Policy         `json:"late_fee_policy,omitempty"`
	ReminderPolicy *invoice.ReminderPolicy `json:"reminder_policy,omitempty"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Total.IsPositive() {
		return ierr.NewError("total must be positive").
			WithHint("Invoice total must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if err := r.LateFeePolicy.Validate(); err != nil {
		return err
	}
	return r.ReminderPolicy.Validate()
}

// ToInvoice builds a draft invoice owned by accountID
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context, accountID string, now time.Time) *invoice.Invoice {
	base := types.GetDefaultBaseModel(ctx)
	base.CreatedAt = now
	base.UpdatedAt = now

	return &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		AccountID:      accountID,
		InvoiceNumber:  r.InvoiceNumber,
		CustomerName:   r.CustomerName,
		CustomerEmail:  r.CustomerEmail,
		Currency:       strings.ToLower(r.Currency),
		Total:          types.RoundToCurrency(r.Total, r.Currency),
		DueDate:        types.StartOfDay(r.DueDate.UTC()),
		InvoiceStatus:  types.InvoiceStatusDraft,
		LateFeePolicy:  r.LateFeePolicy,
		ReminderPolicy: r.ReminderPolicy,
		BaseModel:      base,
	}
}

// InvoiceResponse is an invoice with its presentation status and current balance
type InvoiceResponse struct {
	*invoice.Invoice

	// DisplayStatus is OVERDUE for a sent invoice past its due date
	DisplayStatus types.InvoiceStatus `json:"display_status"`
	Balance       *LedgerResponse     `json:"balance,omitempty"`
}

// NewInvoiceResponse wraps inv with the status derived at asOf
func NewInvoiceResponse(inv *invoice.Invoice, asOf time.Time) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice:       inv,
		DisplayStatus: inv.DisplayStatus(asOf),
	}
}

// ListInvoicesResponse represents the response for listing invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
