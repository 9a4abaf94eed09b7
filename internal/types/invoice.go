package types

import (
	"time"

	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	// InvoiceStatusDraft indicates invoice is still being prepared and has not been issued
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	// InvoiceStatusSent indicates invoice was issued to the customer and is open for payment
	InvoiceStatusSent InvoiceStatus = "SENT"
	// InvoiceStatusPaid indicates invoice is settled, either by the ledger or a manual override
	InvoiceStatusPaid InvoiceStatus = "PAID"
	// InvoiceStatusOverdue is a presentation status for a sent invoice whose due date has passed.
	// It is derived on read and never persisted.
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
	// InvoiceStatusCancelled indicates invoice was cancelled manually and is terminal
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsOpen reports whether the invoice still accepts payments and reminders
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

// IsTerminal reports whether no payment-driven transition can leave this status
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusCancelled
}

// PaidSource records which path moved an invoice into PAID
type PaidSource string

const (
	PaidSourceLedger PaidSource = "LEDGER"
	PaidSourceManual PaidSource = "MANUAL"
)

// InvoiceFilter represents the filter options for listing invoices
type InvoiceFilter struct {
	*QueryFilter

	InvoiceIDs    []string        `json:"invoice_ids,omitempty" form:"invoice_ids"`
	AccountID     string          `json:"account_id,omitempty" form:"account_id"`
	InvoiceStatus []InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
	DueBefore     *time.Time      `json:"due_before,omitempty" form:"due_before"`
	RemindersOnly bool            `json:"reminders_only,omitempty" form:"reminders_only"`
}

// NewInvoiceFilter creates a new invoice filter with default options
func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitInvoiceFilter creates a new invoice filter without pagination
func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

// Validate validates the invoice filter
func (f *InvoiceFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	for _, s := range f.InvoiceStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *InvoiceFilter) GetLimit() int     { return resolveQueryFilter(f.QueryFilter).GetLimit() }
func (f *InvoiceFilter) GetOffset() int    { return resolveQueryFilter(f.QueryFilter).GetOffset() }
func (f *InvoiceFilter) IsUnlimited() bool { return resolveQueryFilter(f.QueryFilter).IsUnlimited() }
