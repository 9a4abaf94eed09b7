package invoice

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/flexprice/dunning/internal/domain/latefee"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Invoice represents the invoice domain model
type Invoice struct {
	ID            string `db:"id" json:"id"`
	AccountID     string `db:"account_id" json:"account_id"`
	InvoiceNumber string `db:"invoice_number" json:"invoice_number"`
	CustomerName  string `db:"customer_name" json:"customer_name"`
	CustomerEmail string `db:"customer_email" json:"customer_email"`
	Currency      string `db:"currency" json:"currency"`
	// Total is the original amount owed, frozen once the invoice is sent
	Total         decimal.Decimal     `db:"total" json:"total"`
	DueDate       time.Time           `db:"due_date" json:"due_date"`
	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	// PaidSource is set while the invoice is PAID
	PaidSource     *types.PaidSource `db:"paid_source" json:"paid_source,omitempty"`
	LateFeePolicy  *latefee.Policy   `db:"late_fee_policy" json:"late_fee_policy,omitempty"`
	ReminderPolicy *ReminderPolicy   `db:"reminder_policy" json:"reminder_policy,omitempty"`
	// ReminderCount only ever grows; it counts delivered reminders that were billed to a slot
	ReminderCount      int        `db:"reminder_count" json:"reminder_count"`
	LastReminderSentAt *time.Time `db:"last_reminder_sent_at" json:"last_reminder_sent_at,omitempty"`
	SentAt             *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	PaidAt             *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	types.BaseModel
}

// ReminderPolicy controls dunning for a single invoice
type ReminderPolicy struct {
	Enabled bool `json:"enabled"`
	// Kinds restricts the cadence to these kinds, all kinds when empty
	Kinds []types.ReminderKind `json:"kinds,omitempty"`
	// Thresholds overrides the configured days overdue per kind
	Thresholds map[types.ReminderKind]int `json:"thresholds,omitempty"`
}

// IsEnabled is nil safe
func (p *ReminderPolicy) IsEnabled() bool {
	return p != nil && p.Enabled
}

// Allows reports whether the cadence includes kind
func (p *ReminderPolicy) Allows(kind types.ReminderKind) bool {
	if p == nil || len(p.Kinds) == 0 {
		return true
	}
	return lo.Contains(p.Kinds, kind)
}

// ThresholdFor returns the per invoice override for kind if one exists
func (p *ReminderPolicy) ThresholdFor(kind types.ReminderKind) (int, bool) {
	if p == nil || p.Thresholds == nil {
		return 0, false
	}
	days, ok := p.Thresholds[kind]
	return days, ok
}

func (p *ReminderPolicy) Validate() error {
	if p == nil {
		return nil
	}
	for _, k := range p.Kinds {
		if err := k.Validate(); err != nil {
			return err
		}
	}
	for k, days := range p.Thresholds {
		if err := k.Validate(); err != nil {
			return err
		}
		if days < 0 {
			return ierr.NewError("reminder threshold must not be negative").
				WithHint("Reminder thresholds are days after the due date").
				WithReportableDetails(map[string]any{
					"kind": k,
					"days": days,
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// Value stores the policy as JSONB
func (p ReminderPolicy) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan reads a policy stored as JSONB
func (p *ReminderPolicy) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ierr.NewError("unsupported reminder policy column type").
			Mark(ierr.ErrDatabase)
	}
	return json.Unmarshal(raw, p)
}

// IsPaid reports whether the persisted status is PAID
func (i *Invoice) IsPaid() bool {
	return i.InvoiceStatus == types.InvoiceStatusPaid
}

// IsLedgerPaid reports whether the invoice was settled by its payments rather than a manual override
func (i *Invoice) IsLedgerPaid() bool {
	return i.IsPaid() && lo.FromPtr(i.PaidSource) == types.PaidSourceLedger
}

// DisplayStatus returns the presentation status: a SENT invoice past its due date is OVERDUE
func (i *Invoice) DisplayStatus(asOf time.Time) types.InvoiceStatus {
	if i.InvoiceStatus == types.InvoiceStatusSent && types.IsPastDate(i.DueDate, asOf) {
		return types.InvoiceStatusOverdue
	}
	return i.InvoiceStatus
}

func (i *Invoice) Validate() error {
	if i.AccountID == "" {
		return ierr.NewError("account_id is required").
			WithHint("Invoice must belong to an account").
			Mark(ierr.ErrValidation)
	}
	if i.Currency == "" {
		return ierr.NewError("currency is required").
			WithHint("Please provide a currency").
			Mark(ierr.ErrValidation)
	}
	if !i.Total.IsPositive() {
		return ierr.NewError("total must be positive").
			WithHint("Invoice total must be greater than 0").
			WithReportableDetails(map[string]any{
				"total": i.Total.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if i.DueDate.IsZero() {
		return ierr.NewError("due_date is required").
			WithHint("Please provide a due date").
			Mark(ierr.ErrValidation)
	}
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}
	if err := i.LateFeePolicy.Validate(); err != nil {
		return err
	}
	return i.ReminderPolicy.Validate()
}
