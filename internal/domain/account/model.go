package account

import (
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
)

// Account owns invoices and carries the plan tier that bounds reminder quotas
type Account struct {
	ID            string              `db:"id" json:"id"`
	Name          string              `db:"name" json:"name"`
	Plan          types.PlanTier      `db:"plan" json:"plan"`
	AccountStatus types.AccountStatus `db:"account_status" json:"account_status"`
	// ReminderFromAddress overrides the configured sender address for this account's reminders
	ReminderFromAddress *string `db:"reminder_from_address" json:"reminder_from_address,omitempty"`
	ReminderReplyTo     *string `db:"reminder_reply_to" json:"reminder_reply_to,omitempty"`
	types.BaseModel
}

// IsActive reports whether the account may send reminders
func (a *Account) IsActive() bool {
	return a.AccountStatus == types.AccountStatusActive && a.Status == types.StatusPublished
}

func (a *Account) Validate() error {
	if a.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Please provide an account name").
			Mark(ierr.ErrValidation)
	}
	switch a.Plan {
	case types.PlanTierFree, types.PlanTierStarter, types.PlanTierBusiness:
	default:
		return ierr.NewError("invalid plan tier").
			WithHint("Plan must be one of free, starter or business").
			WithReportableDetails(map[string]any{
				"plan": a.Plan,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
