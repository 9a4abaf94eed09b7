// Package latefee computes late fees for overdue invoices.
//
// Compute is a pure function of the due date, the evaluation date, the current
// remaining balance and the policy. It must be called again on every read so that
// a percentage fee always follows the latest balance.
package latefee

import (
	"time"

	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Policy describes when and how much extra is owed once an invoice is overdue
type Policy struct {
	Enabled bool `json:"enabled"`
	// FeeType selects between a percentage of the remaining balance and a flat amount
	FeeType types.LateFeeType `json:"fee_type"`
	// Amount is percentage points for PERCENTAGE and currency units for FIXED
	Amount decimal.Decimal `json:"amount"`
	// GracePeriodDays is the number of whole days after the due date before fees accrue
	GracePeriodDays int `json:"grace_period_days"`
}

func (p *Policy) Validate() error {
	if p == nil || !p.Enabled {
		return nil
	}
	if err := p.FeeType.Validate(); err != nil {
		return err
	}
	if p.Amount.IsNegative() {
		return ierr.NewError("late fee amount must not be negative").
			WithHint("Late fee amount must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	if p.FeeType == types.LateFeeTypePercentage && p.Amount.GreaterThan(hundred) {
		return ierr.NewError("late fee percentage must not exceed 100").
			WithHint("Late fee percentage must be between 0 and 100").
			WithReportableDetails(map[string]any{
				"amount": p.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if p.GracePeriodDays < 0 {
		return ierr.NewError("grace period must not be negative").
			WithHint("Grace period days must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Input holds everything the calculator needs
type Input struct {
	DueDate          time.Time
	AsOf             time.Time
	RemainingBalance decimal.Decimal
	Policy           *Policy
	// Paid is true when the invoice is already settled; no fee is charged then
	Paid bool
	// Currency is used to round the fee to the minor unit
	Currency string
}

// Result is the outcome of a late fee computation
type Result struct {
	LateFee        decimal.Decimal `json:"late_fee"`
	Chargeable     bool            `json:"chargeable"`
	DaysOverdue    int             `json:"days_overdue"`
	ChargeableDays int             `json:"chargeable_days"`
	TotalPayable   decimal.Decimal `json:"total_payable"`
}

// Compute returns the late fee and the total payable for in.
// Dates are compared by calendar day only.
func Compute(in Input) Result {
	remaining := decimal.Max(in.RemainingBalance, decimal.Zero)
	res := Result{
		LateFee:      decimal.Zero,
		TotalPayable: remaining,
	}

	res.DaysOverdue = max(0, types.WholeDaysBetween(in.DueDate, in.AsOf))

	if in.Policy == nil || !in.Policy.Enabled || in.Paid || !types.IsPastDate(in.DueDate, in.AsOf) {
		return res
	}

	res.ChargeableDays = max(0, res.DaysOverdue-in.Policy.GracePeriodDays)
	if res.ChargeableDays == 0 {
		return res
	}

	var fee decimal.Decimal
	switch in.Policy.FeeType {
	case types.LateFeeTypePercentage:
		// percentage of what is still owed, so the fee shrinks with every payment
		fee = remaining.Mul(in.Policy.Amount).Div(hundred)
	case types.LateFeeTypeFixed:
		fee = in.Policy.Amount
	default:
		return res
	}

	fee = types.RoundToCurrency(decimal.Max(fee, decimal.Zero), in.Currency)
	res.LateFee = fee
	res.Chargeable = fee.IsPositive()
	res.TotalPayable = remaining.Add(fee)
	return res
}
