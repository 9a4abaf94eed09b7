package latefee

import (
	"testing"
	"time"

	"github.com/flexprice/dunning/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func percentage(amount int64, grace int) *Policy {
	return &Policy{
		Enabled:         true,
		FeeType:         types.LateFeeTypePercentage,
		Amount:          decimal.NewFromInt(amount),
		GracePeriodDays: grace,
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name           string
		input          Input
		wantFee        string
		wantPayable    string
		wantChargeable bool
		wantDays       int
	}{
		{
			name: "percentage_after_grace",
			input: Input{
				DueDate:          day(0),
				AsOf:             day(10),
				RemainingBalance: decimal.NewFromInt(1000),
				Policy:           percentage(5, 3),
				Currency:         "USD",
			},
			wantFee:        "50",
			wantPayable:    "1050",
			wantChargeable: true,
			wantDays:       10,
		},
		{
			name: "percentage_on_partially_paid_balance",
			input: Input{
				DueDate:          day(0),
				AsOf:             day(10),
				RemainingBalance: decimal.NewFromInt(400),
				Policy:           percentage(5, 3),
				Currency:         "USD",
			},
			wantFee:        "20",
			wantPayable:    "420",
			wantChargeable: true,
			wantDays:       10,
		},
		{
			name: "within_grace_period",
			input: Input{
				DueDate:          day(0),
				AsOf:             day(3),
				RemainingBalance: decimal.NewFromInt(1000),
				Policy:           percentage(5, 3),
				Currency:         "USD",
			},
			wantFee:     "0",
			wantPayable: "1000",
			wantDays:    3,
		},
		{
			name: "due_today_ignores_time_of_day",
			input: Input{
				DueDate:          day(0),
				AsOf:             day(0).Add(23 * time.Hour),
				RemainingBalance: decimal.NewFromInt(1000),
				Policy:           percentage(5, 0),
				Currency:         "USD",
			},
			wantFee:     "0",
			wantPayable: "1000",
		},
		{
			name: "fixed_fee_is_flat",
			input: Input{
				DueDate:          day(0),
				AsOf:             day(90),
				RemainingBalance: decimal.NewFromInt(10),
				Policy: &Policy{
					Enabled: true,
					FeeType: types.LateFeeTypeFixed,
					Amount:  decimal.NewFromInt(25),
				},
				Currency: "USD",
			},
			wantFee:        "25",
			wantPayable:    "35",
			wantChargeable: true,
			wantDays:       90,
		},
		{
			name: "disabled_policy",
			input: Input{
				DueDate:          day(0),
				AsOf:             day(10),
				RemainingBalance: decimal.NewFromInt(1000),
				Policy:           &Policy{Enabled: false, FeeType: types.LateFeeTypeFixed, Amount: decimal.NewFromInt(5)},
				Currency:         "USD",
			},
			wantFee:     "0",
			wantPayable: "1000",
			wantDays:    10,
		},
		{
			name: "nil_policy",
			input: Input{
				DueDate:          day(0),
				AsOf:             day(10),
				RemainingBalance: decimal.NewFromInt(1000),
				Currency:         "USD",
			},
			wantFee:     "0",
			wantPayable: "1000",
			wantDays:    10,
		},
		{
			name: "paid_invoice",
			input: Input{
				DueDate:          day(0),
				AsOf:             day(10),
				RemainingBalance: decimal.Zero,
				Policy:           percentage(5, 0),
				Paid:             true,
				Currency:         "USD",
			},
			wantFee:     "0",
			wantPayable: "0",
			wantDays:    10,
		},
		{
			name: "rounds_to_minor_unit",
			input: Input{
				DueDate:          day(0),
				AsOf:             day(5),
				RemainingBalance: decimal.RequireFromString("333.33"),
				Policy:           percentage(3, 0),
				Currency:         "USD",
			},
			wantFee:        "10",
			wantPayable:    "343.33",
			wantChargeable: true,
			wantDays:       5,
		},
		{
			name: "zero_decimal_currency",
			input: Input{
				DueDate:          day(0),
				AsOf:             day(5),
				RemainingBalance: decimal.NewFromInt(1001),
				Policy:           percentage(5, 0),
				Currency:         "JPY",
			},
			wantFee:        "50",
			wantPayable:    "1051",
			wantChargeable: true,
			wantDays:       5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.input)
			assert.True(t, decimal.RequireFromString(tt.wantFee).Equal(res.LateFee), "fee: got %s", res.LateFee)
			assert.True(t, decimal.RequireFromString(tt.wantPayable).Equal(res.TotalPayable), "payable: got %s", res.TotalPayable)
			assert.Equal(t, tt.wantChargeable, res.Chargeable)
			assert.Equal(t, tt.wantDays, res.DaysOverdue)
		})
	}
}

func TestCompute_FeeShrinksWithBalance(t *testing.T) {
	policy := percentage(5, 3)
	prev := Compute(Input{DueDate: day(0), AsOf: day(10), RemainingBalance: decimal.NewFromInt(1000), Policy: policy, Currency: "USD"})

	for _, paid := range []int64{100, 250, 600, 999, 1000} {
		res := Compute(Input{
			DueDate:          day(0),
			AsOf:             day(10),
			RemainingBalance: decimal.NewFromInt(1000 - paid),
			Policy:           policy,
			Currency:         "USD",
		})
		assert.True(t, res.LateFee.LessThanOrEqual(prev.LateFee), "fee grew after paying %d", paid)
		prev = res
	}
	assert.True(t, prev.LateFee.IsZero())
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, (*Policy)(nil).Validate())
	require.NoError(t, percentage(5, 3).Validate())
	assert.Error(t, percentage(101, 0).Validate())
	assert.Error(t, percentage(5, -1).Validate())
	assert.Error(t, (&Policy{Enabled: true, FeeType: "WEEKLY", Amount: decimal.NewFromInt(1)}).Validate())
	assert.Error(t, (&Policy{Enabled: true, FeeType: types.LateFeeTypeFixed, Amount: decimal.NewFromInt(-1)}).Validate())
}
