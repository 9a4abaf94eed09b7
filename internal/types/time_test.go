package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWholeDaysBetween(t *testing.T) {
	due := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		asOf     time.Time
		expected int
		past     bool
	}{
		{
			name:     "same day late evening",
			asOf:     time.Date(2025, time.March, 1, 23, 59, 0, 0, time.UTC),
			expected: 0,
			past:     false,
		},
		{
			name:     "next day just after midnight",
			asOf:     time.Date(2025, time.March, 2, 0, 1, 0, 0, time.UTC),
			expected: 1,
			past:     true,
		},
		{
			name:     "day before",
			asOf:     time.Date(2025, time.February, 28, 12, 0, 0, 0, time.UTC),
			expected: -1,
			past:     false,
		},
		{
			name:     "across a month boundary",
			asOf:     time.Date(2025, time.April, 10, 8, 0, 0, 0, time.UTC),
			expected: 40,
			past:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WholeDaysBetween(due, tt.asOf))
			assert.Equal(t, tt.past, IsPastDate(due, tt.asOf))
		})
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, time.March, 9, 17, 45, 12, 99, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}

func TestRoundToCurrency(t *testing.T) {
	assert.Equal(t, "10.01", RoundToCurrency(decimal.RequireFromString("10.005"), "usd").StringFixed(2))
	assert.Equal(t, "1235", RoundToCurrency(decimal.RequireFromString("1234.5"), "JPY").String())
	assert.Equal(t, "$1050.00", FormatAmount(decimal.NewFromInt(1050), "usd"))
	assert.Equal(t, "ZAR12.50", FormatAmount(decimal.RequireFromString("12.5"), "zar"))
}
