package quota

import (
	"time"
)

const (
	PeriodDaily   = "daily"
	PeriodMonthly = "monthly"
)

// periodKey returns the bucket name of at for period and how long the bucket stays relevant
func periodKey(period string, at time.Time) (string, time.Duration) {
	at = at.UTC()
	if period == PeriodDaily {
		return at.Format("2006-01-02"), 48 * time.Hour
	}
	return at.Format("2006-01"), 32 * 24 * time.Hour
}
