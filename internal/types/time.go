package types

import "time"

// DateLayout is the layout used for date-only values such as due dates
const DateLayout = "2006-01-02"

// StartOfDay truncates t to midnight in its own location, dropping the time of day
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WholeDaysBetween returns the number of calendar days from the start of from's day to
// the start of to's day. The result is negative when to is before from. Both dates are
// compared as calendar dates in UTC so DST shifts never produce partial days.
func WholeDaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// IsPastDate reports whether asOf falls on a calendar day strictly after date
func IsPastDate(date, asOf time.Time) bool {
	return WholeDaysBetween(date, asOf) > 0
}
