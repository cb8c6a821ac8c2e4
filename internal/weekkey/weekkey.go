// Package weekkey computes the canonical week boundaries shared by the
// trackers and the remote sync keys.
//
// Weekday numbering is fixed here as 1=Sunday .. 7=Saturday and never taken
// from a calendar default, so that DayIndex maps Monday to 0 and Sunday to 6.
package weekkey

import "time"

const dateLayout = "2006-01-02"

// Weekday returns the day of the week of t numbered 1=Sunday .. 7=Saturday.
func Weekday(t time.Time) int {
	return int(t.Weekday()) + 1
}

// DayIndex returns the position of t inside its week, Monday=0 .. Sunday=6.
func DayIndex(t time.Time) int {
	return (Weekday(t) + 5) % 7
}

// StartOfDay returns 00:00 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MondayStart returns 00:00 on the Monday of t's week.
func MondayStart(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -DayIndex(t))
}

// ISODate formats t as yyyy-MM-dd.
func ISODate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseISODate parses a yyyy-MM-dd key in loc.
func ParseISODate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, loc)
}

// SameDay reports whether a and b fall on the same calendar day, comparing
// in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AtClock returns the instant on day's calendar date at the hour and minute
// of clock.
func AtClock(day, clock time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, day.Location())
}
