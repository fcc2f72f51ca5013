// Package calendar produces candidate trading dates for market-data lookups.
package calendar

import (
	"iter"
	"time"
)

// DateLayout is the provider date format.
const DateLayout = "2006-01-02"

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AdjustToWeekday walks t back one day at a time until it is a weekday.
func AdjustToWeekday(t time.Time) time.Time {
	for IsWeekend(t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// PreviousTradingDay returns the most recent weekday strictly before today.
// Holidays are not known here; callers step back further when the provider
// has no data.
func PreviousTradingDay(today time.Time) time.Time {
	return AdjustToWeekday(startOfDay(today).AddDate(0, 0, -1))
}

// Candidates lazily yields at most limit distinct weekdays, starting with
// PreviousTradingDay(today) and stepping back one weekday per candidate.
func Candidates(today time.Time, limit int) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if limit <= 0 {
			return
		}
		d := PreviousTradingDay(today)
		for i := 0; i < limit; i++ {
			if !yield(d) {
				return
			}
			d = AdjustToWeekday(d.AddDate(0, 0, -1))
		}
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
