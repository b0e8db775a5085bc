// Package projection holds the payment-projection core: the first-payment
// date calculator, period aggregation and per-payment display
// classification. Everything here is pure; the service layer owns I/O.
package projection

import (
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD calendar date. A trailing time component
// (as in "2024-03-10T00:00:00") is ignored. Empty input yields a zero time
// and no error; callers treat a zero time as "not provided".
func ParseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	return time.Parse(dayLayout, s)
}

// FormatDay renders t as YYYY-MM-DD. A zero time renders as "".
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dayLayout)
}

// firstOfMonthAfter returns the first calendar day of the month following t.
// time.Date normalizes month 13 into January of the next year.
func firstOfMonthAfter(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// daysBetween returns b - a in whole days. Both inputs are calendar dates
// (midnight), so the division is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// PreviousMonth steps one month back from (month, year).
func PreviousMonth(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}
