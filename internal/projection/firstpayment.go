package projection

import "time"

// FarFutureWindowDays bounds how far a purchase may sit from the card's next
// closing date before the cycle dates are considered unreliable for it. A
// card's "next closing" field can lag months behind an old purchase date;
// beyond this window the calculator falls back to a plain calendar-month
// rule instead of trusting the cycle.
const FarFutureWindowDays = 35

// FirstPaymentDate determines which date the first installment of a purchase
// falls on, given the purchase date and the card's cycle boundaries.
//
// Rules, first match wins:
//  1. |closingDate - acquiredAt| > FarFutureWindowDays: first day of the
//     month after the acquisition month.
//  2. acquiredAt before closingDate: the purchase lands in the cycle ending
//     at closingDate, so the first installment is due on expiringDate.
//  3. Otherwise the purchase lands in the next cycle: first day of the month
//     after expiringDate's month.
//
// A zero value for any input is a precondition failure and yields a zero
// result, never an error. The result is a default suggestion; callers may
// override it and must not recompute once overridden.
func FirstPaymentDate(acquiredAt, closingDate, expiringDate time.Time) time.Time {
	if acquiredAt.IsZero() || closingDate.IsZero() || expiringDate.IsZero() {
		return time.Time{}
	}

	daysDifference := daysBetween(acquiredAt, closingDate)
	if daysDifference > FarFutureWindowDays || daysDifference < -FarFutureWindowDays {
		return firstOfMonthAfter(acquiredAt)
	}

	if acquiredAt.Before(closingDate) {
		return expiringDate
	}

	return firstOfMonthAfter(expiringDate)
}

// FirstPaymentDay is the string form of FirstPaymentDate, operating on
// YYYY-MM-DD inputs as they appear on the wire. Missing or unparseable
// inputs yield "".
func FirstPaymentDay(acquiredAt, closingDate, expiringDate string) string {
	acquired, err := ParseDay(acquiredAt)
	if err != nil {
		return ""
	}
	closing, err := ParseDay(closingDate)
	if err != nil {
		return ""
	}
	expiring, err := ParseDay(expiringDate)
	if err != nil {
		return ""
	}
	return FormatDay(FirstPaymentDate(acquired, closing, expiring))
}
