package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// Round2 rounds a currency amount to 2 decimal places (half away from zero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Floor2 truncates a currency amount to 2 decimal places.
func Floor2(d decimal.Decimal) decimal.Decimal {
	return d.RoundDown(2)
}

// Midnight truncates a timestamp to its calendar date in its own location.
// Comparing midnights keeps due-date math stable regardless of the
// time of day a payment or sweep happens.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a. The calendar dates are re-anchored in
// UTC before subtracting so a DST transition cannot shorten a day and
// drop it from the count.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// DaysLate returns how many days past due a due date is as of asOf.
// A payment made any time on the due date itself is never late.
func DaysLate(dueDate, asOf time.Time) int {
	days := DaysBetween(dueDate, asOf)
	if days < 0 {
		return 0
	}
	return days
}

// DaysUntilDue returns whole days until the due date; negative once past due.
func DaysUntilDue(dueDate, asOf time.Time) int {
	return DaysBetween(asOf, dueDate)
}

// InstallmentDueDate calculates the due date for a 1-based installment
// number using calendar-month arithmetic, not fixed 30-day increments.
func InstallmentDueDate(loanStartDate time.Time, termNumber int) time.Time {
	return Midnight(loanStartDate).AddDate(0, termNumber, 0)
}

// SameCalendarDay reports whether two timestamps fall on the same date.
func SameCalendarDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}
