package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	daysPerMonth  = decimal.RequireFromString("30.44")
	weeksPerYear  = decimal.NewFromInt(52)
	monthsPerYear = decimal.NewFromInt(12)
	monthsPerQtr  = decimal.NewFromInt(3)
	monthsPerHalf = decimal.NewFromInt(6)
)

// NextDueDate returns the first occurrence of a series anchored at start
// that lies strictly after now. A start in the future is returned as is.
func NextDueDate(start time.Time, f Frequency, now time.Time) (time.Time, error) {
	if !f.Valid() {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, f)
	}

	next := start
	if next.After(now) {
		return next, nil
	}

	// Fixed-length periods can be skipped in bulk; the result is the same
	// as stepping one period at a time.
	if step := fixedDays(f); step > 0 {
		days := int(now.Sub(next).Hours() / 24)
		if n := days/step - 1; n > 0 {
			next = next.AddDate(0, 0, n*step)
		}
	}

	for !next.After(now) {
		next = advance(next, f)
	}
	return next, nil
}

// MonthlyEquivalent converts an amount paid once per period into its
// average monthly value. The sign is preserved. Unknown frequencies
// contribute nothing.
func MonthlyEquivalent(amount decimal.Decimal, f Frequency) decimal.Decimal {
	switch f {
	case Daily:
		return amount.Mul(daysPerMonth)
	case Weekly:
		return amount.Mul(weeksPerYear).Div(monthsPerYear)
	case Monthly:
		return amount
	case Quarterly:
		return amount.Div(monthsPerQtr)
	case SemiAnnual:
		return amount.Div(monthsPerHalf)
	case Annual:
		return amount.Div(monthsPerYear)
	}
	return decimal.Zero
}

func fixedDays(f Frequency) int {
	switch f {
	case Daily:
		return 1
	case Weekly:
		return 7
	}
	return 0
}

func advance(t time.Time, f Frequency) time.Time {
	switch f {
	case Daily:
		return t.AddDate(0, 0, 1)
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return addMonths(t, 1)
	case Quarterly:
		return addMonths(t, 3)
	case SemiAnnual:
		return addMonths(t, 6)
	case Annual:
		return addMonths(t, 12)
	}
	panic("schedule: advance called with " + string(f))
}

// addMonths moves t by n calendar months, clamping the day to the last
// day of the target month (Jan 31 + 1 month = Feb 28/29).
// time.AddDate would roll over into the following month instead.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(target.Year(), target.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
