package schedule

import (
	"errors"
	"sort"
	"strings"
	"time"

	"finance-ledger-backend/internal/profile"

	"github.com/shopspring/decimal"
)

// Recurring is a payment or income that repeats at a fixed frequency,
// starting at StartDate. Positive amounts are income.
type Recurring struct {
	ID          string
	Description string
	Category    string
	Amount      decimal.Decimal
	Frequency   Frequency
	StartDate   time.Time
	Profile     profile.Profile
}

// Validate checks the fields a recurring transaction cannot do without.
func (r Recurring) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Description) == "" {
		errs = append(errs, errors.New("description is required"))
	}
	if r.Amount.IsZero() {
		errs = append(errs, errors.New("amount must not be zero"))
	}
	if !r.Frequency.Valid() {
		errs = append(errs, ErrUnknownFrequency)
	}
	if r.StartDate.IsZero() {
		errs = append(errs, errors.New("start date is required"))
	}
	return errors.Join(errs...)
}

// Projected pairs a recurring transaction with its next due date.
type Projected struct {
	Recurring
	NextDueDate time.Time
}

// Project computes the next due date of every item relative to now and
// returns them soonest first. Items with an invalid frequency are skipped.
func Project(items []Recurring, now time.Time) []Projected {
	out := make([]Projected, 0, len(items))
	for _, r := range items {
		next, err := NextDueDate(r.StartDate, r.Frequency, now)
		if err != nil {
			continue
		}
		out = append(out, Projected{Recurring: r, NextDueDate: next})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextDueDate.Before(out[j].NextDueDate)
	})
	return out
}

// Overview is the monthly cash-flow estimate of a set of recurring items.
type Overview struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// Summarize adds up the monthly equivalents of items. Positive values
// count as income, everything else as expenses.
func Summarize(items []Recurring) Overview {
	income, expenses := decimal.Zero, decimal.Zero
	for _, r := range items {
		m := MonthlyEquivalent(r.Amount, r.Frequency)
		if m.IsPositive() {
			income = income.Add(m)
		} else {
			expenses = expenses.Add(m)
		}
	}
	return Overview{
		Income:   income,
		Expenses: expenses,
		Net:      income.Add(expenses),
	}
}
