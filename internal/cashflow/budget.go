package cashflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-ledger-backend/internal/profile"

	"github.com/shopspring/decimal"
)

// nearLimitRatio is the share of a budget above which it is flagged.
var nearLimitRatio = decimal.RequireFromString("0.9")

var hundred = decimal.NewFromInt(100)

// Budget caps the monthly expenses of one category.
type Budget struct {
	ID       string
	Category string
	Limit    decimal.Decimal
	Profile  profile.Profile
}

// Validate checks category and limit.
func (b Budget) Validate() error {
	var errs []error
	if strings.TrimSpace(b.Category) == "" {
		errs = append(errs, errors.New("category is required"))
	}
	if !b.Limit.IsPositive() {
		errs = append(errs, errors.New("limit must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
	}
	return nil
}

// Status is a budget with what was spent against it in a period.
type Status struct {
	Budget
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	// Percent of the limit used, rounded to whole percent.
	Percent   decimal.Decimal
	NearLimit bool
	Exceeded  bool
}

// Track computes the status of every budget from the expenses booked in
// [from, to). Spending is matched to budgets by category, ignoring case.
func Track(budgets []Budget, ts []Transaction, from, to time.Time) []Status {
	period := Filter{Kind: Expense, From: from, To: to}
	spent := make(map[string]decimal.Decimal)
	for _, t := range period.Apply(ts) {
		key := categoryKey(t.Category)
		spent[key] = spent[key].Sub(t.Amount)
	}

	out := make([]Status, 0, len(budgets))
	for _, b := range budgets {
		s := Status{Budget: b, Spent: spent[categoryKey(b.Category)]}
		s.Remaining = b.Limit.Sub(s.Spent)
		if b.Limit.IsPositive() {
			ratio := s.Spent.Div(b.Limit)
			s.Percent = ratio.Mul(hundred).Round(0)
			s.NearLimit = ratio.GreaterThan(nearLimitRatio)
		}
		s.Exceeded = s.Spent.GreaterThan(b.Limit)
		out = append(out, s)
	}
	return out
}

// BudgetTotals sums limits and spending over a set of budget statuses.
type BudgetTotals struct {
	Budgeted  decimal.Decimal
	Spent     decimal.Decimal
	Remaining decimal.Decimal
}

// Totals adds up statuses.
func Totals(statuses []Status) BudgetTotals {
	t := BudgetTotals{Budgeted: decimal.Zero, Spent: decimal.Zero}
	for _, s := range statuses {
		t.Budgeted = t.Budgeted.Add(s.Limit)
		t.Spent = t.Spent.Add(s.Spent)
	}
	t.Remaining = t.Budgeted.Sub(t.Spent)
	return t
}

// MonthOf returns the first instant of the calendar month containing t in
// loc and the first instant of the following month.
func MonthOf(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

func categoryKey(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
