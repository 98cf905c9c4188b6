// Package cashflow books income and expenses per profile and measures
// them against monthly category budgets.
package cashflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"finance-ledger-backend/internal/profile"

	"github.com/shopspring/decimal"
)

// ErrValidation marks a transaction or budget that cannot be stored.
var ErrValidation = errors.New("validation failed")

// Kind tells income from expenses. It follows the sign of the amount.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

var kindLabels = map[Kind]string{
	Income:  "Einkommen",
	Expense: "Ausgabe",
}

// KindOf classifies an amount: negative amounts are expenses.
func KindOf(amount decimal.Decimal) Kind {
	if amount.IsNegative() {
		return Expense
	}
	return Income
}

// ParseKind accepts the API key or the German label, case-insensitively.
func ParseKind(s string) (Kind, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	for k, label := range kindLabels {
		if in == string(k) || in == strings.ToLower(label) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown transaction type %q", ErrValidation, s)
}

// Label returns the German label.
func (k Kind) Label() string {
	return kindLabels[k]
}

// Transaction is a booked income or expense.
type Transaction struct {
	ID          string
	Date        time.Time
	Description string
	Category    string
	Amount      decimal.Decimal
	Profile     profile.Profile
}

// Kind reports whether t is income or an expense.
func (t Transaction) Kind() Kind {
	return KindOf(t.Amount)
}

// Validate checks the fields a transaction cannot do without.
func (t Transaction) Validate() error {
	var errs []error
	if strings.TrimSpace(t.Description) == "" {
		errs = append(errs, errors.New("description is required"))
	}
	if strings.TrimSpace(t.Category) == "" {
		errs = append(errs, errors.New("category is required"))
	}
	if t.Amount.IsZero() {
		errs = append(errs, errors.New("amount must not be zero"))
	}
	if t.Date.IsZero() {
		errs = append(errs, errors.New("date is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
	}
	return nil
}

// SortNewestFirst orders transactions by date, latest first. Transactions
// of the same day keep their relative order.
func SortNewestFirst(ts []Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].Date.After(ts[j].Date)
	})
}

// Filter narrows a transaction list. Zero fields match everything; To is
// exclusive.
type Filter struct {
	Search   string
	Category string
	Kind     Kind
	From     time.Time
	To       time.Time
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Transaction) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(strings.TrimSpace(f.Search))) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(strings.TrimSpace(t.Category), strings.TrimSpace(f.Category)) {
		return false
	}
	if f.Kind != "" && t.Kind() != f.Kind {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Date.Before(f.To) {
		return false
	}
	return true
}

// Apply returns the transactions that match, in their original order.
func (f Filter) Apply(ts []Transaction) []Transaction {
	out := make([]Transaction, 0, len(ts))
	for _, t := range ts {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
