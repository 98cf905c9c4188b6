package cashflow

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Summary totals the transactions of a period. Expenses are negative.
type Summary struct {
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	Net              decimal.Decimal
	TransactionCount int
}

// CategoryTotal is the spending of one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// Analytics is the cash flow of the period [From, To).
type Analytics struct {
	From       time.Time
	To         time.Time
	Summary    Summary
	ByCategory []CategoryTotal
}

// Analyze sums the transactions booked in [from, to) and breaks the
// expenses down by category, largest spending first.
func Analyze(ts []Transaction, from, to time.Time) Analytics {
	a := Analytics{
		From: from,
		To:   to,
		Summary: Summary{
			TotalIncome:   decimal.Zero,
			TotalExpenses: decimal.Zero,
		},
		ByCategory: []CategoryTotal{},
	}

	index := make(map[string]int)
	for _, t := range (Filter{From: from, To: to}).Apply(ts) {
		a.Summary.TransactionCount++
		if t.Kind() == Income {
			a.Summary.TotalIncome = a.Summary.TotalIncome.Add(t.Amount)
			continue
		}
		a.Summary.TotalExpenses = a.Summary.TotalExpenses.Add(t.Amount)

		key := categoryKey(t.Category)
		i, ok := index[key]
		if !ok {
			i = len(a.ByCategory)
			index[key] = i
			a.ByCategory = append(a.ByCategory, CategoryTotal{Category: strings.TrimSpace(t.Category), Total: decimal.Zero})
		}
		a.ByCategory[i].Total = a.ByCategory[i].Total.Add(t.Amount)
		a.ByCategory[i].Count++
	}
	a.Summary.Net = a.Summary.TotalIncome.Add(a.Summary.TotalExpenses)

	sort.SliceStable(a.ByCategory, func(i, j int) bool {
		ci, cj := a.ByCategory[i], a.ByCategory[j]
		if !ci.Total.Equal(cj.Total) {
			return ci.Total.LessThan(cj.Total)
		}
		return ci.Category < cj.Category
	})
	return a
}

// Category is a category in use by a profile.
type Category struct {
	Name         string
	Transactions int
	Budgeted     bool
}

// Categories lists the categories used by transactions or budgets, by
// name. Names differing only in case are merged under the first spelling
// seen.
func Categories(ts []Transaction, budgets []Budget) []Category {
	index := make(map[string]int)
	out := make([]Category, 0)
	add := func(name string) int {
		key := categoryKey(name)
		if i, ok := index[key]; ok {
			return i
		}
		index[key] = len(out)
		out = append(out, Category{Name: strings.TrimSpace(name)})
		return len(out) - 1
	}
	for _, t := range ts {
		out[add(t.Category)].Transactions++
	}
	for _, b := range budgets {
		out[add(b.Category)].Budgeted = true
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
