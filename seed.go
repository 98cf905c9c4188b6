package main

import (
	"context"
	"fmt"
	"time"

	"finance-ledger-backend/internal/cashflow"
	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/savings"
	"finance-ledger-backend/internal/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const initialDepositDescription = "Ersteinzahlung"

type demoGoal struct {
	name       string
	profile    profile.Profile
	balance    string
	target     string
	targetDate string
}

var demoGoals = []demoGoal{
	{"Urlaub auf Hawaii", profile.Private, "2500", "5000", "2025-12-31"},
	{"Neuer Laptop", profile.Private, "800", "1500", "2024-11-30"},
	{"Betriebliche Rücklagen", profile.Business, "7500", "20000", "2026-06-30"},
	{"Anzahlung Geschäftsauto", profile.Business, "4500", "10000", "2025-08-31"},
}

type demoRecurring struct {
	description string
	amount      string
	category    string
	frequency   schedule.Frequency
	startDate   string
	profile     profile.Profile
}

var demoRecurringTransactions = []demoRecurring{
	{"Miete", "-1200", "Wohnen", schedule.Monthly, "2024-01-01", profile.Private},
	{"Gehalt", "3500", "Einkommen", schedule.Monthly, "2024-01-15", profile.Private},
	{"Netflix", "-15.99", "Unterhaltung", schedule.Monthly, "2024-01-20", profile.Private},
	{"AWS Rechnung", "-250.50", "Hosting", schedule.Monthly, "2024-01-05", profile.Business},
	{"DATEV-Gebühren", "-89.90", "Buchhaltung", schedule.Annual, "2024-03-01", profile.Business},
	{"Versicherungsbeitrag", "-150", "Versicherungen", schedule.Quarterly, "2024-01-01", profile.Private},
	{"GEZ", "-55.08", "Wohnen", schedule.Quarterly, "2024-02-15", profile.Private},
}

type demoTransaction struct {
	daysAgo     int
	description string
	category    string
	amount      string
	profile     profile.Profile
}

var demoTransactions = []demoTransaction{
	{1, "Lebensmitteleinkauf bei Rewe", "Lebensmittel", "-75.50", profile.Private},
	{2, "Gehalt Juli", "Einkommen", "2500", profile.Private},
	{3, "Netflix Abonnement", "Unterhaltung", "-15.99", profile.Private},
	{4, "Tanken bei Shell", "Transport", "-45", profile.Private},
	{1, "Büromaterial von Office Depot", "Bürobedarf", "-125", profile.Business},
	{2, "Kundenzahlung Projekt X", "Umsatz", "5000", profile.Business},
	{3, "Software-Abo (Adobe Creative Cloud)", "Software", "-59.99", profile.Business},
}

type demoBudget struct {
	category string
	limit    string
	profile  profile.Profile
}

var demoBudgets = []demoBudget{
	{"Lebensmittel", "500", profile.Private},
	{"Unterhaltung", "200", profile.Private},
	{"Transport", "150", profile.Private},
	{"Marketing", "1200", profile.Business},
	{"Software", "400", profile.Business},
	{"Büromaterial", "200", profile.Business},
}

// hasData reports whether any profile already holds goals, transactions,
// budgets or recurring transactions
func hasData(ctx context.Context, st appStore) (bool, error) {
	for _, p := range profile.All() {
		goals, err := st.ListGoals(ctx, p)
		if err != nil {
			return false, fmt.Errorf("checking goals: %w", err)
		}
		txns, err := st.ListTransactions(ctx, p)
		if err != nil {
			return false, fmt.Errorf("checking transactions: %w", err)
		}
		budgets, err := st.ListBudgets(ctx, p)
		if err != nil {
			return false, fmt.Errorf("checking budgets: %w", err)
		}
		recurring, err := st.ListRecurring(ctx, p)
		if err != nil {
			return false, fmt.Errorf("checking recurring transactions: %w", err)
		}
		if len(goals)+len(txns)+len(budgets)+len(recurring) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// seedDemoData inserts a handful of goals, transactions, budgets and
// recurring transactions. Idempotent: will only run if the store is empty.
func seedDemoData(ctx context.Context, st appStore, now time.Time, loc *time.Location) error {
	seeded, err := hasData(ctx, st)
	if err != nil || seeded {
		return err
	}

	for _, d := range demoGoals {
		targetDate, err := time.ParseInLocation(time.DateOnly, d.targetDate, loc)
		if err != nil {
			return err
		}
		balance := decimal.RequireFromString(d.balance)
		g := savings.Goal{
			ID:             uuid.NewString(),
			Name:           d.name,
			Profile:        d.profile,
			TargetAmount:   decimal.RequireFromString(d.target),
			TargetDate:     targetDate,
			CurrentBalance: balance,
			History: []savings.Transaction{
				{Date: now, Amount: balance, Description: initialDepositDescription},
			},
			PendingWithdrawals: []savings.PendingWithdrawal{},
		}
		if err := g.Verify(); err != nil {
			return err
		}
		if err := st.CreateGoal(ctx, g); err != nil {
			return fmt.Errorf("seeding demo goal %q: %w", d.name, err)
		}
	}

	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	for _, d := range demoTransactions {
		t := cashflow.Transaction{
			ID:          uuid.NewString(),
			Date:        today.AddDate(0, 0, -d.daysAgo),
			Description: d.description,
			Category:    d.category,
			Amount:      decimal.RequireFromString(d.amount),
			Profile:     d.profile,
		}
		if err := st.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("seeding demo transaction %q: %w", d.description, err)
		}
	}

	for _, d := range demoBudgets {
		b := cashflow.Budget{
			ID:       uuid.NewString(),
			Category: d.category,
			Limit:    decimal.RequireFromString(d.limit),
			Profile:  d.profile,
		}
		if err := st.CreateBudget(ctx, b); err != nil {
			return fmt.Errorf("seeding demo budget %q: %w", d.category, err)
		}
	}

	for _, d := range demoRecurringTransactions {
		start, err := time.ParseInLocation(time.DateOnly, d.startDate, loc)
		if err != nil {
			return err
		}
		r := schedule.Recurring{
			ID:          uuid.NewString(),
			Description: d.description,
			Category:    d.category,
			Amount:      decimal.RequireFromString(d.amount),
			Frequency:   d.frequency,
			StartDate:   start,
			Profile:     d.profile,
		}
		if err := st.CreateRecurring(ctx, r); err != nil {
			return fmt.Errorf("seeding demo recurring transaction %q: %w", d.description, err)
		}
	}
	return nil
}
