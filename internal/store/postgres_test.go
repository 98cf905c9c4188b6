package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"finance-ledger-backend/internal/cashflow"
	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/savings"
	"finance-ledger-backend/internal/schedule"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
)

// openTestDB connects to TEST_DATABASE_URL and skips the test when it is
// not set.
func openTestDB(t *testing.T) *Postgres {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("database unreachable: %v", err)
	}
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewPostgres(db, time.UTC)
}

func TestPostgresGoalRoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	l := savings.NewLedger(savings.WithRand(savings.NewRand(3)))

	g, err := l.NewGoal(profile.Business, "Anzahlung Geschäftsauto", decimal.NewFromInt(10000), time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreateGoal(ctx, g); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	t.Cleanup(func() { _, _ = s.DeleteGoal(ctx, g.ID) })

	g, err = s.UpdateGoal(ctx, g.ID, func(g savings.Goal) (savings.Goal, error) {
		return l.Contribute(g, decimal.NewFromInt(4500), "")
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	g, err = s.UpdateGoal(ctx, g.ID, func(g savings.Goal) (savings.Goal, error) {
		return l.Contribute(g, decimal.NewFromInt(-250), "Werkstatt")
	})
	if err != nil {
		t.Fatalf("withdrawal request: %v", err)
	}

	loaded, err := s.GetGoal(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.History) != 1 || len(loaded.PendingWithdrawals) != 1 {
		t.Fatalf("history=%d pending=%d", len(loaded.History), len(loaded.PendingWithdrawals))
	}
	id := loaded.PendingWithdrawals[0].ID

	done, err := s.UpdateGoal(ctx, g.ID, func(g savings.Goal) (savings.Goal, error) {
		return l.CompleteWithdrawal(g, id)
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.CurrentBalance.Equal(decimal.NewFromInt(4250)) {
		t.Fatalf("balance = %s", done.CurrentBalance)
	}

	_, err = s.UpdateGoal(ctx, g.ID, func(g savings.Goal) (savings.Goal, error) {
		return l.CompleteWithdrawal(g, id)
	})
	if !errors.Is(err, savings.ErrNotFound) {
		t.Fatalf("second completion err = %v", err)
	}

	list, err := s.ListGoals(ctx, profile.Business)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, lg := range list {
		if lg.ID == g.ID {
			found = true
			if err := lg.Verify(); err != nil {
				t.Fatal(err)
			}
		}
	}
	if !found {
		t.Fatal("goal missing from list")
	}
}

func TestPostgresRecurring(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	r := schedule.Recurring{
		ID:          uuid.NewString(),
		Description: "AWS Rechnung",
		Category:    "Hosting",
		Amount:      decimal.RequireFromString("-250.50"),
		Frequency:   schedule.Monthly,
		StartDate:   time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		Profile:     profile.Business,
	}
	if err := s.CreateRecurring(ctx, r); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetRecurring(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Amount.Equal(r.Amount) || got.Frequency != schedule.Monthly {
		t.Fatalf("got %+v", got)
	}
	if _, err := s.DeleteRecurring(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetRecurring(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPostgresTransactionsAndBudgets(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	tx := cashflow.Transaction{
		ID:          uuid.NewString(),
		Date:        time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC),
		Description: "Kundenzahlung Projekt X",
		Category:    "Umsatz",
		Amount:      decimal.NewFromInt(5000),
		Profile:     profile.Business,
	}
	if err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Amount.Equal(tx.Amount) || !got.Date.Equal(tx.Date) || got.Profile != profile.Business {
		t.Fatalf("got %+v", got)
	}
	if _, err := s.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DeleteTransaction(ctx, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	b := cashflow.Budget{ID: uuid.NewString(), Category: "Software", Limit: decimal.NewFromInt(400), Profile: profile.Business}
	if err := s.CreateBudget(ctx, b); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _, _ = s.DeleteBudget(ctx, b.ID) })
	b.Limit = decimal.NewFromInt(450)
	if err := s.UpdateBudget(ctx, b); err != nil {
		t.Fatal(err)
	}
	gotBudget, err := s.GetBudget(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !gotBudget.Limit.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("limit = %s", gotBudget.Limit)
	}
}
