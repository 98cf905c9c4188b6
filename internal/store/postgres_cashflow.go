package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finance-ledger-backend/internal/cashflow"
	"finance-ledger-backend/internal/profile"
)

const transactionColumns = `id, date, description, category, amount, profile`

// ListTransactions returns the transactions of profile p, newest first.
func (s *Postgres) ListTransactions(ctx context.Context, p profile.Profile) ([]cashflow.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM ledger_transactions
		WHERE profile = $1
		ORDER BY date DESC, created_at DESC, id`, string(p))
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// ensure empty array ([]) instead of null when no rows
	ts := make([]cashflow.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows, s.loc)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

// GetTransaction loads one transaction.
func (s *Postgres) GetTransaction(ctx context.Context, id string) (cashflow.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM ledger_transactions WHERE id = $1`, id), s.loc)
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return t, err
}

// CreateTransaction inserts t.
func (s *Postgres) CreateTransaction(ctx context.Context, t cashflow.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_transactions (id, date, description, category, amount, profile)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Date, t.Description, t.Category, t.Amount, string(t.Profile))
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a transaction and returns it.
func (s *Postgres) DeleteTransaction(ctx context.Context, id string) (cashflow.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx,
		`DELETE FROM ledger_transactions WHERE id = $1 RETURNING `+transactionColumns, id), s.loc)
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return t, err
}

func scanTransaction(row scanner, loc *time.Location) (cashflow.Transaction, error) {
	var t cashflow.Transaction
	var p string
	if err := row.Scan(&t.ID, &t.Date, &t.Description, &t.Category, &t.Amount, &p); err != nil {
		return cashflow.Transaction{}, err
	}
	t.Date = dateIn(t.Date, loc)
	t.Profile = profile.Profile(p)
	return t, nil
}

const budgetColumns = `id, category, amount_limit, profile`

// ListBudgets returns the budgets of profile p in creation order.
func (s *Postgres) ListBudgets(ctx context.Context, p profile.Profile) ([]cashflow.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM category_budgets WHERE profile = $1 ORDER BY created_at, id`, string(p))
	if err != nil {
		return nil, fmt.Errorf("querying budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	budgets := make([]cashflow.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// GetBudget loads one budget.
func (s *Postgres) GetBudget(ctx context.Context, id string) (cashflow.Budget, error) {
	b, err := scanBudget(s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM category_budgets WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	return b, err
}

// CreateBudget inserts b.
func (s *Postgres) CreateBudget(ctx context.Context, b cashflow.Budget) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_budgets (id, category, amount_limit, profile)
		VALUES ($1, $2, $3, $4)`,
		b.ID, b.Category, b.Limit, string(b.Profile))
	if err != nil {
		return fmt.Errorf("inserting budget: %w", err)
	}
	return nil
}

// UpdateBudget replaces category and limit of b.
func (s *Postgres) UpdateBudget(ctx context.Context, b cashflow.Budget) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE category_budgets SET category = $2, amount_limit = $3 WHERE id = $1`,
		b.ID, b.Category, b.Limit)
	if err != nil {
		return fmt.Errorf("updating budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget %s: %w", b.ID, ErrNotFound)
	}
	return nil
}

// DeleteBudget removes a budget and returns it.
func (s *Postgres) DeleteBudget(ctx context.Context, id string) (cashflow.Budget, error) {
	b, err := scanBudget(s.db.QueryRowContext(ctx,
		`DELETE FROM category_budgets WHERE id = $1 RETURNING `+budgetColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	return b, err
}

func scanBudget(row scanner) (cashflow.Budget, error) {
	var b cashflow.Budget
	var p string
	if err := row.Scan(&b.ID, &b.Category, &b.Limit, &p); err != nil {
		return cashflow.Budget{}, err
	}
	b.Profile = profile.Profile(p)
	return b, nil
}
