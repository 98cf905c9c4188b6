package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/schedule"
)

const recurringColumns = `id, description, category, amount, frequency, start_date, profile`

// ListRecurring returns the recurring transactions of profile p.
func (s *Postgres) ListRecurring(ctx context.Context, p profile.Profile) ([]schedule.Recurring, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE profile = $1 ORDER BY created_at, id`, string(p))
	if err != nil {
		return nil, fmt.Errorf("querying recurring transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]schedule.Recurring, 0)
	for rows.Next() {
		r, err := scanRecurring(rows, s.loc)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// GetRecurring loads one recurring transaction.
func (s *Postgres) GetRecurring(ctx context.Context, id string) (schedule.Recurring, error) {
	r, err := scanRecurring(s.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = $1`, id), s.loc)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Recurring{}, fmt.Errorf("recurring transaction %s: %w", id, ErrNotFound)
	}
	return r, err
}

// CreateRecurring inserts r.
func (s *Postgres) CreateRecurring(ctx context.Context, r schedule.Recurring) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (id, description, category, amount, frequency, start_date, profile)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.Description, r.Category, r.Amount, string(r.Frequency), r.StartDate, string(r.Profile))
	if err != nil {
		return fmt.Errorf("inserting recurring transaction: %w", err)
	}
	return nil
}

// UpdateRecurring replaces the stored fields of r.
func (s *Postgres) UpdateRecurring(ctx context.Context, r schedule.Recurring) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recurring_transactions
		SET description = $2, category = $3, amount = $4, frequency = $5, start_date = $6
		WHERE id = $1`,
		r.ID, r.Description, r.Category, r.Amount, string(r.Frequency), r.StartDate)
	if err != nil {
		return fmt.Errorf("updating recurring transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recurring transaction %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

// DeleteRecurring removes a recurring transaction and returns it.
func (s *Postgres) DeleteRecurring(ctx context.Context, id string) (schedule.Recurring, error) {
	r, err := scanRecurring(s.db.QueryRowContext(ctx,
		`DELETE FROM recurring_transactions WHERE id = $1 RETURNING `+recurringColumns, id), s.loc)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Recurring{}, fmt.Errorf("recurring transaction %s: %w", id, ErrNotFound)
	}
	return r, err
}

func scanRecurring(row scanner, loc *time.Location) (schedule.Recurring, error) {
	var r schedule.Recurring
	var freq, p string
	if err := row.Scan(&r.ID, &r.Description, &r.Category, &r.Amount, &freq, &r.StartDate, &p); err != nil {
		return schedule.Recurring{}, err
	}
	r.StartDate = dateIn(r.StartDate, loc)
	r.Frequency = schedule.Frequency(freq)
	r.Profile = profile.Profile(p)
	return r, nil
}
