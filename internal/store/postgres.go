package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/savings"
)

// Postgres stores everything in a Postgres database opened through the
// pgx stdlib driver.
type Postgres struct {
	db  *sql.DB
	loc *time.Location
}

// NewPostgres wraps an open database handle. DATE columns are read back
// as midnight in loc, the zone the dates were entered in; nil means UTC.
func NewPostgres(db *sql.DB, loc *time.Location) *Postgres {
	if loc == nil {
		loc = time.UTC
	}
	return &Postgres{db: db, loc: loc}
}

// Ping checks the connection.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Postgres) Close() error {
	return s.db.Close()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const goalColumns = `id, name, profile, target_amount, target_date, current_balance`

// ListGoals returns the goals of profile p in creation order.
func (s *Postgres) ListGoals(ctx context.Context, p profile.Profile) ([]savings.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM savings_goals WHERE profile = $1 ORDER BY created_at, id`, string(p))
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	goals := make([]savings.Goal, 0)
	index := make(map[string]int)
	for rows.Next() {
		g, err := scanGoal(rows, s.loc)
		if err != nil {
			return nil, err
		}
		index[g.ID] = len(goals)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hrows, err := s.db.QueryContext(ctx, `
		SELECT t.goal_id, t.date, t.amount, t.description
		FROM savings_transactions t
		JOIN savings_goals g ON g.id = t.goal_id
		WHERE g.profile = $1
		ORDER BY t.goal_id, t.seq`, string(p))
	if err != nil {
		return nil, fmt.Errorf("querying goal history: %w", err)
	}
	defer func() { _ = hrows.Close() }()
	for hrows.Next() {
		var goalID string
		var t savings.Transaction
		if err := hrows.Scan(&goalID, &t.Date, &t.Amount, &t.Description); err != nil {
			return nil, err
		}
		if i, ok := index[goalID]; ok {
			goals[i].History = append(goals[i].History, t)
		}
	}
	if err := hrows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx, `
		SELECT w.goal_id, w.id, w.amount, w.reason, w.challenge, w.created_at
		FROM pending_withdrawals w
		JOIN savings_goals g ON g.id = w.goal_id
		WHERE g.profile = $1
		ORDER BY w.created_at, w.id`, string(p))
	if err != nil {
		return nil, fmt.Errorf("querying pending withdrawals: %w", err)
	}
	defer func() { _ = prows.Close() }()
	for prows.Next() {
		var goalID string
		var pw savings.PendingWithdrawal
		if err := prows.Scan(&goalID, &pw.ID, &pw.Amount, &pw.Reason, &pw.Challenge, &pw.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[goalID]; ok {
			goals[i].PendingWithdrawals = append(goals[i].PendingWithdrawals, pw)
		}
	}
	return goals, prows.Err()
}

// GetGoal loads a goal with its history and pending withdrawals.
func (s *Postgres) GetGoal(ctx context.Context, id string) (savings.Goal, error) {
	return loadGoal(ctx, s.db, s.loc, id, false)
}

// CreateGoal inserts a new goal together with any history it already has.
func (s *Postgres) CreateGoal(ctx context.Context, g savings.Goal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO savings_goals (id, name, profile, target_amount, target_date, current_balance)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		g.ID, g.Name, string(g.Profile), g.TargetAmount, nullDate(g.TargetDate), g.CurrentBalance)
	if err != nil {
		return fmt.Errorf("inserting goal: %w", err)
	}
	if err := writeGoalChanges(ctx, tx, savings.Goal{}, g); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateGoal applies fn to the goal while holding its row lock, so that
// concurrent contributions and completions cannot break the balance
// invariant. Nothing is written if fn fails.
func (s *Postgres) UpdateGoal(ctx context.Context, id string, fn func(savings.Goal) (savings.Goal, error)) (savings.Goal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return savings.Goal{}, err
	}
	defer func() { _ = tx.Rollback() }()

	current, err := loadGoal(ctx, tx, s.loc, id, true)
	if err != nil {
		return savings.Goal{}, err
	}
	updated, err := fn(current)
	if err != nil {
		return current, err
	}
	if err := updated.Verify(); err != nil {
		return current, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE savings_goals
		SET name = $2, target_amount = $3, target_date = $4, current_balance = $5
		WHERE id = $1`,
		id, updated.Name, updated.TargetAmount, nullDate(updated.TargetDate), updated.CurrentBalance)
	if err != nil {
		return current, fmt.Errorf("updating goal: %w", err)
	}
	if err := writeGoalChanges(ctx, tx, current, updated); err != nil {
		return current, err
	}
	if err := tx.Commit(); err != nil {
		return current, fmt.Errorf("committing goal update: %w", err)
	}
	return updated, nil
}

// DeleteGoal removes a goal; its history and pending withdrawals go with
// it. The deleted goal is returned.
func (s *Postgres) DeleteGoal(ctx context.Context, id string) (savings.Goal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return savings.Goal{}, err
	}
	defer func() { _ = tx.Rollback() }()

	g, err := loadGoal(ctx, tx, s.loc, id, true)
	if err != nil {
		return savings.Goal{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = $1`, id); err != nil {
		return savings.Goal{}, fmt.Errorf("deleting goal: %w", err)
	}
	return g, tx.Commit()
}

func loadGoal(ctx context.Context, q querier, loc *time.Location, id string, lock bool) (savings.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	g, err := scanGoal(q.QueryRowContext(ctx, query, id), loc)
	if errors.Is(err, sql.ErrNoRows) {
		return savings.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return savings.Goal{}, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT date, amount, description FROM savings_transactions WHERE goal_id = $1 ORDER BY seq`, id)
	if err != nil {
		return savings.Goal{}, fmt.Errorf("querying goal history: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var t savings.Transaction
		if err := rows.Scan(&t.Date, &t.Amount, &t.Description); err != nil {
			return savings.Goal{}, err
		}
		g.History = append(g.History, t)
	}
	if err := rows.Err(); err != nil {
		return savings.Goal{}, err
	}

	prows, err := q.QueryContext(ctx, `
		SELECT id, amount, reason, challenge, created_at
		FROM pending_withdrawals WHERE goal_id = $1
		ORDER BY created_at, id`, id)
	if err != nil {
		return savings.Goal{}, fmt.Errorf("querying pending withdrawals: %w", err)
	}
	defer func() { _ = prows.Close() }()
	for prows.Next() {
		var pw savings.PendingWithdrawal
		if err := prows.Scan(&pw.ID, &pw.Amount, &pw.Reason, &pw.Challenge, &pw.CreatedAt); err != nil {
			return savings.Goal{}, err
		}
		g.PendingWithdrawals = append(g.PendingWithdrawals, pw)
	}
	return g, prows.Err()
}

// writeGoalChanges appends new history entries and syncs the pending
// withdrawals. History is append-only, so only the tail is inserted.
func writeGoalChanges(ctx context.Context, q querier, before, after savings.Goal) error {
	if len(after.History) < len(before.History) {
		return fmt.Errorf("goal %s: history shrank from %d to %d entries", after.ID, len(before.History), len(after.History))
	}
	for i := len(before.History); i < len(after.History); i++ {
		t := after.History[i]
		_, err := q.ExecContext(ctx, `
			INSERT INTO savings_transactions (goal_id, seq, date, amount, description)
			VALUES ($1, $2, $3, $4, $5)`,
			after.ID, i, t.Date, t.Amount, t.Description)
		if err != nil {
			return fmt.Errorf("inserting goal transaction: %w", err)
		}
	}

	keep := make(map[string]bool, len(after.PendingWithdrawals))
	for _, pw := range after.PendingWithdrawals {
		keep[pw.ID] = true
	}
	existing := make(map[string]bool, len(before.PendingWithdrawals))
	for _, pw := range before.PendingWithdrawals {
		existing[pw.ID] = true
		if keep[pw.ID] {
			continue
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM pending_withdrawals WHERE id = $1`, pw.ID); err != nil {
			return fmt.Errorf("removing pending withdrawal: %w", err)
		}
	}
	for _, pw := range after.PendingWithdrawals {
		if existing[pw.ID] {
			continue
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO pending_withdrawals (id, goal_id, amount, reason, challenge, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			pw.ID, after.ID, pw.Amount, pw.Reason, pw.Challenge, pw.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting pending withdrawal: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(row scanner, loc *time.Location) (savings.Goal, error) {
	var g savings.Goal
	var p string
	var targetDate sql.NullTime
	if err := row.Scan(&g.ID, &g.Name, &p, &g.TargetAmount, &targetDate, &g.CurrentBalance); err != nil {
		return savings.Goal{}, err
	}
	g.Profile = profile.Profile(p)
	if targetDate.Valid {
		g.TargetDate = dateIn(targetDate.Time, loc)
	}
	g.History = []savings.Transaction{}
	g.PendingWithdrawals = []savings.PendingWithdrawal{}
	return g, nil
}

func nullDate(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// dateIn re-anchors a DATE value, which the driver returns as midnight
// UTC, to midnight of the same calendar day in loc.
func dateIn(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
