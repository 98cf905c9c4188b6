package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS savings_goals (
		id TEXT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		profile VARCHAR(20) NOT NULL,
		target_amount DECIMAL(12,2) NOT NULL,
		target_date DATE,
		current_balance DECIMAL(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS savings_transactions (
		goal_id TEXT NOT NULL REFERENCES savings_goals(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		description TEXT NOT NULL,
		PRIMARY KEY (goal_id, seq)
	);

	CREATE TABLE IF NOT EXISTS pending_withdrawals (
		id TEXT PRIMARY KEY,
		goal_id TEXT NOT NULL REFERENCES savings_goals(id) ON DELETE CASCADE,
		amount DECIMAL(12,2) NOT NULL CHECK (amount < 0),
		reason TEXT NOT NULL,
		challenge TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recurring_transactions (
		id TEXT PRIMARY KEY,
		description VARCHAR(255) NOT NULL,
		category VARCHAR(100) NOT NULL DEFAULT '',
		amount DECIMAL(12,2) NOT NULL,
		frequency VARCHAR(20) NOT NULL,
		start_date DATE NOT NULL,
		profile VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS ledger_transactions (
		id TEXT PRIMARY KEY,
		date DATE NOT NULL,
		description VARCHAR(255) NOT NULL,
		category VARCHAR(100) NOT NULL,
		amount DECIMAL(12,2) NOT NULL CHECK (amount <> 0),
		profile VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS category_budgets (
		id TEXT PRIMARY KEY,
		category VARCHAR(100) NOT NULL,
		amount_limit DECIMAL(12,2) NOT NULL CHECK (amount_limit > 0),
		period VARCHAR(20) NOT NULL DEFAULT 'monthly',
		profile VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		logged_at TIMESTAMPTZ NOT NULL,
		profile VARCHAR(20) NOT NULL,
		username VARCHAR(100) NOT NULL,
		action VARCHAR(255) NOT NULL,
		details TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_savings_goals_profile ON savings_goals(profile);
	CREATE INDEX IF NOT EXISTS idx_pending_withdrawals_goal ON pending_withdrawals(goal_id);
	CREATE INDEX IF NOT EXISTS idx_recurring_profile ON recurring_transactions(profile);
	CREATE INDEX IF NOT EXISTS idx_ledger_transactions_profile_date ON ledger_transactions(profile, date DESC);
	CREATE INDEX IF NOT EXISTS idx_category_budgets_profile ON category_budgets(profile);
	CREATE INDEX IF NOT EXISTS idx_audit_logs_logged_at ON audit_logs(logged_at DESC);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
