package store

import (
	"context"
	"fmt"

	"finance-ledger-backend/internal/audit"
	"finance-ledger-backend/internal/profile"
)

// AppendAudit stores audit entries.
func (s *Postgres) AppendAudit(ctx context.Context, entries ...audit.Entry) error {
	for _, e := range entries {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO audit_logs (id, logged_at, profile, username, action, details)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.Timestamp, string(e.Profile), e.User, e.Action, e.Details)
		if err != nil {
			return fmt.Errorf("inserting audit entry: %w", err)
		}
	}
	return nil
}

// ListAudit returns audit entries, newest first.
func (s *Postgres) ListAudit(ctx context.Context, f AuditFilter) ([]audit.Entry, error) {
	query := `SELECT id, logged_at, profile, username, action, details FROM audit_logs`
	args := []any{}
	if f.Profile != nil {
		query += ` WHERE profile = $1`
		args = append(args, string(*f.Profile))
	}
	query += fmt.Sprintf(` ORDER BY logged_at DESC, id LIMIT %d`, f.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		var p string
		if err := rows.Scan(&e.ID, &e.Timestamp, &p, &e.User, &e.Action, &e.Details); err != nil {
			return nil, err
		}
		e.Profile = profile.Profile(p)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearAudit deletes every audit entry.
func (s *Postgres) ClearAudit(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM audit_logs`); err != nil {
		return fmt.Errorf("clearing audit log: %w", err)
	}
	return nil
}
