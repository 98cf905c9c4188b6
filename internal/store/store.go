// Package store persists savings goals, recurring transactions and the
// audit trail, either in Postgres or in memory.
package store

import (
	"errors"

	"finance-ledger-backend/internal/profile"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// AuditFilter selects audit entries. A nil Profile selects all profiles.
type AuditFilter struct {
	Profile *profile.Profile
	Limit   int
}

const defaultAuditLimit = 500

func (f AuditFilter) limit() int {
	if f.Limit <= 0 {
		return defaultAuditLimit
	}
	return f.Limit
}
