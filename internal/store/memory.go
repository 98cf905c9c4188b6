package store

import (
	"context"
	"fmt"
	"sync"

	"finance-ledger-backend/internal/audit"
	"finance-ledger-backend/internal/cashflow"
	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/savings"
	"finance-ledger-backend/internal/schedule"
)

// Memory keeps all records in process memory. A single mutex serialises
// writers, which gives goal updates the same guarantees as the row lock
// in Postgres.
type Memory struct {
	mu sync.RWMutex

	goals      map[string]savings.Goal
	goalOrder  []string
	recurring  map[string]schedule.Recurring
	recurOrder []string
	txns       map[string]cashflow.Transaction
	txnOrder   []string
	budgets    map[string]cashflow.Budget
	budgetOrd  []string
	audit      []audit.Entry
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		goals:     make(map[string]savings.Goal),
		recurring: make(map[string]schedule.Recurring),
		txns:      make(map[string]cashflow.Transaction),
		budgets:   make(map[string]cashflow.Budget),
	}
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func (m *Memory) ListGoals(_ context.Context, p profile.Profile) ([]savings.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]savings.Goal, 0)
	for _, id := range m.goalOrder {
		if g := m.goals[id]; g.Profile == p {
			out = append(out, copyGoal(g))
		}
	}
	return out, nil
}

func (m *Memory) GetGoal(_ context.Context, id string) (savings.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.goals[id]
	if !ok {
		return savings.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	return copyGoal(g), nil
}

func (m *Memory) CreateGoal(_ context.Context, g savings.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goals[g.ID]; ok {
		return fmt.Errorf("goal %s already exists", g.ID)
	}
	m.goals[g.ID] = copyGoal(g)
	m.goalOrder = append(m.goalOrder, g.ID)
	return nil
}

func (m *Memory) UpdateGoal(_ context.Context, id string, fn func(savings.Goal) (savings.Goal, error)) (savings.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.goals[id]
	if !ok {
		return savings.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	updated, err := fn(copyGoal(current))
	if err != nil {
		return copyGoal(current), err
	}
	if err := updated.Verify(); err != nil {
		return copyGoal(current), err
	}
	if len(updated.History) < len(current.History) {
		return copyGoal(current), fmt.Errorf("goal %s: history shrank from %d to %d entries", id, len(current.History), len(updated.History))
	}
	m.goals[id] = copyGoal(updated)
	return updated, nil
}

func (m *Memory) DeleteGoal(_ context.Context, id string) (savings.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return savings.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	delete(m.goals, id)
	m.goalOrder = without(m.goalOrder, id)
	return g, nil
}

func (m *Memory) ListRecurring(_ context.Context, p profile.Profile) ([]schedule.Recurring, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.Recurring, 0)
	for _, id := range m.recurOrder {
		if r := m.recurring[id]; r.Profile == p {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) GetRecurring(_ context.Context, id string) (schedule.Recurring, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.recurring[id]
	if !ok {
		return schedule.Recurring{}, fmt.Errorf("recurring transaction %s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (m *Memory) CreateRecurring(_ context.Context, r schedule.Recurring) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recurring[r.ID]; ok {
		return fmt.Errorf("recurring transaction %s already exists", r.ID)
	}
	m.recurring[r.ID] = r
	m.recurOrder = append(m.recurOrder, r.ID)
	return nil
}

func (m *Memory) UpdateRecurring(_ context.Context, r schedule.Recurring) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.recurring[r.ID]
	if !ok {
		return fmt.Errorf("recurring transaction %s: %w", r.ID, ErrNotFound)
	}
	r.Profile = old.Profile
	m.recurring[r.ID] = r
	return nil
}

func (m *Memory) DeleteRecurring(_ context.Context, id string) (schedule.Recurring, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recurring[id]
	if !ok {
		return schedule.Recurring{}, fmt.Errorf("recurring transaction %s: %w", id, ErrNotFound)
	}
	delete(m.recurring, id)
	m.recurOrder = without(m.recurOrder, id)
	return r, nil
}

func (m *Memory) AppendAudit(_ context.Context, entries ...audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entries...)
	return nil
}

// ListAudit returns audit entries, newest first.
func (m *Memory) ListAudit(_ context.Context, f AuditFilter) ([]audit.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]audit.Entry, 0)
	for i := len(m.audit) - 1; i >= 0 && len(out) < f.limit(); i-- {
		e := m.audit[i]
		if f.Profile != nil && e.Profile != *f.Profile {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory) ClearAudit(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = nil
	return nil
}

func copyGoal(g savings.Goal) savings.Goal {
	g.History = append([]savings.Transaction{}, g.History...)
	g.PendingWithdrawals = append([]savings.PendingWithdrawal{}, g.PendingWithdrawals...)
	return g
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
