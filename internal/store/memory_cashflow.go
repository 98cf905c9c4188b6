package store

import (
	"context"
	"fmt"

	"finance-ledger-backend/internal/cashflow"
	"finance-ledger-backend/internal/profile"
)

// ListTransactions returns the transactions of profile p, newest first.
func (m *Memory) ListTransactions(_ context.Context, p profile.Profile) ([]cashflow.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]cashflow.Transaction, 0)
	for i := len(m.txnOrder) - 1; i >= 0; i-- {
		if t := m.txns[m.txnOrder[i]]; t.Profile == p {
			out = append(out, t)
		}
	}
	cashflow.SortNewestFirst(out)
	return out, nil
}

func (m *Memory) GetTransaction(_ context.Context, id string) (cashflow.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.txns[id]
	if !ok {
		return cashflow.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (m *Memory) CreateTransaction(_ context.Context, t cashflow.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[t.ID]; ok {
		return fmt.Errorf("transaction %s already exists", t.ID)
	}
	m.txns[t.ID] = t
	m.txnOrder = append(m.txnOrder, t.ID)
	return nil
}

func (m *Memory) DeleteTransaction(_ context.Context, id string) (cashflow.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txns[id]
	if !ok {
		return cashflow.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	delete(m.txns, id)
	m.txnOrder = without(m.txnOrder, id)
	return t, nil
}

// ListBudgets returns the budgets of profile p in creation order.
func (m *Memory) ListBudgets(_ context.Context, p profile.Profile) ([]cashflow.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]cashflow.Budget, 0)
	for _, id := range m.budgetOrd {
		if b := m.budgets[id]; b.Profile == p {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *Memory) GetBudget(_ context.Context, id string) (cashflow.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.budgets[id]
	if !ok {
		return cashflow.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	return b, nil
}

func (m *Memory) CreateBudget(_ context.Context, b cashflow.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.budgets[b.ID]; ok {
		return fmt.Errorf("budget %s already exists", b.ID)
	}
	m.budgets[b.ID] = b
	m.budgetOrd = append(m.budgetOrd, b.ID)
	return nil
}

// UpdateBudget replaces category and limit; the profile is kept.
func (m *Memory) UpdateBudget(_ context.Context, b cashflow.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.budgets[b.ID]
	if !ok {
		return fmt.Errorf("budget %s: %w", b.ID, ErrNotFound)
	}
	b.Profile = old.Profile
	m.budgets[b.ID] = b
	return nil
}

func (m *Memory) DeleteBudget(_ context.Context, id string) (cashflow.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[id]
	if !ok {
		return cashflow.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	delete(m.budgets, id)
	m.budgetOrd = without(m.budgetOrd, id)
	return b, nil
}
