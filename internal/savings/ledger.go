package savings

import (
	"fmt"
	"strings"
	"time"

	"finance-ledger-backend/internal/audit"
	"finance-ledger-backend/internal/profile"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositDescription is booked for every deposit.
const DepositDescription = "Deposit"

// Ledger applies changes to goals. It never mutates the goal it is given;
// every operation returns the new value, which the caller stores.
type Ledger struct {
	now     func() time.Time
	rand    Rand
	catalog Catalog
	audit   audit.Sink
	newID   func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithRand sets the random source used to draw challenges.
func WithRand(r Rand) Option {
	return func(l *Ledger) { l.rand = r }
}

// WithCatalog replaces the challenge catalog.
func WithCatalog(c Catalog) Option {
	return func(l *Ledger) { l.catalog = c }
}

// WithIDs sets the generator for goal and withdrawal ids.
func WithIDs(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// NewLedger returns a Ledger with the built-in catalog, the system clock,
// a time-seeded random source and no audit sink.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		now:     time.Now,
		catalog: DefaultCatalog(),
		audit:   audit.Discard,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rand == nil {
		l.rand = NewRand(l.now().UnixNano())
	}
	return l
}

// WithAudit returns a copy of the ledger reporting to s.
func (l *Ledger) WithAudit(s audit.Sink) *Ledger {
	c := *l
	if s == nil {
		s = audit.Discard
	}
	c.audit = s
	return &c
}

// Catalog returns the challenge catalog in use.
func (l *Ledger) Catalog() Catalog {
	return l.catalog
}

// NewGoal creates an empty goal for profile p.
func (l *Ledger) NewGoal(p profile.Profile, name string, target decimal.Decimal, targetDate time.Time) (Goal, error) {
	name = strings.TrimSpace(name)
	if err := validateGoal(name, target); err != nil {
		return Goal{}, err
	}
	g := Goal{
		ID:                 l.newID(),
		Name:               name,
		Profile:            p,
		TargetAmount:       target,
		TargetDate:         targetDate,
		CurrentBalance:     decimal.Zero,
		History:            []Transaction{},
		PendingWithdrawals: []PendingWithdrawal{},
	}
	l.audit.Record(audit.Event{
		Action:  "Savings goal created",
		Details: fmt.Sprintf("Goal: %q, target: %s", g.Name, formatAmount(g.TargetAmount)),
	})
	return g, nil
}

// UpdateGoal renames a goal and changes its target. Balance, history and
// pending withdrawals are kept.
func (l *Ledger) UpdateGoal(g Goal, name string, target decimal.Decimal, targetDate time.Time) (Goal, error) {
	name = strings.TrimSpace(name)
	if err := validateGoal(name, target); err != nil {
		return g, err
	}
	updated := g.clone()
	updated.Name = name
	updated.TargetAmount = target
	updated.TargetDate = targetDate
	l.audit.Record(audit.Event{
		Action: "Savings goal updated",
		Details: fmt.Sprintf("Goal %q (ID: %s) changed to %q, target: %s",
			g.Name, g.ID, updated.Name, formatAmount(target)),
	})
	return updated, nil
}

// DeleteGoal reports the deletion of g and returns the pending
// withdrawals that are discarded with it.
func (l *Ledger) DeleteGoal(g Goal) []PendingWithdrawal {
	details := fmt.Sprintf("Goal %q (ID: %s)", g.Name, g.ID)
	if n := len(g.PendingWithdrawals); n > 0 {
		details += fmt.Sprintf(", %d pending withdrawal(s) discarded", n)
	}
	l.audit.Record(audit.Event{Action: "Savings goal deleted", Details: details})
	return append([]PendingWithdrawal(nil), g.PendingWithdrawals...)
}

// Contribute books a deposit (amount > 0) or requests a withdrawal
// (amount < 0). A withdrawal needs a reason and is only queued together
// with a challenge; the balance changes when CompleteWithdrawal is called.
func (l *Ledger) Contribute(g Goal, amount decimal.Decimal, reason string) (Goal, error) {
	if amount.IsZero() {
		return g, fmt.Errorf("%w: amount must not be zero", ErrValidation)
	}

	if amount.IsPositive() {
		updated := g.clone()
		updated.History = append(updated.History, Transaction{
			Date:        l.now(),
			Amount:      amount,
			Description: DepositDescription,
		})
		updated.CurrentBalance = g.CurrentBalance.Add(amount)
		l.audit.Record(audit.Event{
			Action:  "Savings deposit",
			Details: fmt.Sprintf("Amount: %s to goal %q", formatAmount(amount), g.Name),
		})
		return updated, nil
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return g, fmt.Errorf("%w: a reason is required for withdrawals", ErrValidation)
	}
	challenge, err := l.catalog.Pick(TierFor(amount), l.rand)
	if err != nil {
		return g, err
	}

	updated := g.clone()
	updated.PendingWithdrawals = append(updated.PendingWithdrawals, PendingWithdrawal{
		ID:        l.newID(),
		Amount:    amount,
		Reason:    reason,
		Challenge: challenge,
		CreatedAt: l.now(),
	})
	l.audit.Record(audit.Event{
		Action:  "Savings withdrawal requested",
		Details: fmt.Sprintf("Amount: %s from goal %q", formatAmount(amount), g.Name),
	})
	return updated, nil
}

// CompleteWithdrawal books the pending withdrawal with the given id after
// its challenge was completed. The entry leaves the queue, so completing
// it a second time fails with ErrNotFound.
func (l *Ledger) CompleteWithdrawal(g Goal, withdrawalID string) (Goal, error) {
	idx := -1
	for i, pw := range g.PendingWithdrawals {
		if pw.ID == withdrawalID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return g, fmt.Errorf("%w: withdrawal %s is not pending on goal %s", ErrNotFound, withdrawalID, g.ID)
	}

	pw := g.PendingWithdrawals[idx]
	updated := g.clone()
	updated.PendingWithdrawals = append(updated.PendingWithdrawals[:idx], updated.PendingWithdrawals[idx+1:]...)
	updated.History = append(updated.History, Transaction{
		Date:        l.now(),
		Amount:      pw.Amount,
		Description: pw.Reason,
	})
	updated.CurrentBalance = g.CurrentBalance.Add(pw.Amount)
	l.audit.Record(audit.Event{
		Action:  "Savings withdrawal completed",
		Details: fmt.Sprintf("Amount: %s from goal %q", formatAmount(pw.Amount), g.Name),
	})
	return updated, nil
}

func validateGoal(name string, target decimal.Decimal) error {
	if name == "" {
		return fmt.Errorf("%w: goal name is required", ErrValidation)
	}
	if !target.IsPositive() {
		return fmt.Errorf("%w: target amount must be positive", ErrValidation)
	}
	return nil
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2) + " EUR"
}
