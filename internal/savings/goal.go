// Package savings implements savings goals: a balance backed by an
// append-only history, and withdrawals that are only booked once the
// saver has completed a challenge.
package savings

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"finance-ledger-backend/internal/profile"

	"github.com/shopspring/decimal"
)

var (
	// ErrValidation marks input the ledger refuses to act on.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned for a withdrawal that is not pending.
	ErrNotFound = errors.New("not found")
	// ErrInternal signals a broken ledger configuration.
	ErrInternal = errors.New("internal error")
)

// Transaction is a booked change of a goal's balance.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// PendingWithdrawal is a requested withdrawal waiting for its challenge
// to be completed. Amount is negative.
type PendingWithdrawal struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	Challenge string          `json:"challenge"`
	CreatedAt time.Time       `json:"created_at"`
}

// Goal is a savings target. CurrentBalance always equals the sum of
// History; pending withdrawals are not part of either.
type Goal struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Profile            profile.Profile     `json:"profile"`
	TargetAmount       decimal.Decimal     `json:"target_amount"`
	TargetDate         time.Time           `json:"target_date"`
	CurrentBalance     decimal.Decimal     `json:"current_balance"`
	History            []Transaction       `json:"history"`
	PendingWithdrawals []PendingWithdrawal `json:"pending_withdrawals"`
}

// HistoryTotal sums the amounts of all booked transactions.
func (g Goal) HistoryTotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range g.History {
		total = total.Add(t.Amount)
	}
	return total
}

// Verify checks that the balance matches the history.
func (g Goal) Verify() error {
	if total := g.HistoryTotal(); !total.Equal(g.CurrentBalance) {
		return fmt.Errorf("goal %s: balance %s does not match history total %s",
			g.ID, g.CurrentBalance, total)
	}
	return nil
}

// Remaining is the amount still missing to reach the target, never
// negative.
func (g Goal) Remaining() decimal.Decimal {
	r := g.TargetAmount.Sub(g.CurrentBalance)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Pending returns the pending withdrawal with the given id.
func (g Goal) Pending(id string) (PendingWithdrawal, bool) {
	for _, pw := range g.PendingWithdrawals {
		if pw.ID == id {
			return pw, true
		}
	}
	return PendingWithdrawal{}, false
}

// clone copies the slices so that the returned goal can be changed
// without touching g.
func (g Goal) clone() Goal {
	c := g
	c.History = append(make([]Transaction, 0, len(g.History)+1), g.History...)
	c.PendingWithdrawals = append(make([]PendingWithdrawal, 0, len(g.PendingWithdrawals)+1), g.PendingWithdrawals...)
	return c
}

// PendingView is a pending withdrawal together with the goal it belongs to.
type PendingView struct {
	PendingWithdrawal
	GoalID   string `json:"goal_id"`
	GoalName string `json:"goal_name"`
}

// PendingAcross lists the pending withdrawals of all goals, oldest first.
func PendingAcross(goals []Goal) []PendingView {
	var out []PendingView
	for _, g := range goals {
		for _, pw := range g.PendingWithdrawals {
			out = append(out, PendingView{PendingWithdrawal: pw, GoalID: g.ID, GoalName: g.Name})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
