package savings

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"finance-ledger-backend/internal/audit"
	"finance-ledger-backend/internal/profile"

	"github.com/shopspring/decimal"
)

type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testLedger(t *testing.T, opts ...Option) (*Ledger, *[]audit.Event) {
	t.Helper()
	clock := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	seq := 0
	var events []audit.Event
	base := []Option{
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		WithRand(fixedRand(0)),
		WithIDs(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	}
	l := NewLedger(append(base, opts...)...)
	return l.WithAudit(audit.SinkFunc(func(e audit.Event) { events = append(events, e) })), &events
}

func newGoal(t *testing.T, l *Ledger) Goal {
	t.Helper()
	g, err := l.NewGoal(profile.Private, "Urlaub auf Hawaii", d("5000"), time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewGoal: %v", err)
	}
	return g
}

func TestNewGoalStartsEmpty(t *testing.T) {
	l, events := testLedger(t)
	g := newGoal(t, l)

	if !g.CurrentBalance.IsZero() {
		t.Fatalf("balance = %s, want 0", g.CurrentBalance)
	}
	if len(g.History) != 0 || len(g.PendingWithdrawals) != 0 {
		t.Fatalf("expected empty history and pending, got %d/%d", len(g.History), len(g.PendingWithdrawals))
	}
	if g.ID != "id-1" || g.Profile != profile.Private {
		t.Fatalf("unexpected goal %+v", g)
	}
	if len(*events) != 1 || (*events)[0].Action != "Savings goal created" {
		t.Fatalf("events = %+v", *events)
	}
}

func TestNewGoalValidation(t *testing.T) {
	l, events := testLedger(t)
	if _, err := l.NewGoal(profile.Private, "  ", d("100"), time.Time{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty name: err = %v", err)
	}
	if _, err := l.NewGoal(profile.Private, "Laptop", d("0"), time.Time{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero target: err = %v", err)
	}
	if len(*events) != 0 {
		t.Fatalf("rejected goals must not be audited, got %+v", *events)
	}
}

func TestEndToEndWithdrawal(t *testing.T) {
	l, _ := testLedger(t)
	g := newGoal(t, l)

	g, err := l.Contribute(g, d("2500"), "Ersteinzahlung")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !g.CurrentBalance.Equal(d("2500")) || len(g.History) != 1 {
		t.Fatalf("after deposit balance=%s history=%d", g.CurrentBalance, len(g.History))
	}
	if g.History[0].Description != DepositDescription {
		t.Fatalf("deposit description = %q", g.History[0].Description)
	}

	g, err = l.Contribute(g, d("-500"), "Urlaub")
	if err != nil {
		t.Fatalf("withdrawal request: %v", err)
	}
	if !g.CurrentBalance.Equal(d("2500")) {
		t.Fatalf("balance changed on request: %s", g.CurrentBalance)
	}
	if len(g.PendingWithdrawals) != 1 {
		t.Fatalf("pending = %d, want 1", len(g.PendingWithdrawals))
	}
	pw := g.PendingWithdrawals[0]
	if !l.Catalog().Contains(Hard, pw.Challenge) {
		t.Fatalf("challenge %q not from hard pool", pw.Challenge)
	}
	if pw.Reason != "Urlaub" || !pw.Amount.Equal(d("-500")) {
		t.Fatalf("unexpected pending withdrawal %+v", pw)
	}

	g, err = l.CompleteWithdrawal(g, pw.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !g.CurrentBalance.Equal(d("2000")) {
		t.Fatalf("balance = %s, want 2000", g.CurrentBalance)
	}
	if len(g.History) != 2 || len(g.PendingWithdrawals) != 0 {
		t.Fatalf("history=%d pending=%d, want 2/0", len(g.History), len(g.PendingWithdrawals))
	}
	if g.History[1].Description != "Urlaub" || !g.History[1].Amount.Equal(d("-500")) {
		t.Fatalf("unexpected history entry %+v", g.History[1])
	}
}

func TestCompleteWithdrawalTwiceFails(t *testing.T) {
	l, _ := testLedger(t)
	g := newGoal(t, l)
	g, _ = l.Contribute(g, d("100"), "")
	g, _ = l.Contribute(g, d("-40"), "Kino")
	id := g.PendingWithdrawals[0].ID

	g, err := l.CompleteWithdrawal(g, id)
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}
	after := g.CurrentBalance

	again, err := l.CompleteWithdrawal(g, id)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("second completion err = %v, want ErrNotFound", err)
	}
	if !again.CurrentBalance.Equal(after) || len(again.History) != len(g.History) {
		t.Fatalf("second completion changed the goal: %+v", again)
	}
}

func TestCompleteUnknownWithdrawal(t *testing.T) {
	l, events := testLedger(t)
	g := newGoal(t, l)
	*events = nil
	if _, err := l.CompleteWithdrawal(g, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(*events) != 0 {
		t.Fatalf("failed completion audited: %+v", *events)
	}
}

func TestContributeValidation(t *testing.T) {
	l, _ := testLedger(t)
	g := newGoal(t, l)
	g, _ = l.Contribute(g, d("50"), "")

	if _, err := l.Contribute(g, decimal.Zero, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero amount: err = %v", err)
	}

	got, err := l.Contribute(g, d("-10"), "   ")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("missing reason: err = %v", err)
	}
	if len(got.PendingWithdrawals) != 0 || len(g.PendingWithdrawals) != 0 {
		t.Fatal("rejected withdrawal was queued")
	}
}

func TestChallengeTiers(t *testing.T) {
	cases := []struct {
		amount string
		tier   Tier
	}{
		{"-30", Easy},
		{"-50", Easy},
		{"-50.01", Medium},
		{"-150", Medium},
		{"-200", Medium},
		{"-200.01", Hard},
		{"-500", Hard},
	}
	for _, c := range cases {
		if got := TierFor(d(c.amount)); got != c.tier {
			t.Fatalf("TierFor(%s) = %s, want %s", c.amount, got, c.tier)
		}
		for i := 0; i < 5; i++ {
			l, _ := testLedger(t, WithRand(fixedRand(i)))
			g, err := l.Contribute(newGoal(t, l), d(c.amount), "test")
			if err != nil {
				t.Fatalf("Contribute(%s): %v", c.amount, err)
			}
			if ch := g.PendingWithdrawals[0].Challenge; !l.Catalog().Contains(c.tier, ch) {
				t.Fatalf("Contribute(%s) challenge %q not in %s pool", c.amount, ch, c.tier)
			}
		}
	}
}

func TestChallengeDrawnFreshPerRequest(t *testing.T) {
	seq := 0
	l, _ := testLedger(t, WithRand(randFunc(func(n int) int {
		seq++
		return seq % n
	})))
	g := newGoal(t, l)
	g, _ = l.Contribute(g, d("-20"), "a")
	first := g.PendingWithdrawals[0].Challenge
	g, _ = l.Contribute(g, d("-20"), "b")

	if g.PendingWithdrawals[0].Challenge != first {
		t.Fatal("existing challenge changed")
	}
	if g.PendingWithdrawals[1].Challenge == first {
		t.Fatal("second request reused the first challenge")
	}
}

type randFunc func(int) int

func (f randFunc) Intn(n int) int { return f(n) }

func TestEmptyCatalogIsInternalError(t *testing.T) {
	l, _ := testLedger(t, WithCatalog(Catalog{}))
	g := newGoal(t, l)
	got, err := l.Contribute(g, d("-10"), "reason")
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal", err)
	}
	if len(got.PendingWithdrawals) != 0 {
		t.Fatal("withdrawal queued without challenge")
	}
}

func TestBalanceInvariantHolds(t *testing.T) {
	l, _ := testLedger(t, WithRand(NewRand(42)))
	g := newGoal(t, l)

	steps := []string{"2500", "-30", "120", "-150", "-500", "0", "-5", "75.25"}
	for _, s := range steps {
		next, err := l.Contribute(g, d(s), "reason")
		if err == nil {
			g = next
		}
		if err := g.Verify(); err != nil {
			t.Fatalf("after contribute %s: %v", s, err)
		}
		if len(g.PendingWithdrawals) > 0 && s == "120" {
			var cerr error
			g, cerr = l.CompleteWithdrawal(g, g.PendingWithdrawals[0].ID)
			if cerr != nil {
				t.Fatal(cerr)
			}
			if err := g.Verify(); err != nil {
				t.Fatalf("after completion: %v", err)
			}
		}
	}
	for len(g.PendingWithdrawals) > 0 {
		var err error
		g, err = l.CompleteWithdrawal(g, g.PendingWithdrawals[len(g.PendingWithdrawals)-1].ID)
		if err != nil {
			t.Fatal(err)
		}
		if err := g.Verify(); err != nil {
			t.Fatal(err)
		}
	}
	// 2500 + 120 + 75.25 - 30 - 150 - 500 - 5
	if !g.CurrentBalance.Equal(d("2010.25")) {
		t.Fatalf("final balance = %s", g.CurrentBalance)
	}
}

func TestOperationsDoNotMutateInput(t *testing.T) {
	l, _ := testLedger(t)
	g := newGoal(t, l)
	g, _ = l.Contribute(g, d("100"), "")
	g, _ = l.Contribute(g, d("-10"), "a")
	g, _ = l.Contribute(g, d("-20"), "b")

	snapshot := g.clone()
	if _, err := l.CompleteWithdrawal(g, g.PendingWithdrawals[0].ID); err != nil {
		t.Fatal(err)
	}
	if len(g.PendingWithdrawals) != 2 || g.PendingWithdrawals[0].ID != snapshot.PendingWithdrawals[0].ID {
		t.Fatal("CompleteWithdrawal mutated its input")
	}
	if !g.CurrentBalance.Equal(snapshot.CurrentBalance) || len(g.History) != len(snapshot.History) {
		t.Fatal("CompleteWithdrawal mutated balance or history")
	}
}

func TestUpdateAndDeleteGoal(t *testing.T) {
	l, events := testLedger(t)
	g := newGoal(t, l)
	g, _ = l.Contribute(g, d("300"), "")
	g, _ = l.Contribute(g, d("-100"), "Flug")

	updated, err := l.UpdateGoal(g, "Hawaii 2026", d("6000"), g.TargetDate)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Hawaii 2026" || !updated.TargetAmount.Equal(d("6000")) {
		t.Fatalf("unexpected update %+v", updated)
	}
	if !updated.CurrentBalance.Equal(d("300")) || len(updated.PendingWithdrawals) != 1 {
		t.Fatal("update touched balance or pending withdrawals")
	}
	if _, err := l.UpdateGoal(g, "", d("1"), g.TargetDate); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty name update err = %v", err)
	}

	discarded := l.DeleteGoal(updated)
	if len(discarded) != 1 || discarded[0].Reason != "Flug" {
		t.Fatalf("discarded = %+v", discarded)
	}
	last := (*events)[len(*events)-1]
	if last.Action != "Savings goal deleted" {
		t.Fatalf("last event = %+v", last)
	}
}

func TestPendingAcross(t *testing.T) {
	l, _ := testLedger(t)
	a := newGoal(t, l)
	b := newGoal(t, l)
	a, _ = l.Contribute(a, d("-10"), "first")
	b, _ = l.Contribute(b, d("-20"), "second")
	a, _ = l.Contribute(a, d("-30"), "third")

	got := PendingAcross([]Goal{a, b})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []string{"first", "second", "third"}
	for i, r := range want {
		if got[i].Reason != r {
			t.Fatalf("position %d = %q, want %q", i, got[i].Reason, r)
		}
	}
	if got[1].GoalID != b.ID {
		t.Fatalf("GoalID = %s, want %s", got[1].GoalID, b.ID)
	}
}

func TestConfigureAutomation(t *testing.T) {
	l, events := testLedger(t)
	if err := l.ConfigureAutomation(RoundUp, 0); err != nil {
		t.Fatal(err)
	}
	if err := l.ConfigureAutomation(Surplus, 50); err != nil {
		t.Fatal(err)
	}
	if err := l.ConfigureAutomation(Surplus, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if _, err := ParseAutomation("weekly-sweep"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(*events) != 2 {
		t.Fatalf("events = %d, want 2", len(*events))
	}
}
