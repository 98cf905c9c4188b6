package store

import (
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	"finance-ledger-backend/internal/schedule"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// fakeRow hands preset column values to Scan, in order.
type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(r))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r[i]))
	}
	return nil
}

// roundTripDate sends t through the DATE codec the driver uses, the way a
// value travels into a DATE column and back.
func roundTripDate(t *testing.T, in time.Time) time.Time {
	t.Helper()
	m := pgtype.NewMap()
	buf, err := m.Encode(pgtype.DateOID, pgtype.BinaryFormatCode, in, nil)
	if err != nil {
		t.Fatalf("encode date: %v", err)
	}
	var out time.Time
	if err := m.Scan(pgtype.DateOID, pgtype.BinaryFormatCode, buf, &out); err != nil {
		t.Fatalf("scan date: %v", err)
	}
	return out
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	return loc
}

func TestRecurringStartDateKeepsCalendarDay(t *testing.T) {
	loc := newYork(t)
	entered := time.Date(2024, time.January, 15, 0, 0, 0, 0, loc)
	stored := roundTripDate(t, entered)

	r, err := scanRecurring(fakeRow{
		"r1", "Gehalt", "Einkommen", decimal.NewFromInt(3500), "monthly", stored, "Privat",
	}, loc)
	if err != nil {
		t.Fatal(err)
	}
	if !r.StartDate.Equal(entered) {
		t.Fatalf("start date = %v, want %v", r.StartDate, entered)
	}
	if got := r.StartDate.In(loc).Format(time.DateOnly); got != "2024-01-15" {
		t.Fatalf("start date renders as %s", got)
	}

	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, loc)
	next, err := schedule.NextDueDate(r.StartDate, r.Frequency, now)
	if err != nil {
		t.Fatal(err)
	}
	if got := next.In(loc).Format(time.DateOnly); got != "2024-06-15" {
		t.Fatalf("next due date = %s, want 2024-06-15", got)
	}
}

func TestGoalTargetDateKeepsCalendarDay(t *testing.T) {
	loc := newYork(t)
	entered := time.Date(2025, time.December, 31, 0, 0, 0, 0, loc)
	stored := roundTripDate(t, entered)

	g, err := scanGoal(fakeRow{
		"g1", "Urlaub", "Privat", decimal.NewFromInt(5000),
		sql.NullTime{Time: stored, Valid: true}, decimal.Zero,
	}, loc)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.TargetDate.In(loc).Format(time.DateOnly); got != "2025-12-31" {
		t.Fatalf("target date renders as %s", got)
	}

	g, err = scanGoal(fakeRow{
		"g2", "Laptop", "Privat", decimal.NewFromInt(1500), sql.NullTime{}, decimal.Zero,
	}, loc)
	if err != nil {
		t.Fatal(err)
	}
	if !g.TargetDate.IsZero() {
		t.Fatalf("missing target date = %v, want zero", g.TargetDate)
	}
}

func TestDateIn(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	tests := []struct {
		name string
		in   time.Time
		loc  *time.Location
		want string
	}{
		{"utc", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), time.UTC, "2024-02-29T00:00:00Z"},
		{"west of utc", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), newYork(t), "2024-01-15T00:00:00-05:00"},
		{"east of utc", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), tokyo, "2024-07-01T00:00:00+09:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dateIn(tt.in, tt.loc).Format(time.RFC3339); got != tt.want {
				t.Fatalf("dateIn = %s, want %s", got, tt.want)
			}
		})
	}
}
