package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start time.Time
		freq  Frequency
		want  time.Time
	}{
		{"future start unchanged", date(2024, time.July, 1), Monthly, date(2024, time.July, 1)},
		{"daily", date(2024, time.January, 1), Daily, date(2024, time.June, 11)},
		{"weekly", date(2024, time.June, 3), Weekly, date(2024, time.June, 17)},
		{"monthly", date(2024, time.January, 15), Monthly, date(2024, time.June, 15)},
		{"monthly same day earlier hour", date(2024, time.January, 10), Monthly, date(2024, time.July, 10)},
		{"quarterly", date(2024, time.January, 1), Quarterly, date(2024, time.July, 1)},
		{"semiannual", date(2023, time.March, 1), SemiAnnual, date(2024, time.September, 1)},
		{"annual", date(2024, time.March, 1), Annual, date(2025, time.March, 1)},
		{"month end clamps", date(2024, time.January, 31), Monthly, date(2024, time.June, 29)},
		{"leap day yearly", date(2020, time.February, 29), Annual, date(2025, time.February, 28)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := NextDueDate(c.start, c.freq, now)
			if err != nil {
				t.Fatalf("NextDueDate error: %v", err)
			}
			if !got.Equal(c.want) {
				t.Fatalf("NextDueDate = %s, want %s", got.Format(time.DateOnly), c.want.Format(time.DateOnly))
			}
		})
	}
}

func TestNextDueDateAlwaysAfterNow(t *testing.T) {
	now := time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC)
	starts := []time.Time{
		date(1999, time.December, 31),
		date(2024, time.February, 29),
		date(2025, time.March, 31),
		now,
	}
	for _, f := range Frequencies() {
		for _, s := range starts {
			got, err := NextDueDate(s, f, now)
			if err != nil {
				t.Fatalf("%s from %s: %v", f, s, err)
			}
			if !got.After(now) {
				t.Fatalf("%s from %s: got %s, not after now", f, s, got)
			}
			again, _ := NextDueDate(s, f, now)
			if !again.Equal(got) {
				t.Fatalf("%s from %s: second call %s differs from %s", f, s, again, got)
			}
		}
	}
}

func TestNextDueDateBulkSkipMatchesStepping(t *testing.T) {
	start := date(2021, time.May, 4)
	now := time.Date(2024, time.November, 2, 8, 30, 0, 0, time.UTC)
	for _, f := range []Frequency{Daily, Weekly} {
		want := start
		for !want.After(now) {
			want = advance(want, f)
		}
		got, err := NextDueDate(start, f, now)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: got %s, want %s", f, got, want)
		}
	}
}

func TestNextDueDateUnknownFrequency(t *testing.T) {
	_, err := NextDueDate(date(2024, time.January, 1), Frequency("hourly"), date(2024, time.June, 1))
	if !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("err = %v, want ErrUnknownFrequency", err)
	}
}

func TestMonthlyEquivalent(t *testing.T) {
	cases := []struct {
		amount string
		freq   Frequency
		want   string
	}{
		{"-15.99", Monthly, "-15.99"},
		{"-1200", Quarterly, "-400"},
		{"100", Weekly, "433.33"},
		{"10", Daily, "304.4"},
		{"-600", SemiAnnual, "-100"},
		{"-89.90", Annual, "-7.49"},
	}
	for _, c := range cases {
		got := MonthlyEquivalent(decimal.RequireFromString(c.amount), c.freq).Round(2)
		want := decimal.RequireFromString(c.want)
		if !got.Equal(want) {
			t.Fatalf("MonthlyEquivalent(%s, %s) = %s, want %s", c.amount, c.freq, got, want)
		}
	}

	if got := MonthlyEquivalent(decimal.NewFromInt(5), Frequency("")); !got.IsZero() {
		t.Fatalf("unknown frequency = %s, want 0", got)
	}
}

func TestParseFrequency(t *testing.T) {
	cases := map[string]Frequency{
		"daily":         Daily,
		"Täglich":       Daily,
		"Wöchentlich":   Weekly,
		"MONTHLY":       Monthly,
		"Quartalsweise": Quarterly,
		"Halbjährlich":  SemiAnnual,
		"semi-annual":   SemiAnnual,
		"Jährlich":      Annual,
		"yearly":        Annual,
	}
	for in, want := range cases {
		got, err := ParseFrequency(in)
		if err != nil {
			t.Fatalf("ParseFrequency(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseFrequency(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseFrequency("fortnightly"); !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("expected ErrUnknownFrequency, got %v", err)
	}
}
