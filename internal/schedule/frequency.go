// Package schedule projects recurring payments onto the calendar and
// normalises their amounts for monthly cash-flow reporting.
package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFrequency is returned for a frequency outside the six
// supported periods.
var ErrUnknownFrequency = errors.New("unknown frequency")

// Frequency is the period at which a recurring transaction repeats.
type Frequency string

const (
	Daily      Frequency = "daily"
	Weekly     Frequency = "weekly"
	Monthly    Frequency = "monthly"
	Quarterly  Frequency = "quarterly"
	SemiAnnual Frequency = "semiannual"
	Annual     Frequency = "annual"
)

// Frequencies lists every supported frequency, shortest period first.
func Frequencies() []Frequency {
	return []Frequency{Daily, Weekly, Monthly, Quarterly, SemiAnnual, Annual}
}

// German labels as shown in the dashboard forms.
var labels = map[Frequency]string{
	Daily:      "Täglich",
	Weekly:     "Wöchentlich",
	Monthly:    "Monatlich",
	Quarterly:  "Quartalsweise",
	SemiAnnual: "Halbjährlich",
	Annual:     "Jährlich",
}

// ParseFrequency accepts either the API key ("monthly") or the form
// label ("Monatlich"), case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	for _, f := range Frequencies() {
		if in == string(f) || in == strings.ToLower(labels[f]) {
			return f, nil
		}
	}
	switch in {
	case "semi-annual", "semiannually", "biannual":
		return SemiAnnual, nil
	case "yearly", "annually":
		return Annual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	_, ok := labels[f]
	return ok
}

// Label returns the German form label.
func (f Frequency) Label() string {
	return labels[f]
}

func (f Frequency) String() string {
	return string(f)
}
