package savings

import (
	"fmt"
	"strings"

	"finance-ledger-backend/internal/audit"
)

// Automation is a savings rule a user can switch on.
type Automation string

const (
	// RoundUp rounds card payments up and saves the difference.
	RoundUp Automation = "round-up"
	// Surplus moves a share of the month-end surplus into savings.
	Surplus Automation = "surplus"
)

// ParseAutomation validates an automation name.
func ParseAutomation(s string) (Automation, error) {
	switch a := Automation(strings.ToLower(strings.TrimSpace(s))); a {
	case RoundUp, Surplus:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown automation %q", ErrValidation, s)
}

// ConfigureAutomation records an automation setting. Only the surplus
// rule takes a percentage, which must lie in 1..100.
func (l *Ledger) ConfigureAutomation(a Automation, percentage int) error {
	details := "Type: round-up savings"
	switch a {
	case RoundUp:
	case Surplus:
		if percentage < 1 || percentage > 100 {
			return fmt.Errorf("%w: surplus percentage must be between 1 and 100", ErrValidation)
		}
		details = fmt.Sprintf("Type: surplus allocation, %d%%", percentage)
	default:
		return fmt.Errorf("%w: unknown automation %q", ErrValidation, a)
	}
	l.audit.Record(audit.Event{Action: "Savings automation configured", Details: details})
	return nil
}
