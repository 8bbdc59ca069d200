package enums

import "fmt"

// TerminalOutcome is the result a payment terminal reports for one intent.
type TerminalOutcome string

const (
	TerminalOutcomeApproved TerminalOutcome = "approved"
	TerminalOutcomeDeclined TerminalOutcome = "declined"
	TerminalOutcomeCanceled TerminalOutcome = "canceled"
	TerminalOutcomeError    TerminalOutcome = "error"
)

var validTerminalOutcomes = []TerminalOutcome{
	TerminalOutcomeApproved,
	TerminalOutcomeDeclined,
	TerminalOutcomeCanceled,
	TerminalOutcomeError,
}

// String implements fmt.Stringer.
func (o TerminalOutcome) String() string {
	return string(o)
}

// IsValid reports whether the value is a known TerminalOutcome.
func (o TerminalOutcome) IsValid() bool {
	for _, candidate := range validTerminalOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

// IntentStatus maps the outcome onto the terminal intent status it produces.
func (o TerminalOutcome) IntentStatus() IntentStatus {
	switch o {
	case TerminalOutcomeApproved:
		return IntentStatusApproved
	case TerminalOutcomeDeclined:
		return IntentStatusDeclined
	case TerminalOutcomeCanceled:
		return IntentStatusCanceled
	default:
		return IntentStatusError
	}
}

// ParseTerminalOutcome converts raw input into a TerminalOutcome.
func ParseTerminalOutcome(value string) (TerminalOutcome, error) {
	for _, candidate := range validTerminalOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid terminal outcome %q", value)
}
