package enums

import "fmt"

// IntentStatus tracks the lifecycle of a payment intent. Every status except
// pending is terminal and immutable.
type IntentStatus string

const (
	IntentStatusPending  IntentStatus = "pending"
	IntentStatusApproved IntentStatus = "approved"
	IntentStatusDeclined IntentStatus = "declined"
	IntentStatusCanceled IntentStatus = "canceled"
	IntentStatusError    IntentStatus = "error"
	IntentStatusExpired  IntentStatus = "expired"
)

var validIntentStatuses = []IntentStatus{
	IntentStatusPending,
	IntentStatusApproved,
	IntentStatusDeclined,
	IntentStatusCanceled,
	IntentStatusError,
	IntentStatusExpired,
}

// String implements fmt.Stringer.
func (s IntentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known IntentStatus.
func (s IntentStatus) IsValid() bool {
	for _, candidate := range validIntentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s.
func (s IntentStatus) IsTerminal() bool {
	return s.IsValid() && s != IntentStatusPending
}

// ParseIntentStatus converts raw input into an IntentStatus.
func ParseIntentStatus(value string) (IntentStatus, error) {
	for _, candidate := range validIntentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid intent status %q", value)
}
