package enums

import "fmt"

// PrintJobStatus tracks the lifecycle of a receipt print job.
type PrintJobStatus string

const (
	PrintJobStatusQueued  PrintJobStatus = "queued"
	PrintJobStatusPrinted PrintJobStatus = "printed"
	PrintJobStatusFailed  PrintJobStatus = "failed"
)

var validPrintJobStatuses = []PrintJobStatus{
	PrintJobStatusQueued,
	PrintJobStatusPrinted,
	PrintJobStatusFailed,
}

// String implements fmt.Stringer.
func (p PrintJobStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PrintJobStatus.
func (p PrintJobStatus) IsValid() bool {
	for _, candidate := range validPrintJobStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePrintJobStatus converts raw input into a PrintJobStatus.
func ParsePrintJobStatus(value string) (PrintJobStatus, error) {
	for _, candidate := range validPrintJobStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid print job status %q", value)
}
