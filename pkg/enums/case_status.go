package enums

import "fmt"

// CaseStatus tracks where a case sits in its lifecycle.
type CaseStatus string

const (
	CaseStatusActive    CaseStatus = "active"
	CaseStatusPending   CaseStatus = "pending"
	CaseStatusReview    CaseStatus = "review"
	CaseStatusCompleted CaseStatus = "completed"
)

var validCaseStatuses = []CaseStatus{
	CaseStatusActive,
	CaseStatusPending,
	CaseStatusReview,
	CaseStatusCompleted,
}

// String implements fmt.Stringer.
func (c CaseStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CaseStatus.
func (c CaseStatus) IsValid() bool {
	for _, candidate := range validCaseStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCaseStatus converts raw input into a CaseStatus.
func ParseCaseStatus(value string) (CaseStatus, error) {
	for _, candidate := range validCaseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid case status %q", value)
}
