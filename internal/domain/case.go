package domain

import (
	"strconv"
	"time"
)

// CasePriority is the raw ordinal priority value carried by a case record,
// "1" (critical) through "5" (planning). Records may carry no priority at
// all, or a value outside the known ordinals; both are preserved as-is.
type CasePriority string

const (
	CasePriorityCritical CasePriority = "1"
	CasePriorityHigh     CasePriority = "2"
	CasePriorityModerate CasePriority = "3"
	CasePriorityLow      CasePriority = "4"
	CasePriorityPlanning CasePriority = "5"
)

// Ordinal returns the numeric severity rank, or 0 for values that are not
// a known ordinal.
func (p CasePriority) Ordinal() int {
	n, err := strconv.Atoi(string(p))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// Known reports whether the value is a recognized ordinal.
func (p CasePriority) Known() bool {
	return p.Ordinal() > 0
}

// IsHigh reports whether the priority warrants escalation handling.
func (p CasePriority) IsHigh() bool {
	return p == CasePriorityCritical || p == CasePriorityHigh
}

// Case is a read-only snapshot of one support case as returned by the case
// store. Instances are never mutated after mapping; each search produces a
// fresh set.
type Case struct {
	SysID            string
	Number           string
	ShortDescription string
	Priority         CasePriority
	State            string
	OpenedAt         *time.Time
	UpdatedOn        *time.Time
	AgeDays          int
	AssignedTo       string
	AssignmentGroup  string
	URL              string
}
