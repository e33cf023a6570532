package reports

import (
	"strings"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
)

type Scope string

const (
	ScopeAll       Scope = "all"
	ScopeActive    Scope = "active"
	ScopeCompleted Scope = "completed"
)

func ParseScope(s string) (Scope, bool) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeAll:
		return ScopeAll, true
	case ScopeActive:
		return ScopeActive, true
	case ScopeCompleted:
		return ScopeCompleted, true
	}
	return "", false
}

// Criteria narrows a working set. Empty fields do not filter.
type Criteria struct {
	EmployeeID   string // exact
	ClientName   string // exact
	EmployeeName string // case-insensitive substring
}

func (c Criteria) empty() bool {
	return c.EmployeeID == "" && c.ClientName == "" && c.EmployeeName == ""
}

// Match reports whether r satisfies every set criterion.
func (c Criteria) Match(r models.ServiceReport) bool {
	if c.EmployeeID != "" && r.EmployeeID != c.EmployeeID {
		return false
	}
	if c.ClientName != "" && r.ClientName != c.ClientName {
		return false
	}
	if c.EmployeeName != "" &&
		!strings.Contains(strings.ToLower(r.EmployeeName), strings.ToLower(c.EmployeeName)) {
		return false
	}
	return true
}

// ApplyFilters returns a new slice with the reports matching c, in input order.
func ApplyFilters(set []models.ServiceReport, c Criteria) []models.ServiceReport {
	out := make([]models.ServiceReport, 0, len(set))
	for _, r := range set {
		if c.empty() || c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Partition splits set on status == completed. Both halves keep input order.
func Partition(set []models.ServiceReport) (active, completed []models.ServiceReport) {
	active = make([]models.ServiceReport, 0, len(set))
	completed = make([]models.ServiceReport, 0, len(set))
	for _, r := range set {
		if r.Completed() {
			completed = append(completed, r)
		} else {
			active = append(active, r)
		}
	}
	return active, completed
}

// InScope selects one side of the partition (or everything for ScopeAll).
func InScope(set []models.ServiceReport, s Scope) []models.ServiceReport {
	active, completed := Partition(set)
	switch s {
	case ScopeActive:
		return active
	case ScopeCompleted:
		return completed
	}
	return set
}
