package models

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityUrgent   Priority = "URGENT"
	PrioritySameWeek Priority = "SAME WEEK"
	PriorityNextWeek Priority = "NEXT WEEK"
)

// ParsePriority accepts both "SAME WEEK" and "SAME_WEEK" spellings.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", " ")))
	switch p {
	case PriorityUrgent, PrioritySameWeek, PriorityNextWeek:
		return p, true
	}
	return "", false
}

type Status string

const (
	StatusReported   Status = "reported"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusReported, StatusScheduled, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

const (
	MaxPhotos = 5
	MaxVideos = 2
)

// Modification is one append-only history entry written by the backend.
type Modification struct {
	ModifiedAt     time.Time `json:"modified_at"`
	ModifiedTime   string    `json:"modified_time"`
	ModifiedBy     string    `json:"modified_by"`
	ModifiedByRole string    `json:"modified_by_role"`
	Changes        []string  `json:"changes"`
}

type ServiceReport struct {
	ID            string `json:"id" gorm:"primaryKey;size:36"`
	ClientID      string `json:"client_id" gorm:"index"`
	ClientName    string `json:"client_name"`
	ClientAddress string `json:"client_address"`
	EmployeeID    string `json:"employee_id" gorm:"index"`
	EmployeeName  string `json:"employee_name"`

	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status" gorm:"index"`

	Photos []string `json:"photos" gorm:"serializer:json"` // inline data URIs
	Videos []string `json:"videos" gorm:"serializer:json"`

	AdminNotes    string `json:"admin_notes"`
	EmployeeNotes string `json:"employee_notes"`

	RequestDate         time.Time      `json:"request_date"`
	CompletionDate      *time.Time     `json:"completion_date"`
	CreatedAt           time.Time      `json:"created_at"`
	CreatedTime         string         `json:"created_time"`
	LastModified        time.Time      `json:"last_modified"`
	ModificationHistory []Modification `json:"modification_history" gorm:"serializer:json"`

	TotalCost   *float64 `json:"total_cost"`
	PartsCost   *float64 `json:"parts_cost"`
	GrossProfit *float64 `json:"gross_profit"`
}

func (ServiceReport) TableName() string { return "service_reports" }

func (r ServiceReport) Completed() bool { return r.Status == StatusCompleted }

// EffectiveDate is the completion date when set, otherwise the request date.
func (r ServiceReport) EffectiveDate() time.Time {
	if r.CompletionDate != nil && !r.CompletionDate.IsZero() {
		return *r.CompletionDate
	}
	return r.RequestDate
}

// HasFinancials reports whether either cost field carries a value.
func (r ServiceReport) HasFinancials() bool {
	return r.TotalCost != nil || r.PartsCost != nil
}

// Clone returns a copy that shares no slices with r.
func (r ServiceReport) Clone() ServiceReport {
	c := r
	c.Photos = append([]string(nil), r.Photos...)
	c.Videos = append([]string(nil), r.Videos...)
	c.ModificationHistory = append([]Modification(nil), r.ModificationHistory...)
	if r.CompletionDate != nil {
		t := *r.CompletionDate
		c.CompletionDate = &t
	}
	c.TotalCost = cloneFloat(r.TotalCost)
	c.PartsCost = cloneFloat(r.PartsCost)
	c.GrossProfit = cloneFloat(r.GrossProfit)
	return c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
