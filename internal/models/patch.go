package models

import "time"

// ReportPatch is the partial body of PUT /reports/{id}. Nil fields are left
// untouched; set fields overwrite blindly.
type ReportPatch struct {
	Description    *string    `json:"description,omitempty"`
	Priority       *Priority  `json:"priority,omitempty"`
	Status         *Status    `json:"status,omitempty"`
	Photos         *[]string  `json:"photos,omitempty"`
	Videos         *[]string  `json:"videos,omitempty"`
	AdminNotes     *string    `json:"admin_notes,omitempty"`
	EmployeeNotes  *string    `json:"employee_notes,omitempty"`
	TotalCost      *float64   `json:"total_cost,omitempty"`
	PartsCost      *float64   `json:"parts_cost,omitempty"`
	GrossProfit    *float64   `json:"gross_profit,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

// Changes lists the wire names of the fields set on p, in a stable order.
func (p ReportPatch) Changes() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(p.Status != nil, "status")
	add(p.AdminNotes != nil, "admin_notes")
	add(p.EmployeeNotes != nil, "employee_notes")
	add(p.CompletionDate != nil, "completion_date")
	add(p.Description != nil, "description")
	add(p.Priority != nil, "priority")
	add(p.Photos != nil, "photos")
	add(p.Videos != nil, "videos")
	add(p.TotalCost != nil, "total_cost")
	add(p.PartsCost != nil, "parts_cost")
	add(p.GrossProfit != nil, "gross_profit")
	return out
}

func (p ReportPatch) Empty() bool { return len(p.Changes()) == 0 }

// TouchesAdminFields is true when p sets a field only admins may write.
func (p ReportPatch) TouchesAdminFields() bool {
	return p.AdminNotes != nil || p.TotalCost != nil || p.PartsCost != nil || p.GrossProfit != nil
}

// Apply merges p into r. Derived fields are not recomputed here.
func (p ReportPatch) Apply(r *ServiceReport) {
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Photos != nil {
		r.Photos = append([]string(nil), (*p.Photos)...)
	}
	if p.Videos != nil {
		r.Videos = append([]string(nil), (*p.Videos)...)
	}
	if p.AdminNotes != nil {
		r.AdminNotes = *p.AdminNotes
	}
	if p.EmployeeNotes != nil {
		r.EmployeeNotes = *p.EmployeeNotes
	}
	if p.TotalCost != nil {
		v := *p.TotalCost
		r.TotalCost = &v
	}
	if p.PartsCost != nil {
		v := *p.PartsCost
		r.PartsCost = &v
	}
	if p.GrossProfit != nil {
		v := *p.GrossProfit
		r.GrossProfit = &v
	}
	if p.CompletionDate != nil {
		t := *p.CompletionDate
		r.CompletionDate = &t
	}
}
