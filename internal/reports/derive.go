// Package reports holds the in-memory working set of service reports and the
// values derived from it: on-time flags, gross profit, period labels and
// filters. It also owns the debounced persistence of single-field edits.
package reports

import (
	"math"
	"time"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
)

type Flag string

const (
	FlagNone   Flag = "NONE"
	FlagOnTime Flag = "ON_TIME"
	FlagLate   Flag = "LATE"
)

// lateAfterDays is the single age threshold shared by ComputeFlag and IsOverdue.
const lateAfterDays = 2

const NoDataLabel = "No data"

const dateLayout = "01/02/2006"

// ComputeFlag classifies a report by age: diffDays = ceil((now-request)/24h),
// ON_TIME while diffDays <= 1, LATE from 2 days on.
func ComputeFlag(r models.ServiceReport, now time.Time) Flag {
	if r.RequestDate.IsZero() {
		return FlagNone
	}
	diffDays := int(math.Ceil(now.Sub(r.RequestDate).Hours() / 24))
	if diffDays >= lateAfterDays {
		return FlagLate
	}
	return FlagOnTime
}

// IsOverdue is true for open reports whose flag is LATE.
func IsOverdue(r models.ServiceReport, now time.Time) bool {
	return !r.Completed() && ComputeFlag(r, now) == FlagLate
}

// ComputeGrossProfit returns total - parts rounded to cents; nil operands count as 0.
func ComputeGrossProfit(total, parts *float64) float64 {
	var t, p float64
	if total != nil {
		t = *total
	}
	if parts != nil {
		p = *parts
	}
	return math.Round((t-p)*100) / 100
}

// PeriodLabel spans the request dates of set, as calendar days in loc.
func PeriodLabel(set []models.ServiceReport, loc *time.Location) string {
	if len(set) == 0 {
		return NoDataLabel
	}
	if loc == nil {
		loc = time.UTC
	}
	minT, maxT := set[0].RequestDate, set[0].RequestDate
	for _, r := range set[1:] {
		if r.RequestDate.Before(minT) {
			minT = r.RequestDate
		}
		if r.RequestDate.After(maxT) {
			maxT = r.RequestDate
		}
	}
	from, to := minT.In(loc).Format(dateLayout), maxT.In(loc).Format(dateLayout)
	if from == to {
		return from
	}
	return from + " - " + to
}

// View is a report plus the presentation-only values derived from it.
type View struct {
	models.ServiceReport
	Flag    Flag `json:"flag"`
	Overdue bool `json:"overdue"`
}

// Decorate derives flag, overdue and gross profit. Gross profit is only filled
// in when at least one cost is present.
func Decorate(r models.ServiceReport, now time.Time) View {
	if r.HasFinancials() {
		gp := ComputeGrossProfit(r.TotalCost, r.PartsCost)
		r.GrossProfit = &gp
	}
	return View{
		ServiceReport: r,
		Flag:          ComputeFlag(r, now),
		Overdue:       IsOverdue(r, now),
	}
}

func DecorateAll(set []models.ServiceReport, now time.Time) []View {
	out := make([]View, 0, len(set))
	for _, r := range set {
		out = append(out, Decorate(r, now))
	}
	return out
}
