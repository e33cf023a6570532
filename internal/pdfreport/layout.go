// Package pdfreport lays completed service reports out into a paginated PDF:
// fixed-height containers, at most three per page, a banner on the first page
// and a page-number footer stamped on every page once the body is placed.
package pdfreport

import (
	"errors"
	"time"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
)

// Geometry in millimetres on an A4 portrait page.
const (
	pageW  = 210.0
	pageH  = 297.0
	margin = 10.0
	bodyW  = pageW - 2*margin

	bannerH      = 26.0
	slimHeaderH  = 8.0
	headerGap    = 4.0
	firstTop     = margin + bannerH + headerGap
	continuedTop = margin + slimHeaderH + headerGap

	containerH   = 74.0
	containerGap = 4.0
	maxPerPage   = 3
	safeBottom   = 280.0
	footerY      = 287.0

	maxGridPhotos = 4
	descLines     = 2
)

var ErrNoReports = errors.New("no reports match the selected range")

// Params selects and labels one export.
type Params struct {
	Start      time.Time
	End        time.Time
	ClientName string
	EmployeeID string
	Location   *time.Location
	Title      string
}

func (p Params) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// Select keeps the reports whose effective date falls inside [Start, End] by
// calendar day, then applies the optional client and employee filters.
// Input order is preserved.
func Select(set []models.ServiceReport, p Params) []models.ServiceReport {
	loc := p.loc()
	from, to := dayKey(p.Start, loc), dayKey(p.End, loc)
	out := make([]models.ServiceReport, 0, len(set))
	for _, r := range set {
		d := dayKey(r.EffectiveDate(), loc)
		if d < from || d > to {
			continue
		}
		if p.ClientName != "" && r.ClientName != p.ClientName {
			continue
		}
		if p.EmployeeID != "" && r.EmployeeID != p.EmployeeID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Filename is service_reports_<start>_to_<end>.pdf.
func Filename(start, end time.Time) string {
	return "service_reports_" + start.Format("2006-01-02") + "_to_" + end.Format("2006-01-02") + ".pdf"
}

// pager tracks the vertical cursor and per-page container count.
type pager struct {
	y      float64
	onPage int
	pages  int
}

// next returns the top of the next container and whether it opens a page.
func (p *pager) next() (y float64, newPage bool) {
	switch {
	case p.pages == 0:
		p.pages, p.onPage, p.y = 1, 0, firstTop
		newPage = true
	case p.onPage == maxPerPage || p.y+containerH > safeBottom:
		p.pages++
		p.onPage, p.y = 0, continuedTop
		newPage = true
	}
	y = p.y
	p.y += containerH + containerGap
	p.onPage++
	return y, newPage
}

// Plan returns the number of containers on each page for n reports.
func Plan(n int) []int {
	var (
		pg     pager
		counts []int
	)
	for i := 0; i < n; i++ {
		if _, fresh := pg.next(); fresh {
			counts = append(counts, 0)
		}
		counts[len(counts)-1]++
	}
	return counts
}

// priorityColor is the title band fill for a priority tier.
func priorityColor(p models.Priority) (r, g, b int) {
	switch p {
	case models.PriorityUrgent:
		return 220, 53, 69
	case models.PrioritySameWeek:
		return 253, 126, 20
	case models.PriorityNextWeek:
		return 13, 110, 253
	}
	return 108, 117, 125
}
