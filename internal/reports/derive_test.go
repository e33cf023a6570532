package reports

import (
	"testing"
	"time"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
)

func f64(v float64) *float64 { return &v }

func TestComputeFlagBoundaries(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		req  time.Time
		want Flag
	}{
		{"exactly one day", time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), FlagOnTime},
		{"exactly two days", time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC), FlagLate},
		{"one day and a second", time.Date(2024, 3, 9, 11, 59, 59, 0, time.UTC), FlagLate},
		{"just created", now, FlagOnTime},
		{"future request", now.Add(3 * time.Hour), FlagOnTime},
		{"missing request date", time.Time{}, FlagNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ComputeFlag(models.ServiceReport{RequestDate: c.req}, now)
			if got != c.want {
				t.Fatalf("flag = %s, want %s", got, c.want)
			}
		})
	}
}

func TestIsOverdueSharesFlagThreshold(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	late := models.ServiceReport{RequestDate: now.Add(-48 * time.Hour), Status: models.StatusScheduled}
	if !IsOverdue(late, now) {
		t.Fatalf("expected overdue")
	}
	late.Status = models.StatusCompleted
	if IsOverdue(late, now) {
		t.Fatalf("completed reports are never overdue")
	}
	fresh := models.ServiceReport{RequestDate: now.Add(-24 * time.Hour)}
	if IsOverdue(fresh, now) {
		t.Fatalf("one day old report is on time")
	}
}

func TestComputeGrossProfit(t *testing.T) {
	cases := []struct {
		total, parts *float64
		want         float64
	}{
		{f64(250), f64(80.5), 169.5},
		{f64(100), nil, 100},
		{nil, f64(40), -40},
		{nil, nil, 0},
		{f64(0.1), f64(0.2), -0.1},
		{f64(19.999), f64(0), 20},
	}
	for _, c := range cases {
		if got := ComputeGrossProfit(c.total, c.parts); got != c.want {
			t.Errorf("gross profit = %v, want %v", got, c.want)
		}
	}
}

func TestGrossProfitShiftInvariant(t *testing.T) {
	pairs := [][2]float64{{250, 80}, {99.99, 12.34}, {0, 0}, {10, 45.5}}
	for _, p := range pairs {
		base := ComputeGrossProfit(f64(p[0]), f64(p[1]))
		for _, shift := range []float64{0.01, 7, 1234.5} {
			shifted := ComputeGrossProfit(f64(p[0]+shift-shift), f64(p[1]+shift-shift))
			if shifted != base {
				t.Fatalf("shift %v changed result: %v vs %v", shift, shifted, base)
			}
			moved := ComputeGrossProfit(f64(p[0]+shift), f64(p[1]+shift))
			if moved != base {
				t.Fatalf("adding %v to both operands changed result: %v vs %v", shift, moved, base)
			}
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	d := func(day, hour int) models.ServiceReport {
		return models.ServiceReport{RequestDate: time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)}
	}
	if got := PeriodLabel(nil, time.UTC); got != NoDataLabel {
		t.Fatalf("empty = %q", got)
	}
	if got := PeriodLabel([]models.ServiceReport{d(5, 8), d(5, 17)}, time.UTC); got != "03/05/2024" {
		t.Fatalf("same day = %q", got)
	}
	if got := PeriodLabel([]models.ServiceReport{d(9, 8), d(2, 17), d(5, 1)}, time.UTC); got != "03/02/2024 - 03/09/2024" {
		t.Fatalf("range = %q", got)
	}
}

func TestDecorate(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	r := models.ServiceReport{RequestDate: now.Add(-72 * time.Hour), TotalCost: f64(300), PartsCost: f64(120.25)}
	v := Decorate(r, now)
	if v.Flag != FlagLate || !v.Overdue {
		t.Fatalf("unexpected flag %s overdue %v", v.Flag, v.Overdue)
	}
	if v.GrossProfit == nil || *v.GrossProfit != 179.75 {
		t.Fatalf("gross profit = %v", v.GrossProfit)
	}
	if r.GrossProfit != nil {
		t.Fatalf("decorate must not mutate its input")
	}

	bare := Decorate(models.ServiceReport{RequestDate: now}, now)
	if bare.GrossProfit != nil {
		t.Fatalf("no financials means no gross profit")
	}
}
