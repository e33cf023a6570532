package handlers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/reports"
	"github.com/rogomes75/ROG-Report-V9/internal/service"
)

// Autosaver debounces single-field report edits per (report, field) and
// writes the final value through the report service as the editing user.
type Autosaver struct {
	deb *reports.Debouncer
	svc *service.ReportService
}

func NewAutosaver(svc *service.ReportService, delay time.Duration, log zerolog.Logger) *Autosaver {
	a := &Autosaver{svc: svc}
	a.deb = reports.NewDebouncer(delay, a.flush, log.With().Str("component", "autosave").Logger())
	return a
}

func (a *Autosaver) flush(ctx context.Context, e reports.Edit) error {
	patch, err := reports.PatchFor(e.Field, e.Value)
	if err != nil {
		return err
	}
	_, err = a.svc.Update(ctx, e.Actor, e.ReportID, patch)
	return err
}

func (a *Autosaver) Schedule(e reports.Edit) error { return a.deb.Schedule(e) }

// Overlay applies edits still waiting for their flush onto r.
func (a *Autosaver) Overlay(r *models.ServiceReport) {
	reports.Overlay(r, a.deb.Pending(r.ID))
}

func (a *Autosaver) SetTimerFunc(f reports.TimerFunc) { a.deb.SetTimerFunc(f) }

// Shutdown writes pending edits, then refuses new ones.
func (a *Autosaver) Shutdown(ctx context.Context) error {
	err := a.deb.Flush(ctx)
	a.deb.Stop()
	return err
}
