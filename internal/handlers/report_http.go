package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/pdfreport"
	"github.com/rogomes75/ROG-Report-V9/internal/reports"
	"github.com/rogomes75/ROG-Report-V9/internal/service"
	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

type ReportsHTTP struct {
	svc  *service.ReportService
	auto *Autosaver
	pdf  *pdfreport.Generator
	loc  *time.Location
	now  func() time.Time
	log  zerolog.Logger
}

func NewReportsHTTP(svc *service.ReportService, auto *Autosaver, pdf *pdfreport.Generator, loc *time.Location, log zerolog.Logger) *ReportsHTTP {
	return &ReportsHTTP{svc: svc, auto: auto, pdf: pdf, loc: loc, now: time.Now, log: log}
}

func criteriaFrom(r *http.Request) reports.Criteria {
	q := r.URL.Query()
	return reports.Criteria{
		EmployeeID:   strings.TrimSpace(q.Get("employee_id")),
		ClientName:   q.Get("client_name"),
		EmployeeName: strings.TrimSpace(q.Get("employee")),
	}
}

// view overlays pending autosaves and derives flag, overdue and gross profit.
func (h *ReportsHTTP) view(r models.ServiceReport) reports.View {
	h.auto.Overlay(&r)
	return reports.Decorate(r, h.now())
}

// GET /api/reports?scope=&employee_id=&client_name=&employee=
func (h *ReportsHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := actor(w, r)
		if !ok {
			return
		}
		scope, ok := reports.ParseScope(r.URL.Query().Get("scope"))
		if !ok {
			utils.Error(w, http.StatusBadRequest, "scope must be active or completed")
			return
		}
		items, err := h.svc.List(r.Context(), me, scope, criteriaFrom(r))
		if err != nil {
			fail(w, h.log, err)
			return
		}
		out := make([]reports.View, 0, len(items))
		for _, it := range items {
			out = append(out, h.view(it))
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(len(out)))
		utils.JSON(w, http.StatusOK, out)
	}
}

// GET /api/reports/summary
// Returns: { active, completed, overdue, period, gross_profit }
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := actor(w, r)
		if !ok {
			return
		}
		sum, err := h.svc.Summary(r.Context(), me, criteriaFrom(r))
		if err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, sum)
	}
}

// GET /api/reports/{id}
func (h *ReportsHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := actor(w, r)
		if !ok {
			return
		}
		rep, err := h.svc.Get(r.Context(), me, chi.URLParam(r, "id"))
		if err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, h.view(*rep))
	}
}

// POST /api/reports
func (h *ReportsHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := actor(w, r)
		if !ok {
			return
		}
		var in service.CreateReportInput
		if !decode(w, r, &in) {
			return
		}
		rep, err := h.svc.Create(r.Context(), me, in)
		if err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, reports.Decorate(*rep, h.now()))
	}
}

// PUT /api/reports/{id}
func (h *ReportsHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := actor(w, r)
		if !ok {
			return
		}
		var patch models.ReportPatch
		if !decode(w, r, &patch) {
			return
		}
		rep, err := h.svc.Update(r.Context(), me, chi.URLParam(r, "id"), patch)
		if err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, h.view(*rep))
	}
}

// PATCH /api/reports/{id}/autosave {field, value}
// The edit is acknowledged with 202 and written after the quiet window.
func (h *ReportsHTTP) Autosave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := actor(w, r)
		if !ok {
			return
		}
		var in struct {
			Field string `json:"field"`
			Value any    `json:"value"`
		}
		if !decode(w, r, &in) {
			return
		}
		field, ok := reports.ParseField(in.Field)
		if !ok {
			utils.Error(w, http.StatusBadRequest, "unknown field "+strconv.Quote(in.Field))
			return
		}
		if field.AdminOnly() && !me.IsAdmin() {
			utils.Error(w, http.StatusForbidden, string(field)+" is admin only")
			return
		}
		value, err := field.Normalize(in.Value)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		id := chi.URLParam(r, "id")
		rep, err := h.svc.Get(r.Context(), me, id)
		if err != nil {
			fail(w, h.log, err)
			return
		}
		if err := h.auto.Schedule(reports.Edit{Key: reports.Key{ReportID: id, Field: field}, Value: value, Actor: me}); err != nil {
			utils.Error(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		utils.JSON(w, http.StatusAccepted, h.view(*rep))
	}
}

// DELETE /api/reports/{id}
func (h *ReportsHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"message": "Report deleted successfully"})
	}
}

// GET /api/reports/export.pdf?start=YYYY-MM-DD&end=YYYY-MM-DD&client_name=&employee_id=
func (h *ReportsHTTP) ExportPDF() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start, okStart, err1 := utils.QueryDate(q, "start", h.loc)
		end, okEnd, err2 := utils.QueryDate(q, "end", h.loc)
		switch {
		case !okStart || !okEnd:
			utils.Error(w, http.StatusBadRequest, "start and end dates are required")
			return
		case err1 != nil || err2 != nil:
			utils.Error(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
			return
		case end.Before(start):
			utils.Error(w, http.StatusBadRequest, "end date is before start date")
			return
		}

		set, err := h.svc.Completed(r.Context())
		if err != nil {
			fail(w, h.log, err)
			return
		}
		doc, err := h.pdf.Generate(r.Context(), set, pdfreport.Params{
			Start:      start,
			End:        end,
			ClientName: q.Get("client_name"),
			EmployeeID: strings.TrimSpace(q.Get("employee_id")),
			Location:   h.loc,
		})
		if err != nil {
			fail(w, h.log, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
		w.Header().Set("X-Page-Count", strconv.Itoa(doc.Pages))
		if doc.SkippedImages > 0 {
			w.Header().Set("X-Skipped-Images", strconv.Itoa(doc.SkippedImages))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc.Data)
	}
}
