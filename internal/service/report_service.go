package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/reports"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
)

type ReportService struct {
	reports repository.ReportRepository
	clients repository.ClientRepository
	clock   Clock
	log     zerolog.Logger
}

func NewReportService(rr repository.ReportRepository, cr repository.ClientRepository, clock Clock, log zerolog.Logger) *ReportService {
	return &ReportService{reports: rr, clients: cr, clock: clock, log: log}
}

// CreateReportInput is the body of POST /api/reports.
type CreateReportInput struct {
	ClientID    string   `json:"client_id"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Photos      []string `json:"photos"`
	Videos      []string `json:"videos"`
}

// Summary is the dashboard roll-up of the visible reports.
type Summary struct {
	Active      int     `json:"active"`
	Completed   int     `json:"completed"`
	Overdue     int     `json:"overdue"`
	Period      string  `json:"period"`
	GrossProfit float64 `json:"gross_profit"`
}

func checkMedia(photos, videos []string) error {
	if len(photos) > models.MaxPhotos {
		return fmt.Errorf("%w: at most %d photos per report", ErrValidation, models.MaxPhotos)
	}
	if len(videos) > models.MaxVideos {
		return fmt.Errorf("%w: at most %d videos per report", ErrValidation, models.MaxVideos)
	}
	return nil
}

// visible lists what actor may see: everything for admins, own reports otherwise.
func (s *ReportService) visible(ctx context.Context, actor models.User) ([]models.ServiceReport, error) {
	f := repository.ReportFilter{}
	if !actor.IsAdmin() {
		f.EmployeeID = actor.ID
	}
	return s.reports.List(ctx, f)
}

// List returns the visible reports newest first, narrowed to scope and c.
func (s *ReportService) List(ctx context.Context, actor models.User, scope reports.Scope, c reports.Criteria) ([]models.ServiceReport, error) {
	all, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	return reports.ApplyFilters(reports.InScope(all, scope), c), nil
}

func (s *ReportService) Summary(ctx context.Context, actor models.User, c reports.Criteria) (Summary, error) {
	all, err := s.visible(ctx, actor)
	if err != nil {
		return Summary{}, err
	}
	set := reports.ApplyFilters(all, c)
	active, completed := reports.Partition(set)
	now := s.clock.now()

	sum := Summary{
		Active:    len(active),
		Completed: len(completed),
		Period:    reports.PeriodLabel(set, s.clock.Loc),
	}
	for _, r := range active {
		if reports.IsOverdue(r, now) {
			sum.Overdue++
		}
	}
	for _, r := range completed {
		if r.HasFinancials() {
			sum.GrossProfit += reports.ComputeGrossProfit(r.TotalCost, r.PartsCost)
		}
	}
	sum.GrossProfit = math.Round(sum.GrossProfit*100) / 100
	return sum, nil
}

// Completed returns every completed report, newest first; the PDF export
// selects from this set.
func (s *ReportService) Completed(ctx context.Context) ([]models.ServiceReport, error) {
	return s.reports.List(ctx, repository.ReportFilter{Status: models.StatusCompleted})
}

func (s *ReportService) Get(ctx context.Context, actor models.User, id string) (*models.ServiceReport, error) {
	r, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: report", ErrNotFound)
	}
	if !actor.IsAdmin() && r.EmployeeID != actor.ID {
		return nil, fmt.Errorf("%w: you can only view your own reports", ErrForbidden)
	}
	return r, nil
}

// Create files a new report for actor against an existing client.
func (s *ReportService) Create(ctx context.Context, actor models.User, in CreateReportInput) (*models.ServiceReport, error) {
	if strings.TrimSpace(in.ClientID) == "" {
		return nil, fmt.Errorf("%w: client_id is required", ErrValidation)
	}
	prio, ok := models.ParsePriority(in.Priority)
	if !ok {
		return nil, fmt.Errorf("%w: priority must be URGENT, SAME WEEK or NEXT WEEK", ErrValidation)
	}
	if err := checkMedia(in.Photos, in.Videos); err != nil {
		return nil, err
	}
	client, err := s.clients.Get(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: client", ErrNotFound)
	}

	now := s.clock.now()
	r := &models.ServiceReport{
		ID:                  uuid.NewString(),
		ClientID:            client.ID,
		ClientName:          client.Name,
		ClientAddress:       client.Address,
		EmployeeID:          actor.ID,
		EmployeeName:        actor.Username,
		Description:         in.Description,
		Priority:            prio,
		Status:              models.StatusReported,
		Photos:              append([]string{}, in.Photos...),
		Videos:              append([]string{}, in.Videos...),
		RequestDate:         now,
		CreatedAt:           now,
		CreatedTime:         hhmm(now),
		LastModified:        now,
		ModificationHistory: []models.Modification{},
	}
	if err := s.reports.Create(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info().Str("report_id", r.ID).Str("client", r.ClientName).Str("employee", actor.Username).Msg("report created")
	return r, nil
}

// Update merges patch into the stored report and records who changed what.
// Employees may edit only their own reports and never the admin-only fields.
// A client-supplied gross_profit is ignored; it is derived from the costs.
// Only the columns the patch touches are written, so concurrent updates of
// different fields do not overwrite each other.
func (s *ReportService) Update(ctx context.Context, actor models.User, id string, patch models.ReportPatch) (*models.ServiceReport, error) {
	var changes []string
	r, err := s.reports.Modify(ctx, id, func(r *models.ServiceReport) ([]string, error) {
		if !actor.IsAdmin() {
			if r.EmployeeID != actor.ID {
				return nil, fmt.Errorf("%w: you can only edit your own reports", ErrForbidden)
			}
			if patch.TouchesAdminFields() {
				return nil, fmt.Errorf("%w: admin notes and financial fields are admin only", ErrForbidden)
			}
		}
		if err := normalizePatch(&patch); err != nil {
			return nil, err
		}
		if patch.Empty() {
			return nil, nil
		}

		changes = patch.Changes()
		cols := append([]string(nil), changes...)
		patch.Apply(r)

		now := s.clock.now()
		if r.Completed() && r.CompletionDate == nil {
			stamp := now
			r.CompletionDate = &stamp
			cols = append(cols, "completion_date")
		}
		if patch.TotalCost != nil || patch.PartsCost != nil {
			if r.HasFinancials() {
				gp := reports.ComputeGrossProfit(r.TotalCost, r.PartsCost)
				r.GrossProfit = &gp
			} else {
				r.GrossProfit = nil
			}
			cols = append(cols, "gross_profit")
		}
		r.ModificationHistory = append(r.ModificationHistory, models.Modification{
			ModifiedAt:     now,
			ModifiedTime:   hhmm(now),
			ModifiedBy:     actor.Username,
			ModifiedByRole: actor.Role,
			Changes:        changes,
		})
		r.LastModified = now
		return append(cols, "modification_history", "last_modified"), nil
	})
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: report", ErrNotFound)
	}
	if len(changes) > 0 {
		s.log.Debug().Str("report_id", id).Strs("changes", changes).Str("by", actor.Username).Msg("report updated")
	}
	return r, nil
}

// normalizePatch validates enum and media fields and drops gross_profit.
func normalizePatch(p *models.ReportPatch) error {
	p.GrossProfit = nil
	if p.Priority != nil {
		prio, ok := models.ParsePriority(string(*p.Priority))
		if !ok {
			return fmt.Errorf("%w: unknown priority %q", ErrValidation, *p.Priority)
		}
		p.Priority = &prio
	}
	if p.Status != nil {
		st := models.Status(strings.ToLower(strings.TrimSpace(string(*p.Status))))
		if !st.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
		}
		p.Status = &st
	}
	var photos, videos []string
	if p.Photos != nil {
		photos = *p.Photos
	}
	if p.Videos != nil {
		videos = *p.Videos
	}
	if err := checkMedia(photos, videos); err != nil {
		return err
	}
	for _, c := range []*float64{p.TotalCost, p.PartsCost} {
		if c != nil && (*c < 0 || math.IsNaN(*c) || math.IsInf(*c, 0)) {
			return fmt.Errorf("%w: costs must be non-negative amounts", ErrValidation)
		}
	}
	return nil
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	ok, err := s.reports.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: report", ErrNotFound)
	}
	return nil
}
