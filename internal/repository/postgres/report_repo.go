package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
)

type ReportRepo struct{ db *pgxpool.Pool }

func NewReportRepo(db *pgxpool.Pool) repository.ReportRepository { return &ReportRepo{db: db} }

const reportCols = `
	id, client_id, client_name, client_address, employee_id, employee_name,
	description, priority, status, photos, videos, admin_notes, employee_notes,
	request_date, completion_date, created_at, created_time, last_modified,
	modification_history, total_cost, parts_cost, gross_profit`

func scanReport(row pgx.Row) (models.ServiceReport, error) {
	var (
		r                       models.ServiceReport
		photos, videos, history []byte
	)
	err := row.Scan(
		&r.ID, &r.ClientID, &r.ClientName, &r.ClientAddress, &r.EmployeeID, &r.EmployeeName,
		&r.Description, &r.Priority, &r.Status, &photos, &videos, &r.AdminNotes, &r.EmployeeNotes,
		&r.RequestDate, &r.CompletionDate, &r.CreatedAt, &r.CreatedTime, &r.LastModified,
		&history, &r.TotalCost, &r.PartsCost, &r.GrossProfit,
	)
	if err != nil {
		return r, err
	}
	if err := unmarshalJSONB(photos, &r.Photos); err != nil {
		return r, fmt.Errorf("photos: %w", err)
	}
	if err := unmarshalJSONB(videos, &r.Videos); err != nil {
		return r, fmt.Errorf("videos: %w", err)
	}
	if err := unmarshalJSONB(history, &r.ModificationHistory); err != nil {
		return r, fmt.Errorf("modification_history: %w", err)
	}
	return r, nil
}

func unmarshalJSONB(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}

// jsonbArgs encodes the three JSONB columns. nil slices are stored as [].
func jsonbArgs(r *models.ServiceReport) (photos, videos, history []byte, err error) {
	enc := func(v any) []byte {
		if err != nil {
			return nil
		}
		var b []byte
		b, err = json.Marshal(v)
		return b
	}
	photos = enc(nonNil(r.Photos))
	videos = enc(nonNil(r.Videos))
	if r.ModificationHistory == nil {
		history = enc([]models.Modification{})
	} else {
		history = enc(r.ModificationHistory)
	}
	return photos, videos, history, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *ReportRepo) List(ctx context.Context, f repository.ReportFilter) ([]models.ServiceReport, error) {
	args := []any{}
	conds := []string{"1=1"}
	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		conds = append(conds, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	sql := `SELECT ` + reportCols + ` FROM service_reports WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ServiceReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *ReportRepo) Get(ctx context.Context, id string) (*models.ServiceReport, error) {
	rep, err := scanReport(r.db.QueryRow(ctx, `SELECT `+reportCols+` FROM service_reports WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepo) Create(ctx context.Context, rep *models.ServiceReport) error {
	photos, videos, history, err := jsonbArgs(rep)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO service_reports (`+reportCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		rep.ID, rep.ClientID, rep.ClientName, rep.ClientAddress, rep.EmployeeID, rep.EmployeeName,
		rep.Description, string(rep.Priority), string(rep.Status), photos, videos, rep.AdminNotes, rep.EmployeeNotes,
		rep.RequestDate, rep.CompletionDate, rep.CreatedAt, rep.CreatedTime, rep.LastModified,
		history, rep.TotalCost, rep.PartsCost, rep.GrossProfit,
	)
	return err
}

// Modify locks the row for the length of the transaction. History is
// appended with jsonb || so entries written by other transactions survive.
func (r *ReportRepo) Modify(ctx context.Context, id string, fn repository.ReportMutator) (*models.ServiceReport, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rep, err := scanReport(tx.QueryRow(ctx, `SELECT `+reportCols+` FROM service_reports WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	seen := len(rep.ModificationHistory)

	cols, err := fn(&rep)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return &rep, nil
	}

	args := []any{id}
	sets := make([]string, 0, len(cols))
	for _, col := range cols {
		v, err := columnValue(&rep, col, seen)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		if col == "modification_history" {
			sets = append(sets, fmt.Sprintf("modification_history = COALESCE(modification_history, '[]'::jsonb) || $%d::jsonb", len(args)))
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if _, err := tx.Exec(ctx, `UPDATE service_reports SET `+strings.Join(sets, ", ")+` WHERE id=$1`, args...); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &rep, nil
}

// columnValue is the bind value for one writable column. For the history
// column it is only the entries appended after the first seen.
func columnValue(rep *models.ServiceReport, col string, seen int) (any, error) {
	switch col {
	case "description":
		return rep.Description, nil
	case "priority":
		return string(rep.Priority), nil
	case "status":
		return string(rep.Status), nil
	case "photos":
		return json.Marshal(nonNil(rep.Photos))
	case "videos":
		return json.Marshal(nonNil(rep.Videos))
	case "admin_notes":
		return rep.AdminNotes, nil
	case "employee_notes":
		return rep.EmployeeNotes, nil
	case "completion_date":
		return rep.CompletionDate, nil
	case "last_modified":
		return rep.LastModified, nil
	case "total_cost":
		return rep.TotalCost, nil
	case "parts_cost":
		return rep.PartsCost, nil
	case "gross_profit":
		return rep.GrossProfit, nil
	case "modification_history":
		added := []models.Modification{}
		if seen < len(rep.ModificationHistory) {
			added = rep.ModificationHistory[seen:]
		}
		return json.Marshal(added)
	}
	return nil, fmt.Errorf("column %q is not writable", col)
}

func (r *ReportRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_reports WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// nullTime maps the zero time to SQL NULL so the column default applies.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
