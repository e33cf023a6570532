package sqlstore

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
)

type ReportRepo struct {
	db *gorm.DB
	mu sync.Mutex
}

func (r *ReportRepo) List(ctx context.Context, f repository.ReportFilter) ([]models.ServiceReport, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []models.ServiceReport
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportRepo) Get(ctx context.Context, id string) (*models.ServiceReport, error) {
	var rep models.ServiceReport
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepo) Create(ctx context.Context, rep *models.ServiceReport) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

// Modify serialises read-modify-write cycles in process; SQLite has a single
// writer, so the mutex is the row lock.
func (r *ReportRepo) Modify(ctx context.Context, id string, fn repository.ReportMutator) (*models.ServiceReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, err := r.Get(ctx, id)
	if err != nil || rep == nil {
		return nil, err
	}
	cols, err := fn(rep)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return rep, nil
	}
	// Select writes the listed columns even when they hold zero values or NULL.
	if err := r.db.WithContext(ctx).Model(rep).Select(cols).Updates(rep).Error; err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *ReportRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ServiceReport{})
	return res.RowsAffected > 0, res.Error
}
