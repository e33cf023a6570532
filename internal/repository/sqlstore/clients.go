package sqlstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
)

type ClientRepo struct{ db *gorm.DB }

func (r *ClientRepo) List(ctx context.Context, employeeID string) ([]models.Client, error) {
	q := r.db.WithContext(ctx).Order("name")
	if employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}
	var out []models.Client
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ClientRepo) Get(ctx context.Context, id string) (*models.Client, error) {
	var c models.Client
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepo) Create(ctx context.Context, c *models.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ClientRepo) CreateMany(ctx context.Context, cs []models.Client) error {
	if len(cs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&cs, 200).Error
}

func (r *ClientRepo) CountByName(ctx context.Context, name string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Client{}).Where("name = ?", name).Count(&n).Error
	return int(n), err
}

func (r *ClientRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Client{})
	return res.RowsAffected > 0, res.Error
}
