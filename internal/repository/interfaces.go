package repository

import (
	"context"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
)

// Reads return (nil, nil) when the row does not exist. Deletes report
// whether a row was removed.

type UserRepository interface {
	Create(ctx context.Context, u *models.User, passwordHash string) error
	GetByUsername(ctx context.Context, username string) (*models.User, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ClientRepository interface {
	// List returns clients sorted by name; a non-empty employeeID keeps only
	// clients assigned to that employee.
	List(ctx context.Context, employeeID string) ([]models.Client, error)
	Get(ctx context.Context, id string) (*models.Client, error)
	Create(ctx context.Context, c *models.Client) error
	CreateMany(ctx context.Context, cs []models.Client) error
	CountByName(ctx context.Context, name string) (int, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ReportFilter narrows a report listing. Empty fields do not filter.
type ReportFilter struct {
	EmployeeID string
	Status     models.Status
}

// ReportMutator edits r in place and returns the columns it changed. No
// columns means nothing is written.
type ReportMutator func(r *models.ServiceReport) (columns []string, err error)

type ReportRepository interface {
	// List returns reports newest first (created_at descending).
	List(ctx context.Context, f ReportFilter) ([]models.ServiceReport, error)
	Get(ctx context.Context, id string) (*models.ServiceReport, error)
	Create(ctx context.Context, r *models.ServiceReport) error
	// Modify runs fn on the current row and writes back only the columns fn
	// names, as one atomic read-modify-write. Returns (nil, nil) when id does
	// not exist.
	Modify(ctx context.Context, id string, fn ReportMutator) (*models.ServiceReport, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Store groups the repositories of one backend.
type Store struct {
	Users   UserRepository
	Clients ClientRepository
	Reports ReportRepository
	Ping    func(ctx context.Context) error
	Close   func()
}
