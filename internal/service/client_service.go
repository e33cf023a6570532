package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/excel"
	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
)

type ClientService struct {
	clients repository.ClientRepository
	users   repository.UserRepository
	clock   Clock
	log     zerolog.Logger
}

func NewClientService(clients repository.ClientRepository, users repository.UserRepository, clock Clock, log zerolog.Logger) *ClientService {
	return &ClientService{clients: clients, users: users, clock: clock, log: log}
}

// List returns every client for admins and only assigned clients otherwise.
func (s *ClientService) List(ctx context.Context, actor models.User) ([]models.Client, error) {
	if actor.IsAdmin() {
		return s.clients.List(ctx, "")
	}
	return s.clients.List(ctx, actor.ID)
}

func (s *ClientService) All(ctx context.Context) ([]models.Client, error) {
	return s.clients.List(ctx, "")
}

// Create stores a client. A non-empty warning is returned when another
// client already uses the same name; the client is created regardless.
func (s *ClientService) Create(ctx context.Context, name, address string, employeeID *string) (*models.Client, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	employeeID, err := s.checkEmployee(ctx, employeeID)
	if err != nil {
		return nil, "", err
	}

	var warning string
	n, err := s.clients.CountByName(ctx, name)
	if err != nil {
		return nil, "", err
	}
	if n > 0 {
		warning = fmt.Sprintf("a client named %q already exists", name)
	}

	c := &models.Client{
		ID:         uuid.NewString(),
		Name:       name,
		Address:    strings.TrimSpace(address),
		EmployeeID: employeeID,
		CreatedAt:  s.clock.now(),
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, "", err
	}
	return c, warning, nil
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	ok, err := s.clients.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: client", ErrNotFound)
	}
	return nil
}

// Import reads a workbook and stores every row as a client assigned to
// employeeID (which may be nil).
func (s *ClientService) Import(ctx context.Context, r io.Reader, employeeID *string) (int, error) {
	employeeID, err := s.checkEmployee(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	rows, err := excel.ReadClients(r)
	if err != nil {
		return 0, fmt.Errorf("%w: error importing Excel file: %v", ErrValidation, err)
	}
	now := s.clock.now()
	cs := make([]models.Client, 0, len(rows))
	for _, row := range rows {
		var emp *string
		if employeeID != nil {
			id := *employeeID
			emp = &id
		}
		cs = append(cs, models.Client{
			ID:         uuid.NewString(),
			Name:       row.Name,
			Address:    row.Address,
			EmployeeID: emp,
			CreatedAt:  now,
		})
	}
	if err := s.clients.CreateMany(ctx, cs); err != nil {
		return 0, err
	}
	s.log.Info().Int("count", len(cs)).Msg("clients imported")
	return len(cs), nil
}

// checkEmployee normalises an optional assignee and verifies it exists.
func (s *ClientService) checkEmployee(ctx context.Context, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*id)
	u, err := s.users.GetByID(ctx, v)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: unknown employee %s", ErrValidation, v)
	}
	return &v, nil
}
