package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

type UserService struct {
	users repository.UserRepository
	clock Clock
}

func NewUserService(users repository.UserRepository, clock Clock) *UserService {
	return &UserService{users: users, clock: clock}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return u, nil
}

// Create adds an account; role defaults to employee.
func (s *UserService) Create(ctx context.Context, username, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = models.RoleEmployee
	}
	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	case password == "":
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	case !models.ValidRole(role):
		return nil, fmt.Errorf("%w: role must be admin or employee", ErrValidation)
	}

	existing, _, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username", ErrConflict)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{ID: uuid.NewString(), Username: username, Role: role, CreatedAt: s.clock.now()}
	if err := s.users.Create(ctx, u, hash); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user. Admins cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, actor models.User, id string) error {
	if actor.ID == id {
		return fmt.Errorf("%w: cannot delete your own account", ErrValidation)
	}
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}
