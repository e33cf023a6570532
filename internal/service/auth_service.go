package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

type AuthService struct {
	users         repository.UserRepository
	sessionSecret string
	ttl           time.Duration
	clock         Clock
	log           zerolog.Logger
}

func NewAuthService(users repository.UserRepository, sessionSecret string, ttl time.Duration, clock Clock, log zerolog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{users: users, sessionSecret: sessionSecret, ttl: ttl, clock: clock, log: log}
}

func (a *AuthService) TTL() time.Duration { return a.ttl }

func (a *AuthService) Login(ctx context.Context, username, password string) (token string, user *models.User, err error) {
	username = strings.TrimSpace(username)
	u, hash, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		a.log.Warn().Str("username", username).Msg("login: unknown user")
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(hash, password) {
		a.log.Warn().Str("username", username).Msg("login: bad password")
		return "", nil, ErrInvalidCredentials
	}
	tok, err := utils.SignJWT(a.sessionSecret, u.ID, u.Username, u.Role, a.ttl)
	if err != nil {
		return "", nil, err
	}
	a.log.Info().Str("username", username).Msg("login ok")
	return tok, u, nil
}

// EnsureAdmin creates the bootstrap admin account unless a user with that
// name already exists.
func (a *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	existing, _, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, err
	}
	u := &models.User{ID: uuid.NewString(), Username: username, Role: models.RoleAdmin, CreatedAt: a.clock.now()}
	if err := a.users.Create(ctx, u, hash); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	a.log.Info().Str("username", username).Msg("default admin created")
	return true, nil
}
