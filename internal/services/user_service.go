package services

import (
	"context"
	"fmt"
	"strings"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/models"
	"sheetdesk/internal/repositories"
)

type UserService interface {
	CreateUser(ctx context.Context, username, password, role string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ChangePassword(ctx context.Context, username, password string) error
}

type userService struct {
	repo repositories.UserRepository
	auth AuthService
}

func NewUserService(repo repositories.UserRepository, auth AuthService) UserService {
	return &userService{repo: repo, auth: auth}
}

// CreateUser stores or replaces a dashboard user. password may already be a
// bcrypt hash (seeded from hash-password); anything else is hashed here.
func (s *userService) CreateUser(ctx context.Context, username, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if role == "" {
		role = authz.RoleUser
	}
	if !authz.IsKnownRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := s.hashIfPlain(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Username: username, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) ChangePassword(ctx context.Context, username, password string) error {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, username, hash)
}

func (s *userService) hashIfPlain(password string) (string, error) {
	ph := strings.TrimSpace(password)
	if strings.HasPrefix(ph, "$2a$") || strings.HasPrefix(ph, "$2b$") || strings.HasPrefix(ph, "$2y$") {
		return ph, nil
	}
	return s.auth.HashPassword(ph)
}
