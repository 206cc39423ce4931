package user

import (
	"context"
	"fmt"
	"log/slog"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id string) (*User, error)
	ListActiveByRoles(ctx context.Context, roles []string) ([]*User, error)
	Create(ctx context.Context, u *User) error
}

type Service struct {
	repo       RepositoryAPI
	adminRoles []string
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, adminRoles []string, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		adminRoles: adminRoles,
		logger:     logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// StaffContacts returns active staff holding one of the notification roles.
func (s *Service) StaffContacts(ctx context.Context) ([]*User, error) {
	users, err := s.repo.ListActiveByRoles(ctx, s.adminRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff contacts: %w", err)
	}
	s.logger.Debug("staff contacts loaded", "count", len(users), "roles", s.adminRoles)
	return users, nil
}
