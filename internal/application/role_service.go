package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/delivery-marketplace/internal/domain/repository"
)

// RoleService exposes the (role, onboarded) state of the caller.
type RoleService struct {
	Identity *IdentityService
	Users    repo.Collection[entity.User]
	Logger   *logrus.Logger
	Now      Clock
}

func NewRoleService(identity *IdentityService, cols *repo.Collections, logger *logrus.Logger) *RoleService {
	return &RoleService{Identity: identity, Users: cols.Users, Logger: logger, Now: systemClock}
}

// Get resolves the caller's role state, creating the local user if needed.
func (s *RoleService) Get(ctx context.Context, p entity.Profile) (entity.RoleState, error) {
	u, err := s.Identity.GetOrCreate(ctx, p)
	if err != nil {
		return entity.RoleState{}, err
	}
	return u.RoleState(), nil
}

// Set applies a self-selected role. Nothing is written when the transition is rejected.
func (s *RoleService) Set(ctx context.Context, p entity.Profile, role entity.Role) (entity.RoleState, error) {
	u, err := s.Identity.GetOrCreate(ctx, p)
	if err != nil {
		return entity.RoleState{}, err
	}
	if err := u.SelectRole(role, s.Now()); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "requested": role}).Warn("role change rejected")
		}
		return entity.RoleState{}, err
	}
	if err := s.Users.Replace(ctx, u.ID, u); err != nil {
		return entity.RoleState{}, err
	}
	return u.RoleState(), nil
}

// Promote grants ADMIN. Only the maintenance CLI calls this.
func (s *RoleService) Promote(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Promote(s.Now()) {
		return u, nil
	}
	if err := s.Users.Replace(ctx, u.ID, u); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Warn("user promoted to admin")
	}
	return u, nil
}
