package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/delivery-marketplace/internal/domain/repository"
)

// Identity lifecycle event types.
const (
	IdentityCreated = "user.created"
	IdentityUpdated = "user.updated"
	IdentityDeleted = "user.deleted"
)

var ErrUnknownIdentityEvent = fmt.Errorf("%w: unknown identity event type", domain.ErrValidation)

// IdentityEvent is a verified lifecycle notification from the identity provider.
type IdentityEvent struct {
	Type    string
	Profile entity.Profile
}

// SyncOutcome says what an event did to the local user table.
type SyncOutcome string

const (
	OutcomeCreated SyncOutcome = "created"
	OutcomeUpdated SyncOutcome = "updated"
	OutcomeDeleted SyncOutcome = "deleted"
	OutcomeNoop    SyncOutcome = "noop"
)

// IdentityService keeps local users in step with the identity provider.
// It never touches stores or orders; dangling references left by a deletion
// are the consistency scanner's concern.
type IdentityService struct {
	Users       repo.Collection[entity.User]
	AdminEmails []string
	Logger      *logrus.Logger
	Now         Clock
}

func NewIdentityService(cols *repo.Collections, adminEmails []string, logger *logrus.Logger) *IdentityService {
	return &IdentityService{Users: cols.Users, AdminEmails: adminEmails, Logger: logger, Now: systemClock}
}

// GetOrCreate returns the local user for the identity, creating it on first sight.
// Creation is keyed by the external id, so concurrent first requests converge
// on one record.
func (s *IdentityService) GetOrCreate(ctx context.Context, p entity.Profile) (*entity.User, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("%w: missing identity", domain.ErrUnauthorized)
	}
	u, err := s.Users.Get(ctx, p.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	u = entity.NewUser(p, s.AdminEmails, s.Now())
	if err := s.Users.Insert(ctx, u.ID, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.Users.Get(ctx, p.ID)
		}
		return nil, err
	}
	s.log().WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user created on first access")
	return u, nil
}

// Handle applies one lifecycle event. Replaying any event converges to the same state.
func (s *IdentityService) Handle(ctx context.Context, ev IdentityEvent) (SyncOutcome, error) {
	switch ev.Type {
	case IdentityCreated:
		return s.created(ctx, ev.Profile)
	case IdentityUpdated:
		return s.updated(ctx, ev.Profile)
	case IdentityDeleted:
		return s.deleted(ctx, ev.Profile.ID)
	default:
		return OutcomeNoop, ErrUnknownIdentityEvent
	}
}

func (s *IdentityService) created(ctx context.Context, p entity.Profile) (SyncOutcome, error) {
	if strings.TrimSpace(p.Email) == "" {
		s.log().WithField("user_id", p.ID).Info("identity created without primary email, skipped")
		return OutcomeNoop, nil
	}
	existing, err := s.Users.Get(ctx, p.ID)
	switch {
	case err == nil:
		return s.sync(ctx, existing, p)
	case !errors.Is(err, domain.ErrNotFound):
		return OutcomeNoop, err
	}

	u := entity.NewUser(p, s.AdminEmails, s.Now())
	if err := s.Users.Insert(ctx, u.ID, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.updated(ctx, p)
		}
		return OutcomeNoop, err
	}
	s.log().WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user created from identity event")
	return OutcomeCreated, nil
}

func (s *IdentityService) updated(ctx context.Context, p entity.Profile) (SyncOutcome, error) {
	u, err := s.Users.Get(ctx, p.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return OutcomeNoop, nil
		}
		return OutcomeNoop, err
	}
	return s.sync(ctx, u, p)
}

func (s *IdentityService) sync(ctx context.Context, u *entity.User, p entity.Profile) (SyncOutcome, error) {
	if !u.SyncProfile(p, s.Now()) {
		return OutcomeNoop, nil
	}
	if err := s.Users.Replace(ctx, u.ID, u); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return OutcomeNoop, nil
		}
		return OutcomeNoop, err
	}
	return OutcomeUpdated, nil
}

func (s *IdentityService) deleted(ctx context.Context, id string) (SyncOutcome, error) {
	n, err := s.Users.Delete(ctx, id)
	if err != nil {
		return OutcomeNoop, err
	}
	if n == 0 {
		return OutcomeNoop, nil
	}
	s.log().WithField("user_id", id).Info("user deleted from identity event")
	return OutcomeDeleted, nil
}

func (s *IdentityService) log() *logrus.Logger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
