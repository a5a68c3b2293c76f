package services

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

// RoleEligibility treats every registered user holding one of Roles as
// eligible for allocations.
type RoleEligibility struct {
	repo  ports.UserRepository
	Roles []string
}

func NewRoleEligibility(repo ports.UserRepository, roles []string) *RoleEligibility {
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}
	return &RoleEligibility{repo: repo, Roles: roles}
}

func (e *RoleEligibility) ListEligibleUserIDs(ctx context.Context) ([]string, error) {
	return e.repo.ListIDsByRoles(ctx, e.Roles)
}

func (e *RoleEligibility) IsEligible(role string) bool {
	return slices.Contains(e.Roles, role)
}

type UserService struct {
	repo        ports.UserRepository
	eligibility *RoleEligibility
	allocations ports.AllocationService
	logger      logrus.FieldLogger
}

func NewUserService(repo ports.UserRepository, eligibility *RoleEligibility, allocations ports.AllocationService, logger logrus.FieldLogger) ports.UserService {
	return &UserService{
		repo:        repo,
		eligibility: eligibility,
		allocations: allocations,
		logger:      logger.WithField("component", "users"),
	}
}

// Register records the caller as a known user and grants allocations on the
// proposals that opened before the user joined.
func (s *UserService) Register(ctx context.Context, actor domain.Actor, email string) (*domain.User, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, domain.Validationf("user id is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, domain.Validationf("a valid email is required")
	}

	role := domain.RoleUser
	if actor.IsAdmin {
		role = domain.RoleAdmin
	}
	user := &domain.User{
		ID:    actor.UserID,
		Email: addr.Address,
		Role:  role,
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if s.eligibility.IsEligible(user.Role) {
		granted, err := s.allocations.GrantForUser(ctx, user.ID)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Warn("late allocation grant failed")
		} else if granted > 0 {
			s.logger.WithFields(logrus.Fields{"user_id": user.ID, "granted": granted}).Info("granted allocations to new user")
		}
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
