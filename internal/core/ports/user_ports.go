package ports

import (
	"context"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

type UserRepository interface {
	// GetByID returns nil when the user does not exist.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	ListIDsByRoles(ctx context.Context, roles []string) ([]string, error)
}

// EligibleUserLister enumerates the users that receive allocations when a
// proposal is created.
type EligibleUserLister interface {
	ListEligibleUserIDs(ctx context.Context) ([]string, error)
}

type UserService interface {
	Register(ctx context.Context, actor domain.Actor, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
