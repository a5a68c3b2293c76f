package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

type AllocationRepository interface {
	ListUserIDs(ctx context.Context, proposalID uuid.UUID) ([]string, error)
	// CreateMany inserts allocations that do not exist yet and returns how
	// many rows were written.
	CreateMany(ctx context.Context, allocations []*domain.Allocation) (int, error)
	// Create inserts a single allocation if absent. The returned flag is
	// false when the row already existed.
	Create(ctx context.Context, allocation *domain.Allocation) (bool, error)
	// Get returns nil when the user holds no allocation for the proposal.
	Get(ctx context.Context, userID string, proposalID uuid.UUID) (*domain.Allocation, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Allocation, error)
	MarkVoted(ctx context.Context, userID string, proposalID uuid.UUID) error
}

type AllocationService interface {
	GrantAll(ctx context.Context, proposalID uuid.UUID, eligibleUserIDs []string) (*domain.GrantReport, error)
	Backfill(ctx context.Context, proposalID uuid.UUID) (*domain.GrantReport, error)
	GrantForUser(ctx context.Context, userID string) (int, error)
	Get(ctx context.Context, userID string, proposalID uuid.UUID) (*domain.Allocation, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Allocation, error)
	MarkVoted(ctx context.Context, userID string, proposalID uuid.UUID) error
}
