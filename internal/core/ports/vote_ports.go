package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

type VoteRepository interface {
	// Upsert writes the vote keyed by (user, proposal) in a single
	// conflict-resolving statement. The write only happens while the
	// proposal is open and the user holds an allocation; otherwise
	// domain.ErrProposalNotOpen or domain.ErrNoAllocation is returned.
	Upsert(ctx context.Context, vote *domain.Vote) (*domain.Vote, error)
	// Get returns nil when the user has not voted on the proposal.
	Get(ctx context.Context, userID string, proposalID uuid.UUID) (*domain.Vote, error)
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*domain.Vote, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Vote, error)
}

type CastVoteInput struct {
	UserID     string
	ProposalID uuid.UUID
	Choice     string
}

type VoteService interface {
	Cast(ctx context.Context, input CastVoteInput) (*domain.Vote, error)
	GetForUser(ctx context.Context, userID string, proposalID uuid.UUID) (*domain.Vote, error)
	ListForProposal(ctx context.Context, proposalID uuid.UUID) ([]*domain.Vote, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Vote, error)
}
