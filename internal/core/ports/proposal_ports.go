package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

type ProposalFilter struct {
	Status domain.ProposalStatus
	Query  string
}

type ProposalRepository interface {
	Save(ctx context.Context, proposal *domain.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error)
	// ListActive returns active proposals whose voting window contains now,
	// newest first.
	ListActive(ctx context.Context, now time.Time) ([]*domain.Proposal, error)
	// ListUnexpired returns active proposals whose end time is not yet past,
	// including those whose window has not opened.
	ListUnexpired(ctx context.Context, now time.Time) ([]*domain.Proposal, error)
	// ListExpired returns active proposals whose end time is before now.
	ListExpired(ctx context.Context, now time.Time) ([]*domain.Proposal, error)
	List(ctx context.Context, filter ProposalFilter, limit, offset int) ([]*domain.Proposal, error)
	// UpdateDetails writes the mutable fields of an active proposal. It
	// returns domain.ErrProposalNotActive when the stored row is not active.
	UpdateDetails(ctx context.Context, proposal *domain.Proposal) error
	// Close moves an active proposal to closed. The returned flag is false
	// when the row was not active.
	Close(ctx context.Context, id uuid.UUID, closedAt time.Time) (bool, error)
	// Archive moves a closed proposal to archived. The returned flag is false
	// when the row was not closed.
	Archive(ctx context.Context, id uuid.UUID) (bool, error)
}

type CreateProposalInput struct {
	Title          string
	Description    string
	VotingOptions  []string
	StartTime      time.Time
	EndTime        time.Time
	QuorumRequired *int64
}

type ProposalPatch struct {
	Title          *string
	Description    *string
	QuorumRequired *int64
	ClearQuorum    bool
}

type ListProposalsInput struct {
	Status domain.ProposalStatus
	Query  string
	Page   int
}

type ProposalService interface {
	Create(ctx context.Context, input CreateProposalInput, actor domain.Actor) (*domain.Proposal, error)
	ListActive(ctx context.Context) ([]*domain.Proposal, error)
	ListUnexpired(ctx context.Context) ([]*domain.Proposal, error)
	List(ctx context.Context, input ListProposalsInput) ([]*domain.Proposal, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Proposal, error)
	Update(ctx context.Context, id uuid.UUID, patch ProposalPatch, actor domain.Actor) (*domain.Proposal, error)
	Close(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.Proposal, error)
	Archive(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.Proposal, error)
	CloseExpired(ctx context.Context) (int, error)
}
