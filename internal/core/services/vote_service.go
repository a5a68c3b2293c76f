package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
	"github.com/nafia007/afd-submissions-sub001/internal/metrics"
)

type voteService struct {
	proposalRepo ports.ProposalRepository
	voteRepo     ports.VoteRepository
	allocations  ports.AllocationService
	events       ports.EventPublisher
	metrics      *metrics.Metrics
	logger       logrus.FieldLogger
}

func NewVoteService(
	proposalRepo ports.ProposalRepository,
	voteRepo ports.VoteRepository,
	allocations ports.AllocationService,
	events ports.EventPublisher,
	m *metrics.Metrics,
	logger logrus.FieldLogger,
) ports.VoteService {
	return &voteService{
		proposalRepo: proposalRepo,
		voteRepo:     voteRepo,
		allocations:  allocations,
		events:       events,
		metrics:      m,
		logger:       logger.WithField("component", "votes"),
	}
}

func (s *voteService) Cast(ctx context.Context, input ports.CastVoteInput) (*domain.Vote, error) {
	vote, err := s.cast(ctx, input)
	if err != nil {
		s.metrics.VoteCast(string(domain.KindOf(err)))
		return nil, err
	}
	s.metrics.VoteCast("ok")
	return vote, nil
}

func (s *voteService) cast(ctx context.Context, input ports.CastVoteInput) (*domain.Vote, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, domain.Validationf("user id is required")
	}

	proposal, err := s.proposalRepo.GetByID(ctx, input.ProposalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !proposal.IsOpen(now) {
		return nil, domain.ErrProposalNotOpen
	}
	if !proposal.HasOption(input.Choice) {
		return nil, domain.ErrInvalidChoice
	}

	allocation, err := s.allocations.Get(ctx, input.UserID, input.ProposalID)
	if err != nil {
		return nil, err
	}
	if allocation == nil {
		return nil, domain.ErrNoAllocation
	}

	// The repository re-checks the gate in the same statement as the write.
	vote, err := s.voteRepo.Upsert(ctx, &domain.Vote{
		UserID:     input.UserID,
		ProposalID: input.ProposalID,
		Choice:     input.Choice,
		CastAt:     now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.allocations.MarkVoted(ctx, input.UserID, input.ProposalID); err != nil {
		s.metrics.MarkVotedFailed()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"proposal_id": input.ProposalID,
			"user_id":     input.UserID,
		}).Warn("vote stored but allocation could not be marked as used")
	}

	publish(ctx, s.events, s.metrics, s.logger, domain.Event{
		Type:       domain.EventVoteCast,
		ProposalID: vote.ProposalID,
		UserID:     vote.UserID,
		Choice:     vote.Choice,
		OccurredAt: vote.UpdatedAt,
	})

	return vote, nil
}

func (s *voteService) GetForUser(ctx context.Context, userID string, proposalID uuid.UUID) (*domain.Vote, error) {
	return s.voteRepo.Get(ctx, userID, proposalID)
}

func (s *voteService) ListForProposal(ctx context.Context, proposalID uuid.UUID) ([]*domain.Vote, error) {
	return s.voteRepo.ListByProposal(ctx, proposalID)
}

func (s *voteService) ListForUser(ctx context.Context, userID string) ([]*domain.Vote, error) {
	return s.voteRepo.ListByUser(ctx, userID)
}
