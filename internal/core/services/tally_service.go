package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
	"github.com/nafia007/afd-submissions-sub001/internal/metrics"
)

type tallyService struct {
	proposalRepo ports.ProposalRepository
	votes        ports.VoteService
	metrics      *metrics.Metrics
}

func NewTallyService(proposalRepo ports.ProposalRepository, votes ports.VoteService, m *metrics.Metrics) ports.TallyService {
	return &tallyService{
		proposalRepo: proposalRepo,
		votes:        votes,
		metrics:      m,
	}
}

func (s *tallyService) Tally(ctx context.Context, proposalID uuid.UUID) (*domain.TallyResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveTally(time.Since(start).Seconds()) }()

	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	votes, err := s.votes.ListForProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes for proposal %s: %w", proposalID, err)
	}

	return domain.NewTallyResult(proposal, votes, time.Now().UTC()), nil
}
