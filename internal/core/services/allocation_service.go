package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
	"github.com/nafia007/afd-submissions-sub001/internal/metrics"
)

type allocationService struct {
	proposalRepo ports.ProposalRepository
	repo         ports.AllocationRepository
	eligible     ports.EligibleUserLister
	metrics      *metrics.Metrics
	logger       logrus.FieldLogger
}

func NewAllocationService(
	proposalRepo ports.ProposalRepository,
	repo ports.AllocationRepository,
	eligible ports.EligibleUserLister,
	m *metrics.Metrics,
	logger logrus.FieldLogger,
) ports.AllocationService {
	return &allocationService{
		proposalRepo: proposalRepo,
		repo:         repo,
		eligible:     eligible,
		metrics:      m,
		logger:       logger.WithField("component", "allocations"),
	}
}

// GrantAll inserts the allocations that eligibleUserIDs are missing for the
// proposal. Existing rows are never touched, so the call is safe to repeat.
// Individual insert failures are logged and counted in the report rather
// than returned; a later call picks them up.
func (s *allocationService) GrantAll(ctx context.Context, proposalID uuid.UUID, eligibleUserIDs []string) (*domain.GrantReport, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != domain.ProposalStatusActive {
		return nil, domain.ErrProposalNotActive
	}

	existingIDs, err := s.repo.ListUserIDs(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations for proposal %s: %w", proposalID, err)
	}
	existing := make(map[string]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	report := &domain.GrantReport{ProposalID: proposalID}
	now := time.Now()
	seen := make(map[string]struct{}, len(eligibleUserIDs))
	var missing []*domain.Allocation
	for _, userID := range eligibleUserIDs {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		if _, ok := existing[userID]; ok {
			report.Existing++
			continue
		}
		missing = append(missing, &domain.Allocation{
			UserID:     userID,
			ProposalID: proposalID,
			GrantedAt:  now,
		})
	}
	report.Requested = len(seen)

	if len(missing) == 0 {
		return report, nil
	}

	granted, err := s.repo.CreateMany(ctx, missing)
	if err == nil {
		report.Granted = granted
		// rows inserted concurrently by another grant
		report.Existing += len(missing) - granted
	} else {
		s.logger.WithError(err).WithField("proposal_id", proposalID).
			Warn("batch allocation insert failed, falling back to single inserts")
		for _, allocation := range missing {
			created, err := s.repo.Create(ctx, allocation)
			if err != nil {
				report.Failed++
				s.logger.WithError(err).WithFields(logrus.Fields{
					"proposal_id": proposalID,
					"user_id":     allocation.UserID,
				}).Error("failed to grant allocation")
				continue
			}
			if created {
				report.Granted++
			} else {
				report.Existing++
			}
		}
	}

	s.metrics.AllocationsGranted(report.Granted)
	s.metrics.AllocationFailures(report.Failed)
	s.logger.WithFields(logrus.Fields{
		"proposal_id": proposalID,
		"requested":   report.Requested,
		"existing":    report.Existing,
		"granted":     report.Granted,
		"failed":      report.Failed,
	}).Info("allocations granted")

	return report, nil
}

func (s *allocationService) Backfill(ctx context.Context, proposalID uuid.UUID) (*domain.GrantReport, error) {
	userIDs, err := s.eligible.ListEligibleUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible users: %w", err)
	}
	return s.GrantAll(ctx, proposalID, userIDs)
}

// GrantForUser gives a late-joining user an allocation on every active
// proposal that has not ended yet, including ones that open later.
func (s *allocationService) GrantForUser(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.Validationf("user id is required")
	}

	proposals, err := s.proposalRepo.ListUnexpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to list unexpired proposals: %w", err)
	}

	granted := 0
	now := time.Now()
	for _, p := range proposals {
		created, err := s.repo.Create(ctx, &domain.Allocation{
			UserID:     userID,
			ProposalID: p.ID,
			GrantedAt:  now,
		})
		if err != nil {
			s.metrics.AllocationFailures(1)
			s.logger.WithError(err).WithFields(logrus.Fields{
				"proposal_id": p.ID,
				"user_id":     userID,
			}).Error("failed to grant late allocation")
			continue
		}
		if created {
			granted++
		}
	}
	s.metrics.AllocationsGranted(granted)

	return granted, nil
}

func (s *allocationService) Get(ctx context.Context, userID string, proposalID uuid.UUID) (*domain.Allocation, error) {
	return s.repo.Get(ctx, userID, proposalID)
}

func (s *allocationService) ListForUser(ctx context.Context, userID string) ([]*domain.Allocation, error) {
	return s.repo.ListByUser(ctx, userID)
}

// MarkVoted flags the allocation as used. It is only called by the vote
// ledger after a successful write.
func (s *allocationService) MarkVoted(ctx context.Context, userID string, proposalID uuid.UUID) error {
	return s.repo.MarkVoted(ctx, userID, proposalID)
}
