package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
	"github.com/nafia007/afd-submissions-sub001/internal/metrics"
)

const pageSize = 10

var errUnauthenticated = &domain.Error{Kind: domain.ErrForbidden, Msg: "an authenticated user is required"}

// ProposalPolicy controls who may open proposals.
type ProposalPolicy struct {
	// OpenProposals lets any authenticated user create proposals. When false
	// only administrators may.
	OpenProposals bool
}

type proposalService struct {
	repo        ports.ProposalRepository
	allocations ports.AllocationService
	eligible    ports.EligibleUserLister
	tally       ports.TallyService
	events      ports.EventPublisher
	policy      ProposalPolicy
	metrics     *metrics.Metrics
	logger      logrus.FieldLogger
}

func NewProposalService(
	repo ports.ProposalRepository,
	allocations ports.AllocationService,
	eligible ports.EligibleUserLister,
	tally ports.TallyService,
	events ports.EventPublisher,
	policy ProposalPolicy,
	m *metrics.Metrics,
	logger logrus.FieldLogger,
) ports.ProposalService {
	return &proposalService{
		repo:        repo,
		allocations: allocations,
		eligible:    eligible,
		tally:       tally,
		events:      events,
		policy:      policy,
		metrics:     m,
		logger:      logger.WithField("component", "proposals"),
	}
}

func (s *proposalService) Create(ctx context.Context, input ports.CreateProposalInput, actor domain.Actor) (*domain.Proposal, error) {
	if actor.UserID == "" {
		return nil, errUnauthenticated
	}
	if !actor.IsAdmin && !s.policy.OpenProposals {
		return nil, domain.ErrAdminOnly
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.Validationf("title is required")
	}
	options, err := normalizeOptions(input.VotingOptions)
	if err != nil {
		return nil, err
	}
	if input.StartTime.IsZero() || input.EndTime.IsZero() {
		return nil, domain.Validationf("start time and end time are required")
	}
	if !input.StartTime.Before(input.EndTime) {
		return nil, domain.Validationf("start time must be before end time")
	}
	if err := validateQuorum(input.QuorumRequired); err != nil {
		return nil, err
	}

	proposal := &domain.Proposal{
		ID:             uuid.New(),
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		VotingOptions:  options,
		StartTime:      input.StartTime.UTC(),
		EndTime:        input.EndTime.UTC(),
		QuorumRequired: input.QuorumRequired,
		Status:         domain.ProposalStatusActive,
		NFTMinted:      false,
		CreatedBy:      actor.UserID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Save(ctx, proposal); err != nil {
		return nil, err
	}
	s.metrics.ProposalCreated()

	s.grantInitialAllocations(ctx, proposal)

	publish(ctx, s.events, s.metrics, s.logger, domain.Event{
		Type:       domain.EventProposalCreated,
		ProposalID: proposal.ID,
		UserID:     actor.UserID,
		OccurredAt: proposal.CreatedAt,
	})

	return proposal, nil
}

// grantInitialAllocations fans allocations out to every eligible user. It is
// not atomic with the proposal insert; gaps are closed by a later backfill.
func (s *proposalService) grantInitialAllocations(ctx context.Context, proposal *domain.Proposal) {
	logger := s.logger.WithField("proposal_id", proposal.ID)

	userIDs, err := s.eligible.ListEligibleUserIDs(ctx)
	if err != nil {
		logger.WithError(err).Warn("could not enumerate eligible users, allocations left for backfill")
		return
	}

	report, err := s.allocations.GrantAll(ctx, proposal.ID, userIDs)
	if err != nil {
		logger.WithError(err).Warn("initial allocation grant failed, allocations left for backfill")
		return
	}
	if report.Failed > 0 {
		logger.WithField("failed", report.Failed).Warn("some allocations were not granted, allocations left for backfill")
	}
}

func normalizeOptions(raw []string) ([]string, error) {
	options := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, opt := range raw {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if _, dup := seen[opt]; dup {
			return nil, domain.Validationf("voting option %q is listed more than once", opt)
		}
		seen[opt] = struct{}{}
		options = append(options, opt)
	}

	if len(options) < 2 {
		return nil, domain.Validationf("at least two distinct voting options are required")
	}
	return options, nil
}

func validateQuorum(quorum *int64) error {
	if quorum != nil && *quorum < 0 {
		return domain.Validationf("quorum must not be negative")
	}
	return nil
}

func (s *proposalService) ListActive(ctx context.Context) ([]*domain.Proposal, error) {
	return s.repo.ListActive(ctx, time.Now())
}

// ListUnexpired returns the active proposals that can still receive votes,
// including those scheduled to open later.
func (s *proposalService) ListUnexpired(ctx context.Context) ([]*domain.Proposal, error) {
	return s.repo.ListUnexpired(ctx, time.Now())
}

func (s *proposalService) List(ctx context.Context, input ports.ListProposalsInput) ([]*domain.Proposal, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, domain.Validationf("unknown proposal status %q", input.Status)
	}
	page := input.Page
	if page < 1 {
		page = 1
	}

	filter := ports.ProposalFilter{Status: input.Status, Query: strings.TrimSpace(input.Query)}
	return s.repo.List(ctx, filter, pageSize, (page-1)*pageSize)
}

func (s *proposalService) Get(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *proposalService) Update(ctx context.Context, id uuid.UUID, patch ports.ProposalPatch, actor domain.Actor) (*domain.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !proposal.CanManage(actor) {
		return nil, domain.ErrNotProposalManager
	}
	if proposal.Status != domain.ProposalStatusActive {
		return nil, domain.ErrProposalNotActive
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, domain.Validationf("title is required")
		}
		proposal.Title = title
	}
	if patch.Description != nil {
		proposal.Description = strings.TrimSpace(*patch.Description)
	}
	switch {
	case patch.ClearQuorum:
		proposal.QuorumRequired = nil
	case patch.QuorumRequired != nil:
		if err := validateQuorum(patch.QuorumRequired); err != nil {
			return nil, err
		}
		proposal.QuorumRequired = patch.QuorumRequired
	}

	if err := s.repo.UpdateDetails(ctx, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// Close is idempotent: closing a closed proposal returns it unchanged.
func (s *proposalService) Close(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.Proposal, error) {
	proposal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !proposal.CanManage(actor) {
		return nil, domain.ErrNotProposalManager
	}

	switch proposal.Status {
	case domain.ProposalStatusArchived:
		return nil, domain.ErrProposalArchived
	case domain.ProposalStatusClosed:
		return proposal, nil
	}

	return s.close(ctx, proposal, "manual")
}

func (s *proposalService) close(ctx context.Context, proposal *domain.Proposal, trigger string) (*domain.Proposal, error) {
	now := time.Now().UTC()
	closed, err := s.repo.Close(ctx, proposal.ID, now)
	if err != nil {
		return nil, err
	}
	if !closed {
		// lost a race with another close or an archive
		current, err := s.repo.GetByID(ctx, proposal.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == domain.ProposalStatusArchived {
			return nil, domain.ErrProposalArchived
		}
		return current, nil
	}

	proposal.Status = domain.ProposalStatusClosed
	proposal.ClosedAt = &now
	s.metrics.ProposalClosed(trigger)

	quorumMet := s.evaluateQuorum(ctx, proposal)
	fields := logrus.Fields{"proposal_id": proposal.ID, "trigger": trigger}
	if quorumMet != nil {
		fields["quorum_met"] = *quorumMet
	}
	s.logger.WithFields(fields).Info("proposal closed")

	publish(ctx, s.events, s.metrics, s.logger, domain.Event{
		Type:       domain.EventProposalClosed,
		ProposalID: proposal.ID,
		QuorumMet:  quorumMet,
		OccurredAt: now,
	})

	return proposal, nil
}

// evaluateQuorum reports whether the final tally reached the proposal's
// quorum, or nil when the proposal has none or the tally failed.
func (s *proposalService) evaluateQuorum(ctx context.Context, proposal *domain.Proposal) *bool {
	if proposal.QuorumRequired == nil {
		return nil
	}
	tally, err := s.tally.Tally(ctx, proposal.ID)
	if err != nil {
		s.logger.WithError(err).WithField("proposal_id", proposal.ID).Warn("failed to tally closed proposal")
		return nil
	}

	var total int64
	if tally != nil {
		total = tally.Total
	}
	met := total >= *proposal.QuorumRequired
	return &met
}

func (s *proposalService) Archive(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.Proposal, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrAdminOnly
	}

	proposal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch proposal.Status {
	case domain.ProposalStatusArchived:
		return proposal, nil
	case domain.ProposalStatusActive:
		return nil, domain.ErrProposalStillOpen
	}

	archived, err := s.repo.Archive(ctx, id)
	if err != nil {
		return nil, err
	}
	if !archived {
		return s.repo.GetByID(ctx, id)
	}
	proposal.Status = domain.ProposalStatusArchived
	return proposal, nil
}

// CloseExpired closes every active proposal whose voting window has ended.
// It keeps going past individual failures and returns them joined.
func (s *proposalService) CloseExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired proposals: %w", err)
	}

	var errs []error
	closed := 0
	for _, proposal := range expired {
		if _, err := s.close(ctx, proposal, "expired"); err != nil {
			errs = append(errs, fmt.Errorf("failed to close proposal %s: %w", proposal.ID, err))
			continue
		}
		closed++
	}
	return closed, errors.Join(errs...)
}
