package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

type sweepService struct {
	proposals   ports.ProposalService
	allocations ports.AllocationService
	eligible    ports.EligibleUserLister
	logger      logrus.FieldLogger
}

func NewSweepService(proposals ports.ProposalService, allocations ports.AllocationService, eligible ports.EligibleUserLister, logger logrus.FieldLogger) ports.SweepService {
	return &sweepService{
		proposals:   proposals,
		allocations: allocations,
		eligible:    eligible,
		logger:      logger.WithField("component", "sweeper"),
	}
}

// Sweep closes proposals whose window has ended and backfills missing
// allocations on the ones that have not ended, including those not yet open.
// Close failures are logged and returned after the backfill has run.
func (s *sweepService) Sweep(ctx context.Context) (*ports.SweepReport, error) {
	closed, closeErr := s.proposals.CloseExpired(ctx)
	if closeErr != nil {
		closeErr = fmt.Errorf("failed to close expired proposals: %w", closeErr)
		s.logger.WithError(closeErr).WithField("closed", closed).Warn("some expired proposals were not closed")
	}

	active, err := s.proposals.ListUnexpired(ctx)
	if err != nil {
		return nil, errors.Join(closeErr, fmt.Errorf("failed to fetch active proposals: %w", err))
	}

	userIDs, err := s.eligible.ListEligibleUserIDs(ctx)
	if err != nil {
		return nil, errors.Join(closeErr, fmt.Errorf("failed to list eligible users: %w", err))
	}

	var wg sync.WaitGroup
	var granted atomic.Int64
	errChan := make(chan error, len(active))

	for _, proposal := range active {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			report, err := s.allocations.GrantAll(ctx, id, userIDs)
			if errors.Is(err, domain.ErrInvalidState) {
				// closed since it was listed
				return
			}
			if err != nil {
				errChan <- fmt.Errorf("failed to backfill proposal %s: %w", id, err)
				return
			}
			granted.Add(int64(report.Granted))
		}(proposal.ID)
	}

	wg.Wait()
	close(errChan)

	report := &ports.SweepReport{
		Closed:     closed,
		Backfilled: int(granted.Load()),
		Proposals:  len(active),
	}
	errs := []error{closeErr}
	for err := range errChan {
		errs = append(errs, err)
	}

	return report, errors.Join(errs...)
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *sweepService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.sweepAndLog(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *sweepService) sweepAndLog(ctx context.Context) {
	report, err := s.Sweep(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.WithError(err).Error("sweep failed")
		if report == nil {
			return
		}
	}
	s.logger.WithFields(logrus.Fields{
		"closed":     report.Closed,
		"backfilled": report.Backfilled,
		"proposals":  report.Proposals,
	}).Info("sweep completed")
}
