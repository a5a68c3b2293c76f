// Package app assembles the ledger services on top of a storage backend.
package app

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/adapters/cache"
	"github.com/nafia007/afd-submissions-sub001/internal/adapters/events"
	handler "github.com/nafia007/afd-submissions-sub001/internal/adapters/handler/http"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
	"github.com/nafia007/afd-submissions-sub001/internal/core/services"
	"github.com/nafia007/afd-submissions-sub001/internal/database"
	"github.com/nafia007/afd-submissions-sub001/internal/metrics"
)

type Options struct {
	EligibleRoles  []string
	OpenProposals  bool
	TallyCacheTTL  time.Duration
	TallyCacheSize int
	// Events defaults to a publisher that drops everything.
	Events ports.EventPublisher
	// Registry, when set, receives the service metrics and backs /metrics.
	Registry *prometheus.Registry
	Logger   *logrus.Logger
}

type App struct {
	Proposals   ports.ProposalService
	Allocations ports.AllocationService
	Votes       ports.VoteService
	Tally       ports.TallyService
	Users       ports.UserService
	Sweeper     ports.SweepService

	tallyCache *cache.TallyCache
	registry   *prometheus.Registry
	logger     *logrus.Logger
}

func New(repos *database.Repositories, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	publisher := opts.Events
	if publisher == nil {
		publisher = events.NewNop()
	}
	var registerer prometheus.Registerer
	if opts.Registry != nil {
		registerer = opts.Registry
	}
	m := metrics.New(registerer)

	eligibility := services.NewRoleEligibility(repos.Users, opts.EligibleRoles)
	allocations := services.NewAllocationService(repos.Proposals, repos.Allocations, eligibility, m, logger)
	votes := services.NewVoteService(repos.Proposals, repos.Votes, allocations, publisher, m, logger)
	tally := services.NewTallyService(repos.Proposals, votes, m)
	proposals := services.NewProposalService(
		repos.Proposals, allocations, eligibility, tally, publisher,
		services.ProposalPolicy{OpenProposals: opts.OpenProposals}, m, logger,
	)

	a := &App{
		Proposals:   proposals,
		Allocations: allocations,
		Votes:       votes,
		Tally:       tally,
		Users:       services.NewUserService(repos.Users, eligibility, allocations, logger),
		Sweeper:     services.NewSweepService(proposals, allocations, eligibility, logger),
		registry:    opts.Registry,
		logger:      logger,
	}
	if opts.TallyCacheTTL > 0 {
		a.tallyCache = cache.NewTallyCache(tally, opts.TallyCacheSize, opts.TallyCacheTTL, m)
	}
	return a
}

// Handler returns the HTTP API guarded by tokens signed with jwtSecret.
func (a *App) Handler(jwtSecret []byte) http.Handler {
	var (
		tally      ports.TallyService = a.Tally
		invalidate func(uuid.UUID)
		gatherer   prometheus.Gatherer
	)
	if a.tallyCache != nil {
		tally = a.tallyCache
		invalidate = a.tallyCache.Invalidate
	}
	if a.registry != nil {
		gatherer = a.registry
	}

	return handler.NewHandler(handler.Handlers{
		Proposals:   handler.NewProposalHandler(a.Proposals, tally, a.logger),
		Votes:       handler.NewVoteHandler(a.Votes, invalidate, a.logger),
		Allocations: handler.NewAllocationHandler(a.Allocations, a.logger),
		Users:       handler.NewUserHandler(a.Users, a.logger),
	}, handler.Authenticate(jwtSecret), gatherer, a.logger)
}
