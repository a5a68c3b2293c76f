package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Proposals   *ProposalHandler
	Votes       *VoteHandler
	Allocations *AllocationHandler
	Users       *UserHandler
}

// NewHandler mounts the API behind auth. gatherer may be nil, in which case
// /metrics is not served.
func NewHandler(h Handlers, auth func(http.Handler) http.Handler, gatherer prometheus.Gatherer, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(auth)

		r.Route("/proposals", func(r chi.Router) {
			r.Post("/", h.Proposals.CreateProposal)
			r.Get("/", h.Proposals.ListProposals)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Proposals.GetProposal)
				r.Patch("/", h.Proposals.UpdateProposal)
				r.Post("/close", h.Proposals.CloseProposal)
				r.Post("/archive", h.Proposals.ArchiveProposal)
				r.Get("/tally", h.Proposals.GetTally)

				r.Put("/votes", h.Votes.CastVote)
				r.Get("/votes", h.Votes.ListProposalVotes)
				r.Get("/my-vote", h.Votes.GetMyVote)

				r.Get("/my-allocation", h.Allocations.GetMyAllocation)
				r.Post("/allocations/backfill", h.Allocations.Backfill)
			})
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/", h.Users.GetMe)
			r.Put("/", h.Users.Register)
			r.Get("/votes", h.Votes.ListMyVotes)
			r.Get("/allocations", h.Allocations.ListMyAllocations)
		})
	})

	return r
}
