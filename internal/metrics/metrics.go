// Package metrics holds the Prometheus instruments of the governance
// service. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "governance"

type Metrics struct {
	proposalsCreated   prometheus.Counter
	proposalsClosed    *prometheus.CounterVec
	allocationsGranted prometheus.Counter
	allocationFailures prometheus.Counter
	votesCast          *prometheus.CounterVec
	markVotedFailures  prometheus.Counter
	tallyDuration      prometheus.Histogram
	tallyCache         *prometheus.CounterVec
	eventFailures      prometheus.Counter
}

// New registers the instruments with registry. It returns nil when registry
// is nil.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		return nil
	}
	factory := promauto.With(registry)
	return &Metrics{
		proposalsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_created_total",
			Help:      "Total number of proposals created",
		}),
		proposalsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_closed_total",
			Help:      "Total number of proposals closed, by trigger",
		}, []string{"trigger"}),
		allocationsGranted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_granted_total",
			Help:      "Total number of voting allocations granted",
		}),
		allocationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_grant_failures_total",
			Help:      "Total number of allocation inserts that failed and await backfill",
		}),
		votesCast: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Total number of cast attempts, by outcome",
		}, []string{"outcome"}),
		markVotedFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mark_voted_failures_total",
			Help:      "Total number of has_voted updates that failed after a successful vote",
		}),
		tallyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tally_duration_seconds",
			Help:      "Time spent computing a tally",
			Buckets:   prometheus.DefBuckets,
		}),
		tallyCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tally_cache_requests_total",
			Help:      "Tally cache lookups, by result",
		}, []string{"result"}),
		eventFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Total number of domain events that could not be published",
		}),
	}
}

func (m *Metrics) ProposalCreated() {
	if m == nil {
		return
	}
	m.proposalsCreated.Inc()
}

// ProposalClosed records a close; trigger is "manual" or "expired".
func (m *Metrics) ProposalClosed(trigger string) {
	if m == nil {
		return
	}
	m.proposalsClosed.WithLabelValues(trigger).Inc()
}

func (m *Metrics) AllocationsGranted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.allocationsGranted.Add(float64(n))
}

func (m *Metrics) AllocationFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.allocationFailures.Add(float64(n))
}

// VoteCast records the outcome of a cast attempt, usually the error kind or
// "ok".
func (m *Metrics) VoteCast(outcome string) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(outcome).Inc()
}

func (m *Metrics) MarkVotedFailed() {
	if m == nil {
		return
	}
	m.markVotedFailures.Inc()
}

func (m *Metrics) ObserveTally(seconds float64) {
	if m == nil {
		return
	}
	m.tallyDuration.Observe(seconds)
}

func (m *Metrics) TallyCacheHit() {
	if m == nil {
		return
	}
	m.tallyCache.WithLabelValues("hit").Inc()
}

func (m *Metrics) TallyCacheMiss() {
	if m == nil {
		return
	}
	m.tallyCache.WithLabelValues("miss").Inc()
}

func (m *Metrics) EventPublishFailed() {
	if m == nil {
		return
	}
	m.eventFailures.Inc()
}
