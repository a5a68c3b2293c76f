package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.Nil(t, New(nil))
	assert.NotPanics(t, func() {
		m.ProposalCreated()
		m.ProposalClosed("manual")
		m.AllocationsGranted(3)
		m.AllocationFailures(1)
		m.VoteCast("ok")
		m.MarkVotedFailed()
		m.ObserveTally(0.1)
		m.TallyCacheHit()
		m.TallyCacheMiss()
		m.EventPublishFailed()
	})
}

func TestMetricsRecord(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	require.NotNil(t, m)

	m.ProposalCreated()
	m.AllocationsGranted(3)
	m.AllocationsGranted(0)
	m.VoteCast("ok")
	m.VoteCast("ok")
	m.VoteCast("forbidden")
	m.ProposalClosed("expired")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.proposalsCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.allocationsGranted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.votesCast.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.votesCast.WithLabelValues("forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.proposalsClosed.WithLabelValues("expired")))
}
