package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/metrics"
)

type countingTally struct {
	calls  int
	result *domain.TallyResult
	err    error
}

func (c *countingTally) Tally(context.Context, uuid.UUID) (*domain.TallyResult, error) {
	c.calls++
	return c.result, c.err
}

func TestTallyCache_HitWithinTTL(t *testing.T) {
	next := &countingTally{result: &domain.TallyResult{Total: 3}}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := NewTallyCache(next, 10, time.Minute, m)
	id := uuid.New()

	for range 3 {
		got, err := c.Tally(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.Total)
	}
	assert.Equal(t, 1, next.calls)
	n, err := testutil.GatherAndCount(reg, "governance_tally_cache_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "hit and miss series")

	c.Invalidate(id)
	_, err = c.Tally(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestTallyCache_ExpiresAfterTTL(t *testing.T) {
	next := &countingTally{result: &domain.TallyResult{Total: 1}}
	c := NewTallyCache(next, 10, 50*time.Millisecond, nil)
	id := uuid.New()

	_, err := c.Tally(context.Background(), id)
	require.NoError(t, err)
	time.Sleep(150 * time.Millisecond)
	_, err = c.Tally(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
}

func TestTallyCache_CachesEmptyTally(t *testing.T) {
	next := &countingTally{}
	c := NewTallyCache(next, 10, time.Minute, nil)
	id := uuid.New()

	for range 2 {
		got, err := c.Tally(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, 1, next.calls)
}

func TestTallyCache_DoesNotCacheErrors(t *testing.T) {
	next := &countingTally{err: errors.New("boom")}
	c := NewTallyCache(next, 10, time.Minute, nil)
	id := uuid.New()

	for range 2 {
		_, err := c.Tally(context.Background(), id)
		require.Error(t, err)
	}
	assert.Equal(t, 2, next.calls)
}
