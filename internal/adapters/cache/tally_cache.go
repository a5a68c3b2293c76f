// Package cache memoizes tally results in a bounded, expiring LRU.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
	"github.com/nafia007/afd-submissions-sub001/internal/metrics"
)

// TallyCache serves repeated tally reads from memory. A cached result may
// lag behind new votes by up to the TTL unless Invalidate is called.
type TallyCache struct {
	next    ports.TallyService
	lru     *expirable.LRU[uuid.UUID, *domain.TallyResult]
	metrics *metrics.Metrics
}

func NewTallyCache(next ports.TallyService, size int, ttl time.Duration, m *metrics.Metrics) *TallyCache {
	if size <= 0 {
		size = 1024
	}
	return &TallyCache{
		next:    next,
		lru:     expirable.NewLRU[uuid.UUID, *domain.TallyResult](size, nil, ttl),
		metrics: m,
	}
}

func (c *TallyCache) Tally(ctx context.Context, proposalID uuid.UUID) (*domain.TallyResult, error) {
	if result, ok := c.lru.Get(proposalID); ok {
		c.metrics.TallyCacheHit()
		return result, nil
	}
	c.metrics.TallyCacheMiss()

	result, err := c.next.Tally(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	c.lru.Add(proposalID, result)
	return result, nil
}

// Invalidate drops the cached tally of a proposal.
func (c *TallyCache) Invalidate(proposalID uuid.UUID) {
	c.lru.Remove(proposalID)
}
