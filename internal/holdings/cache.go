package holdings

import (
	"context"
	"time"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/pkg/redis"
)

// PlanCache keeps the latest result per portfolio in Redis.
// Redis 비활성이면 모든 호출이 no-op (항상 miss)
type PlanCache struct {
	cache *redis.Cache
	ttl   time.Duration
}

// NewPlanCache creates a plan cache; ttl <= 0 uses redis.TTLMedium
func NewPlanCache(client *redis.Client, ttl time.Duration) *PlanCache {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &PlanCache{
		cache: redis.NewCache(client, "folio"),
		ttl:   ttl,
	}
}

// Get returns the cached result, or (nil, false, nil) on a miss
func (c *PlanCache) Get(ctx context.Context, portfolioID string) (*contracts.Result, bool, error) {
	var result contracts.Result
	found, err := c.cache.Get(ctx, redis.PlanKey(portfolioID), &result)
	if err != nil || !found {
		return nil, false, err
	}
	return &result, true, nil
}

// Put stores a freshly computed result
func (c *PlanCache) Put(ctx context.Context, result *contracts.Result) error {
	return c.cache.Set(ctx, redis.PlanKey(result.PortfolioID), result, c.ttl)
}

// Invalidate drops a portfolio's cached plan
func (c *PlanCache) Invalidate(ctx context.Context, portfolioID string) error {
	return c.cache.Delete(ctx, redis.PlanKey(portfolioID))
}

