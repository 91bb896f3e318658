package redis

import (
	"context"
	"errors"
	"time"
)

// StatsCache caches assembled stats responses per learner.
type StatsCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewStatsCache creates a cache with the given TTL.
func NewStatsCache(cache *Cache, ttl time.Duration) *StatsCache {
	return &StatsCache{cache: cache, ttl: ttl}
}

// Get loads a cached response into dest. The bool reports a hit.
func (s *StatsCache) Get(ctx context.Context, learnerID string, dest any) (bool, error) {
	err := s.cache.Get(ctx, StatsKey(learnerID), dest)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put stores a response. A zero TTL disables caching.
func (s *StatsCache) Put(ctx context.Context, learnerID string, value any) error {
	if s.ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, StatsKey(learnerID), value, s.ttl)
}
