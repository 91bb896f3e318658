package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Oyasikelly/QuizMentor-sub000/internal/domain/leaderboard"
)

// Fields of the metadata hash.
const (
	fieldBasis      = "basis"
	fieldRecordedAt = "recorded_at"
)

// DefaultBaselineRetention keeps a few months of snapshots.
const DefaultBaselineRetention = 120 * 24 * time.Hour

// BaselineStore implements leaderboard.BaselineStore with two hashes per
// (cohort, period). The values hash maps learner id to ranking value and
// holds nothing else; basis and timestamp live under BaselineMetaKey.
type BaselineStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewBaselineStore creates a store on top of the cache client.
func NewBaselineStore(cache *Cache, retention time.Duration) *BaselineStore {
	if retention <= 0 {
		retention = DefaultBaselineRetention
	}
	return &BaselineStore{client: cache.Client(), retention: retention}
}

// Save replaces the snapshot atomically.
func (s *BaselineStore) Save(ctx context.Context, b *leaderboard.Baseline) error {
	key := BaselineKey(b.Cohort, b.Period)
	metaKey := BaselineMetaKey(b.Cohort, b.Period)

	values := make(map[string]any, len(b.Values))
	for learnerID, v := range b.Values {
		values[learnerID] = strconv.FormatFloat(v, 'f', -1, 64)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key, metaKey)
		pipe.HSet(ctx, metaKey,
			fieldBasis, string(b.Basis),
			fieldRecordedAt, b.RecordedAt.UTC().Format(time.RFC3339Nano),
		)
		pipe.Expire(ctx, metaKey, s.retention)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
			pipe.Expire(ctx, key, s.retention)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: failed to save baseline %s: %w", key, err)
	}
	return nil
}

// Load returns the snapshot or leaderboard.ErrBaselineNotFound.
// A snapshot exists when its metadata hash does.
func (s *BaselineStore) Load(ctx context.Context, cohort, period string) (*leaderboard.Baseline, error) {
	key := BaselineKey(cohort, period)

	var metaCmd, valuesCmd *redis.MapStringStringCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		metaCmd = pipe.HGetAll(ctx, BaselineMetaKey(cohort, period))
		valuesCmd = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis: failed to load baseline %s: %w", key, err)
	}

	meta := metaCmd.Val()
	if len(meta) == 0 {
		return nil, leaderboard.ErrBaselineNotFound
	}
	raw := valuesCmd.Val()

	b := &leaderboard.Baseline{
		Cohort: cohort,
		Period: period,
		Basis:  leaderboard.Basis(meta[fieldBasis]),
		Values: make(map[string]float64, len(raw)),
	}
	if ts, ok := meta[fieldRecordedAt]; ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			b.RecordedAt = t
		}
	}

	for learnerID, val := range raw {
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			continue
		}
		b.Values[learnerID] = v
	}

	return b, nil
}
