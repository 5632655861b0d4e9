package lesson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pot-code/course-service/internal/infrastructure/driver"
)

// AggregateCache stores lesson aggregates between reads.
// Every lesson carries a version that Invalidate bumps. Set writes under the
// version Get returned, so an aggregate read before an invalidation is never served after it.
type AggregateCache interface {
	// Get returns nil on a miss, along with the version a following Set must use
	Get(ctx context.Context, lessonID string) (*LessonAggregate, int64, error)
	Set(ctx context.Context, version int64, agg *LessonAggregate) error
	Invalidate(ctx context.Context, lessonIDs ...string) error
}

// KVAggregateCache AggregateCache backed by a key-value store
type KVAggregateCache struct {
	KV  driver.KeyValueDB `dep:""`
	TTL time.Duration
}

var _ AggregateCache = &KVAggregateCache{}

// NewKVAggregateCache .
func NewKVAggregateCache(KV driver.KeyValueDB, ttl time.Duration) *KVAggregateCache {
	return &KVAggregateCache{KV, ttl}
}

func aggregateKey(lessonID string, version int64) string {
	return fmt.Sprintf("lesson:aggregate:%s:%d", lessonID, version)
}

func versionKey(lessonID string) string {
	return "lesson:aggregate:version:" + lessonID
}

func (c *KVAggregateCache) version(ctx context.Context, lessonID string) (int64, error) {
	raw, err := c.KV.Get(ctx, versionKey(lessonID))
	if errors.Is(err, driver.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get aggregate version: %w", err)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse aggregate version: %w", err)
	}
	return v, nil
}

func (c *KVAggregateCache) Get(ctx context.Context, lessonID string) (*LessonAggregate, int64, error) {
	version, err := c.version(ctx, lessonID)
	if err != nil {
		return nil, 0, err
	}

	raw, err := c.KV.Get(ctx, aggregateKey(lessonID, version))
	if errors.Is(err, driver.ErrKeyNotFound) {
		return nil, version, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get cached aggregate: %w", err)
	}

	agg := new(LessonAggregate)
	if err := json.Unmarshal([]byte(raw), agg); err != nil {
		return nil, 0, fmt.Errorf("decode cached aggregate: %w", err)
	}
	return agg, version, nil
}

func (c *KVAggregateCache) Set(ctx context.Context, version int64, agg *LessonAggregate) error {
	b, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode aggregate: %w", err)
	}
	if err := c.KV.SetEX(ctx, aggregateKey(agg.Lesson.ID, version), string(b), c.TTL); err != nil {
		return fmt.Errorf("cache aggregate: %w", err)
	}
	return nil
}

// Invalidate bumps the version of every lesson and drops the entries of the previous versions
func (c *KVAggregateCache) Invalidate(ctx context.Context, lessonIDs ...string) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	stale := make([]string, 0, len(lessonIDs))
	for _, id := range lessonIDs {
		v, err := c.KV.Incr(ctx, versionKey(id))
		if err != nil {
			return fmt.Errorf("invalidate cached aggregates: %w", err)
		}
		stale = append(stale, aggregateKey(id, v-1))
	}
	if err := c.KV.Del(ctx, stale...); err != nil {
		return fmt.Errorf("invalidate cached aggregates: %w", err)
	}
	return nil
}

// NopAggregateCache used when no key-value store is configured
type NopAggregateCache struct{}

var _ AggregateCache = NopAggregateCache{}

func (NopAggregateCache) Get(ctx context.Context, lessonID string) (*LessonAggregate, int64, error) {
	return nil, 0, nil
}

func (NopAggregateCache) Set(ctx context.Context, version int64, agg *LessonAggregate) error {
	return nil
}

func (NopAggregateCache) Invalidate(ctx context.Context, lessonIDs ...string) error { return nil }
