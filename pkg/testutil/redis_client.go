package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient is a func-field mock of xredis.Client. Unset funcs answer
// with zero values.
type MockRedisClient struct {
	ExistFunc               func(ctx context.Context, key string) (bool, error)
	DelFunc                 func(ctx context.Context, key ...string) error
	ZAddFunc                func(ctx context.Context, key string, z redis.Z) error
	ZIncrByFunc             func(ctx context.Context, key string, incr float64, member string) error
	ZRevRangeWithScoresFunc func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error)
	ZRevRankFunc            func(ctx context.Context, key string, member string) (uint64, error)
	ZCardFunc               func(ctx context.Context, key string) (uint64, error)
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	if m.ExistFunc != nil {
		return m.ExistFunc(ctx, key)
	}

	return false, nil
}

func (m *MockRedisClient) Del(ctx context.Context, key ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, key...)
	}

	return nil
}

func (m *MockRedisClient) ZAdd(ctx context.Context, key string, z redis.Z) error {
	if m.ZAddFunc != nil {
		return m.ZAddFunc(ctx, key, z)
	}

	return nil
}

func (m *MockRedisClient) ZIncrBy(
	ctx context.Context, key string, incr float64, member string,
) error {
	if m.ZIncrByFunc != nil {
		return m.ZIncrByFunc(ctx, key, incr, member)
	}

	return nil
}

func (m *MockRedisClient) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	if m.ZRevRangeWithScoresFunc != nil {
		return m.ZRevRangeWithScoresFunc(ctx, key, offset, limit)
	}

	return nil, nil
}

func (m *MockRedisClient) ZRevRank(ctx context.Context, key string, member string) (uint64, error) {
	if m.ZRevRankFunc != nil {
		return m.ZRevRankFunc(ctx, key, member)
	}

	return 0, nil
}

func (m *MockRedisClient) ZCard(ctx context.Context, key string) (uint64, error) {
	if m.ZCardFunc != nil {
		return m.ZCardFunc(ctx, key)
	}

	return 0, nil
}

// InMemoryRedisClient implements the sorted-set subset of xredis.Client on a
// plain map, for tests that assert leaderboard content.
type InMemoryRedisClient struct {
	mutex sync.Mutex
	zsets map[string]map[string]float64
}

func NewInMemoryRedisClient() *InMemoryRedisClient {
	return &InMemoryRedisClient{zsets: make(map[string]map[string]float64)}
}

func (c *InMemoryRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, ok := c.zsets[key]
	return ok, nil
}

func (c *InMemoryRedisClient) Del(ctx context.Context, keys ...string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, key := range keys {
		delete(c.zsets, key)
	}

	return nil
}

func (c *InMemoryRedisClient) ZAdd(ctx context.Context, key string, z redis.Z) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.zset(key)[z.Member.(string)] = z.Score
	return nil
}

func (c *InMemoryRedisClient) ZIncrBy(
	ctx context.Context, key string, incr float64, member string,
) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.zset(key)[member] += incr
	return nil
}

func (c *InMemoryRedisClient) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	sorted := c.sorted(key)
	if offset >= len(sorted) {
		return nil, nil
	}

	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}

	return sorted[offset:end], nil
}

func (c *InMemoryRedisClient) ZRevRank(
	ctx context.Context, key string, member string,
) (uint64, error) {
	for i, z := range c.sorted(key) {
		if z.Member == member {
			return uint64(i), nil
		}
	}

	return 0, redis.Nil
}

func (c *InMemoryRedisClient) ZCard(ctx context.Context, key string) (uint64, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return uint64(len(c.zsets[key])), nil
}

func (c *InMemoryRedisClient) zset(key string) map[string]float64 {
	if _, ok := c.zsets[key]; !ok {
		c.zsets[key] = make(map[string]float64)
	}

	return c.zsets[key]
}

func (c *InMemoryRedisClient) sorted(key string) []redis.Z {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	sorted := []redis.Z{}
	for member, score := range c.zsets[key] {
		sorted = append(sorted, redis.Z{Member: member, Score: score})
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}

		return sorted[i].Member.(string) > sorted[j].Member.(string)
	})

	return sorted
}
