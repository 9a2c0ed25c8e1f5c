package trivia

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// BatchCache caches raw record batches with a TTL to avoid hammering the
// rate-limited public provider. Concurrent misses for the same batch size
// collapse into a single upstream fetch.
type BatchCache struct {
	fetcher Fetcher
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu    sync.RWMutex
	cache map[int]cachedBatch
}

type cachedBatch struct {
	records   []Record
	expiresAt time.Time
}

func NewBatchCache(fetcher Fetcher, ttl time.Duration) *BatchCache {
	return &BatchCache{
		fetcher: fetcher,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[int]cachedBatch),
	}
}

func (c *BatchCache) Fetch(ctx context.Context, count int) ([]Record, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[count]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.records, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(strconv.Itoa(count), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[count]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.records, nil
		}
		c.mu.RUnlock()

		records, err := c.fetcher.Fetch(ctx, count)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[count] = cachedBatch{
			records:   records,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Record), nil
}

func (c *BatchCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
