package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// SummaryCache keeps per-tracking-number stock views in Redis so read-heavy
// stock screens do not walk the full ledger on every request. Keys carry a
// generation number that invalidation bumps: a reader that captured its view
// before a commit writes to a dead generation, so it can never resurrect
// stale stock. Dead keys age out with the TTL. The cache degrades to a no-op
// when built without a client.
type SummaryCache struct {
	client     *redis.Client
	ttl        time.Duration
	generation atomic.Uint64
}

// NewSummaryCache instantiates the cache helper.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// Generation returns the current cache generation. Callers capture it while
// they hold the state they are about to cache and pass it to Set.
func (c *SummaryCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	return c.generation.Load()
}

func (c *SummaryCache) key(generation uint64, trackingNumber string) string {
	return fmt.Sprintf("stock:g%d:tracking:%s", generation, trackingNumber)
}

// Get returns the cached entries for a tracking number. The second return
// value is false on a miss.
func (c *SummaryCache) Get(ctx context.Context, trackingNumber string) ([]Entry, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.key(c.generation.Load(), trackingNumber)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Set stores the entries for a tracking number under the given generation.
// A Set whose generation has since been invalidated lands on a key no Get
// will ever read.
func (c *SummaryCache) Set(ctx context.Context, generation uint64, trackingNumber string, entries []Entry) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("ledger: encode summary: %w", err)
	}
	return c.client.Set(ctx, c.key(generation, trackingNumber), raw, c.ttl).Err()
}

// Invalidate retires every cached tracking view by moving to the next
// generation. Called after each committed write, since a single transaction
// can touch several tracking numbers.
func (c *SummaryCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	c.generation.Add(1)
	return nil
}
