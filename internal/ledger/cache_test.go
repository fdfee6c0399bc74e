package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *SummaryCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSummaryCache(client, time.Minute)
}

func TestSummaryCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	entries := []Entry{{
		TrackingNumber: "TN-1",
		GodownID:       "g-1",
		ItemID:         "item-1",
		Stock:          []StockLine{{Color: "Red", Size: "M", Quantity: 4}},
	}}
	require.NoError(t, c.Set(ctx, c.Generation(), "TN-1", entries))

	got, ok := c.Get(ctx, "TN-1")
	require.True(t, ok)
	require.Equal(t, entries, got)
}

func TestSummaryCacheMiss(t *testing.T) {
	c := newTestCache(t)
	_, ok := c.Get(context.Background(), "TN-404")
	require.False(t, ok)
}

func TestSummaryCacheInvalidateDropsAllTrackingKeys(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, c.Generation(), "TN-1", []Entry{{TrackingNumber: "TN-1", GodownID: "g-1"}}))
	require.NoError(t, c.Set(ctx, c.Generation(), "TN-2", []Entry{{TrackingNumber: "TN-2", GodownID: "g-1"}}))
	require.NoError(t, c.Invalidate(ctx))

	_, ok := c.Get(ctx, "TN-1")
	require.False(t, ok)
	_, ok = c.Get(ctx, "TN-2")
	require.False(t, ok)
}

func TestSummaryCacheLateWriteLandsOnRetiredGeneration(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	stale := []Entry{{
		TrackingNumber: "TN-1",
		GodownID:       "g-1",
		Stock:          []StockLine{{Color: "Red", Size: "M", Quantity: 99}},
	}}
	generation := c.Generation()
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, generation, "TN-1", stale))

	_, ok := c.Get(ctx, "TN-1")
	require.False(t, ok)

	fresh := []Entry{{
		TrackingNumber: "TN-1",
		GodownID:       "g-1",
		Stock:          []StockLine{{Color: "Red", Size: "M", Quantity: 3}},
	}}
	require.NoError(t, c.Set(ctx, c.Generation(), "TN-1", fresh))
	got, ok := c.Get(ctx, "TN-1")
	require.True(t, ok)
	require.Equal(t, fresh, got)
}

func TestSummaryCacheNilIsNoOp(t *testing.T) {
	var c *SummaryCache
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, c.Generation(), "TN-1", nil))
	require.NoError(t, c.Invalidate(ctx))
	_, ok := c.Get(ctx, "TN-1")
	require.False(t, ok)
}
