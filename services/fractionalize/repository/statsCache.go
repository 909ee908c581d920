package repository

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// statsCache holds aggregation results for a fixed TTL. A nil *statsCache is
// a valid disabled cache.
type statsCache struct {
	cache   *ttlcache.Cache[string, *Statistics]
	stopped atomic.Bool
}

func newStatsCache(ttl time.Duration) *statsCache {
	if ttl <= 0 {
		return nil
	}

	c := &statsCache{
		cache: ttlcache.New[string, *Statistics](
			ttlcache.WithTTL[string, *Statistics](ttl),
			ttlcache.WithDisableTouchOnHit[string, *Statistics](),
		),
	}

	go c.cache.Start()

	return c
}

func (c *statsCache) get(key string) *Statistics {
	if c == nil {
		return nil
	}

	if item := c.cache.Get(key); item != nil {
		return item.Value()
	}

	return nil
}

func (c *statsCache) set(key string, stats *Statistics) {
	if c == nil {
		return
	}

	c.cache.Set(key, stats, ttlcache.DefaultTTL)
}

func (c *statsCache) stop() {
	if c == nil {
		return
	}

	if c.stopped.CompareAndSwap(false, true) {
		c.cache.Stop()
	}
}

func statsCacheKey(windows []Window, opts AggregateOptions) string {
	names := make([]string, 0, len(windows))
	for _, w := range windows {
		names = append(names, w.Name)
	}

	return fmt.Sprintf("%s|total=%t|metadata=%t|recent=%d", strings.Join(names, ","), opts.Total, opts.Metadata, opts.Recent)
}
