// Package cache wraps an LRU cache with expiration for memoizing
// verification verdicts. Safe for concurrent use; redundant concurrent
// verification of the same key is tolerated since verification is
// idempotent.
package cache

import (
	"time"

	gcache "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "paygate",
		Name:      "cache_requests_total",
		Help:      "cache lookups by result",
	},
	[]string{"name", "result"},
)

type Cache[K comparable, V any] struct {
	cache      *gcache.Cache[K, V]
	metricName string
	ttl        time.Duration
}

// NewLRU creates a bounded LRU cache whose entries expire after ttl.
func NewLRU[K comparable, V any](size int, ttl time.Duration, metricName string) *Cache[K, V] {
	return &Cache[K, V]{
		cache:      gcache.New(gcache.AsLRU[K, V](lru.WithCapacity(size))),
		metricName: metricName,
		ttl:        ttl,
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	val, ok := c.cache.Get(key)
	if ok {
		cacheRequests.WithLabelValues(c.metricName, "hit").Inc()
		return val, true
	}
	cacheRequests.WithLabelValues(c.metricName, "miss").Inc()
	return val, false
}

func (c *Cache[K, V]) Set(key K, val V) {
	if c.ttl > 0 {
		c.cache.Set(key, val, gcache.WithExpiration(c.ttl))
		return
	}
	c.cache.Set(key, val)
}

func (c *Cache[K, V]) Delete(key K) {
	c.cache.Delete(key)
}
