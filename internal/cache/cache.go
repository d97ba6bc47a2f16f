// Package cache implements the process-local, TTL-bounded cache fronting
// the resolver (§4.7), with single-flight coalescing of concurrent misses
// and optional cross-process invalidation over Redis pub/sub.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/ant-dns/antdns/internal/antdnserr"
	"github.com/ant-dns/antdns/internal/canonical"
	"github.com/ant-dns/antdns/internal/metrics"
)

// shardCount reduces lock contention on the map-level lock, the only
// shared mutable state in the core besides the single-flight waiters.
const shardCount = 64

// DefaultTTL is the default successful-resolution TTL (60 minutes).
const DefaultTTL = 60 * time.Minute

// DefaultNegativeTTL is the TTL applied to cached NotRegistered results,
// kept short to avoid hammering on typo traffic without pinning stale
// negatives for long.
const DefaultNegativeTTL = 60 * time.Second

// DefaultCapacity bounds the total number of entries across all shards
// before LRU eviction kicks in.
const DefaultCapacity = 100_000

// Resolved mirrors resolver.Resolved's shape without importing the
// resolver package, so the cache can be tested and reused independently
// of the resolution algorithm.
type Resolved struct {
	OwnerPubKey []byte
	Records     []canonical.Record
}

// Resolve is the function the cache calls on a miss or expiry. Callers
// typically wire this to (*resolver.Resolver).Resolve.
type Resolve func(ctx context.Context, name string) (*Resolved, error)

type entry struct {
	resolved  *Resolved
	negative  bool
	fetchedAt time.Time
	ttl       time.Duration
	elem      *list.Element // position in the shard's LRU list
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.fetchedAt) >= e.ttl
}

type shard struct {
	mu      sync.Mutex
	items   map[string]*entry
	lru     *list.List // of string keys, most-recently-used at the back
	leaders map[string]*leader
}

// leader is the per-name one-shot completion primitive coordinating
// single-flight resolution: the first caller to miss becomes the leader
// and resolves; late waiters block on done without re-entering the map
// lock.
type leader struct {
	done     chan struct{}
	resolved *Resolved
	negative bool
	err      error
}

// Cache is a sharded, TTL-bounded, single-flight resolution cache.
type Cache struct {
	shards      [shardCount]*shard
	ttl         time.Duration
	negativeTTL time.Duration
	capacity    int
	resolve     Resolve
	bus         InvalidationBus
}

// InvalidationBus is the optional cross-process fan-out used to evict a
// name's entry on every process sharing a cache, e.g. over Redis pub/sub.
// A nil bus disables cross-process invalidation; the cache still works
// correctly as a purely process-local cache.
type InvalidationBus interface {
	Publish(ctx context.Context, name string) error
	Subscribe(ctx context.Context) (<-chan string, error)
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithTTL overrides DefaultTTL. A TTL of 0 disables caching of successful
// resolutions — every such lookup re-resolves; NotRegistered results are
// still cached for the negative TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithNegativeTTL overrides DefaultNegativeTTL.
func WithNegativeTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.negativeTTL = ttl }
}

// WithCapacity overrides DefaultCapacity.
func WithCapacity(n int) Option {
	return func(c *Cache) { c.capacity = n }
}

// WithInvalidationBus attaches a cross-process invalidation bus and
// starts a goroutine consuming it for the lifetime of ctx.
func WithInvalidationBus(ctx context.Context, bus InvalidationBus) Option {
	return func(c *Cache) {
		c.bus = bus
		if bus == nil {
			return
		}
		ch, err := bus.Subscribe(ctx)
		if err != nil {
			return
		}
		go func() {
			for name := range ch {
				c.evict(name)
			}
		}()
	}
}

// New builds a Cache that calls resolve on a miss or TTL expiry.
func New(resolve Resolve, opts ...Option) *Cache {
	c := &Cache{
		ttl:         DefaultTTL,
		negativeTTL: DefaultNegativeTTL,
		capacity:    DefaultCapacity,
		resolve:     resolve,
	}
	for i := range c.shards {
		c.shards[i] = &shard{
			items:   make(map[string]*entry),
			lru:     list.New(),
			leaders: make(map[string]*leader),
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) shardFor(name string) *shard {
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return c.shards[h%shardCount]
}

// Lookup returns the cached resolution for name, re-resolving on a miss
// or expiry. Concurrent lookups of the same name that miss or expire
// share one in-flight resolution (§4.7, §8 property 8).
func (c *Cache) Lookup(ctx context.Context, name string) (*Resolved, error) {
	sh := c.shardFor(name)
	now := time.Now()

	sh.mu.Lock()
	if e, ok := sh.items[name]; ok && !e.expired(now) {
		sh.lru.MoveToBack(e.elem)
		sh.mu.Unlock()
		metrics.CacheOperationsTotal.WithLabelValues("hit").Inc()
		if e.negative {
			return nil, antdnserr.ErrNotRegistered
		}
		return e.resolved, nil
	}

	if l, ok := sh.leaders[name]; ok {
		sh.mu.Unlock()
		metrics.CacheOperationsTotal.WithLabelValues("coalesced").Inc()
		return waitLeader(ctx, l)
	}

	l := &leader{done: make(chan struct{})}
	sh.leaders[name] = l
	sh.mu.Unlock()

	metrics.CacheOperationsTotal.WithLabelValues("miss").Inc()
	resolved, err := c.resolve(ctx, name)
	l.resolved = resolved
	l.err = err
	l.negative = err == antdnserr.ErrNotRegistered
	close(l.done)

	sh.mu.Lock()
	delete(sh.leaders, name)
	if err == nil {
		c.insertLocked(sh, name, &entry{resolved: resolved, fetchedAt: now, ttl: c.ttl})
	} else if err == antdnserr.ErrNotRegistered {
		c.insertLocked(sh, name, &entry{negative: true, fetchedAt: now, ttl: c.negativeTTL})
	}
	// Other failures leave any existing entry untouched (§4.7): there is
	// nothing to insert and nothing to evict.
	sh.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// waitLeader blocks until l completes or ctx is cancelled. Cancellation
// only drops this waiter; the leader continues and still populates the
// cache for future callers (§5 Cancellation).
func waitLeader(ctx context.Context, l *leader) (*Resolved, error) {
	select {
	case <-l.done:
		if l.err != nil {
			return nil, l.err
		}
		return l.resolved, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// insertLocked must be called with sh.mu held. It evicts the
// least-recently-used entry if capacity is exceeded; an in-flight
// leader's slot is never a cache entry, so it can never be the eviction
// victim.
func (c *Cache) insertLocked(sh *shard, name string, e *entry) {
	if old, ok := sh.items[name]; ok {
		sh.lru.Remove(old.elem)
	} else {
		metrics.CacheEntries.Inc()
	}
	e.elem = sh.lru.PushBack(name)
	sh.items[name] = e

	perShardCap := c.capacity / shardCount
	if perShardCap < 1 {
		perShardCap = 1
	}
	for len(sh.items) > perShardCap {
		front := sh.lru.Front()
		if front == nil {
			break
		}
		sh.lru.Remove(front)
		delete(sh.items, front.Value.(string))
		metrics.CacheEntries.Dec()
	}
}

func (c *Cache) evict(name string) {
	sh := c.shardFor(name)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if e, ok := sh.items[name]; ok {
		sh.lru.Remove(e.elem)
		delete(sh.items, name)
		metrics.CacheEntries.Dec()
	}
}

// Invalidate evicts name locally and, if an invalidation bus is
// configured, publishes the eviction to every other process sharing it.
func (c *Cache) Invalidate(ctx context.Context, name string) error {
	c.evict(name)
	if c.bus == nil {
		return nil
	}
	return c.bus.Publish(ctx, name)
}
