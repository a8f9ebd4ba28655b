package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/liliang-cn/doclens/internal/domain"
)

const (
	defaultShardCount      = 16
	defaultTTL             = 15 * time.Minute
	defaultCleanupInterval = time.Minute
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

type shard struct {
	mu    sync.RWMutex
	items map[string]entry
}

// ShardedCache is an in-process TTL cache split into independently locked
// shards. Keys are spread with FNV-1a.
type ShardedCache struct {
	shards []*shard
	ttl    time.Duration
	now    func() time.Time

	cleanupInterval time.Duration
	workerMu        sync.Mutex
	stop            chan struct{}
	wg              sync.WaitGroup
}

// NewShardedCache creates a cache with shardCount shards and entries living
// ttl seconds. Non-positive values fall back to defaults.
func NewShardedCache(shardCount int, ttl int) *ShardedCache {
	if shardCount < 1 {
		shardCount = defaultShardCount
	}
	ttlDuration := time.Duration(ttl) * time.Second
	if ttlDuration <= 0 {
		ttlDuration = defaultTTL
	}

	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{items: make(map[string]entry)}
	}
	return &ShardedCache{
		shards:          shards,
		ttl:             ttlDuration,
		now:             time.Now,
		cleanupInterval: defaultCleanupInterval,
	}
}

func (c *ShardedCache) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}

// Get returns the live value stored under key.
func (c *ShardedCache) Get(ctx context.Context, key string) (interface{}, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	s := c.shardFor(key)
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the cache TTL.
func (c *ShardedCache) Set(ctx context.Context, key string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := c.shardFor(key)
	s.mu.Lock()
	s.items[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *ShardedCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := c.shardFor(key)
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// CleanExpired drops every expired entry.
func (c *ShardedCache) CleanExpired(ctx context.Context) error {
	now := c.now()
	for _, s := range c.shards {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.mu.Lock()
		for key, e := range s.items {
			if !now.Before(e.expiresAt) {
				delete(s.items, key)
			}
		}
		s.mu.Unlock()
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *ShardedCache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// StartCleanupWorker starts the periodic expiry sweep. Calling it twice is a no-op.
func (c *ShardedCache) StartCleanupWorker() {
	c.workerMu.Lock()
	defer c.workerMu.Unlock()
	if c.stop != nil {
		return
	}
	c.stop = make(chan struct{})
	c.wg.Add(1)
	go c.cleanupLoop(c.stop)
}

// StopCleanupWorker stops the sweep and waits for it to exit.
func (c *ShardedCache) StopCleanupWorker() {
	c.workerMu.Lock()
	defer c.workerMu.Unlock()
	if c.stop == nil {
		return
	}
	close(c.stop)
	c.wg.Wait()
	c.stop = nil
}

func (c *ShardedCache) cleanupLoop(stop <-chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			_ = c.CleanExpired(ctx)
			cancel()
		}
	}
}

var _ domain.Cache = (*ShardedCache)(nil)
