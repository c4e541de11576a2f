package postgres

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/roundpool/internal/domain"
)

const governanceCacheKey = "governance"

// cachedEntry wraps a record with the layout version it was cached under
type cachedEntry struct {
	Version    string
	Governance *domain.Governance
}

// govCache holds the committed governance row for plain reads. A read that
// raced with a local commit is not stored: fills carry the generation seen
// before the read and are dropped once a commit has bumped it. Commits made
// by other processes are seen after at most ttl.
type govCache struct {
	mu  sync.Mutex
	gen uint64
	lru *expirable.LRU[string, *cachedEntry]
}

// newGovCache returns nil when ttl is not positive; a nil cache never hits
func newGovCache(ttl time.Duration) *govCache {
	if ttl <= 0 {
		return nil
	}
	return &govCache{lru: expirable.NewLRU[string, *cachedEntry](1, nil, ttl)}
}

// generation is read before loading from the database
func (c *govCache) generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *govCache) get() (*domain.Governance, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.lru.Get(governanceCacheKey)
	if !ok {
		return nil, false
	}
	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(governanceCacheKey)
		return nil, false
	}
	return entry.Governance.Clone(), true
}

// set stores g unless a commit happened since gen was read
func (c *govCache) set(g *domain.Governance, gen uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.lru.Add(governanceCacheKey, &cachedEntry{Version: CacheSchemaVersion, Governance: g.Clone()})
}

func (c *govCache) invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lru.Remove(governanceCacheKey)
}
