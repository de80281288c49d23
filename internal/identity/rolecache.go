package identity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// RoleCache is a concurrency-safe LRU cache of user roles with TTL
// expiration. Only successful lookups are cached.
type RoleCache struct {
	mu         sync.RWMutex
	entries    map[string]*roleEntry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	hits       atomic.Int64
	misses     atomic.Int64

	nowFunc func() time.Time
}

type roleEntry struct {
	role      Role
	createdAt time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewRoleCache creates a RoleCache with the given capacity and TTL.
func NewRoleCache(maxEntries int, ttl time.Duration) *RoleCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &RoleCache{
		entries:    make(map[string]*roleEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		nowFunc:    time.Now,
	}
}

// Get returns the cached role for userID.
func (c *RoleCache) Get(userID string) (Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userID]
	if !ok {
		c.misses.Add(1)
		return "", false
	}

	if c.nowFunc().Sub(entry.createdAt) > c.ttl {
		delete(c.entries, userID)
		c.removeFromOrder(userID)
		c.misses.Add(1)
		return "", false
	}

	c.removeFromOrder(userID)
	c.order = append(c.order, userID)
	c.hits.Add(1)
	return entry.role, true
}

// Put stores a role, evicting the oldest entry if at capacity.
func (c *RoleCache) Put(userID string, role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[userID]; ok {
		c.entries[userID] = &roleEntry{role: role, createdAt: c.nowFunc()}
		c.removeFromOrder(userID)
		c.order = append(c.order, userID)
		return
	}

	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[userID] = &roleEntry{role: role, createdAt: c.nowFunc()}
	c.order = append(c.order, userID)
}

// Invalidate drops the entry for userID.
func (c *RoleCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[userID]; ok {
		delete(c.entries, userID)
		c.removeFromOrder(userID)
	}
}

// Lookup returns the cached role or asks the provider and caches the answer.
func (c *RoleCache) Lookup(ctx context.Context, p Provider, s *Session) (Role, error) {
	if r, ok := c.Get(s.User.ID); ok {
		return r, nil
	}
	r, err := p.Role(ctx, s)
	if err != nil {
		return "", err
	}
	c.Put(s.User.ID, r)
	return r, nil
}

// Listen returns a Listener that evicts users as they sign out.
func (c *RoleCache) Listen() Listener {
	return func(ev Event, s *Session) {
		if ev == SignedOut && s != nil {
			c.Invalidate(s.User.ID)
		}
	}
}

// Stats returns cache performance statistics.
func (c *RoleCache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	maxEntries := c.maxEntries
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries:    entries,
		MaxEntries: maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

func (c *RoleCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
