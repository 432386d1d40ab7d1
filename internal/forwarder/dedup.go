package forwarder

import (
	"context"
	"sync"
	"time"
)

// DefaultDedupTTL is how long a claimed message id stays in the cache.
const DefaultDedupTTL = 60 * time.Second

// DedupCache tracks message ids recently claimed by an album forward so the
// single-message path can recognize and skip them. It is shared process-wide
// across all jobs' handlers.
//
// Entries expire ttl after being claimed, even if the owning forward attempt
// is still in flight. Expiry is lazy (checked on Claim/Contains) with an
// optional background sweep; there is no dependence on scheduled callbacks,
// which keeps eviction testable with a fake clock.
type DedupCache struct {
	mu      sync.Mutex
	entries map[int]time.Time // message id -> claimed at
	ttl     time.Duration
	now     func() time.Time
}

// NewDedupCache creates a cache with the given TTL (DefaultDedupTTL if <= 0).
func NewDedupCache(ttl time.Duration) *DedupCache {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &DedupCache{
		entries: make(map[int]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the cache's time source. Tests advance a fake clock
// instead of sleeping.
func (c *DedupCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Claim inserts every id not already present and returns the subset that was
// newly inserted. The caller uses the returned ids to roll back on a failed
// forward without releasing claims owned by someone else.
func (c *DedupCache) Claim(ids []int) []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	claimed := make([]int, 0, len(ids))
	for _, id := range ids {
		if at, ok := c.entries[id]; ok && now.Sub(at) < c.ttl {
			continue
		}
		c.entries[id] = now
		claimed = append(claimed, id)
	}
	return claimed
}

// Contains reports whether id is currently claimed. Expired entries are
// removed on the way.
func (c *DedupCache) Contains(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.entries[id]
	if !ok {
		return false
	}
	if c.now().Sub(at) >= c.ttl {
		delete(c.entries, id)
		return false
	}
	return true
}

// Release removes the given ids immediately, before natural expiry.
// Used to undo a claim after a failed album forward so a later
// single-message notification is not incorrectly suppressed.
func (c *DedupCache) Release(ids []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
	}
}

// Sweep removes all expired entries and returns how many were evicted.
func (c *DedupCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for id, at := range c.entries {
		if now.Sub(at) >= c.ttl {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live entries, expired ones included until swept.
func (c *DedupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RunJanitor sweeps the cache periodically until ctx is cancelled.
func (c *DedupCache) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
