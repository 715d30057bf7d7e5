package cache

import (
	"sync"
	"time"
)

// Cache is an injected in-process key/value store with per-entry TTL.
// It replaces the ad hoc module-level maps the product grew over time:
// every user gets an explicit instance with a configurable TTL and an
// on/off switch decided at construction.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	enabled bool
	now     func() time.Time
}

type entry struct {
	value     string
	expiresAt time.Time
}

// New creates a cache with the given default TTL. A disabled cache
// accepts writes silently and never returns a hit.
func New(ttl time.Duration, enabled bool) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		enabled: enabled,
		now:     time.Now,
	}
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key, value string) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Get returns the value for key, or ("", false) if absent or expired.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

// Take returns the value for key and removes it in the same step.
// Used for one-shot tokens such as OAuth state nonces.
func (c *Cache) Take(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	delete(c.entries, key)
	if c.now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Enabled reports whether the cache was constructed enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
