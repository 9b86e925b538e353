package memcache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"flex_reviews/internal/adapters/observability"
)

const defaultTTLSec = 600

type entry struct {
	value   []byte
	expires time.Time
}

// Cache is an in-process TTL cache with lazy expiration: entries are
// evicted when a Get finds them stale, never by a background sweep.
// Values are stored JSON-encoded so cached data cannot alias caller state.
type Cache struct {
	mu    sync.Mutex
	items map[string]entry
}

func New() *Cache {
	return &Cache{items: make(map[string]entry)}
}

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	e, ok := c.items[key]
	if ok && time.Now().After(e.expires) {
		delete(c.items, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	if err := json.Unmarshal(e.value, dst); err != nil {
		// a corrupt entry must read as a miss, never as a zero-valued hit
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		observability.ObserveCache("memory", "miss")
		return false, err
	}
	observability.ObserveCache("memory", "hit")
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if ttlSec <= 0 {
		ttlSec = defaultTTLSec
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("memory", "set")

	c.mu.Lock()
	c.items[key] = entry{value: b, expires: time.Now().Add(time.Duration(ttlSec) * time.Second)}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("memory", "del")
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// DelPattern drops every current key matching the glob. Evaluated eagerly;
// keys set afterwards are unaffected.
func (c *Cache) DelPattern(ctx context.Context, pattern string) error {
	observability.ObserveCache("memory", "del")
	c.mu.Lock()
	for k := range c.items {
		if globMatch(pattern, k) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
	return nil
}

// globMatch supports `*` as "match any run of characters", mirroring the
// MATCH semantics the redis adapter gets for free.
func globMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, mid := range parts[1 : len(parts)-1] {
		i := strings.Index(s, mid)
		if i < 0 {
			return false
		}
		s = s[i+len(mid):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}
