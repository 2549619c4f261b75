package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultTTL is how long a cached response stays valid.
	DefaultTTL = 30 * time.Minute

	// DefaultMaxEntries bounds the cache size. When full, the oldest
	// entry by insertion order is evicted.
	DefaultMaxEntries = 200

	// maxParamLen caps the serialized params used in key derivation.
	// Two requests whose serializations agree on the first 100 characters
	// share a key. That false-hit window is an accepted trade-off: the
	// params are prompts, and prompts that long rarely diverge only in
	// their tail.
	maxParamLen = 100
)

// Cache is a TTL-bounded response cache keyed by (type, normalized params).
// Entries expire after the TTL and are purged lazily on lookup. When the
// cache is full, insertion evicts the oldest entry (FIFO by insertion, not
// LRU — a hit does not refresh an entry's position).
type Cache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = newest insertion, back = oldest
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key      string
	typ      string
	params   string // normalized, for prefix invalidation
	data     json.RawMessage
	storedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithMaxEntries overrides the capacity bound.
func WithMaxEntries(n int) Option {
	return func(c *Cache) { c.maxSize = n }
}

// WithClock overrides the time source. Tests use this to advance time
// past the TTL without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty cache with the default TTL and capacity.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		ttl:     DefaultTTL,
		maxSize: DefaultMaxEntries,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached data for (typ, params), or false on a miss.
// Expired entries are removed on the way out.
func (c *Cache) Get(typ, params string) (json.RawMessage, bool) {
	key := deriveKey(typ, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	e := elem.Value.(*entry)
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.remove(elem)
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return e.data, true
}

// Set stores data under (typ, params), evicting the oldest entry first if
// the cache is at capacity. Storing an existing key refreshes its data and
// timestamp but keeps its insertion position.
func (c *Cache) Set(typ, params string, data json.RawMessage) {
	key := deriveKey(typ, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry)
		e.data = data
		e.storedAt = c.now()
		return
	}

	for c.order.Len() >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushFront(&entry{
		key:      key,
		typ:      typ,
		params:   normalizeParams(params),
		data:     data,
		storedAt: c.now(),
	})
	c.entries[key] = elem
}

// Delete removes the entry stored under (typ, params), if any.
func (c *Cache) Delete(typ, params string) {
	key := deriveKey(typ, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.remove(elem)
	}
}

// ClearPrefix removes every entry, across all types, whose normalized
// params start with the given prefix. The planner keys all of a subject's
// responses with the subject name first, so this is how clearing a
// subject drops its cached responses.
func (c *Cache) ClearPrefix(prefix string) {
	norm := normalizeParams(prefix)

	c.mu.Lock()
	defer c.mu.Unlock()

	var next *list.Element
	for elem := c.order.Front(); elem != nil; elem = next {
		next = elem.Next()
		if strings.HasPrefix(elem.Value.(*entry).params, norm) {
			c.remove(elem)
		}
	}
}

// Clear removes all entries, or only those of the given types when any
// are provided.
func (c *Cache) Clear(types ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(types) == 0 {
		c.entries = make(map[string]*list.Element)
		c.order = list.New()
		return
	}

	match := make(map[string]bool, len(types))
	for _, t := range types {
		match[t] = true
	}

	var next *list.Element
	for elem := c.order.Front(); elem != nil; elem = next {
		next = elem.Next()
		if match[elem.Value.(*entry).typ] {
			c.remove(elem)
		}
	}
}

// Size returns the current number of entries, including any not yet
// lazily purged.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Hits returns the total number of cache hits.
func (c *Cache) Hits() int64 { return c.hits.Load() }

// Misses returns the total number of cache misses.
func (c *Cache) Misses() int64 { return c.misses.Load() }

// HitRate returns the hit ratio over all lookups, or 0 before any lookup.
func (c *Cache) HitRate() float64 {
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// normalizeParams lowercases and truncates params the way key derivation
// sees them.
func normalizeParams(params string) string {
	norm := strings.ToLower(params)
	if len(norm) > maxParamLen {
		norm = norm[:maxParamLen]
	}
	return norm
}

// deriveKey hashes the type plus the normalized params.
func deriveKey(typ, params string) string {
	norm := normalizeParams(params)

	h := sha256.New()
	h.Write([]byte(typ))
	h.Write([]byte("|"))
	h.Write([]byte(norm))
	return hex.EncodeToString(h.Sum(nil))
}

// evictOldest removes the least recently inserted entry.
// Must be called with the lock held.
func (c *Cache) evictOldest() {
	if elem := c.order.Back(); elem != nil {
		c.remove(elem)
	}
}

// remove deletes an element from both the map and the list.
// Must be called with the lock held.
func (c *Cache) remove(elem *list.Element) {
	delete(c.entries, elem.Value.(*entry).key)
	c.order.Remove(elem)
}
