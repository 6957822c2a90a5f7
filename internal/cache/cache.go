// Package cache provides a bounded, TTL-based response cache keyed by
// (server, query signature). It exists so that phrasing variants of the same
// question get the same answer without a fresh model call.
package cache

import (
	"container/list"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/commishdev/commish/internal/query"
)

const (
	// DefaultMaxSize bounds the number of cached entries.
	DefaultMaxSize = 500
	// DefaultTTL is how long an entry stays valid.
	DefaultTTL = time.Hour
)

type entry struct {
	key      string
	response string
	created  time.Time
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Size          int
	MaxSize       int
	Hits          int
	Misses        int
	TotalRequests int
	HitRate       float64
}

// QueryCache is safe for concurrent use by many request-handling goroutines.
// Entries are only ever inserted or removed, never mutated in place.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = oldest
	maxSize int
	ttl     time.Duration
	hits    int
	misses  int
	debug   bool
}

// New creates a cache with the given bounds. Zero values select the defaults.
func New(maxSize int, ttl time.Duration, debug bool) *QueryCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		debug:   debug,
	}
}

func cacheKey(serverID, signature string) string {
	return serverID + ":" + signature
}

// Get returns the cached response for a query, or "" and false on a miss.
// Expired entries are deleted at read time.
func (c *QueryCache) Get(serverID, rawQuery string) (string, bool) {
	signature := query.Signature(rawQuery)
	if signature == "" {
		return "", false
	}
	key := cacheKey(serverID, signature)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}

	ent := elem.Value.(*entry)
	if time.Since(ent.created) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		c.misses++
		return "", false
	}

	c.hits++
	if c.debug {
		log.Printf("[cache] hit for %q (signature %s)", rawQuery, signature)
	}
	return ent.response, true
}

// Set stores a response. Responses that look like errors, that are
// implausibly short, or whose query referenced an attachment are rejected:
// they are either wrong or not stable across time.
func (c *QueryCache) Set(serverID, rawQuery, response string) {
	if !Cacheable(rawQuery, response) {
		return
	}

	signature := query.Signature(rawQuery)
	if signature == "" {
		return
	}
	key := cacheKey(serverID, signature)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}

	// At capacity: evict the single oldest entry by insertion order.
	if len(c.entries) >= c.maxSize {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}

	c.entries[key] = c.order.PushBack(&entry{key: key, response: response, created: time.Now()})
	if c.debug {
		log.Printf("[cache] stored %q (signature %s)", rawQuery, signature)
	}
}

// InvalidatePattern removes every entry for a server whose signature
// contains the given fragment. Used when underlying data changes, e.g.
// team reassignment invalidating "who_has_*" answers.
func (c *QueryCache) InvalidatePattern(serverID, pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := serverID + ":"
	removed := 0
	for key, elem := range c.entries {
		if strings.HasPrefix(key, prefix) && strings.Contains(key, pattern) {
			c.order.Remove(elem)
			delete(c.entries, key)
			removed++
		}
	}

	if removed > 0 && c.debug {
		log.Printf("[cache] invalidated %d entries for pattern %q", removed, pattern)
	}
	return removed
}

// Clear drops all entries and resets counters.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.hits, c.misses = 0, 0
}

// Stats returns a snapshot of cache counters.
func (c *QueryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total) * 100
	}
	return Stats{
		Size:          len(c.entries),
		MaxSize:       c.maxSize,
		Hits:          c.hits,
		Misses:        c.misses,
		TotalRequests: total,
		HitRate:       rate,
	}
}

var errorIndicators = []string{"⚠️", "❌", "error", "failed", "couldn't"}

// Cacheable reports whether a query/response pair is safe to cache.
func Cacheable(rawQuery, response string) bool {
	responseLower := strings.ToLower(response)
	for _, indicator := range errorIndicators {
		if strings.Contains(responseLower, indicator) {
			return false
		}
	}

	// Very short responses are likely incomplete.
	if len(response) < 10 {
		return false
	}

	// Attachment-driven answers are not stable across time.
	queryLower := strings.ToLower(rawQuery)
	if strings.Contains(queryLower, "image") || strings.Contains(queryLower, "attachment") {
		return false
	}

	return true
}
