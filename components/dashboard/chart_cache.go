package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// datasetInvalidator is implemented by caches that can drop every chart of one dataset.
type datasetInvalidator interface {
	InvalidateDataType(dt DataType) int
}

// chartKey identifies one rendered chart. Content is a hash of the title and records,
// so edited rows never hit a stale entry.
type chartKey struct {
	DataType DataType
	Kind     ChartKind
	Theme    string
	Locale   string
	Content  string
}

func (k chartKey) String() string {
	return strings.Join([]string{string(k.DataType), string(k.Kind), k.Theme, k.Locale, k.Content}, ":")
}

// ChartCacheStats reports cache effectiveness.
type ChartCacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// ChartCache is an in-memory TTL cache for rendered charts, keyed by dataset first.
type ChartCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedChart
	hits    uint64
	misses  uint64
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedChart),
	}
}

// GetOrRender returns a live entry or renders and stores a new one. Render errors are not cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.lookup(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.store(key, html)
	return html, nil
}

func (c *ChartCache) lookup(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if ok && c.now().After(entry.expires) {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	return entry.html, true
}

func (c *ChartCache) store(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedChart{html: html, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// InvalidateDataType drops every chart rendered from dt and reports how many were removed.
func (c *ChartCache) InvalidateDataType(dt DataType) int {
	if c == nil {
		return 0
	}
	prefix := string(dt) + ":"
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Purge drops every entry. Used when fixtures are reloaded.
func (c *ChartCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]cachedChart)
	c.mu.Unlock()
}

// Len reports the number of cached entries, expired ones included.
func (c *ChartCache) Len() int {
	return c.Stats().Entries
}

// Stats returns a snapshot of entry count and hit ratio counters.
func (c *ChartCache) Stats() ChartCacheStats {
	if c == nil {
		return ChartCacheStats{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ChartCacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// contentHash fingerprints any JSON-encodable value for cache keys.
func contentHash(v any) string {
	if v == nil {
		return "empty"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
