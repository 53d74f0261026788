package data

import (
	"os"
	"sync"
	"time"

	"storage-arbitrage/internal/model"
)

type cacheEntry struct {
	series    []model.PricePoint
	expiresAt time.Time
	modTime   time.Time
	size      int64
}

// Cache keeps parsed price series in memory. Entries expire after a TTL and
// are invalidated when the underlying file changes on disk. Parsing a SMARD
// year takes noticeable time, so the API keeps one Cache per process.
type Cache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration
}

// DefaultCacheTTL is how long a parsed dataset stays warm.
const DefaultCacheTTL = time.Hour

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{store: make(map[string]*cacheEntry), ttl: ttl}
}

// Load returns the parsed series for path, reading and caching it on a miss.
// The second return value reports whether the cache served the request.
func (c *Cache) Load(path string) ([]model.PricePoint, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}

	c.mu.RLock()
	entry, ok := c.store[path]
	c.mu.RUnlock()

	if ok && time.Now().Before(entry.expiresAt) &&
		entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		return entry.series, true, nil
	}

	series, err := Load(path)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.store[path] = &cacheEntry{
		series:    series,
		expiresAt: time.Now().Add(c.ttl),
		modTime:   info.ModTime(),
		size:      info.Size(),
	}
	c.mu.Unlock()

	return series, false, nil
}

// Clear drops all cached series.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*cacheEntry)
}
