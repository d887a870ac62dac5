package dataset

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/recap/pkg/metrics"
)

// Cache memoizes tables per dataset name for one report session. Concurrent
// first loads of the same name share a single read, which is not cancelled by
// the caller that started it. Failures are not cached.
type Cache struct {
	src Source

	mu     sync.RWMutex
	tables map[string]*Table
	gen    uint64

	group singleflight.Group
}

// NewCache wraps src with a session cache.
func NewCache(src Source) *Cache {
	return &Cache{src: src, tables: make(map[string]*Table)}
}

// Get returns the cached table for name, loading it on first use.
func (c *Cache) Get(ctx context.Context, name string) (*Table, error) {
	key := cacheKey(name)

	c.mu.RLock()
	t, ok := c.tables[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		metrics.RecordCacheHit()
		return t, nil
	}
	metrics.RecordCacheMiss()

	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10)+"/"+key, func() (any, error) {
		t, err := c.src.Load(loadCtx, name)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		// a Reset during the load invalidates it
		if c.gen == gen {
			if cached, ok := c.tables[key]; ok {
				return cached, nil
			}
			c.tables[key] = t
			metrics.UpdateCacheEntries(len(c.tables))
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Reset drops every cached table.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.tables = make(map[string]*Table)
	c.gen++
	c.mu.Unlock()
	metrics.RecordCacheReset()
	metrics.UpdateCacheEntries(0)
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

func cacheKey(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
