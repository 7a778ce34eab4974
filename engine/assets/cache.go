// Package assets is the asset cache: assets are loaded at most once per path and shared as
// immutable Buffers by every consumer.
package assets

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
	"github.com/xiaonanln/goworld2d/engine/consts"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/opmon"
	"golang.org/x/sync/singleflight"
)

// Stats are the counters of a Cache
type Stats struct {
	Hits     uint64
	Misses   uint64
	Loads    uint64
	Failures uint64
}

// Cache maps canonical paths to loaded Buffers. It is safe for concurrent use.
type Cache struct {
	loader Loader

	mu      sync.RWMutex
	entries map[string]*Buffer
	gen     uint64 // bumped by Clear

	flights singleflight.Group

	hits, misses, loads, failures uint64

	warnThreshold int64 // time.Duration
	debug         xnsyncutil.AtomicBool
	asyncWorkers  uint32
	asyncNext     uint32
}

// NewCache creates an empty Cache loading through loader
func NewCache(loader Loader) *Cache {
	return &Cache{
		loader:        loader,
		entries:       map[string]*Buffer{},
		warnThreshold: int64(consts.OPMON_DEFAULT_WARN_THRESHOLD),
		asyncWorkers:  1,
	}
}

// SetWarnThreshold sets the load duration above which a warning is logged. Safe to call while
// loads are running.
func (c *Cache) SetWarnThreshold(d time.Duration) {
	atomic.StoreInt64(&c.warnThreshold, int64(d))
}

// SetDebug enables debug logs of loads. Safe to call while loads are running.
func (c *Cache) SetDebug(debug bool) {
	c.debug.Store(debug)
}

// GetOrLoad returns the buffer of path, loading it if it is not cached. Concurrent calls for the
// same uncached path share one load; every caller gets the same Buffer. Failures are returned as
// *LoadError and are not cached.
func (c *Cache) GetOrLoad(path string) (*Buffer, error) {
	key, err := CanonicalPath(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	c.mu.RLock()
	buf := c.entries[key]
	c.mu.RUnlock()
	if buf != nil {
		atomic.AddUint64(&c.hits, 1)
		return buf, nil
	}

	atomic.AddUint64(&c.misses, 1)
	v, err, _ := c.flights.Do(key, func() (interface{}, error) {
		return c.load(key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Buffer), nil
}

func (c *Cache) load(key string) (*Buffer, error) {
	// a previous flight may have stored the key after our miss
	c.mu.RLock()
	buf := c.entries[key]
	gen := c.gen
	c.mu.RUnlock()
	if buf != nil {
		return buf, nil
	}

	if c.debug.Load() {
		gwlog.Debugf("assets: loading %s ...", key)
	}
	op := opmon.StartOperation("assets.load")
	data, err := c.loader.LoadFile(key)
	op.Finish(time.Duration(atomic.LoadInt64(&c.warnThreshold)))
	atomic.AddUint64(&c.loads, 1)
	if err != nil {
		atomic.AddUint64(&c.failures, 1)
		return nil, &LoadError{Path: key, Err: err}
	}

	buf = newBuffer(key, data)
	c.mu.Lock()
	if c.gen == gen {
		c.entries[key] = buf
	} else if c.debug.Load() {
		gwlog.Debugf("assets: %s loaded across a clear, not cached", key)
	}
	c.mu.Unlock()
	return buf, nil
}

// Clear drops all entries. Buffers already returned stay valid; loads in flight still answer
// their callers but are not stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = map[string]*Buffer{}
	c.gen += 1
	c.mu.Unlock()
	if c.debug.Load() {
		gwlog.Debugf("assets: cleared %d entries", n)
	}
}

// Contains returns if path is cached
func (c *Cache) Contains(path string) bool {
	key, err := CanonicalPath(path)
	if err != nil {
		return false
	}
	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	return ok
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return n
}

// Paths returns the cached paths, sorted
func (c *Cache) Paths() []string {
	c.mu.RLock()
	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	c.mu.RUnlock()
	sort.Strings(paths)
	return paths
}

// Stats returns the counters of the cache
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:     atomic.LoadUint64(&c.hits),
		Misses:   atomic.LoadUint64(&c.misses),
		Loads:    atomic.LoadUint64(&c.loads),
		Failures: atomic.LoadUint64(&c.failures),
	}
}
