package data

import (
	"os"
	"sync"
	"time"

	"settlement-pipeline/internal/model"
)

// cacheEntry is a parsed table together with the file state it was read from.
type cacheEntry struct {
	frame     *model.Frame
	modTime   time.Time
	size      int64
	expiresAt time.Time
}

// FrameCache keeps parsed output tables in memory so repeated API reads do
// not re-parse the CSV. An entry is served only while the file on disk still
// has the size and modification time it had when read, and for at most ttl.
//
// Cached frames are shared; callers must not modify them.
type FrameCache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration
	read  func(path string) (*model.Frame, error)
}

// NewFrameCache caches the results of read. A ttl of zero or less disables
// expiry, leaving only the file-state check.
func NewFrameCache(ttl time.Duration, read func(path string) (*model.Frame, error)) *FrameCache {
	return &FrameCache{
		store: make(map[string]*cacheEntry),
		ttl:   ttl,
		read:  read,
	}
}

// Get returns the table at path, reading it on a miss.
func (c *FrameCache) Get(path string) (*model.Frame, error) {
	info, err := os.Stat(path)
	if err != nil {
		c.Invalidate(path)
		return nil, err
	}

	c.mu.RLock()
	entry, ok := c.store[path]
	c.mu.RUnlock()
	if ok && c.fresh(entry, info) {
		return entry.frame, nil
	}

	f, err := c.read(path)
	if err != nil {
		c.Invalidate(path)
		return nil, err
	}
	entry = &cacheEntry{frame: f, modTime: info.ModTime(), size: info.Size()}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.store[path] = entry
	c.mu.Unlock()
	return f, nil
}

func (c *FrameCache) fresh(e *cacheEntry, info os.FileInfo) bool {
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		return false
	}
	return e.size == info.Size() && e.modTime.Equal(info.ModTime())
}

// Invalidate drops the entry for path.
func (c *FrameCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, path)
}

// Clear removes all entries from the cache
func (c *FrameCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*cacheEntry)
}
