package fs

import (
	"strings"
	"sync"
	"time"

	"github.com/aretw0/packlist/pkg/core"
)

// cacheEntry holds a parsed document together with the file stats it was read from.
type cacheEntry struct {
	doc          core.Document
	lastModified time.Time
	size         int64
}

// cache keeps parsed documents in memory, keyed by their slash-separated path
// relative to the repository root (e.g. "users/u1/lists/abc.json").
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached document if the file has not changed since it was parsed.
func (c *cache) Get(relPath string, mtime time.Time, size int64) (core.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[relPath]
	if !ok || !entry.lastModified.Equal(mtime) || entry.size != size {
		return core.Document{}, false
	}
	return entry.doc.Clone(), true
}

// Set stores doc for relPath.
func (c *cache) Set(relPath string, doc core.Document, mtime time.Time, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[relPath] = cacheEntry{doc: doc.Clone(), lastModified: mtime, size: size}
}

// Delete forgets relPath.
func (c *cache) Delete(relPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, relPath)
}

// Prune removes the entries directly inside collection for which keep
// returns false.
func (c *cache) Prune(collection string, keep func(relPath string) bool) {
	prefix := collection + "/"

	c.mu.Lock()
	defer c.mu.Unlock()
	for rel := range c.entries {
		rest, ok := strings.CutPrefix(rel, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		if !keep(rel) {
			delete(c.entries, rel)
		}
	}
}

// Len returns the number of cached documents.
func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
