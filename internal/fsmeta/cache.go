// Package fsmeta caches file stat results for the duration of a build
// invocation. The orchestrator invalidates the cache after a successful
// generation run so later steps observe the generator's writes.
package fsmeta

import (
	"os"
	"sync"
	"time"
)

type entry struct {
	modTime time.Time
	exists  bool
}

// Cache memoises last-write times keyed by path. A cached "missing" result
// is remembered too, so repeated probes of absent files stay cheap.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
	}
}

// ModTime returns a file's last-write time. The second return is false when
// the file does not exist or cannot be statted.
func (c *Cache) ModTime(path string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok {
		return e.modTime, e.exists
	}

	info, err := os.Stat(path)

	e := entry{}
	if err == nil {
		e.modTime = info.ModTime()
		e.exists = true
	}

	c.entries[path] = e

	return e.modTime, e.exists
}

// Invalidate drops every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}
