package quiz

import "sync"

// ProgressCache is the client's snapshot of per-module unlock state. The
// server is the single source of truth: values are overwritten from server
// responses, never merged or maxed locally.
type ProgressCache struct {
	mu     sync.RWMutex
	levels map[string]int
}

func NewProgressCache() *ProgressCache {
	return &ProgressCache{levels: make(map[string]int)}
}

// Unlocked returns the highest unlocked level index for a module. Unknown
// modules report level 0, the always-open first level.
func (c *ProgressCache) Unlocked(moduleID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.levels[moduleID]
}

// Set overwrites one module's unlocked level with the server-reported value,
// even if the cached value was higher.
func (c *ProgressCache) Set(moduleID string, level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels[moduleID] = level
}

// ReplaceAll swaps the whole cache for a fresh server snapshot.
func (c *ProgressCache) ReplaceAll(progress map[string]int) {
	next := make(map[string]int, len(progress))
	for id, level := range progress {
		next[id] = level
	}
	c.mu.Lock()
	c.levels = next
	c.mu.Unlock()
}

// Snapshot copies the cached state.
func (c *ProgressCache) Snapshot() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int, len(c.levels))
	for id, level := range c.levels {
		out[id] = level
	}
	return out
}

// Clear empties the cache, e.g. on logout.
func (c *ProgressCache) Clear() {
	c.mu.Lock()
	c.levels = make(map[string]int)
	c.mu.Unlock()
}
