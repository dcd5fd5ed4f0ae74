package fonts

import (
	"sync"

	"github.com/photo-watermark/internal/domain"
)

// Cache keeps the discovered font list for the process lifetime.
// An empty list is a valid cached result.
type Cache struct {
	mu      sync.RWMutex
	entries []domain.FontEntry
	loaded  bool
}

func NewCache() *Cache {
	return &Cache{}
}

// Get returns a copy of the cached list.
func (c *Cache) Get() ([]domain.FontEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, false
	}
	out := make([]domain.FontEntry, len(c.entries))
	copy(out, c.entries)
	return out, true
}

func (c *Cache) Set(entries []domain.FontEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make([]domain.FontEntry, len(entries))
	copy(c.entries, entries)
	c.loaded = true
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	c.loaded = false
}
