// Package texture loads material images and shares them between renders.
package texture

import (
	"image"
	"log/slog"
	"os"
	"sync"
)

// Resolver resolves a texture path to a decoded image.
type Resolver interface {
	Resolve(path string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache. Failed loads are remembered so
// a missing file is reported once.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA
	index *Index
	log   *slog.Logger
}

// NewCache creates a texture cache. When index is non-nil it is used for
// paths that do not exist as written. A nil logger uses slog.Default.
func NewCache(index *Index, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		items: make(map[string]*image.NRGBA),
		index: index,
		log:   log,
	}
}

// Resolve loads and caches a texture. Returns nil if it cannot be loaded.
func (c *Cache) Resolve(path string) *image.NRGBA {
	if path == "" {
		return nil
	}

	c.mu.RLock()
	img, exists := c.items[path]
	c.mu.RUnlock()
	if exists {
		return img
	}

	img = c.load(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, exists := c.items[path]; exists {
		return prev
	}
	c.items[path] = img
	return img
}

func (c *Cache) load(path string) *image.NRGBA {
	target := path
	if _, err := os.Stat(path); err != nil && c.index != nil {
		if p, ok := c.index.ResolvePath(path); ok {
			target = p
		}
	}
	img, err := LoadTexture(target)
	if err != nil {
		c.log.Warn("texture unavailable", "path", path, "err", err)
		return nil
	}
	c.log.Debug("texture loaded", "path", target, "size", img.Rect.Size())
	return img
}

// Len returns the number of cached entries, failures included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
