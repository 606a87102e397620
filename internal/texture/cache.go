package texture

import (
	"image"
	"path/filepath"
	"sync"
)

// Cache deduplicates image loads by cleaned path. The editor asks for the
// base map and the mesh's base color separately, and they are often the same
// file.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA
}

func NewCache() *Cache {
	return &Cache{items: make(map[string]*image.NRGBA)}
}

// Load returns the cached image for path, reading it from disk on first use.
// Failed loads are not cached, so a path can succeed after the file appears.
func (c *Cache) Load(path string) (*image.NRGBA, error) {
	key := filepath.Clean(path)

	c.mu.RLock()
	if img, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Double-check under the write lock; a racing loader may have won.
	c.mu.Lock()
	if prior, ok := c.items[key]; ok {
		c.mu.Unlock()
		return prior, nil
	}
	c.items[key] = img
	c.mu.Unlock()
	return img, nil
}

// Len reports how many images are resident.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
