package manifest

import (
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arthur-debert/jiek/pkg/errors"
	"github.com/arthur-debert/jiek/pkg/types"
)

// DefaultCacheSize bounds a Cache created with a non-positive size
const DefaultCacheSize = 256

// Cache memoizes loaded manifests by absolute directory. One Cache is
// created per build and passed down explicitly.
type Cache struct {
	fs    types.FS
	cache *lru.Cache[string, *Manifest]
}

// NewCache creates a Cache holding at most size manifests
func NewCache(fsys types.FS, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Manifest](size)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot create manifest cache")
	}
	return &Cache{fs: fsys, cache: cache}, nil
}

// Load returns the cached manifest of dir, loading it on a miss
func (c *Cache) Load(dir string) (*Manifest, error) {
	key := cacheKey(dir)
	if m, ok := c.cache.Get(key); ok {
		return m, nil
	}

	m, err := Load(c.fs, dir)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, m)
	return m, nil
}

// Invalidate drops the cached manifest of dir
func (c *Cache) Invalidate(dir string) {
	c.cache.Remove(cacheKey(dir))
}

// Len returns the number of cached manifests
func (c *Cache) Len() int {
	return c.cache.Len()
}

func cacheKey(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Clean(dir)
	}
	return abs
}
