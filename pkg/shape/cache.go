package shape

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/chazu/lathe/pkg/kernel"
)

// Cache memoizes Generate by parameter value. Geometries are immutable, so
// the same pointer is handed to every caller. The zero value is ready to
// use and safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*kernel.Geometry
	hits    int
	misses  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Key returns the cache key for p. Parameters that hold a curve function
// have no key.
func Key(p Params) (string, bool) {
	switch s := p.(type) {
	case Tube:
		if !s.Curve.cacheable() {
			return "", false
		}
	case Line:
		if !s.Curve.cacheable() {
			return "", false
		}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(data)
	return string(p.Kind()) + ":" + hex.EncodeToString(sum[:]), true
}

// Generate returns the cached geometry for p, generating it on a miss.
// Invalid parameters are never cached.
func (c *Cache) Generate(p Params) (*kernel.Geometry, error) {
	key, ok := Key(p)
	if !ok {
		return Generate(p)
	}

	c.mu.Lock()
	if g, hit := c.entries[key]; hit {
		c.hits++
		c.mu.Unlock()
		kernel.Logger().Debug("shape cache hit", "kind", p.Kind())
		return g, nil
	}
	c.mu.Unlock()

	g, err := Generate(p)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]*kernel.Geometry)
	}
	if existing, hit := c.entries[key]; hit {
		c.hits++
		return existing, nil
	}
	c.misses++
	c.entries[key] = g
	return g, nil
}

// Len returns the number of cached geometries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counts since the last Reset.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Reset drops every entry and zeroes the counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.hits, c.misses = 0, 0
}
