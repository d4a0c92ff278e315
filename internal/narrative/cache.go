package narrative

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache keeps compiled renderers keyed by a digest of their template texts,
// so repeated requests with the same templates skip compilation.
type Cache struct {
	renderers *lru.Cache[string, *Renderer]
}

// NewCache creates a cache holding at most size renderers.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New[string, *Renderer](size)
	if err != nil {
		return nil, fmt.Errorf("narrative: creating renderer cache: %w", err)
	}
	return &Cache{renderers: c}, nil
}

// Renderer returns the compiled renderer for the two template texts,
// compiling and storing it on a miss.
func (c *Cache) Renderer(catalogText, scenarioSetText string) (*Renderer, error) {
	key := digest(catalogText, scenarioSetText)
	if r, ok := c.renderers.Get(key); ok {
		return r, nil
	}
	r, err := Compile(catalogText, scenarioSetText)
	if err != nil {
		return nil, err
	}
	c.renderers.Add(key, r)
	return r, nil
}

// Len returns the number of cached renderers.
func (c *Cache) Len() int {
	return c.renderers.Len()
}

func digest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
