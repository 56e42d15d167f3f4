package formula

import "sync"

// Cache memoizes parsed formulas by source text. Entries are written once and
// never replaced, so a cached *Expr can be shared freely between goroutines.
// Parse errors are not cached.
type Cache struct {
	mu    sync.RWMutex
	exprs map[string]*Expr
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{exprs: make(map[string]*Expr)}
}

// Parse returns the cached expression for src, parsing and storing it on first use.
func (c *Cache) Parse(src string) (*Expr, error) {
	c.mu.RLock()
	expr, ok := c.exprs[src]
	c.mu.RUnlock()
	if ok {
		return expr, nil
	}

	expr, err := Parse(src)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.exprs[src]; ok {
		return existing, nil
	}
	c.exprs[src] = expr
	return expr, nil
}

// Len reports the number of cached expressions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.exprs)
}
