package records

import (
	"strings"
	"sync"
)

// ViewCache holds the latest record collection per view. A fetch takes a
// generation with Begin; a Commit carrying an older generation is dropped, so
// the most recently started fetch always wins.
type ViewCache struct {
	mu    sync.Mutex
	views map[string]*view
}

type view struct {
	gen       uint64
	committed uint64
	records   []Record
}

func NewViewCache() *ViewCache {
	return &ViewCache{views: map[string]*view{}}
}

func ViewKey(sheet, username string) string {
	return sheet + "|" + username
}

func (c *ViewCache) Begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.get(key)
	v.gen++
	return v.gen
}

// Commit stores rs when gen is still the newest generation for key.
func (c *ViewCache) Commit(key string, gen uint64, rs []Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.get(key)
	if gen != v.gen {
		return false
	}
	v.records = rs
	v.committed = gen
	return true
}

func (c *ViewCache) Get(key string) ([]Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[key]
	if !ok || v.committed == 0 {
		return nil, false
	}
	return v.records, true
}

// Evict drops every view whose key starts with sheet. Pending fetches still
// hold a valid generation.
func (c *ViewCache) Evict(sheet string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := sheet + "|"
	for k, v := range c.views {
		if strings.HasPrefix(k, prefix) {
			v.records = nil
			v.committed = 0
		}
	}
}

func (c *ViewCache) get(key string) *view {
	v, ok := c.views[key]
	if !ok {
		v = &view{}
		c.views[key] = v
	}
	return v
}
