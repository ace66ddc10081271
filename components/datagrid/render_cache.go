package datagrid

import (
	"sync"

	"github.com/google/uuid"
)

// CellCache memoizes rendered cell text per row set, row and column. Entries
// never depend on column width, so a resize never invalidates them.
type CellCache struct {
	mu      sync.RWMutex
	rowSet  uuid.UUID
	entries map[cellKey]string
}

type cellKey struct {
	row    int
	column string
}

// NewCellCache builds an empty cache.
func NewCellCache() *CellCache {
	return &CellCache{entries: make(map[cellKey]string)}
}

// GetOrRender returns the cached text or renders and stores it. A different
// row set identity drops every entry first.
func (c *CellCache) GetOrRender(rowSet uuid.UUID, row int, column string, render func() string) string {
	key := cellKey{row: row, column: column}
	c.mu.RLock()
	if c.rowSet == rowSet {
		if text, ok := c.entries[key]; ok {
			c.mu.RUnlock()
			return text
		}
	}
	c.mu.RUnlock()

	text := render()
	c.mu.Lock()
	if c.rowSet != rowSet {
		c.rowSet = rowSet
		c.entries = make(map[cellKey]string)
	}
	c.entries[key] = text
	c.mu.Unlock()
	return text
}

// Len returns the number of cached cells.
func (c *CellCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
