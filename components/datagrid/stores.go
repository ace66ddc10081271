package datagrid

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryColumnRegistry is a concurrency safe ColumnRegistry keyed by viewer
// and module.
type InMemoryColumnRegistry struct {
	mu   sync.RWMutex
	data map[string][]ColumnDescriptor
}

var _ ColumnRegistry = (*InMemoryColumnRegistry)(nil)

// NewInMemoryColumnRegistry creates an empty registry.
func NewInMemoryColumnRegistry() *InMemoryColumnRegistry {
	return &InMemoryColumnRegistry{data: make(map[string][]ColumnDescriptor)}
}

// Columns returns the stored descriptors, or nil when nothing was saved yet.
func (r *InMemoryColumnRegistry) Columns(_ context.Context, viewer ViewerContext, moduleKey string) ([]ColumnDescriptor, error) {
	if viewer.UserID == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneColumns(r.data[columnKey(viewer, moduleKey)]), nil
}

// SaveColumns replaces the viewer's descriptors for the module.
func (r *InMemoryColumnRegistry) SaveColumns(_ context.Context, viewer ViewerContext, moduleKey string, descriptors []ColumnDescriptor) error {
	if viewer.UserID == "" {
		return fmt.Errorf("column registry requires viewer user id")
	}
	if moduleKey == "" {
		return errModuleKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[columnKey(viewer, moduleKey)] = withModuleKey(descriptors, moduleKey)
	return nil
}

func columnKey(viewer ViewerContext, moduleKey string) string {
	return viewer.UserID + "::" + moduleKey
}

// InMemoryTileStore is a concurrency safe TileStore keyed by viewer.
type InMemoryTileStore struct {
	mu   sync.RWMutex
	data map[string][]WidgetTile
}

var _ TileStore = (*InMemoryTileStore)(nil)

// NewInMemoryTileStore creates an empty store.
func NewInMemoryTileStore() *InMemoryTileStore {
	return &InMemoryTileStore{data: make(map[string][]WidgetTile)}
}

// Tiles returns the stored layout, or nil when nothing was saved yet.
func (s *InMemoryTileStore) Tiles(_ context.Context, viewer ViewerContext) ([]WidgetTile, error) {
	if viewer.UserID == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTiles(s.data[viewer.UserID]), nil
}

// SaveTiles replaces the viewer's layout.
func (s *InMemoryTileStore) SaveTiles(_ context.Context, viewer ViewerContext, tiles []WidgetTile) error {
	if viewer.UserID == "" {
		return fmt.Errorf("tile store requires viewer user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[viewer.UserID] = cloneTiles(tiles)
	return nil
}
