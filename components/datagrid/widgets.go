package datagrid

import "sort"

// WidgetTile is one dashboard tile. Deleted tiles stay in the layout so they
// can be restored, but never take part in a drag.
type WidgetTile struct {
	ID       string         `json:"id" yaml:"id"`
	Title    string         `json:"title,omitempty" yaml:"title,omitempty"`
	Kind     string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Position int            `json:"position" yaml:"position"`
	Deleted  bool           `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Config   map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// DraggableTileIDs returns the ids of non-deleted tiles in position order.
func DraggableTileIDs(tiles []WidgetTile) []string {
	active, _ := partitionTiles(tiles)
	ids := make([]string, len(active))
	for i, tile := range active {
		ids[i] = tile.ID
	}
	return ids
}

// ReorderWidgetTiles moves activeID onto overID within the non-deleted tiles.
// The boolean is false when the drop is a no-op or targets a deleted tile.
func ReorderWidgetTiles(tiles []WidgetTile, activeID, overID string) ([]WidgetTile, bool) {
	order, moved := ReorderIDs(DraggableTileIDs(tiles), activeID, overID)
	if !moved {
		return cloneTiles(tiles), false
	}
	return CommitWidgetOrder(tiles, order), true
}

// CommitWidgetOrder lays out the tiles using order for the non-deleted ones.
// Active tiles missing from order follow in their previous order, deleted
// tiles are appended last in their own stable order, and positions are
// renumbered densely from 1.
func CommitWidgetOrder(tiles []WidgetTile, order []string) []WidgetTile {
	active, deleted := partitionTiles(tiles)
	byID := make(map[string]WidgetTile, len(active))
	for _, tile := range active {
		byID[tile.ID] = tile
	}
	out := make([]WidgetTile, 0, len(tiles))
	placed := make(map[string]bool, len(active))
	for _, id := range uniqueIDs(order) {
		tile, ok := byID[id]
		if !ok {
			continue
		}
		placed[id] = true
		out = append(out, tile)
	}
	for _, tile := range active {
		if !placed[tile.ID] {
			out = append(out, tile)
		}
	}
	out = append(out, deleted...)
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

func partitionTiles(tiles []WidgetTile) (active, deleted []WidgetTile) {
	sorted := cloneTiles(tiles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	for _, tile := range sorted {
		if tile.Deleted {
			deleted = append(deleted, tile)
			continue
		}
		active = append(active, tile)
	}
	return active, deleted
}

func cloneTiles(tiles []WidgetTile) []WidgetTile {
	if tiles == nil {
		return nil
	}
	out := make([]WidgetTile, len(tiles))
	copy(out, tiles)
	return out
}
