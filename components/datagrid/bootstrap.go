package datagrid

import (
	"context"
	"errors"
	"fmt"
)

// SeedViewer stores the module default columns and the default tile layout
// for a viewer that has none yet. It returns the number of column sets
// written; existing viewer state is left alone.
func SeedViewer(ctx context.Context, modules ModuleRegistry, columns ColumnRegistry, tiles TileStore, viewer ViewerContext) (int, error) {
	if modules == nil || columns == nil {
		return 0, errors.New("datagrid: seeding requires module and column registries")
	}
	if viewer.UserID == "" {
		return 0, errViewerUser
	}
	seeded := 0
	for _, module := range modules.Modules() {
		existing, err := columns.Columns(ctx, viewer, module.Key)
		if err != nil {
			return seeded, fmt.Errorf("datagrid: read columns for %s: %w", module.Key, err)
		}
		if len(existing) > 0 {
			continue
		}
		if err := columns.SaveColumns(ctx, viewer, module.Key, SortColumnsByOrderIndex(module.Columns)); err != nil {
			return seeded, fmt.Errorf("datagrid: seed columns for %s: %w", module.Key, err)
		}
		seeded++
	}
	if tiles == nil {
		return seeded, nil
	}
	existing, err := tiles.Tiles(ctx, viewer)
	if err != nil {
		return seeded, fmt.Errorf("datagrid: read tiles: %w", err)
	}
	if len(existing) == 0 {
		if err := tiles.SaveTiles(ctx, viewer, DefaultTiles(modules.Modules())); err != nil {
			return seeded, fmt.Errorf("datagrid: seed tiles: %w", err)
		}
	}
	return seeded, nil
}
