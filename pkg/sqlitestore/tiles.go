package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

var _ datagrid.TileStore = (*Store)(nil)

// Tiles returns the viewer's layout by position, or nil when none was saved.
func (s *Store) Tiles(ctx context.Context, viewer datagrid.ViewerContext) ([]datagrid.WidgetTile, error) {
	if viewer.UserID == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT tile_id, title, kind, position, deleted, config
FROM widget_tiles
WHERE user_id = ?
ORDER BY position, tile_id`, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query tiles: %w", err)
	}
	defer rows.Close()

	var out []datagrid.WidgetTile
	for rows.Next() {
		var (
			tile    datagrid.WidgetTile
			deleted int
			config  string
		)
		if err := rows.Scan(&tile.ID, &tile.Title, &tile.Kind, &tile.Position, &deleted, &config); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan tile: %w", err)
		}
		tile.Deleted = deleted != 0
		if config != "" && config != "{}" {
			if err := json.Unmarshal([]byte(config), &tile.Config); err != nil {
				return nil, fmt.Errorf("sqlitestore: decode tile %s config: %w", tile.ID, err)
			}
		}
		out = append(out, tile)
	}
	return out, rows.Err()
}

// SaveTiles replaces the viewer's layout.
func (s *Store) SaveTiles(ctx context.Context, viewer datagrid.ViewerContext, tiles []datagrid.WidgetTile) error {
	if viewer.UserID == "" {
		return fmt.Errorf("sqlitestore: viewer user id is required")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM widget_tiles WHERE user_id = ?`, viewer.UserID); err != nil {
			return fmt.Errorf("sqlitestore: clear tiles: %w", err)
		}
		for _, tile := range tiles {
			config := "{}"
			if len(tile.Config) > 0 {
				raw, err := json.Marshal(tile.Config)
				if err != nil {
					return fmt.Errorf("sqlitestore: encode tile %s config: %w", tile.ID, err)
				}
				config = string(raw)
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO widget_tiles (user_id, tile_id, title, kind, position, deleted, config)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
				viewer.UserID, tile.ID, tile.Title, tile.Kind, tile.Position, boolInt(tile.Deleted), config); err != nil {
				return fmt.Errorf("sqlitestore: insert tile %s: %w", tile.ID, err)
			}
		}
		return nil
	})
}
