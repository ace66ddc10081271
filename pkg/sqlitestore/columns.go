package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

var _ datagrid.ColumnRegistry = (*Store)(nil)

// Columns returns the viewer's stored descriptors by order index, or nil when
// none were saved.
func (s *Store) Columns(ctx context.Context, viewer datagrid.ViewerContext, moduleKey string) ([]datagrid.ColumnDescriptor, error) {
	if viewer.UserID == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT column_header, column_header_description, order_index, is_selected
FROM column_registry
WHERE user_id = ? AND module_key = ?
ORDER BY order_index, column_header`, viewer.UserID, moduleKey)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query columns: %w", err)
	}
	defer rows.Close()

	var out []datagrid.ColumnDescriptor
	for rows.Next() {
		col := datagrid.ColumnDescriptor{ModuleKey: moduleKey}
		var selected int
		if err := rows.Scan(&col.ColumnHeader, &col.ColumnHeaderDescription, &col.OrderIndex, &selected); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan column: %w", err)
		}
		col.IsSelected = selected != 0
		out = append(out, col)
	}
	return out, rows.Err()
}

// SaveColumns replaces the viewer's descriptors for the module in one
// transaction.
func (s *Store) SaveColumns(ctx context.Context, viewer datagrid.ViewerContext, moduleKey string, descriptors []datagrid.ColumnDescriptor) error {
	if viewer.UserID == "" {
		return fmt.Errorf("sqlitestore: viewer user id is required")
	}
	if moduleKey == "" {
		return fmt.Errorf("sqlitestore: module key is required")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM column_registry WHERE user_id = ? AND module_key = ?`, viewer.UserID, moduleKey); err != nil {
			return fmt.Errorf("sqlitestore: clear columns: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO column_registry (user_id, module_key, column_header, column_header_description, order_index, is_selected)
VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("sqlitestore: prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, col := range descriptors {
			if _, err := stmt.ExecContext(ctx, viewer.UserID, moduleKey, col.ColumnHeader, col.ColumnHeaderDescription, col.OrderIndex, boolInt(col.IsSelected)); err != nil {
				return fmt.Errorf("sqlitestore: insert column %s: %w", col.ColumnHeader, err)
			}
		}
		return nil
	})
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
