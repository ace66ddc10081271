package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

var _ datagrid.SettingsStore = (*Store)(nil)

type listener = datagrid.SettingsListener

// Get returns a stored setting.
func (s *Store) Get(ctx context.Context, viewer datagrid.ViewerContext, key string) (string, bool, error) {
	if viewer.UserID == "" {
		return "", false, nil
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM viewer_settings WHERE user_id = ? AND key = ?`, viewer.UserID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlitestore: read setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts a setting and notifies subscribers after the write.
func (s *Store) Set(ctx context.Context, viewer datagrid.ViewerContext, key, value string) error {
	if viewer.UserID == "" {
		return fmt.Errorf("sqlitestore: viewer user id is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO viewer_settings (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		viewer.UserID, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlitestore: write setting %s: %w", key, err)
	}
	s.mu.RLock()
	listeners := make([]listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(viewer, key, value)
	}
	return nil
}

// Subscribe registers fn for setting changes.
func (s *Store) Subscribe(fn datagrid.SettingsListener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
