package datagrid

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

// SettingPageSize is the per-viewer default rows per page.
const SettingPageSize = "datagrid.page_size"

var errSettingsUser = errors.New("datagrid: settings store requires viewer user id")

// SettingsStore holds per-viewer settings that would otherwise live in ambient
// browser storage. Subscribers are called after every successful Set.
type SettingsStore interface {
	Get(ctx context.Context, viewer ViewerContext, key string) (string, bool, error)
	Set(ctx context.Context, viewer ViewerContext, key, value string) error
	Subscribe(fn SettingsListener) (unsubscribe func())
}

// SettingsListener receives setting changes.
type SettingsListener func(viewer ViewerContext, key, value string)

// InMemorySettingsStore is a concurrency safe SettingsStore.
type InMemorySettingsStore struct {
	mu        sync.RWMutex
	data      map[string]map[string]string
	listeners map[int]SettingsListener
	nextID    int
}

// NewInMemorySettingsStore builds an empty store.
func NewInMemorySettingsStore() *InMemorySettingsStore {
	return &InMemorySettingsStore{
		data:      make(map[string]map[string]string),
		listeners: make(map[int]SettingsListener),
	}
}

// Get returns the stored value for the viewer.
func (s *InMemorySettingsStore) Get(_ context.Context, viewer ViewerContext, key string) (string, bool, error) {
	if viewer.UserID == "" {
		return "", false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[viewer.UserID][key]
	return v, ok, nil
}

// Set stores the value and notifies subscribers outside the lock.
func (s *InMemorySettingsStore) Set(_ context.Context, viewer ViewerContext, key, value string) error {
	if viewer.UserID == "" {
		return errSettingsUser
	}
	s.mu.Lock()
	if s.data[viewer.UserID] == nil {
		s.data[viewer.UserID] = map[string]string{}
	}
	s.data[viewer.UserID][key] = value
	listeners := make([]SettingsListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(viewer, key, value)
	}
	return nil
}

// Subscribe registers fn until the returned function is called.
func (s *InMemorySettingsStore) Subscribe(fn SettingsListener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// PageSizeSetting reads the viewer's page size preference, falling back when
// missing or invalid.
func PageSizeSetting(ctx context.Context, store SettingsStore, viewer ViewerContext, fallback int) int {
	if store == nil {
		return fallback
	}
	raw, ok, err := store.Get(ctx, viewer, SettingPageSize)
	if err != nil || !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
