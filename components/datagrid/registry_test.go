package datagrid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaultsAndHooks(t *testing.T) {
	globalHookMu.Lock()
	saved := append([]ModuleHook(nil), globalHooks...)
	globalHookMu.Unlock()
	t.Cleanup(func() {
		globalHookMu.Lock()
		globalHooks = saved
		globalHookMu.Unlock()
	})

	RegisterModuleHook(func(reg *Registry) error {
		return reg.RegisterModule(ModuleDefinition{
			Key:     "hooked-damages",
			Title:   "Damages",
			Columns: []ColumnDescriptor{{ColumnHeader: "damageId", IsSelected: true}},
		})
	})
	reg := NewRegistry()
	module, ok := reg.Module("hooked-damages")
	require.True(t, ok)
	assert.Equal(t, VariantPaged, module.Variant)
	assert.Equal(t, DefaultPageSize, module.DefaultPageSize)

	report, ok := reg.Module(ModuleFleetReport)
	require.True(t, ok)
	assert.Equal(t, VariantReport, report.Variant)

	keys := make([]string, 0)
	for _, m := range reg.Modules() {
		keys = append(keys, m.Key)
	}
	assert.IsIncreasing(t, keys)
}

func TestRegistryRejectsInvalidModules(t *testing.T) {
	reg := NewEmptyRegistry()
	cases := []ModuleDefinition{
		{},
		{Key: "a", Variant: "kanban"},
		{Key: "a", Columns: []ColumnDescriptor{{ColumnHeader: "x"}, {ColumnHeader: "x"}}},
		{Key: "a", Columns: []ColumnDescriptor{{}}},
		{Key: "a", Filters: []FilterDescriptor{{ID: "size", Kind: FilterText}}},
		{Key: "a", Filters: []FilterDescriptor{{ID: "q"}, {ID: "q"}}},
	}
	for i, def := range cases {
		if err := reg.RegisterModule(def); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestRegistrySources(t *testing.T) {
	reg := NewRegistry()
	src := RowSourceFunc(func(context.Context, RowQuery) (RowPage, error) { return RowPage{}, nil })
	require.NoError(t, reg.RegisterSource(ModuleVehicles, src))
	_, ok := reg.Source(ModuleVehicles)
	assert.True(t, ok)
	assert.Error(t, reg.RegisterSource("missing", src))
}

type recordingNotifications struct {
	events []TableEvent
	err    error
}

func (c *recordingNotifications) PublishTableEvent(_ context.Context, event TableEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func TestNotificationsHookFiltersReasons(t *testing.T) {
	client := &recordingNotifications{}
	hook := &NotificationsHook{Client: client, Reasons: []string{"persist_failed"}}
	ctx := context.Background()
	require.NoError(t, hook.TableUpdated(ctx, TableEvent{Reason: "reorder"}))
	require.NoError(t, hook.TableUpdated(ctx, TableEvent{Reason: "persist_failed"}))
	require.Len(t, client.events, 1)

	var nilHook *NotificationsHook
	assert.NoError(t, nilHook.TableUpdated(ctx, TableEvent{}))
}

func TestRefreshHooksStopAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	first := &recordingHook{err: boom}
	second := &recordingHook{}
	err := RefreshHooks{nil, first, second}.TableUpdated(context.Background(), TableEvent{Reason: "rows"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, second.events)
}
