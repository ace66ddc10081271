package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooksSkipEventsWithoutVerb(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{nil, capture}

	require.NoError(t, hooks.Notify(context.Background(), Event{Verb: "   ", ObjectID: "vehicles"}))
	assert.Empty(t, capture.Events)

	require.NoError(t, hooks.Notify(context.Background(), Event{
		Verb:       " datagrid.columns.visibility ",
		ObjectType: " column_set ",
		ObjectID:   " vehicles ",
	}))
	require.Len(t, capture.Events, 1)
	got := capture.Events[0]
	assert.Equal(t, "datagrid.columns.visibility", got.Verb)
	assert.Equal(t, "column_set", got.ObjectType)
	assert.Equal(t, "vehicles", got.ObjectID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestHooksJoinErrorsAndKeepGoing(t *testing.T) {
	errA := errors.New("sink a down")
	errB := errors.New("sink b down")
	capture := &CaptureHook{}
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { return errA }),
		capture,
		HookFunc(func(context.Context, Event) error { return errB }),
	}

	err := hooks.Notify(context.Background(), Event{Verb: "datagrid.widgets.move"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, capture.Events, 1, "hooks after a failing one still run")
}

func TestNormalizeEventDetachesCallerState(t *testing.T) {
	stamp := time.Date(2026, time.March, 3, 8, 30, 0, 0, time.UTC)
	meta := map[string]any{"order": []string{"vehicleNo", "make"}}
	recipients := []string{"branch-north@example.com"}

	event := NormalizeEvent(Event{
		Verb:       "datagrid.columns.reorder",
		Metadata:   meta,
		Recipients: recipients,
		OccurredAt: stamp,
	})
	event.Metadata["order"] = nil
	event.Recipients[0] = "someone-else@example.com"

	assert.NotNil(t, meta["order"])
	assert.Equal(t, "branch-north@example.com", recipients[0])
	assert.True(t, event.OccurredAt.Equal(stamp))
}
