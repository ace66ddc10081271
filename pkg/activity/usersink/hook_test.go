package usersink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-datagrid/pkg/activity"
)

type memorySink struct {
	logged []types.ActivityRecord
	fail   error
}

func (s *memorySink) Log(_ context.Context, record types.ActivityRecord) error {
	s.logged = append(s.logged, record)
	return s.fail
}

func TestHookWritesColumnReorderRecord(t *testing.T) {
	sink := &memorySink{}
	agent := uuid.New()
	tenant := uuid.New()
	at := time.Date(2026, time.February, 14, 17, 5, 0, 0, time.UTC)

	err := Hook{Sink: sink}.Notify(context.Background(), activity.Event{
		Verb:           "datagrid.columns.reorder",
		ActorID:        agent.String(),
		UserID:         " " + agent.String() + " ",
		TenantID:       tenant.String(),
		ObjectType:     "column_set",
		ObjectID:       "reservations",
		Channel:        "datagrid",
		DefinitionCode: "reservations",
		Recipients:     []string{"desk@example.com"},
		Metadata:       map[string]any{"columns": 6},
		OccurredAt:     at,
	})
	require.NoError(t, err)
	require.Len(t, sink.logged, 1)

	record := sink.logged[0]
	assert.Equal(t, agent, record.ActorID)
	assert.Equal(t, agent, record.UserID)
	assert.Equal(t, tenant, record.TenantID)
	assert.Equal(t, "column_set", record.ObjectType)
	assert.Equal(t, "reservations", record.ObjectID)
	assert.Equal(t, "datagrid", record.Channel)
	assert.True(t, record.OccurredAt.Equal(at))
	assert.Equal(t, 6, record.Data["columns"])
	assert.Equal(t, "reservations", record.Data["definition_code"])
	assert.Equal(t, []string{"desk@example.com"}, record.Data["recipients"])
}

func TestHookIdentifierMapping(t *testing.T) {
	const knownID = "6f1c1a4e-9d7a-4a53-9f0e-2a4b8a4f1d10"
	cases := map[string]uuid.UUID{
		"agent@example.com": uuid.Nil,
		"":                  uuid.Nil,
		knownID:             uuid.MustParse(knownID),
	}
	for raw, want := range cases {
		sink := &memorySink{}
		require.NoError(t, Hook{Sink: sink}.Notify(context.Background(), activity.Event{Verb: "datagrid.widgets.toggle", UserID: raw}))
		require.Len(t, sink.logged, 1, raw)
		assert.Equal(t, want, sink.logged[0].UserID, raw)
	}
}

func TestHookSkipsAndPropagates(t *testing.T) {
	sink := &memorySink{}
	require.NoError(t, Hook{Sink: sink}.Notify(context.Background(), activity.Event{ObjectID: "agreements"}))
	assert.Empty(t, sink.logged)

	require.NoError(t, Hook{}.Notify(context.Background(), activity.Event{Verb: "datagrid.columns.reset"}))

	sink.fail = errors.New("users db unavailable")
	err := Hook{Sink: sink}.Notify(context.Background(), activity.Event{Verb: "datagrid.columns.reset"})
	assert.ErrorIs(t, err, sink.fail)
}
