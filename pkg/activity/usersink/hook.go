package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-datagrid/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Sink is the subset of the go-users activity sink the hook writes to.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook maps activity events onto go-users activity records.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify satisfies activity.Hook. Events without a verb are dropped.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if event.Verb == "" {
		return nil
	}
	return h.Sink.Log(ctx, toRecord(event))
}

func toRecord(event activity.Event) types.ActivityRecord {
	data := make(map[string]any, len(event.Metadata)+2)
	for k, v := range event.Metadata {
		data[k] = v
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = append([]string(nil), event.Recipients...)
	}
	return types.ActivityRecord{
		ActorID:    parseUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}
}

// parseUUID maps identifiers that are not UUIDs to uuid.Nil.
func parseUUID(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}
