package datagrid

import (
	"context"
	"time"

	"github.com/goliatone/go-datagrid/pkg/activity"
)

// ActivityContext captures actor/user/tenant identifiers for activity events.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ContextWithActivity stores activity context on the provided context.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

func activityContextFrom(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	if meta, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
		return meta
	}
	return ActivityContext{}
}

// emitActivity fills identities from the context, falling back to the viewer,
// and reports failures through telemetry only.
func (s *Service) emitActivity(ctx context.Context, viewer ViewerContext, verb, objectType, objectID string, meta map[string]any) {
	if !s.activity.Enabled() {
		return
	}
	ids := activityContextFrom(ctx)
	if ids.UserID == "" {
		ids.UserID = viewer.UserID
	}
	if ids.ActorID == "" {
		ids.ActorID = ids.UserID
	}
	err := s.activity.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    ids.ActorID,
		UserID:     ids.UserID,
		TenantID:   ids.TenantID,
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   meta,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.recordTelemetry(ctx, "datagrid.activity.error", map[string]any{
			"verb":  verb,
			"error": err.Error(),
		})
	}
}
