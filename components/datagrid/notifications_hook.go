package datagrid

import "context"

// NotificationsClient defines the minimal interface needed from a
// notifications service (toasts on persist failures, for example).
type NotificationsClient interface {
	PublishTableEvent(ctx context.Context, event TableEvent) error
}

// NotificationsHook forwards table events to an external notifications client.
// Reasons narrows the forwarded events; empty forwards everything.
type NotificationsHook struct {
	Client  NotificationsClient
	Reasons []string
}

// TableUpdated publishes the event when it matches Reasons.
func (h *NotificationsHook) TableUpdated(ctx context.Context, event TableEvent) error {
	if h == nil || h.Client == nil {
		return nil
	}
	if len(h.Reasons) > 0 {
		match := false
		for _, r := range h.Reasons {
			if r == event.Reason {
				match = true
				break
			}
		}
		if !match {
			return nil
		}
	}
	return h.Client.PublishTableEvent(ctx, event)
}

// RefreshHooks fans an event out to several hooks and stops at the first error.
type RefreshHooks []RefreshHook

// TableUpdated satisfies RefreshHook.
func (hooks RefreshHooks) TableUpdated(ctx context.Context, event TableEvent) error {
	for _, h := range hooks {
		if h == nil {
			continue
		}
		if err := h.TableUpdated(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

type noopRefreshHook struct{}

func (noopRefreshHook) TableUpdated(context.Context, TableEvent) error { return nil }
