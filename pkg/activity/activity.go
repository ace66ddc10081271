package activity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "datagrid"

// Event is one user-facing activity entry (column reordered, widget moved).
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives normalized events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify satisfies Hook.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	return fn(ctx, event)
}

// Hooks fans an event out to every hook. Events without a verb are skipped;
// hook errors are joined.
type Hooks []Hook

// Notify satisfies Hook.
func (hooks Hooks) Notify(ctx context.Context, event Event) error {
	event = NormalizeEvent(event)
	if event.Verb == "" {
		return nil
	}
	var errs []error
	for _, h := range hooks {
		if h == nil {
			continue
		}
		if err := h.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers and clones the slice and map fields so
// hooks cannot mutate the caller's event.
func NormalizeEvent(event Event) Event {
	event.Verb = strings.TrimSpace(event.Verb)
	event.ActorID = strings.TrimSpace(event.ActorID)
	event.UserID = strings.TrimSpace(event.UserID)
	event.TenantID = strings.TrimSpace(event.TenantID)
	event.ObjectType = strings.TrimSpace(event.ObjectType)
	event.ObjectID = strings.TrimSpace(event.ObjectID)
	event.Channel = strings.TrimSpace(event.Channel)
	event.DefinitionCode = strings.TrimSpace(event.DefinitionCode)
	if event.Recipients != nil {
		event.Recipients = append([]string(nil), event.Recipients...)
	}
	if event.Metadata != nil {
		meta := make(map[string]any, len(event.Metadata))
		for k, v := range event.Metadata {
			meta[k] = v
		}
		event.Metadata = meta
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return event
}

// Config toggles emission.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter sends events to hooks when enabled.
type Emitter struct {
	hooks   Hooks
	channel string
	enabled bool
}

// NewEmitter builds an emitter. Without hooks it is always disabled.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{
		hooks:   hooks,
		channel: channel,
		enabled: cfg.Enabled && len(hooks) > 0,
	}
}

// Enabled reports whether Emit forwards events.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit forwards event to the hooks, defaulting the channel.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}

// CaptureHook records events in memory. Useful in tests.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

// Notify satisfies Hook.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event)
	return nil
}
