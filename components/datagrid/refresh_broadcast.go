package datagrid

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const subscriberBuffer = 8

// BroadcastHook fans table events out to in-process subscribers. Slow
// subscribers miss events rather than block the publisher.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]chan TableEvent
	next int
}

var _ RefreshHook = (*BroadcastHook)(nil)

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[int]chan TableEvent)}
}

// TableUpdated satisfies RefreshHook.
func (h *BroadcastHook) TableUpdated(_ context.Context, event TableEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of table events and a cancel func. The channel
// is closed by cancel.
func (h *BroadcastHook) Subscribe() (<-chan TableEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan TableEvent, subscriberBuffer)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// EventWriter is the sink a streaming transport writes events to.
type EventWriter interface {
	WriteJSON(v any) error
}

// Stream copies events for one module (all modules when empty) to w until ctx
// ends or a write fails.
func (h *BroadcastHook) Stream(ctx context.Context, moduleKey string, w EventWriter) error {
	events, cancel := h.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if moduleKey != "" && event.ModuleKey != "" && event.ModuleKey != moduleKey {
				continue
			}
			if err := w.WriteJSON(event); err != nil {
				return err
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams table events as JSON. The
// optional "module" query parameter narrows the stream.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// the read loop notices the peer going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	_ = h.Stream(ctx, r.URL.Query().Get("module"), conn)
}
