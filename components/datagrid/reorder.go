package datagrid

import "errors"

var (
	errDragInProgress = errors.New("datagrid: drag already in progress")
	errUnknownDragID  = errors.New("datagrid: drag source is not a draggable item")
)

// Move returns a copy of list with the element at from reinserted at to.
// Elements in between shift by one; all other elements keep their relative
// order. Out of range indices return an unchanged copy.
func Move[T any](list []T, from, to int) []T {
	out := make([]T, len(list))
	copy(out, list)
	if from == to || from < 0 || to < 0 || from >= len(out) || to >= len(out) {
		return out
	}
	item := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = item
	return out
}

// ReorderIDs moves activeID to the position of overID. The list is first
// reduced to unique identifiers so a stale payload cannot corrupt the move.
// The boolean is false when nothing changed and no intent should be emitted.
func ReorderIDs(ids []string, activeID, overID string) ([]string, bool) {
	unique := uniqueIDs(ids)
	if activeID == "" || overID == "" || activeID == overID {
		return unique, false
	}
	from, to := indexOf(unique, activeID), indexOf(unique, overID)
	if from < 0 || to < 0 {
		return unique, false
	}
	return Move(unique, from, to), true
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}

// DragState is the phase of a reorder gesture.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragDropped
	DragCancelled
)

func (s DragState) String() string {
	switch s {
	case DragDragging:
		return "dragging"
	case DragDropped:
		return "dropped"
	case DragCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// DragController drives one reorder gesture over a list of identifiers. The
// sensor (mouse, touch, keyboard) is the caller's concern; the controller only
// sees source and target ids. It serves table columns and widget tiles alike.
type DragController struct {
	ids       []string
	disabled  map[string]bool
	state     DragState
	activeID  string
	last      DragState
	onReorder func(order []string)
}

// DragOption customizes a DragController.
type DragOption func(*DragController)

// WithDisabled marks identifiers that can be neither dragged nor dropped on.
func WithDisabled(ids ...string) DragOption {
	return func(c *DragController) {
		for _, id := range ids {
			c.disabled[id] = true
		}
	}
}

// WithReorderHandler registers the sink for the new order intent.
func WithReorderHandler(fn func(order []string)) DragOption {
	return func(c *DragController) {
		c.onReorder = fn
	}
}

// NewDragController builds an idle controller over ids.
func NewDragController(ids []string, opts ...DragOption) *DragController {
	c := &DragController{
		ids:      uniqueIDs(ids),
		disabled: map[string]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current phase. Dropped and cancelled are settled
// immediately, so outside a gesture this reports DragIdle.
func (c *DragController) State() DragState { return c.state }

// LastOutcome reports how the previous gesture ended.
func (c *DragController) LastOutcome() DragState { return c.last }

// ActiveID returns the identifier being dragged.
func (c *DragController) ActiveID() string { return c.activeID }

// Order returns the current identifier order.
func (c *DragController) Order() []string {
	return append([]string(nil), c.ids...)
}

// SetOrder replaces the identifier list, typically after the page re-renders
// from fresh server data. An in-flight gesture is cancelled.
func (c *DragController) SetOrder(ids []string) {
	if c.state == DragDragging {
		c.Cancel()
	}
	c.ids = uniqueIDs(ids)
}

// Start begins dragging id.
func (c *DragController) Start(id string) error {
	if c.state == DragDragging {
		return errDragInProgress
	}
	if indexOf(c.ids, id) < 0 || c.disabled[id] {
		return errUnknownDragID
	}
	c.state = DragDragging
	c.activeID = id
	return nil
}

// Drop ends the gesture over overID. The new order is returned and emitted
// only for a real move onto an enabled target; anything else settles as a
// silent no-op.
func (c *DragController) Drop(overID string) ([]string, bool) {
	if c.state != DragDragging {
		return nil, false
	}
	active := c.activeID
	c.settle(DragDropped)
	if overID == "" || c.disabled[overID] {
		c.last = DragCancelled
		return nil, false
	}
	next, moved := ReorderIDs(c.ids, active, overID)
	if !moved {
		return nil, false
	}
	c.ids = next
	if c.onReorder != nil {
		c.onReorder(append([]string(nil), next...))
	}
	return next, true
}

// Cancel abandons the gesture without emitting an intent.
func (c *DragController) Cancel() {
	if c.state != DragDragging {
		return
	}
	c.settle(DragCancelled)
}

func (c *DragController) settle(outcome DragState) {
	c.last = outcome
	c.state = DragIdle
	c.activeID = ""
}
