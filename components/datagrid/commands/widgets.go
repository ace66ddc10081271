package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

type widgetService interface {
	ReorderWidgets(ctx context.Context, viewer datagrid.ViewerContext, activeID, overID string) ([]datagrid.WidgetTile, error)
	SaveWidgetOrder(ctx context.Context, viewer datagrid.ViewerContext, order []string) ([]datagrid.WidgetTile, error)
	SetWidgetDeleted(ctx context.Context, viewer datagrid.ViewerContext, tileID string, deleted bool) ([]datagrid.WidgetTile, error)
}

// MoveWidgetInput is one tile drop.
type MoveWidgetInput struct {
	Viewer   datagrid.ViewerContext `json:"viewer"`
	ActiveID string                 `json:"active_id"`
	OverID   string                 `json:"over_id"`
}

// MoveWidgetCommand wraps Service.ReorderWidgets.
type MoveWidgetCommand struct {
	service   widgetService
	telemetry Telemetry
}

// NewMoveWidgetCommand builds the command.
func NewMoveWidgetCommand(service widgetService, telemetry Telemetry) *MoveWidgetCommand {
	return &MoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveWidgetInput] = (*MoveWidgetCommand)(nil)

// Execute moves the active tile onto the over tile's slot.
func (c *MoveWidgetCommand) Execute(ctx context.Context, msg MoveWidgetInput) error {
	if c.service == nil {
		return errors.New("move widget command requires service")
	}
	if msg.ActiveID == "" || msg.OverID == "" {
		return errors.New("move widget command requires active and over ids")
	}
	if _, err := c.service.ReorderWidgets(ctx, msg.Viewer, msg.ActiveID, msg.OverID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, commandEvent("widgets.move"), map[string]any{
		"active": msg.ActiveID,
		"over":   msg.OverID,
	})
	return nil
}

// ReorderWidgetsInput commits a full tile order.
type ReorderWidgetsInput struct {
	Viewer  datagrid.ViewerContext `json:"viewer"`
	TileIDs []string               `json:"tile_ids"`
}

// ReorderWidgetsCommand wraps Service.SaveWidgetOrder.
type ReorderWidgetsCommand struct {
	service   widgetService
	telemetry Telemetry
}

// NewReorderWidgetsCommand builds the command.
func NewReorderWidgetsCommand(service widgetService, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute applies the new ordering.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errors.New("reorder widgets command requires service")
	}
	if _, err := c.service.SaveWidgetOrder(ctx, msg.Viewer, msg.TileIDs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, commandEvent("widgets.reorder"), map[string]any{"count": len(msg.TileIDs)})
	return nil
}

// ToggleWidgetInput hides or restores one tile.
type ToggleWidgetInput struct {
	Viewer  datagrid.ViewerContext `json:"viewer"`
	TileID  string                 `json:"tile_id"`
	Deleted bool                   `json:"deleted"`
}

// ToggleWidgetCommand wraps Service.SetWidgetDeleted.
type ToggleWidgetCommand struct {
	service   widgetService
	telemetry Telemetry
}

// NewToggleWidgetCommand builds the command.
func NewToggleWidgetCommand(service widgetService, telemetry Telemetry) *ToggleWidgetCommand {
	return &ToggleWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleWidgetInput] = (*ToggleWidgetCommand)(nil)

// Execute flips the tile's deleted flag.
func (c *ToggleWidgetCommand) Execute(ctx context.Context, msg ToggleWidgetInput) error {
	if c.service == nil {
		return errors.New("toggle widget command requires service")
	}
	if _, err := c.service.SetWidgetDeleted(ctx, msg.Viewer, msg.TileID, msg.Deleted); err != nil {
		return err
	}
	c.telemetry.Record(ctx, commandEvent("widgets.toggle"), map[string]any{
		"tile":    msg.TileID,
		"deleted": msg.Deleted,
	})
	return nil
}
