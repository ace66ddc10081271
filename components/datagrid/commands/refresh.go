package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

// RefreshTableInput announces that a module's rows changed upstream.
type RefreshTableInput struct {
	Event datagrid.TableEvent
}

type refreshNotifier interface {
	NotifyTableUpdated(ctx context.Context, event datagrid.TableEvent) error
}

// RefreshTableCommand triggers refresh hooks without touching any store.
type RefreshTableCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshTableCommand creates the command.
func NewRefreshTableCommand(service refreshNotifier, telemetry Telemetry) *RefreshTableCommand {
	return &RefreshTableCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshTableInput] = (*RefreshTableCommand)(nil)

// Execute notifies the service's refresh hooks.
func (c *RefreshTableCommand) Execute(ctx context.Context, msg RefreshTableInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Event.Reason == "" {
		msg.Event.Reason = "rows"
	}
	if err := c.service.NotifyTableUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, commandEvent("table.refresh"), map[string]any{
		"module": msg.Event.ModuleKey,
		"reason": msg.Event.Reason,
	})
	return nil
}
