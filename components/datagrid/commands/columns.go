package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

// ColumnsSettled receives the descriptors re-read after a column change, on
// success and on failure alike.
type ColumnsSettled func(columns []datagrid.ColumnDescriptor)

// ReorderColumnsInput carries a drag result for one module.
type ReorderColumnsInput struct {
	Viewer       datagrid.ViewerContext `json:"viewer"`
	ModuleKey    string                 `json:"module_key"`
	AccessorKeys []string               `json:"accessor_keys"`
	OnSettled    ColumnsSettled         `json:"-"`
}

type columnService interface {
	ReorderColumns(ctx context.Context, viewer datagrid.ViewerContext, moduleKey string, accessorKeys []string) ([]datagrid.ColumnDescriptor, error)
	SetColumnVisibility(ctx context.Context, viewer datagrid.ViewerContext, moduleKey string, visibility map[string]bool) ([]datagrid.ColumnDescriptor, error)
	ResetColumns(ctx context.Context, viewer datagrid.ViewerContext, moduleKey string) ([]datagrid.ColumnDescriptor, error)
}

// ReorderColumnsCommand wraps Service.ReorderColumns.
type ReorderColumnsCommand struct {
	service   columnService
	telemetry Telemetry
}

// NewReorderColumnsCommand builds the command.
func NewReorderColumnsCommand(service columnService, telemetry Telemetry) *ReorderColumnsCommand {
	return &ReorderColumnsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderColumnsInput] = (*ReorderColumnsCommand)(nil)

// Execute persists the order and hands the settled descriptors back.
func (c *ReorderColumnsCommand) Execute(ctx context.Context, msg ReorderColumnsInput) error {
	if c.service == nil {
		return errors.New("reorder columns command requires service")
	}
	cols, err := c.service.ReorderColumns(ctx, msg.Viewer, msg.ModuleKey, msg.AccessorKeys)
	settle(msg.OnSettled, cols)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, commandEvent("columns.reorder"), map[string]any{
		"module": msg.ModuleKey,
		"count":  len(msg.AccessorKeys),
	})
	return nil
}

// SetColumnVisibilityInput carries the full visibility map of a module.
type SetColumnVisibilityInput struct {
	Viewer     datagrid.ViewerContext `json:"viewer"`
	ModuleKey  string                 `json:"module_key"`
	Visibility map[string]bool        `json:"visibility"`
	OnSettled  ColumnsSettled         `json:"-"`
}

// SetColumnVisibilityCommand wraps Service.SetColumnVisibility.
type SetColumnVisibilityCommand struct {
	service   columnService
	telemetry Telemetry
}

// NewSetColumnVisibilityCommand builds the command.
func NewSetColumnVisibilityCommand(service columnService, telemetry Telemetry) *SetColumnVisibilityCommand {
	return &SetColumnVisibilityCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetColumnVisibilityInput] = (*SetColumnVisibilityCommand)(nil)

// Execute persists the visibility map.
func (c *SetColumnVisibilityCommand) Execute(ctx context.Context, msg SetColumnVisibilityInput) error {
	if c.service == nil {
		return errors.New("column visibility command requires service")
	}
	cols, err := c.service.SetColumnVisibility(ctx, msg.Viewer, msg.ModuleKey, msg.Visibility)
	settle(msg.OnSettled, cols)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, commandEvent("columns.visibility"), map[string]any{
		"module": msg.ModuleKey,
		"keys":   len(msg.Visibility),
	})
	return nil
}

// ResetColumnsInput identifies the module whose columns return to defaults.
type ResetColumnsInput struct {
	Viewer    datagrid.ViewerContext `json:"viewer"`
	ModuleKey string                 `json:"module_key"`
	OnSettled ColumnsSettled         `json:"-"`
}

// ResetColumnsCommand wraps Service.ResetColumns.
type ResetColumnsCommand struct {
	service   columnService
	telemetry Telemetry
}

// NewResetColumnsCommand builds the command.
func NewResetColumnsCommand(service columnService, telemetry Telemetry) *ResetColumnsCommand {
	return &ResetColumnsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetColumnsInput] = (*ResetColumnsCommand)(nil)

// Execute restores the default columns.
func (c *ResetColumnsCommand) Execute(ctx context.Context, msg ResetColumnsInput) error {
	if c.service == nil {
		return errors.New("reset columns command requires service")
	}
	cols, err := c.service.ResetColumns(ctx, msg.Viewer, msg.ModuleKey)
	settle(msg.OnSettled, cols)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, commandEvent("columns.reset"), map[string]any{"module": msg.ModuleKey})
	return nil
}

func settle(fn ColumnsSettled, cols []datagrid.ColumnDescriptor) {
	if fn != nil && cols != nil {
		fn(cols)
	}
}
