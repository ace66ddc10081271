package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid/commands"
)

// Executor is what transports call to run table intents.
type Executor interface {
	ReorderColumns(ctx context.Context, input commands.ReorderColumnsInput) error
	SetColumnVisibility(ctx context.Context, input commands.SetColumnVisibilityInput) error
	ResetColumns(ctx context.Context, input commands.ResetColumnsInput) error
	MoveWidget(ctx context.Context, input commands.MoveWidgetInput) error
	ReorderWidgets(ctx context.Context, input commands.ReorderWidgetsInput) error
	ToggleWidget(ctx context.Context, input commands.ToggleWidgetInput) error
	SaveSetting(ctx context.Context, input commands.SaveSettingInput) error
	Refresh(ctx context.Context, input commands.RefreshTableInput) error
}

var errCommandMissing = errors.New("httpapi: command not configured")

// CommandExecutor dispatches to go-command commanders. Nil commanders fail
// with an error instead of panicking.
type CommandExecutor struct {
	ReorderColumnsCommander gocommand.Commander[commands.ReorderColumnsInput]
	VisibilityCommander     gocommand.Commander[commands.SetColumnVisibilityInput]
	ResetColumnsCommander   gocommand.Commander[commands.ResetColumnsInput]
	MoveWidgetCommander     gocommand.Commander[commands.MoveWidgetInput]
	ReorderWidgetsCommander gocommand.Commander[commands.ReorderWidgetsInput]
	ToggleWidgetCommander   gocommand.Commander[commands.ToggleWidgetInput]
	SettingCommander        gocommand.Commander[commands.SaveSettingInput]
	RefreshCommander        gocommand.Commander[commands.RefreshTableInput]
}

var _ Executor = (*CommandExecutor)(nil)

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errCommandMissing
	}
	return cmd.Execute(ctx, msg)
}

func (e *CommandExecutor) ReorderColumns(ctx context.Context, input commands.ReorderColumnsInput) error {
	return execute(ctx, e.ReorderColumnsCommander, input)
}

func (e *CommandExecutor) SetColumnVisibility(ctx context.Context, input commands.SetColumnVisibilityInput) error {
	return execute(ctx, e.VisibilityCommander, input)
}

func (e *CommandExecutor) ResetColumns(ctx context.Context, input commands.ResetColumnsInput) error {
	return execute(ctx, e.ResetColumnsCommander, input)
}

func (e *CommandExecutor) MoveWidget(ctx context.Context, input commands.MoveWidgetInput) error {
	return execute(ctx, e.MoveWidgetCommander, input)
}

func (e *CommandExecutor) ReorderWidgets(ctx context.Context, input commands.ReorderWidgetsInput) error {
	return execute(ctx, e.ReorderWidgetsCommander, input)
}

func (e *CommandExecutor) ToggleWidget(ctx context.Context, input commands.ToggleWidgetInput) error {
	return execute(ctx, e.ToggleWidgetCommander, input)
}

func (e *CommandExecutor) SaveSetting(ctx context.Context, input commands.SaveSettingInput) error {
	return execute(ctx, e.SettingCommander, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshTableInput) error {
	return execute(ctx, e.RefreshCommander, input)
}
