package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

// SaveSettingInput stores one viewer setting.
type SaveSettingInput struct {
	Viewer datagrid.ViewerContext `json:"viewer"`
	Key    string                 `json:"key"`
	Value  string                 `json:"value"`
}

type settingsService interface {
	SaveSetting(ctx context.Context, viewer datagrid.ViewerContext, key, value string) error
}

// SaveSettingCommand persists viewer settings such as the page size.
type SaveSettingCommand struct {
	service   settingsService
	telemetry Telemetry
}

// NewSaveSettingCommand creates the command.
func NewSaveSettingCommand(service settingsService, telemetry Telemetry) *SaveSettingCommand {
	return &SaveSettingCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveSettingInput] = (*SaveSettingCommand)(nil)

// Execute stores the setting for the viewer.
func (c *SaveSettingCommand) Execute(ctx context.Context, msg SaveSettingInput) error {
	if c.service == nil {
		return errors.New("settings command requires service")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("settings command requires viewer user id")
	}
	if err := c.service.SaveSetting(ctx, msg.Viewer, msg.Key, msg.Value); err != nil {
		return err
	}
	c.telemetry.Record(ctx, commandEvent("settings.save"), map[string]any{
		"user_id": msg.Viewer.UserID,
		"key":     msg.Key,
	})
	return nil
}
