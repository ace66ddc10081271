package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

// SeedViewerInput selects the viewer whose defaults are written.
type SeedViewerInput struct {
	Viewer datagrid.ViewerContext `json:"viewer"`
}

// SeedViewerCommand stores default columns and tiles for a new viewer.
type SeedViewerCommand struct {
	modules   datagrid.ModuleRegistry
	columns   datagrid.ColumnRegistry
	tiles     datagrid.TileStore
	telemetry Telemetry
}

// NewSeedViewerCommand wires dependencies. Tiles may be nil.
func NewSeedViewerCommand(modules datagrid.ModuleRegistry, columns datagrid.ColumnRegistry, tiles datagrid.TileStore, telemetry Telemetry) *SeedViewerCommand {
	return &SeedViewerCommand{
		modules:   modules,
		columns:   columns,
		tiles:     tiles,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedViewerInput] = (*SeedViewerCommand)(nil)

// Execute runs the seed.
func (c *SeedViewerCommand) Execute(ctx context.Context, msg SeedViewerInput) error {
	if c.columns == nil {
		return errors.New("seed command requires column registry")
	}
	seeded, err := datagrid.SeedViewer(ctx, c.modules, c.columns, c.tiles, msg.Viewer)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "datagrid.seed", map[string]any{
		"user_id": msg.Viewer.UserID,
		"modules": seeded,
	})
	return nil
}
