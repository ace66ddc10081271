package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

// ColumnsInput identifies a viewer's column set for one module.
type ColumnsInput struct {
	Viewer    datagrid.ViewerContext
	ModuleKey string
}

type columnService interface {
	Columns(ctx context.Context, viewer datagrid.ViewerContext, moduleKey string) ([]datagrid.ColumnDescriptor, error)
}

// ColumnsQuery fetches the descriptors in display order.
type ColumnsQuery struct {
	service columnService
}

// NewColumnsQuery builds the query.
func NewColumnsQuery(service columnService) *ColumnsQuery {
	return &ColumnsQuery{service: service}
}

var _ gocommand.Querier[ColumnsInput, []datagrid.ColumnDescriptor] = (*ColumnsQuery)(nil)

// Query resolves the columns.
func (q *ColumnsQuery) Query(ctx context.Context, input ColumnsInput) ([]datagrid.ColumnDescriptor, error) {
	return q.service.Columns(ctx, input.Viewer, input.ModuleKey)
}

type tileService interface {
	WidgetTiles(ctx context.Context, viewer datagrid.ViewerContext) ([]datagrid.WidgetTile, error)
}

// TilesQuery fetches the viewer's widget tiles in position order.
type TilesQuery struct {
	service tileService
}

// NewTilesQuery builds the query.
func NewTilesQuery(service tileService) *TilesQuery {
	return &TilesQuery{service: service}
}

var _ gocommand.Querier[datagrid.ViewerContext, []datagrid.WidgetTile] = (*TilesQuery)(nil)

// Query resolves the tiles.
func (q *TilesQuery) Query(ctx context.Context, viewer datagrid.ViewerContext) ([]datagrid.WidgetTile, error) {
	return q.service.WidgetTiles(ctx, viewer)
}
