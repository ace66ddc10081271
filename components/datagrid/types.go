package datagrid

import (
	"context"
	"time"
)

// ColumnRegistry persists the per-viewer, per-module column descriptors.
// Implementations ensure thread safety; the server copy is the source of truth.
type ColumnRegistry interface {
	Columns(ctx context.Context, viewer ViewerContext, moduleKey string) ([]ColumnDescriptor, error)
	SaveColumns(ctx context.Context, viewer ViewerContext, moduleKey string, descriptors []ColumnDescriptor) error
}

// RowSource supplies one page of rows plus the total record count.
type RowSource interface {
	FetchRows(ctx context.Context, query RowQuery) (RowPage, error)
}

// RowSourceFunc adapts a function into a RowSource.
type RowSourceFunc func(ctx context.Context, query RowQuery) (RowPage, error)

// FetchRows satisfies RowSource.
func (fn RowSourceFunc) FetchRows(ctx context.Context, query RowQuery) (RowPage, error) {
	return fn(ctx, query)
}

// TileStore persists dashboard widget tiles per viewer.
type TileStore interface {
	Tiles(ctx context.Context, viewer ViewerContext) ([]WidgetTile, error)
	SaveTiles(ctx context.Context, viewer ViewerContext, tiles []WidgetTile) error
}

// RefreshHook notifies transports (REST/WebSocket) about table changes.
type RefreshHook interface {
	TableUpdated(ctx context.Context, event TableEvent) error
}

// ModuleRegistry stores list module definitions and their row sources.
type ModuleRegistry interface {
	RegisterModule(def ModuleDefinition) error
	RegisterSource(moduleKey string, source RowSource) error
	Module(key string) (ModuleDefinition, bool)
	Source(key string) (RowSource, bool)
	Modules() []ModuleDefinition
}

// Row is an opaque, module specific record. The table only reads it through
// column bindings.
type Row map[string]any

// ColumnDescriptor is one column of a list view as known to the column registry.
type ColumnDescriptor struct {
	ModuleKey               string `json:"moduleKey" yaml:"module_key,omitempty"`
	ColumnHeader            string `json:"columnHeader" yaml:"column_header"`
	ColumnHeaderDescription string `json:"columnHeaderDescription" yaml:"column_header_description"`
	OrderIndex              int    `json:"orderIndex" yaml:"order_index"`
	IsSelected              bool   `json:"isSelected" yaml:"is_selected"`
}

// ModuleVariant selects which table flavour a module renders with.
type ModuleVariant string

const (
	// VariantPaged is the server paginated list view.
	VariantPaged ModuleVariant = "paged"
	// VariantReport is the client side virtualized reporting grid.
	VariantReport ModuleVariant = "report"
)

// ModuleDefinition describes one list module (agreements, vehicles, ...).
type ModuleDefinition struct {
	Key             string             `json:"key" yaml:"key"`
	Title           string             `json:"title" yaml:"title"`
	Variant         ModuleVariant      `json:"variant,omitempty" yaml:"variant,omitempty"`
	DefaultPageSize int                `json:"default_page_size,omitempty" yaml:"default_page_size,omitempty"`
	Columns         []ColumnDescriptor `json:"columns" yaml:"columns"`
	Filters         []FilterDescriptor `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// RowQuery is what a RowSource receives for a page fetch.
type RowQuery struct {
	ModuleKey string
	Viewer    ViewerContext
	Page      PaginationState
	Filters   map[string]any
}

// RowPage is one page of rows as reported by the data source.
type RowPage struct {
	Rows         []Row `json:"rows"`
	TotalRecords int   `json:"totalRecords"`
}

// ViewerContext captures the active user needed to resolve per-user state.
type ViewerContext struct {
	UserID string
	Roles  []string
}

// TableEvent describes changes that transports might care about.
type TableEvent struct {
	ModuleKey  string    `json:"module_key,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Reason     string    `json:"reason"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
