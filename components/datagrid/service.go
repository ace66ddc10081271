package datagrid

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goliatone/go-datagrid/pkg/activity"
	"github.com/google/uuid"
)

// DefaultMaxReportRows caps a report run when Options.MaxReportRows is unset.
const DefaultMaxReportRows = 5000

var (
	errModuleKey     = errors.New("datagrid: module key is required")
	errUnknownModule = errors.New("datagrid: module not registered")
	errMissingSource = errors.New("datagrid: module has no row source")
	errMissingTiles  = errors.New("datagrid: tile store not configured")
	errViewerUser    = errors.New("datagrid: viewer context missing user id")
)

// Options configures the Service. Every collaborator is an interface so hosts
// can swap storage and transports.
type Options struct {
	Modules        ModuleRegistry
	Columns        ColumnRegistry
	Tiles          TileStore
	Settings       SettingsStore
	Validator      PayloadValidator
	RefreshHook    RefreshHook
	Telemetry      Telemetry
	ActivityHooks  activity.Hooks
	ActivityConfig activity.Config
	// Bindings overrides the default field accessor per module and column.
	Bindings      map[string]map[string]ColumnBinding
	MaxReportRows int
	// SkipValidation trusts intent payloads as given, e.g. behind a gateway
	// that already checked them. It wins over Validator.
	SkipValidation bool
}

// Service orchestrates column registry, row sources and tile layouts for the
// list views. Table state itself stays with Table; the service performs the
// side effects the table's intents ask for.
type Service struct {
	opts     Options
	activity *activity.Emitter
}

// NewService builds a Service with safe defaults.
func NewService(opts Options) *Service {
	if opts.Modules == nil {
		opts.Modules = NewRegistry()
	}
	if opts.Columns == nil {
		opts.Columns = NewInMemoryColumnRegistry()
	}
	if opts.Settings == nil {
		opts.Settings = NewInMemorySettingsStore()
	}
	switch {
	case opts.SkipValidation:
		opts.Validator = noopPayloadValidator{}
	case opts.Validator == nil:
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.MaxReportRows <= 0 {
		opts.MaxReportRows = DefaultMaxReportRows
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
}

// Modules exposes the module registry.
func (s *Service) Modules() ModuleRegistry { return s.opts.Modules }

// TableRequest identifies one list view render.
type TableRequest struct {
	Viewer    ViewerContext
	ModuleKey string
	Query     url.Values
}

// TablePayload is everything a page needs to render a table.
type TablePayload struct {
	Module       ModuleDefinition   `json:"module"`
	Columns      []ColumnDescriptor `json:"columns"`
	Filters      *FilterState       `json:"-"`
	Pagination   PaginationState    `json:"pagination"`
	Rows         []Row              `json:"rows"`
	TotalRecords int                `json:"totalRecords"`
	Pager        Pager              `json:"pager"`
}

// LoadTable resolves columns, reconciles the URL against the module filters
// and fetches one page of rows.
func (s *Service) LoadTable(ctx context.Context, req TableRequest) (TablePayload, error) {
	module, err := s.module(req.ModuleKey)
	if err != nil {
		return TablePayload{}, err
	}
	source, ok := s.opts.Modules.Source(module.Key)
	if !ok || source == nil {
		return TablePayload{}, fmt.Errorf("%w: %s", errMissingSource, module.Key)
	}
	cols, err := s.Columns(ctx, req.Viewer, module.Key)
	if err != nil {
		return TablePayload{}, err
	}
	pageSize := PageSizeSetting(ctx, s.opts.Settings, req.Viewer, module.DefaultPageSize)
	params := ParseSearchParams(req.Query, module.Filters, pageSize)
	if IsFirstLoad(req.Query) {
		params.Filters.ApplyDefaults()
	}

	page, err := source.FetchRows(ctx, RowQuery{
		ModuleKey: module.Key,
		Viewer:    req.Viewer,
		Page:      params.Pagination,
		Filters:   params.Filters.ToQueryObject(),
	})
	if err != nil {
		return TablePayload{}, fmt.Errorf("datagrid: fetch rows for %s: %w", module.Key, err)
	}
	s.recordTelemetry(ctx, "datagrid.table.load", map[string]any{
		"module":  module.Key,
		"viewer":  req.Viewer.UserID,
		"page":    params.Pagination.PageNumber(),
		"size":    params.Pagination.PageSize,
		"records": page.TotalRecords,
	})
	return TablePayload{
		Module:       module,
		Columns:      cols,
		Filters:      params.Filters,
		Pagination:   params.Pagination,
		Rows:         page.Rows,
		TotalRecords: page.TotalRecords,
		Pager:        NewPager(params.Pagination, page.TotalRecords),
	}, nil
}

// Bindings binds every descriptor of a module in display order, applying the
// configured overrides. Visibility stays with the table.
func (s *Service) Bindings(moduleKey string, descriptors []ColumnDescriptor) []ColumnBinding {
	return BindAllColumns(descriptors, s.opts.Bindings[moduleKey])
}

// Columns returns the viewer's descriptors in display order. Without stored
// descriptors the module defaults apply; module columns missing from the
// stored set are appended after it.
func (s *Service) Columns(ctx context.Context, viewer ViewerContext, moduleKey string) ([]ColumnDescriptor, error) {
	module, err := s.module(moduleKey)
	if err != nil {
		return nil, err
	}
	stored, err := s.opts.Columns.Columns(ctx, viewer, module.Key)
	if err != nil {
		return nil, fmt.Errorf("datagrid: load columns for %s: %w", module.Key, err)
	}
	if len(stored) == 0 {
		return SortColumnsByOrderIndex(withModuleKey(module.Columns, module.Key)), nil
	}
	return reconcileColumns(module, stored), nil
}

func reconcileColumns(module ModuleDefinition, stored []ColumnDescriptor) []ColumnDescriptor {
	out := SortColumnsByOrderIndex(withModuleKey(stored, module.Key))
	present := make(map[string]struct{}, len(out))
	next := 0
	for _, d := range out {
		present[d.ColumnHeader] = struct{}{}
		next = max(next, d.OrderIndex+1)
	}
	for _, d := range SortColumnsByOrderIndex(module.Columns) {
		if _, ok := present[d.ColumnHeader]; ok {
			continue
		}
		d.ModuleKey = module.Key
		d.OrderIndex = next
		next++
		out = append(out, d)
	}
	return out
}

// ReorderColumns persists a drag result. The registry is always re-read
// afterwards; on a failed save the fresh descriptors come back together with
// the error so the caller renders the last confirmed state.
func (s *Service) ReorderColumns(ctx context.Context, viewer ViewerContext, moduleKey string, accessorKeys []string) ([]ColumnDescriptor, error) {
	if err := s.opts.Validator.Validate(SchemaOrder, accessorKeys); err != nil {
		return nil, err
	}
	return s.persistColumns(ctx, viewer, moduleKey, "reorder", func(current []ColumnDescriptor) []ColumnDescriptor {
		return ApplyOrderChange(current, accessorKeys)
	}, map[string]any{"count": len(accessorKeys)})
}

// SetColumnVisibility persists a full visibility map with the same settle
// semantics as ReorderColumns.
func (s *Service) SetColumnVisibility(ctx context.Context, viewer ViewerContext, moduleKey string, visibility map[string]bool) ([]ColumnDescriptor, error) {
	if err := s.opts.Validator.Validate(SchemaVisibility, visibility); err != nil {
		return nil, err
	}
	visible := 0
	for _, v := range visibility {
		if v {
			visible++
		}
	}
	return s.persistColumns(ctx, viewer, moduleKey, "visibility", func(current []ColumnDescriptor) []ColumnDescriptor {
		return ApplyVisibilityChange(current, visibility)
	}, map[string]any{"visible": visible})
}

// ResetColumns restores the module's default order and visibility for the
// viewer.
func (s *Service) ResetColumns(ctx context.Context, viewer ViewerContext, moduleKey string) ([]ColumnDescriptor, error) {
	module, err := s.module(moduleKey)
	if err != nil {
		return nil, err
	}
	return s.persistColumns(ctx, viewer, module.Key, "reset", func([]ColumnDescriptor) []ColumnDescriptor {
		return SortColumnsByOrderIndex(withModuleKey(module.Columns, module.Key))
	}, nil)
}

func (s *Service) persistColumns(
	ctx context.Context,
	viewer ViewerContext,
	moduleKey, reason string,
	change func([]ColumnDescriptor) []ColumnDescriptor,
	meta map[string]any,
) ([]ColumnDescriptor, error) {
	if viewer.UserID == "" {
		return nil, errViewerUser
	}
	current, err := s.Columns(ctx, viewer, moduleKey)
	if err != nil {
		return nil, err
	}
	next := RenumberColumns(change(current))
	if err := s.opts.Validator.Validate(SchemaColumns, next); err != nil {
		return current, err
	}
	saveErr := s.opts.Columns.SaveColumns(ctx, viewer, moduleKey, next)

	fresh, fetchErr := s.Columns(ctx, viewer, moduleKey)
	if fetchErr != nil {
		fresh = current
	}
	if saveErr != nil {
		saveErr = fmt.Errorf("datagrid: persist columns for %s: %w", moduleKey, saveErr)
		s.recordTelemetry(ctx, "datagrid.columns.persist_failed", map[string]any{
			"module": moduleKey,
			"reason": reason,
			"error":  saveErr.Error(),
		})
		hookErr := s.opts.RefreshHook.TableUpdated(ctx, TableEvent{
			ModuleKey:  moduleKey,
			UserID:     viewer.UserID,
			Reason:     "persist_failed",
			Error:      saveErr.Error(),
			OccurredAt: time.Now().UTC(),
		})
		return fresh, errors.Join(saveErr, fetchErr, hookErr)
	}
	if fetchErr != nil {
		return fresh, fetchErr
	}
	if err := s.opts.RefreshHook.TableUpdated(ctx, TableEvent{
		ModuleKey:  moduleKey,
		UserID:     viewer.UserID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		return fresh, err
	}
	payload := map[string]any{"module": moduleKey}
	for k, v := range meta {
		payload[k] = v
	}
	s.recordTelemetry(ctx, "datagrid.columns."+reason, payload)
	s.emitActivity(ctx, viewer, "datagrid.columns."+reason, "column_set", moduleKey, payload)
	return fresh, nil
}

// ReportResult is one report run.
type ReportResult struct {
	Module    ModuleDefinition   `json:"module"`
	Columns   []ColumnDescriptor `json:"columns"`
	RowSet    RowSet             `json:"-"`
	Truncated bool               `json:"truncated"`
	RanAt     time.Time          `json:"ranAt"`
}

// RunReport loads up to MaxReportRows rows into a row set with a fresh
// identity, so grids showing it drop their client side sort.
func (s *Service) RunReport(ctx context.Context, viewer ViewerContext, moduleKey string, query url.Values) (ReportResult, error) {
	module, err := s.module(moduleKey)
	if err != nil {
		return ReportResult{}, err
	}
	source, ok := s.opts.Modules.Source(module.Key)
	if !ok || source == nil {
		return ReportResult{}, fmt.Errorf("%w: %s", errMissingSource, module.Key)
	}
	cols, err := s.Columns(ctx, viewer, module.Key)
	if err != nil {
		return ReportResult{}, err
	}
	filters := FilterStateFromQuery(module.Filters, query)
	if IsFirstLoad(query) {
		filters.ApplyDefaults()
	}
	page, err := source.FetchRows(ctx, RowQuery{
		ModuleKey: module.Key,
		Viewer:    viewer,
		Page:      PaginationState{PageIndex: 0, PageSize: s.opts.MaxReportRows},
		Filters:   filters.ToQueryObject(),
	})
	if err != nil {
		return ReportResult{}, fmt.Errorf("datagrid: run report %s: %w", module.Key, err)
	}
	rows := page.Rows
	if len(rows) > s.opts.MaxReportRows {
		rows = rows[:s.opts.MaxReportRows]
	}
	result := ReportResult{
		Module:    module,
		Columns:   cols,
		RowSet:    RowSet{ID: uuid.New(), Rows: rows},
		Truncated: page.TotalRecords > len(rows),
		RanAt:     time.Now().UTC(),
	}
	s.recordTelemetry(ctx, "datagrid.report.run", map[string]any{
		"module":    module.Key,
		"rows":      len(rows),
		"truncated": result.Truncated,
		"row_set":   result.RowSet.ID.String(),
	})
	return result, nil
}

// WidgetTiles returns the viewer's tile layout in position order, falling back
// to one tile per registered module.
func (s *Service) WidgetTiles(ctx context.Context, viewer ViewerContext) ([]WidgetTile, error) {
	if s.opts.Tiles == nil {
		return nil, errMissingTiles
	}
	tiles, err := s.opts.Tiles.Tiles(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if len(tiles) == 0 {
		tiles = DefaultTiles(s.opts.Modules.Modules())
	}
	active, deleted := partitionTiles(tiles)
	return append(active, deleted...), nil
}

// DefaultTiles lays out one tile per module.
func DefaultTiles(modules []ModuleDefinition) []WidgetTile {
	out := make([]WidgetTile, 0, len(modules))
	for i, m := range modules {
		out = append(out, WidgetTile{
			ID:       "module." + m.Key,
			Title:    m.Title,
			Kind:     string(m.Variant),
			Position: i + 1,
		})
	}
	return out
}

// ReorderWidgets applies a tile drag and persists the result. A no-op drop
// returns the layout unchanged without saving.
func (s *Service) ReorderWidgets(ctx context.Context, viewer ViewerContext, activeID, overID string) ([]WidgetTile, error) {
	tiles, err := s.WidgetTiles(ctx, viewer)
	if err != nil {
		return nil, err
	}
	next, moved := ReorderWidgetTiles(tiles, activeID, overID)
	if !moved {
		return tiles, nil
	}
	return s.saveTiles(ctx, viewer, next, "reorder")
}

// SaveWidgetOrder commits a full tile order for the non-deleted tiles.
func (s *Service) SaveWidgetOrder(ctx context.Context, viewer ViewerContext, order []string) ([]WidgetTile, error) {
	if err := s.opts.Validator.Validate(SchemaOrder, order); err != nil {
		return nil, err
	}
	tiles, err := s.WidgetTiles(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return s.saveTiles(ctx, viewer, CommitWidgetOrder(tiles, order), "reorder")
}

// SetWidgetDeleted hides or restores a tile. Positions are renumbered so
// deleted tiles sit after the active ones.
func (s *Service) SetWidgetDeleted(ctx context.Context, viewer ViewerContext, tileID string, deleted bool) ([]WidgetTile, error) {
	tiles, err := s.WidgetTiles(ctx, viewer)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range tiles {
		if tiles[i].ID == tileID {
			tiles[i].Deleted = deleted
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("datagrid: tile %s not found", tileID)
	}
	reason := "restore"
	if deleted {
		reason = "delete"
	}
	return s.saveTiles(ctx, viewer, CommitWidgetOrder(tiles, DraggableTileIDs(tiles)), reason)
}

func (s *Service) saveTiles(ctx context.Context, viewer ViewerContext, tiles []WidgetTile, reason string) ([]WidgetTile, error) {
	if viewer.UserID == "" {
		return nil, errViewerUser
	}
	if err := s.opts.Validator.Validate(SchemaTiles, tiles); err != nil {
		return nil, err
	}
	if err := s.opts.Tiles.SaveTiles(ctx, viewer, tiles); err != nil {
		return nil, fmt.Errorf("datagrid: persist tiles: %w", err)
	}
	if err := s.opts.RefreshHook.TableUpdated(ctx, TableEvent{
		UserID:     viewer.UserID,
		Reason:     "widgets." + reason,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		return tiles, err
	}
	meta := map[string]any{"count": len(tiles)}
	s.recordTelemetry(ctx, "datagrid.widgets."+reason, meta)
	s.emitActivity(ctx, viewer, "datagrid.widgets."+reason, "widget_layout", viewer.UserID, meta)
	return tiles, nil
}

// SetPageSizePreference stores the viewer's default rows per page.
func (s *Service) SetPageSizePreference(ctx context.Context, viewer ViewerContext, size int) error {
	if viewer.UserID == "" {
		return errViewerUser
	}
	if size <= 0 {
		return fmt.Errorf("datagrid: page size must be positive, got %d", size)
	}
	if err := s.opts.Settings.Set(ctx, viewer, SettingPageSize, strconv.Itoa(size)); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "datagrid.settings.page_size", map[string]any{
		"viewer": viewer.UserID,
		"size":   size,
	})
	return nil
}

// SaveSetting stores an arbitrary viewer setting.
func (s *Service) SaveSetting(ctx context.Context, viewer ViewerContext, key, value string) error {
	if key == "" {
		return errors.New("datagrid: setting key is required")
	}
	if key == SettingPageSize {
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("datagrid: invalid page size %q: %w", value, err)
		}
		return s.SetPageSizePreference(ctx, viewer, size)
	}
	if viewer.UserID == "" {
		return errViewerUser
	}
	return s.opts.Settings.Set(ctx, viewer, key, value)
}

// NotifyTableUpdated exposes refresh hook invocation for commands and transports.
func (s *Service) NotifyTableUpdated(ctx context.Context, event TableEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.opts.RefreshHook.TableUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "datagrid.table.event", map[string]any{
		"module": event.ModuleKey,
		"reason": event.Reason,
	})
	return nil
}

func (s *Service) module(key string) (ModuleDefinition, error) {
	if key == "" {
		return ModuleDefinition{}, errModuleKey
	}
	module, ok := s.opts.Modules.Module(key)
	if !ok {
		return ModuleDefinition{}, fmt.Errorf("%w: %s", errUnknownModule, key)
	}
	return module, nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
