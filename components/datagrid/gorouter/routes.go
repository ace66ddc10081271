package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/goliatone/go-datagrid/components/datagrid/commands"
	"github.com/goliatone/go-datagrid/components/datagrid/httpapi"
)

// RouteRegistrar is the part of router.Router the tables mount on.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// RequestContext is the part of router.Context the handlers read and write.
type RequestContext interface {
	Context() context.Context
	SetHeader(key, value string) router.Context
	Send(body []byte) error
	JSON(code int, v any) error
	Body() []byte
	Param(name string, defaultValue ...string) string
	Locals(key any, value ...any) any
}

// ViewerResolver converts a request into a datagrid.ViewerContext.
type ViewerResolver func(RequestContext) datagrid.ViewerContext

// Config wires go-router with the table controller, APIs and hooks.
type Config struct {
	Router         RouteRegistrar
	Controller     *datagrid.Controller
	Modules        datagrid.ModuleRegistry
	API            httpapi.Executor
	Tables         gocommand.Querier[datagrid.TableRequest, datagrid.TablePayload]
	Tiles          gocommand.Querier[datagrid.ViewerContext, []datagrid.WidgetTile]
	Broadcast      *datagrid.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for table endpoints.
type RouteConfig struct {
	Table         string
	Rows          string
	Report        string
	Data          string
	ColumnOrder   string
	ColumnVisible string
	ColumnReset   string
	Tiles         string
	TileMove      string
	TileOrder     string
	TileDeleted   string
	Settings      string
	Refresh       string
	WebSocket     string
	ModuleParam   string
	TileIDParam   string
}

// Register mounts the table routes (HTML, JSON, REST, WebSocket).
func Register(cfg Config) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	if cfg.Modules == nil {
		return errors.New("gorouter: module registry is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = "/admin"
	}
	if cfg.ViewerResolver == nil {
		cfg.ViewerResolver = defaultViewerResolver
	}
	h := &handlers{cfg: cfg, routes: routes}

	cfg.Router.Get(base+routes.Table, router.WrapHandler(func(ctx router.Context) error {
		return h.page(ctx, lookup(ctx))
	}))
	cfg.Router.Get(base+routes.Rows, router.WrapHandler(func(ctx router.Context) error {
		return h.rows(ctx, lookup(ctx))
	}))
	cfg.Router.Get(base+routes.Report, router.WrapHandler(func(ctx router.Context) error {
		return h.report(ctx, lookup(ctx))
	}))
	if cfg.Tables != nil {
		cfg.Router.Get(base+routes.Data, router.WrapHandler(func(ctx router.Context) error {
			return h.data(ctx, lookup(ctx))
		}))
	}
	if cfg.Tiles != nil {
		cfg.Router.Get(base+routes.Tiles, router.WrapHandler(func(ctx router.Context) error {
			return h.tiles(ctx)
		}))
	}
	if cfg.API != nil {
		registerAPI(cfg.Router, base, h)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(cfg.Router, cfg.Broadcast, base+routes.WebSocket)
	}
	return nil
}

func registerAPI(r RouteRegistrar, base string, h *handlers) {
	routes := h.routes
	r.Post(base+routes.ColumnOrder, router.WrapHandler(func(ctx router.Context) error {
		return h.reorderColumns(ctx)
	}))
	r.Post(base+routes.ColumnVisible, router.WrapHandler(func(ctx router.Context) error {
		return h.columnVisibility(ctx)
	}))
	r.Delete(base+routes.ColumnReset, router.WrapHandler(func(ctx router.Context) error {
		return h.resetColumns(ctx)
	}))
	r.Post(base+routes.TileMove, router.WrapHandler(func(ctx router.Context) error {
		return h.moveTile(ctx)
	}))
	r.Post(base+routes.TileOrder, router.WrapHandler(func(ctx router.Context) error {
		return h.reorderTiles(ctx)
	}))
	r.Post(base+routes.TileDeleted, router.WrapHandler(func(ctx router.Context) error {
		return h.toggleTile(ctx)
	}))
	r.Post(base+routes.Settings, router.WrapHandler(func(ctx router.Context) error {
		return h.saveSetting(ctx)
	}))
	r.Post(base+routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		return h.refresh(ctx)
	}))
}

func registerWebSocket(r RouteRegistrar, hook *datagrid.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// queryLookup reads one query parameter.
type queryLookup func(string) string

func lookup(ctx router.Context) queryLookup {
	return func(key string) string { return ctx.Query(key) }
}

type handlers struct {
	cfg    Config
	routes RouteConfig
}

func (h *handlers) tableRequest(ctx RequestContext, query queryLookup) (datagrid.TableRequest, error) {
	key := ctx.Param(h.routes.ModuleParam)
	module, ok := h.cfg.Modules.Module(key)
	if !ok {
		return datagrid.TableRequest{}, errors.New("gorouter: unknown module " + strconv.Quote(key))
	}
	return datagrid.TableRequest{
		Viewer:    h.cfg.ViewerResolver(ctx),
		ModuleKey: module.Key,
		Query:     datagrid.QueryFromLookup(module.Filters, query),
	}, nil
}

func (h *handlers) page(ctx RequestContext, query queryLookup) error {
	req, err := h.tableRequest(ctx, query)
	if err != nil {
		return respondError(ctx, http.StatusNotFound, err)
	}
	var buf bytes.Buffer
	if err := h.cfg.Controller.RenderTemplate(ctx.Context(), req, &buf); err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	return sendHTML(ctx, buf.Bytes())
}

func (h *handlers) rows(ctx RequestContext, query queryLookup) error {
	req, err := h.tableRequest(ctx, query)
	if err != nil {
		return respondError(ctx, http.StatusNotFound, err)
	}
	var buf bytes.Buffer
	if err := h.cfg.Controller.RenderRows(ctx.Context(), req, &buf); err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	return sendHTML(ctx, buf.Bytes())
}

func (h *handlers) report(ctx RequestContext, query queryLookup) error {
	req, err := h.tableRequest(ctx, query)
	if err != nil {
		return respondError(ctx, http.StatusNotFound, err)
	}
	report := datagrid.ReportRequest{
		TableRequest: req,
		SortBy:       query("sort"),
		ChartColumn:  query("chart"),
		ChartType:    query("chart_type"),
	}
	report.Viewport.Width, _ = strconv.Atoi(query("width"))
	report.Viewport.Height, _ = strconv.Atoi(query("height"))
	var buf bytes.Buffer
	if err := h.cfg.Controller.RenderReport(ctx.Context(), report, &buf); err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	return sendHTML(ctx, buf.Bytes())
}

func (h *handlers) data(ctx RequestContext, query queryLookup) error {
	req, err := h.tableRequest(ctx, query)
	if err != nil {
		return respondError(ctx, http.StatusNotFound, err)
	}
	payload, err := h.cfg.Tables.Query(ctx.Context(), req)
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	return ctx.JSON(http.StatusOK, payload)
}

func (h *handlers) tiles(ctx RequestContext) error {
	tiles, err := h.cfg.Tiles.Query(ctx.Context(), h.cfg.ViewerResolver(ctx))
	if err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"tiles": tiles})
}

func (h *handlers) reorderColumns(ctx RequestContext) error {
	var payload struct {
		Order []string `json:"order"`
	}
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	var settled []datagrid.ColumnDescriptor
	err := h.cfg.API.ReorderColumns(ctx.Context(), commands.ReorderColumnsInput{
		Viewer:       h.cfg.ViewerResolver(ctx),
		ModuleKey:    ctx.Param(h.routes.ModuleParam),
		AccessorKeys: payload.Order,
		OnSettled:    func(cols []datagrid.ColumnDescriptor) { settled = cols },
	})
	return respondColumns(ctx, settled, err)
}

func (h *handlers) columnVisibility(ctx RequestContext) error {
	var payload struct {
		Visibility map[string]bool `json:"visibility"`
	}
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	var settled []datagrid.ColumnDescriptor
	err := h.cfg.API.SetColumnVisibility(ctx.Context(), commands.SetColumnVisibilityInput{
		Viewer:     h.cfg.ViewerResolver(ctx),
		ModuleKey:  ctx.Param(h.routes.ModuleParam),
		Visibility: payload.Visibility,
		OnSettled:  func(cols []datagrid.ColumnDescriptor) { settled = cols },
	})
	return respondColumns(ctx, settled, err)
}

func (h *handlers) resetColumns(ctx RequestContext) error {
	var settled []datagrid.ColumnDescriptor
	err := h.cfg.API.ResetColumns(ctx.Context(), commands.ResetColumnsInput{
		Viewer:    h.cfg.ViewerResolver(ctx),
		ModuleKey: ctx.Param(h.routes.ModuleParam),
		OnSettled: func(cols []datagrid.ColumnDescriptor) { settled = cols },
	})
	return respondColumns(ctx, settled, err)
}

func (h *handlers) moveTile(ctx RequestContext) error {
	var payload commands.MoveWidgetInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	payload.Viewer = h.cfg.ViewerResolver(ctx)
	if err := h.cfg.API.MoveWidget(ctx.Context(), payload); err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "moved"})
}

func (h *handlers) reorderTiles(ctx RequestContext) error {
	var payload commands.ReorderWidgetsInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	payload.Viewer = h.cfg.ViewerResolver(ctx)
	if err := h.cfg.API.ReorderWidgets(ctx.Context(), payload); err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "reordered"})
}

func (h *handlers) toggleTile(ctx RequestContext) error {
	id := ctx.Param(h.routes.TileIDParam)
	if id == "" {
		return respondError(ctx, http.StatusBadRequest, errors.New("tile id is required"))
	}
	var payload struct {
		Deleted bool `json:"deleted"`
	}
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	input := commands.ToggleWidgetInput{Viewer: h.cfg.ViewerResolver(ctx), TileID: id, Deleted: payload.Deleted}
	if err := h.cfg.API.ToggleWidget(ctx.Context(), input); err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

func (h *handlers) saveSetting(ctx RequestContext) error {
	var payload commands.SaveSettingInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	payload.Viewer = h.cfg.ViewerResolver(ctx)
	if err := h.cfg.API.SaveSetting(ctx.Context(), payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

func (h *handlers) refresh(ctx RequestContext) error {
	var payload commands.RefreshTableInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	if err := h.cfg.API.Refresh(ctx.Context(), payload); err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

func defaultViewerResolver(ctx RequestContext) datagrid.ViewerContext {
	var viewer datagrid.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	return viewer
}

func sendHTML(ctx RequestContext, body []byte) error {
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(body)
}

func respondColumns(ctx RequestContext, cols []datagrid.ColumnDescriptor, err error) error {
	resp := httpapi.ColumnsResponse{Columns: cols}
	if err != nil {
		resp.Error = err.Error()
		return ctx.JSON(http.StatusInternalServerError, resp)
	}
	return ctx.JSON(http.StatusOK, resp)
}

func respondError(ctx RequestContext, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.ModuleParam == "" {
		routes.ModuleParam = "module"
	}
	if routes.TileIDParam == "" {
		routes.TileIDParam = "id"
	}
	module := "/:" + routes.ModuleParam
	if routes.Table == "" {
		routes.Table = "/tables" + module
	}
	if routes.Rows == "" {
		routes.Rows = "/tables" + module + "/_rows"
	}
	if routes.Report == "" {
		routes.Report = "/reports" + module
	}
	if routes.Data == "" {
		routes.Data = "/tables" + module + "/_data"
	}
	if routes.ColumnOrder == "" {
		routes.ColumnOrder = "/tables" + module + "/columns/order"
	}
	if routes.ColumnVisible == "" {
		routes.ColumnVisible = "/tables" + module + "/columns/visibility"
	}
	if routes.ColumnReset == "" {
		routes.ColumnReset = "/tables" + module + "/columns"
	}
	if routes.Tiles == "" {
		routes.Tiles = "/tiles"
	}
	if routes.TileMove == "" {
		routes.TileMove = "/tiles/move"
	}
	if routes.TileOrder == "" {
		routes.TileOrder = "/tiles/order"
	}
	if routes.TileDeleted == "" {
		routes.TileDeleted = "/tiles/:" + routes.TileIDParam + "/deleted"
	}
	if routes.Settings == "" {
		routes.Settings = "/settings"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/events/refresh"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/events/ws"
	}
	return routes
}
