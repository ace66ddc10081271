package datagrid

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultTableTemplate  = "datagrid.html"
	defaultRowsTemplate   = "partials/rows.html"
	defaultReportTemplate = "report.html"
)

var defaultReportViewport = Viewport{Width: 1280, Height: 720}

// DefaultPageSizes are the rows-per-page choices offered by the pager.
var DefaultPageSizes = []int{10, 25, 50, 100}

var errMissingRenderer = errors.New("datagrid: controller renderer not configured")

// TableService is the subset of Service the controller needs.
type TableService interface {
	LoadTable(ctx context.Context, req TableRequest) (TablePayload, error)
	RunReport(ctx context.Context, viewer ViewerContext, moduleKey string, query url.Values) (ReportResult, error)
	Bindings(moduleKey string, descriptors []ColumnDescriptor) []ColumnBinding
}

// ControllerOptions configures the page controller.
type ControllerOptions struct {
	Service        TableService
	Renderer       Renderer
	Template       string
	RowsTemplate   string
	ReportTemplate string
	// BasePath prefixes the pager and filter links, e.g. "/admin/agreements".
	BasePath  string
	PageSizes []int
	Charts    *ReportChart
	GridOpts  []GridOption
}

// Controller turns table and report requests into template payloads.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultTableTemplate
	}
	if opts.RowsTemplate == "" {
		opts.RowsTemplate = defaultRowsTemplate
	}
	if opts.ReportTemplate == "" {
		opts.ReportTemplate = defaultReportTemplate
	}
	if len(opts.PageSizes) == 0 {
		opts.PageSizes = DefaultPageSizes
	}
	if opts.Charts == nil {
		opts.Charts = NewReportChart()
	}
	return &Controller{opts: opts}
}

// PageLink is one pager anchor.
type PageLink struct {
	Label   string `json:"label"`
	URL     string `json:"url"`
	Current bool   `json:"current"`
}

// TablePage is the render model of one list page.
type TablePage struct {
	Module    ModuleDefinition `json:"module"`
	View      TableView        `json:"view"`
	First     string           `json:"first"`
	Prev      string           `json:"prev"`
	Next      string           `json:"next"`
	Last      string           `json:"last"`
	Sizes     []PageLink       `json:"sizes"`
	ClearURL  string           `json:"clearUrl"`
	BasePath  string           `json:"basePath"`
	QueryText string           `json:"query"`
}

// Page loads the table for req and derives its navigation links.
func (c *Controller) Page(ctx context.Context, req TableRequest) (TablePage, error) {
	if c.opts.Service == nil {
		return TablePage{}, nil
	}
	payload, err := c.opts.Service.LoadTable(ctx, req)
	if err != nil {
		return TablePage{}, err
	}
	table := NewTable(TableProps{
		Rows:         payload.Rows,
		Columns:      c.opts.Service.Bindings(payload.Module.Key, payload.Columns),
		Pagination:   payload.Pagination,
		TotalRecords: payload.TotalRecords,
		Filters:      payload.Filters,
		Visibility:   VisibilityMap(payload.Columns),
		Order:        ColumnOrder(payload.Columns),
	})
	view := table.View()
	base := c.basePath(payload.Module)
	filters := map[string]any{}
	if payload.Filters != nil {
		filters = payload.Filters.ToQueryObject()
	}
	link := func(pageNumber, size int) string {
		return Navigation{Page: ToInternal(pageNumber, size), Filters: filters}.URL(base)
	}
	pager := view.Pager
	page := TablePage{
		Module:    payload.Module,
		View:      view,
		BasePath:  base,
		ClearURL:  Navigation{Page: ToInternal(1, pager.PageSize)}.URL(base),
		QueryText: Navigation{Page: payload.Pagination, Filters: filters}.Query().Encode(),
	}
	if pager.HasPrev {
		page.First = link(1, pager.PageSize)
		page.Prev = link(pager.PageNumber-1, pager.PageSize)
	}
	if pager.HasNext {
		page.Next = link(pager.PageNumber+1, pager.PageSize)
		page.Last = link(pager.TotalPages, pager.PageSize)
	}
	for _, size := range c.opts.PageSizes {
		page.Sizes = append(page.Sizes, PageLink{
			Label:   strconv.Itoa(size),
			URL:     link(1, size),
			Current: size == pager.PageSize,
		})
	}
	return page, nil
}

// RenderTemplate renders the list page for req into out.
func (c *Controller) RenderTemplate(ctx context.Context, req TableRequest, out io.Writer) error {
	return c.renderPage(ctx, c.opts.Template, req, out)
}

// RenderRows renders only the table body rows, used to refresh a table in
// place after a table event.
func (c *Controller) RenderRows(ctx context.Context, req TableRequest, out io.Writer) error {
	return c.renderPage(ctx, c.opts.RowsTemplate, req, out)
}

func (c *Controller) renderPage(ctx context.Context, name string, req TableRequest, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errMissingRenderer
	}
	page, err := c.Page(ctx, req)
	if err != nil {
		return err
	}
	_, err = c.opts.Renderer.Render(name, map[string]any{
		"page":   page,
		"module": page.Module,
		"view":   page.View,
		"viewer": req.Viewer,
	}, out)
	return err
}

// ReportRequest asks for one report grid render.
type ReportRequest struct {
	TableRequest
	Viewport Viewport
	// SortBy toggles client side sort on a column before rendering.
	SortBy string
	// ChartColumn adds a summary chart of that column when set.
	ChartColumn string
	ChartType   string
}

// ReportPage is the render model of a report.
type ReportPage struct {
	Module    ModuleDefinition `json:"module"`
	Frame     GridFrame        `json:"-"`
	Style     string           `json:"style"`
	Truncated bool             `json:"truncated"`
	Rows      int              `json:"rows"`
	Chart     string           `json:"-"`
}

// Report runs the module report and renders its virtualized grid window.
func (c *Controller) Report(ctx context.Context, req ReportRequest) (ReportPage, error) {
	if c.opts.Service == nil {
		return ReportPage{}, nil
	}
	result, err := c.opts.Service.RunReport(ctx, req.Viewer, req.ModuleKey, req.Query)
	if err != nil {
		return ReportPage{}, err
	}
	bindings := c.opts.Service.Bindings(result.Module.Key, result.Columns)
	table := NewTable(TableProps{
		Rows:       result.RowSet.Rows,
		RowSetID:   result.RowSet.ID,
		Columns:    bindings,
		Visibility: VisibilityMap(result.Columns),
		Order:      ColumnOrder(result.Columns),
	})
	grid := table.Grid(c.opts.GridOpts...)
	if req.SortBy != "" {
		if err := grid.ToggleSort(req.SortBy); err != nil {
			return ReportPage{}, err
		}
	}
	vp := req.Viewport
	if vp.Height <= 0 {
		vp.Height = defaultReportViewport.Height
	}
	if vp.Width <= 0 {
		vp.Width = defaultReportViewport.Width
	}
	frame := grid.Render(vp)
	page := ReportPage{
		Module:    result.Module,
		Frame:     frame,
		Style:     frame.Style(),
		Truncated: result.Truncated,
		Rows:      len(result.RowSet.Rows),
	}
	if req.ChartColumn != "" {
		binding := findBinding(bindings, req.ChartColumn)
		if binding == nil {
			return ReportPage{}, errUnknownColumn
		}
		html, err := c.opts.Charts.Render(result.RowSet, binding, req.ChartType)
		if err != nil {
			return ReportPage{}, err
		}
		page.Chart = html
	}
	return page, nil
}

// RenderReport renders the report page for req into out.
func (c *Controller) RenderReport(ctx context.Context, req ReportRequest, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errMissingRenderer
	}
	page, err := c.Report(ctx, req)
	if err != nil {
		return err
	}
	_, err = c.opts.Renderer.Render(c.opts.ReportTemplate, map[string]any{
		"report": page,
		"module": page.Module,
		"frame":  page.Frame,
		"viewer": req.Viewer,
	}, out)
	return err
}

// RenderString renders the list page and returns the HTML.
func (c *Controller) RenderString(ctx context.Context, req TableRequest) (string, error) {
	var buf bytes.Buffer
	if err := c.RenderTemplate(ctx, req, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *Controller) basePath(module ModuleDefinition) string {
	base := strings.TrimRight(c.opts.BasePath, "/")
	if base == "" {
		return "/" + module.Key
	}
	return base + "/" + module.Key
}

func findBinding(bindings []ColumnBinding, key string) ColumnBinding {
	for _, b := range bindings {
		if b.Key() == key {
			return b
		}
	}
	return nil
}
