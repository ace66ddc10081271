package datagrid

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ettle/strcase"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

const (
	defaultRowHeight    = 36
	defaultOverscan     = 4
	defaultPendingRows  = 10
	defaultColumnWidth  = 150
	defaultMinWidth     = 60
	defaultMaxWidth     = 800
	estimateCharWidth   = 8
	estimateCellPadding = 32
	estimateSampleRows  = 50
)

var errUnknownColumn = errors.New("datagrid: unknown grid column")

// SortDirection is the client side sort state of the reporting grid.
type SortDirection int

const (
	SortNone SortDirection = iota
	SortAsc
	SortDesc
)

func (d SortDirection) String() string {
	switch d {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "none"
	}
}

// GridColumn is one column of the reporting grid.
type GridColumn struct {
	ID       string
	Header   string
	Width    int
	MinWidth int
	MaxWidth int
	Hidden   bool
	Binding  ColumnBinding
}

func (c GridColumn) clamp(width int) int {
	if c.MinWidth > 0 && width < c.MinWidth {
		width = c.MinWidth
	}
	if c.MaxWidth > 0 && width > c.MaxWidth {
		width = c.MaxWidth
	}
	return width
}

// RowSet is one loaded result. A fresh ID marks a new run even when the rows
// are equal.
type RowSet struct {
	ID   uuid.UUID
	Rows []Row
}

// NewRowSet wraps rows with a new identity.
func NewRowSet(rows []Row) RowSet {
	return RowSet{ID: uuid.New(), Rows: rows}
}

// Viewport is the scroll container geometry in pixels.
type Viewport struct {
	ScrollTop  int
	ScrollLeft int
	Width      int
	Height     int
}

// GridHeader is one rendered header cell.
type GridHeader struct {
	ColumnID string
	Header   string
	Sort     SortDirection
	SizeVar  string
	Start    int
	Resizing bool
}

// GridCell is one rendered body cell. Cells reference their width through a
// size variable so a resize changes only the variable, never the cell.
type GridCell struct {
	ColumnID      string
	Text          string
	SizeVar       string
	Skeleton      bool
	SkeletonWidth int
}

// GridRow is one rendered body row.
type GridRow struct {
	Index int
	Start int
	Cells []GridCell
}

// GridBody is the rendered row window.
type GridBody struct {
	Rows []GridRow
}

// GridFrame is the full output of one grid render.
type GridFrame struct {
	RowSetID    uuid.UUID
	Pending     bool
	TotalWidth  int
	TotalHeight int
	SizeVars    map[string]int
	Headers     []GridHeader
	Body        *GridBody
}

// Style renders the size variables as an inline CSS declaration list.
func (f GridFrame) Style() string {
	keys := make([]string, 0, len(f.SizeVars))
	for k := range f.SizeVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %dpx; ", k, f.SizeVars[k])
	}
	return strings.TrimSpace(b.String())
}

// GridOption customizes a Grid.
type GridOption func(*Grid)

// WithRowHeight sets the constant row size estimate.
func WithRowHeight(px int) GridOption {
	return func(g *Grid) {
		if px > 0 {
			g.rowHeight = px
		}
	}
}

// WithOverscan sets the number of extra rows and columns rendered off screen.
func WithOverscan(n int) GridOption {
	return func(g *Grid) {
		if n >= 0 {
			g.overscan = n
		}
	}
}

// WithPendingRows sets how many placeholder rows the pending mode shows.
func WithPendingRows(n int) GridOption {
	return func(g *Grid) {
		if n > 0 {
			g.pendingRows = n
		}
	}
}

// WithSkeletonRatios sets the skeleton widths used on even and odd rows, as a
// fraction of the column width.
func WithSkeletonRatios(even, odd float64) GridOption {
	return func(g *Grid) {
		if even > 0 && even <= 1 && odd > 0 && odd <= 1 {
			g.skeleton = [2]float64{even, odd}
		}
	}
}

// Grid is the virtualized reporting grid. It windows rows and columns, sorts
// the loaded row set on the client and supports column resizing. It is not
// safe for concurrent use; callers drive it from one request or event loop.
type Grid struct {
	columns     []GridColumn
	rows        RowSet
	order       []int
	sortColumn  string
	sortDir     SortDirection
	pending     bool
	resizing    string
	rowHeight   int
	overscan    int
	pendingRows int
	skeleton    [2]float64

	cells       *CellCache
	renders     map[string]int
	bodyRenders int
	memo        *GridBody
	memoKey     string
}

// NewGrid builds a grid over columns. Widths are clamped to each column's
// bounds; zero widths use a default.
func NewGrid(columns []GridColumn, opts ...GridOption) *Grid {
	g := &Grid{
		rowHeight:   defaultRowHeight,
		overscan:    defaultOverscan,
		pendingRows: defaultPendingRows,
		skeleton:    [2]float64{0.7, 0.4},
		cells:       NewCellCache(),
		renders:     map[string]int{},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.columns = make([]GridColumn, 0, len(columns))
	for _, col := range columns {
		if col.ID == "" {
			continue
		}
		if col.Width <= 0 {
			col.Width = defaultColumnWidth
		}
		col.Width = col.clamp(col.Width)
		g.columns = append(g.columns, col)
	}
	return g
}

// GridColumnsFromBindings derives grid columns with widths estimated from the
// header and a sample of rendered values.
func GridColumnsFromBindings(bindings []ColumnBinding, rows []Row) []GridColumn {
	out := make([]GridColumn, 0, len(bindings))
	sample := rows
	if len(sample) > estimateSampleRows {
		sample = sample[:estimateSampleRows]
	}
	for _, b := range bindings {
		if b == nil {
			continue
		}
		values := make([]string, 0, len(sample))
		for _, row := range sample {
			values = append(values, b.Render(b.Value(row)))
		}
		out = append(out, GridColumn{
			ID:       b.Key(),
			Header:   b.Header(),
			Width:    EstimateColumnWidth(b.Header(), values),
			MinWidth: defaultMinWidth,
			MaxWidth: defaultMaxWidth,
			Binding:  b,
		})
	}
	return out
}

// EstimateColumnWidth sizes a column to its widest text in display cells, so
// wide runes count double.
func EstimateColumnWidth(header string, values []string) int {
	widest := runewidth.StringWidth(header)
	for _, v := range values {
		widest = max(widest, runewidth.StringWidth(v))
	}
	width := widest*estimateCharWidth + estimateCellPadding
	return min(max(width, defaultMinWidth), defaultMaxWidth)
}

// Columns returns a copy of the column state.
func (g *Grid) Columns() []GridColumn {
	return append([]GridColumn(nil), g.columns...)
}

// RowSet returns the loaded rows.
func (g *Grid) RowSet() RowSet { return g.rows }

// SetRows loads a row set. A new identity clears sorting and pending mode.
func (g *Grid) SetRows(set RowSet) {
	if set.ID != g.rows.ID {
		g.sortColumn = ""
		g.sortDir = SortNone
	}
	g.rows = set
	g.pending = false
	g.resort()
}

// SetPending switches the placeholder display on or off.
func (g *Grid) SetPending(pending bool) {
	g.pending = pending
}

// Sort returns the active sort column and direction.
func (g *Grid) Sort() (string, SortDirection) {
	return g.sortColumn, g.sortDir
}

// ToggleSort cycles a column through ascending, descending and unsorted.
// Switching to another column starts at ascending.
func (g *Grid) ToggleSort(columnID string) error {
	if g.column(columnID) < 0 {
		return fmt.Errorf("%w: %s", errUnknownColumn, columnID)
	}
	switch {
	case g.sortColumn != columnID:
		g.sortColumn, g.sortDir = columnID, SortAsc
	case g.sortDir == SortAsc:
		g.sortDir = SortDesc
	default:
		g.sortColumn, g.sortDir = "", SortNone
	}
	g.resort()
	return nil
}

// SetColumnHidden toggles a column out of the horizontal window.
func (g *Grid) SetColumnHidden(columnID string, hidden bool) error {
	idx := g.column(columnID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", errUnknownColumn, columnID)
	}
	g.columns[idx].Hidden = hidden
	return nil
}

// StartResize begins a resize gesture on columnID.
func (g *Grid) StartResize(columnID string) error {
	if g.column(columnID) < 0 {
		return fmt.Errorf("%w: %s", errUnknownColumn, columnID)
	}
	g.resizing = columnID
	return nil
}

// ResizeColumn sets a column width, clamped to its bounds, and returns the
// applied width.
func (g *Grid) ResizeColumn(columnID string, width int) (int, error) {
	idx := g.column(columnID)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", errUnknownColumn, columnID)
	}
	g.columns[idx].Width = g.columns[idx].clamp(width)
	return g.columns[idx].Width, nil
}

// EndResize finishes the active resize gesture.
func (g *Grid) EndResize() {
	g.resizing = ""
}

// Resizing returns the column being resized, if any.
func (g *Grid) Resizing() string { return g.resizing }

// SizeVars returns one width variable per visible column and per header.
func (g *Grid) SizeVars() map[string]int {
	out := make(map[string]int, len(g.columns)*2)
	for _, col := range g.columns {
		if col.Hidden {
			continue
		}
		out[headerSizeVar(col.ID)] = col.Width
		out[columnSizeVar(col.ID)] = col.Width
	}
	return out
}

// RenderCount reports how many cells of columnID were rendered so far.
func (g *Grid) RenderCount(columnID string) int { return g.renders[columnID] }

// BodyRenderCount reports how many row bodies were computed so far.
func (g *Grid) BodyRenderCount() int { return g.bodyRenders }

// Render produces the frame for a viewport. While a column is being resized
// the body is reused as long as the row data and its order are unchanged.
func (g *Grid) Render(vp Viewport) GridFrame {
	visible := g.visibleColumns()
	cols := NewVirtualizer(len(visible), func(i int) int { return visible[i].Width }, g.overscan)
	rowCount := len(g.order)
	if g.pending {
		rowCount = g.pendingRows
	}
	rows := NewVirtualizer(rowCount, func(int) int { return g.rowHeight }, g.overscan)

	frame := GridFrame{
		RowSetID:    g.rows.ID,
		Pending:     g.pending,
		TotalWidth:  cols.TotalSize(),
		TotalHeight: rows.TotalSize(),
		SizeVars:    g.SizeVars(),
	}
	colWindow := cols.Window(vp.ScrollLeft, vp.Width)
	for _, item := range colWindow {
		col := visible[item.Index]
		frame.Headers = append(frame.Headers, GridHeader{
			ColumnID: col.ID,
			Header:   col.Header,
			Sort:     g.sortFor(col.ID),
			SizeVar:  headerSizeVar(col.ID),
			Start:    item.Start,
			Resizing: g.resizing == col.ID,
		})
	}

	key := g.bodyKey(visible)
	if g.resizing != "" && g.memo != nil && g.memoKey == key {
		frame.Body = g.memo
		return frame
	}
	body := g.renderBody(visible, colWindow, rows.Window(vp.ScrollTop, vp.Height))
	g.memo, g.memoKey = body, key
	frame.Body = body
	return frame
}

func (g *Grid) renderBody(visible []GridColumn, colWindow, rowWindow []VirtualItem) *GridBody {
	g.bodyRenders++
	body := &GridBody{Rows: make([]GridRow, 0, len(rowWindow))}
	for _, r := range rowWindow {
		row := GridRow{Index: r.Index, Start: r.Start, Cells: make([]GridCell, 0, len(colWindow))}
		for _, c := range colWindow {
			col := visible[c.Index]
			if g.pending {
				row.Cells = append(row.Cells, g.skeletonCell(col, r.Index))
				continue
			}
			row.Cells = append(row.Cells, g.cell(col, g.order[r.Index]))
		}
		body.Rows = append(body.Rows, row)
	}
	return body
}

func (g *Grid) cell(col GridColumn, rowIndex int) GridCell {
	text := g.cells.GetOrRender(g.rows.ID, rowIndex, col.ID, func() string {
		g.renders[col.ID]++
		if col.Binding == nil {
			return FormatValue(g.rows.Rows[rowIndex][col.ID])
		}
		return col.Binding.Render(col.Binding.Value(g.rows.Rows[rowIndex]))
	})
	return GridCell{ColumnID: col.ID, Text: text, SizeVar: columnSizeVar(col.ID)}
}

func (g *Grid) skeletonCell(col GridColumn, rowIndex int) GridCell {
	ratio := g.skeleton[rowIndex%2]
	return GridCell{
		ColumnID:      col.ID,
		SizeVar:       columnSizeVar(col.ID),
		Skeleton:      true,
		SkeletonWidth: int(float64(col.Width) * ratio),
	}
}

// bodyKey identifies a rendered body by row data, order and the visible
// column set. Widths are left out so a resize keeps the body.
func (g *Grid) bodyKey(visible []GridColumn) string {
	ids := make([]string, len(visible))
	for i, col := range visible {
		ids[i] = col.ID
	}
	return fmt.Sprintf("%s|%s|%d|%t|%d|%s", g.rows.ID, g.sortColumn, g.sortDir, g.pending, len(g.rows.Rows), strings.Join(ids, ","))
}

func (g *Grid) sortFor(columnID string) SortDirection {
	if g.sortColumn == columnID {
		return g.sortDir
	}
	return SortNone
}

func (g *Grid) visibleColumns() []GridColumn {
	out := make([]GridColumn, 0, len(g.columns))
	for _, col := range g.columns {
		if !col.Hidden {
			out = append(out, col)
		}
	}
	return out
}

func (g *Grid) column(id string) int {
	for i, col := range g.columns {
		if col.ID == id {
			return i
		}
	}
	return -1
}

func (g *Grid) resort() {
	order := make([]int, len(g.rows.Rows))
	for i := range order {
		order[i] = i
	}
	g.order = order
	idx := g.column(g.sortColumn)
	if g.sortDir == SortNone || idx < 0 {
		return
	}
	col := g.columns[idx]
	value := func(i int) any {
		if col.Binding == nil {
			return g.rows.Rows[i][col.ID]
		}
		return col.Binding.Value(g.rows.Rows[i])
	}
	desc := g.sortDir == SortDesc
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := value(order[a]), value(order[b])
		// nils sort last in either direction
		if va == nil || vb == nil {
			return va != nil && vb == nil
		}
		if desc {
			return compareValues(vb, va) < 0
		}
		return compareValues(va, vb) < 0
	})
}

func compareValues(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(strings.ToLower(FormatValue(a)), strings.ToLower(FormatValue(b)))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func headerSizeVar(id string) string {
	return "--header-" + strcase.ToKebab(id) + "-size"
}

func columnSizeVar(id string) string {
	return "--col-" + strcase.ToKebab(id) + "-size"
}
