package datagrid

import (
	"github.com/google/uuid"
)

// TableProps is everything the owning page hands the table. The table owns no
// server state: each callback receives an intent and the page performs it.
type TableProps struct {
	Rows         []Row
	RowSetID     uuid.UUID
	Columns      []ColumnBinding
	Pagination   PaginationState
	TotalRecords int
	Loading      bool
	Filters      *FilterState
	// Visibility maps column key to shown. Nil shows every column; otherwise a
	// missing key hides the column.
	Visibility map[string]bool
	// Order lists column keys in display order. Unlisted columns follow in
	// their binding order.
	Order []string
	// Locked columns can be neither dragged nor used as a drop target.
	Locked []string

	OnPaginationChange func(PaginationState)
	OnFiltersChange    func(Navigation)
	OnOrderChange      func(order []string)
	OnVisibilityChange func(visibility map[string]bool)
}

// TableHeader is one rendered column header.
type TableHeader struct {
	Key       string `json:"key"`
	Header    string `json:"header"`
	Draggable bool   `json:"draggable"`
}

// TableRow is one rendered body row.
type TableRow struct {
	Cells []string `json:"cells"`
}

// ColumnToggle is one entry of the column visibility menu.
type ColumnToggle struct {
	Key     string `json:"key"`
	Header  string `json:"header"`
	Visible bool   `json:"visible"`
}

// FilterControl is one faceted filter as rendered in the toolbar. Input is
// Kind as a plain string for template comparisons.
type FilterControl struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Kind    FilterKind     `json:"kind"`
	Input   string         `json:"input"`
	Value   string         `json:"value,omitempty"`
	Values  []string       `json:"values,omitempty"`
	Options []FilterOption `json:"options,omitempty"`
	Active  bool           `json:"active"`
}

// TableView is the render model of one table state.
type TableView struct {
	Headers          []TableHeader   `json:"headers"`
	Rows             []TableRow      `json:"rows"`
	NoResults        bool            `json:"noResults"`
	NoResultsColSpan int             `json:"noResultsColSpan"`
	Loading          bool            `json:"loading"`
	Pager            Pager           `json:"pager"`
	Filters          []FilterControl `json:"filters"`
	ColumnMenu       []ColumnToggle  `json:"columnMenu"`
	HasActiveFilters bool            `json:"hasActiveFilters"`
}

// Table is the controlled composition root over rows, columns, filters,
// pagination and column drag. Apart from the drag gesture and the filter
// draft every change is forwarded through the prop callbacks.
type Table struct {
	props   TableProps
	columns []ColumnBinding
	draft   *FilterState
	drag    *DragController
}

// NewTable wires the props. Nil filters and callbacks are allowed.
func NewTable(props TableProps) *Table {
	t := &Table{props: props}
	if props.Filters != nil {
		t.draft = props.Filters.Clone()
	} else {
		t.draft = NewFilterState(nil)
	}
	if t.props.Pagination.PageSize <= 0 {
		t.props.Pagination.PageSize = DefaultPageSize
	}
	if t.props.Pagination.PageIndex < 0 {
		t.props.Pagination.PageIndex = 0
	}
	t.columns = orderBindings(props.Columns, props.Order)
	ids := make([]string, 0, len(t.columns))
	for _, col := range t.visibleColumns() {
		ids = append(ids, col.Key())
	}
	t.drag = NewDragController(ids,
		WithDisabled(props.Locked...),
		WithReorderHandler(t.emitOrder),
	)
	return t
}

// View renders the current state. Empty rows yield one placeholder row
// spanning every visible column, at least one.
func (t *Table) View() TableView {
	visible := t.visibleColumns()
	locked := make(map[string]bool, len(t.props.Locked))
	for _, key := range t.props.Locked {
		locked[key] = true
	}
	view := TableView{
		Headers: make([]TableHeader, 0, len(visible)),
		Rows:    make([]TableRow, 0, len(t.props.Rows)),
		Loading: t.props.Loading,
		Pager:   NewPager(t.props.Pagination, t.props.TotalRecords),
	}
	for _, col := range visible {
		view.Headers = append(view.Headers, TableHeader{
			Key:       col.Key(),
			Header:    col.Header(),
			Draggable: !locked[col.Key()],
		})
	}
	for _, row := range t.props.Rows {
		cells := make([]string, len(visible))
		for i, col := range visible {
			cells[i] = col.Render(col.Value(row))
		}
		view.Rows = append(view.Rows, TableRow{Cells: cells})
	}
	if len(t.props.Rows) == 0 {
		view.NoResults = true
		view.NoResultsColSpan = max(1, len(visible))
	}
	for _, col := range t.columns {
		view.ColumnMenu = append(view.ColumnMenu, ColumnToggle{
			Key:     col.Key(),
			Header:  col.Header(),
			Visible: t.isVisible(col.Key()),
		})
	}
	view.Filters = t.filterControls()
	for _, f := range view.Filters {
		if f.Active && f.Kind != FilterHidden {
			view.HasActiveFilters = true
			break
		}
	}
	return view
}

// Draft returns the filter values being edited.
func (t *Table) Draft() *FilterState { return t.draft }

// GoToPage emits the pagination for an external 1-based page number. Requests
// past the last known page land on the last page.
func (t *Table) GoToPage(pageNumber int) {
	total := ComputeTotalPages(t.props.TotalRecords, t.props.Pagination.PageSize)
	t.emitPagination(ToInternal(clampPage(pageNumber, total), t.props.Pagination.PageSize))
}

// NextPage emits the following page when one exists.
func (t *Table) NextPage() {
	if NewPager(t.props.Pagination, t.props.TotalRecords).HasNext {
		t.GoToPage(t.props.Pagination.PageNumber() + 1)
	}
}

// PrevPage emits the previous page when one exists.
func (t *Table) PrevPage() {
	if t.props.Pagination.PageIndex > 0 {
		t.GoToPage(t.props.Pagination.PageNumber() - 1)
	}
}

// SetPageSize emits the first page at the new size. Non-positive sizes are
// ignored.
func (t *Table) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	t.emitPagination(ToInternal(1, size))
}

// SetFilter updates the draft and emits a search for it.
func (t *Table) SetFilter(id string, value *FilterValue) {
	t.draft.SetValue(id, value)
	t.Search()
}

// ClearFilter applies the per-filter clear to the draft and emits a search.
func (t *Table) ClearFilter(id string) {
	t.draft.Clear(id)
	t.Search()
}

// ClearAllFilters drops every filter value and emits the first page at the
// current size.
func (t *Table) ClearAllFilters() {
	page := t.draft.ClearAll(t.props.Pagination)
	if t.props.OnFiltersChange != nil {
		t.props.OnFiltersChange(Navigation{Page: page, Filters: t.draft.ToQueryObject()})
	}
}

// Search emits the draft filters on the first page.
func (t *Table) Search() {
	if t.props.OnFiltersChange != nil {
		t.props.OnFiltersChange(t.draft.SearchNavigation(t.props.Pagination.PageSize))
	}
}

// SetColumnVisible emits the full visibility map with one column changed.
func (t *Table) SetColumnVisible(key string, visible bool) {
	if t.props.OnVisibilityChange == nil || !t.hasColumn(key) {
		return
	}
	next := make(map[string]bool, len(t.columns))
	for _, col := range t.columns {
		next[col.Key()] = t.isVisible(col.Key())
	}
	if next[key] == visible {
		return
	}
	next[key] = visible
	t.props.OnVisibilityChange(next)
}

// DragStart begins a column drag.
func (t *Table) DragStart(key string) error { return t.drag.Start(key) }

// DragDrop finishes the column drag over key. The full column order is
// emitted through OnOrderChange for real moves only.
func (t *Table) DragDrop(overKey string) bool {
	_, moved := t.drag.Drop(overKey)
	return moved
}

// DragCancel abandons the column drag.
func (t *Table) DragCancel() { t.drag.Cancel() }

// DragState reports the column drag phase.
func (t *Table) DragState() DragState { return t.drag.State() }

// Grid builds the virtualized reporting grid over the visible columns.
func (t *Table) Grid(opts ...GridOption) *Grid {
	grid := NewGrid(GridColumnsFromBindings(t.visibleColumns(), t.props.Rows), opts...)
	id := t.props.RowSetID
	if id == uuid.Nil {
		id = uuid.New()
	}
	grid.SetRows(RowSet{ID: id, Rows: t.props.Rows})
	if t.props.Loading {
		grid.SetPending(true)
	}
	return grid
}

func (t *Table) emitPagination(p PaginationState) {
	if t.props.OnPaginationChange != nil {
		t.props.OnPaginationChange(p)
	}
}

// emitOrder expands the visible order to every column so hidden ones keep
// their slot after the moved columns.
func (t *Table) emitOrder(visibleOrder []string) {
	if t.props.OnOrderChange == nil {
		return
	}
	full := make([]string, 0, len(t.columns))
	next := 0
	for _, col := range t.columns {
		if t.isVisible(col.Key()) {
			full = append(full, visibleOrder[next])
			next++
			continue
		}
		full = append(full, col.Key())
	}
	t.props.OnOrderChange(full)
}

func (t *Table) filterControls() []FilterControl {
	descriptors := t.draft.Descriptors()
	out := make([]FilterControl, 0, len(descriptors))
	for _, d := range descriptors {
		ctrl := FilterControl{ID: d.ID, Title: d.Title, Kind: d.Kind, Input: string(d.Kind), Options: d.Options}
		if v, ok := t.draft.Value(d.ID); ok {
			ctrl.Active = true
			ctrl.Value = v.String()
			if d.Kind == FilterMultiSelect {
				ctrl.Values = v.Strings()
			}
		}
		out = append(out, ctrl)
	}
	return out
}

func (t *Table) visibleColumns() []ColumnBinding {
	out := make([]ColumnBinding, 0, len(t.columns))
	for _, col := range t.columns {
		if t.isVisible(col.Key()) {
			out = append(out, col)
		}
	}
	return out
}

func (t *Table) isVisible(key string) bool {
	if t.props.Visibility == nil {
		return true
	}
	return t.props.Visibility[key]
}

func (t *Table) hasColumn(key string) bool {
	for _, col := range t.columns {
		if col.Key() == key {
			return true
		}
	}
	return false
}

// orderBindings places the ordered keys first and appends the rest in their
// original order. Nil and duplicate bindings are dropped.
func orderBindings(columns []ColumnBinding, order []string) []ColumnBinding {
	byKey := make(map[string]ColumnBinding, len(columns))
	keys := make([]string, 0, len(columns))
	for _, col := range columns {
		if col == nil {
			continue
		}
		if _, dup := byKey[col.Key()]; dup {
			continue
		}
		byKey[col.Key()] = col
		keys = append(keys, col.Key())
	}
	out := make([]ColumnBinding, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range order {
		if col, ok := byKey[key]; ok && !seen[key] {
			seen[key] = true
			out = append(out, col)
		}
	}
	for _, key := range keys {
		if !seen[key] {
			out = append(out, byKey[key])
		}
	}
	return out
}
