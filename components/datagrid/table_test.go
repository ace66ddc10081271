package datagrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableBindings() []ColumnBinding {
	return BindColumns([]ColumnDescriptor{
		{ColumnHeader: "agreementNumber", ColumnHeaderDescription: "Agreement #", OrderIndex: 0, IsSelected: true},
		{ColumnHeader: "customerName", ColumnHeaderDescription: "Customer", OrderIndex: 1, IsSelected: true},
		{ColumnHeader: "status", ColumnHeaderDescription: "Status", OrderIndex: 2, IsSelected: true},
	}, nil)
}

func TestTableViewRendersRows(t *testing.T) {
	table := NewTable(TableProps{
		Rows: []Row{
			{"agreementNumber": "A-1", "customerName": "Ada", "status": true},
			{"agreementNumber": "A-2", "customerName": "Linus", "status": false},
		},
		Columns:      tableBindings(),
		Pagination:   PaginationState{PageIndex: 0, PageSize: 2},
		TotalRecords: 5,
		Visibility:   map[string]bool{"agreementNumber": true, "status": true},
	})
	view := table.View()

	require.Len(t, view.Headers, 2)
	assert.Equal(t, "Agreement #", view.Headers[0].Header)
	assert.Equal(t, []string{"A-1", "Yes"}, view.Rows[0].Cells)
	assert.False(t, view.NoResults)
	assert.Equal(t, 3, view.Pager.TotalPages)
	require.Len(t, view.ColumnMenu, 3)
	assert.False(t, view.ColumnMenu[1].Visible)
}

func TestTableViewNoResultsSpansColumns(t *testing.T) {
	view := NewTable(TableProps{Columns: tableBindings()}).View()
	assert.True(t, view.NoResults)
	assert.Equal(t, 3, view.NoResultsColSpan)

	empty := NewTable(TableProps{}).View()
	assert.True(t, empty.NoResults)
	assert.Equal(t, 1, empty.NoResultsColSpan)
	assert.Empty(t, empty.Headers)
	assert.Equal(t, DefaultPageSize, empty.Pager.PageSize)
}

func TestTablePaginationIntents(t *testing.T) {
	var got []PaginationState
	table := NewTable(TableProps{
		Columns:            tableBindings(),
		Pagination:         PaginationState{PageIndex: 1, PageSize: 25},
		TotalRecords:       101,
		OnPaginationChange: func(p PaginationState) { got = append(got, p) },
	})

	table.GoToPage(3)
	table.GoToPage(99)
	table.GoToPage(0)
	table.NextPage()
	table.PrevPage()
	table.SetPageSize(50)
	table.SetPageSize(0)

	assert.Equal(t, []PaginationState{
		{PageIndex: 2, PageSize: 25},
		{PageIndex: 4, PageSize: 25},
		{PageIndex: 0, PageSize: 25},
		{PageIndex: 2, PageSize: 25},
		{PageIndex: 0, PageSize: 25},
		{PageIndex: 0, PageSize: 50},
	}, got)
}

func TestTableFilterIntents(t *testing.T) {
	filters := NewFilterState(sampleFilters())
	filters.SetValue("status", TextValue("true"))

	var navs []Navigation
	table := NewTable(TableProps{
		Columns:         tableBindings(),
		Pagination:      PaginationState{PageIndex: 3, PageSize: 10},
		Filters:         filters,
		OnFiltersChange: func(n Navigation) { navs = append(navs, n) },
	})

	table.SetFilter("search", TextValue("ada"))
	table.ClearFilter("status")
	table.ClearAllFilters()

	require.Len(t, navs, 3)
	assert.Equal(t, PaginationState{PageIndex: 0, PageSize: 10}, navs[0].Page)
	assert.Equal(t, map[string]any{"search": "ada", "status": "true"}, navs[0].Filters)
	assert.Equal(t, "false", navs[1].Filters["status"])
	assert.Empty(t, navs[2].Filters)
	assert.Equal(t, PaginationState{PageIndex: 0, PageSize: 10}, navs[2].Page)

	_, stillSet := filters.Value("status")
	assert.True(t, stillSet, "props filters must not be mutated")
}

func TestTableViewFilterControls(t *testing.T) {
	filters := NewFilterState(sampleFilters())
	filters.SetValue("branch", ListValue("north", "south"))
	view := NewTable(TableProps{Filters: filters}).View()

	require.Len(t, view.Filters, 5)
	assert.True(t, view.HasActiveFilters)
	assert.Equal(t, []string{"north", "south"}, view.Filters[2].Values)
	assert.False(t, view.Filters[0].Active)
}

func TestTableVisibilityIntent(t *testing.T) {
	var got []map[string]bool
	table := NewTable(TableProps{
		Columns:            tableBindings(),
		Visibility:         map[string]bool{"agreementNumber": true, "customerName": true, "status": true},
		OnVisibilityChange: func(v map[string]bool) { got = append(got, v) },
	})

	table.SetColumnVisible("status", false)
	table.SetColumnVisible("status", true)
	table.SetColumnVisible("unknown", false)

	require.Len(t, got, 1)
	assert.Equal(t, map[string]bool{"agreementNumber": true, "customerName": true, "status": false}, got[0])
}

func TestTableDragEmitsFullOrder(t *testing.T) {
	var orders [][]string
	table := NewTable(TableProps{
		Columns:       tableBindings(),
		Visibility:    map[string]bool{"agreementNumber": true, "status": true},
		Order:         []string{"status", "customerName"},
		Locked:        []string{"agreementNumber"},
		OnOrderChange: func(o []string) { orders = append(orders, o) },
	})

	view := table.View()
	assert.Equal(t, "status", view.Headers[0].Key)
	assert.False(t, view.Headers[1].Draggable)

	require.Error(t, table.DragStart("agreementNumber"))
	require.NoError(t, table.DragStart("status"))
	assert.Equal(t, DragDragging, table.DragState())
	assert.False(t, table.DragDrop("agreementNumber"), "locked target")
	assert.Empty(t, orders)

	table2 := NewTable(TableProps{
		Columns:       tableBindings(),
		Visibility:    map[string]bool{"agreementNumber": true, "status": true},
		OnOrderChange: func(o []string) { orders = append(orders, o) },
	})
	require.NoError(t, table2.DragStart("agreementNumber"))
	require.True(t, table2.DragDrop("status"))
	assert.Equal(t, [][]string{{"status", "customerName", "agreementNumber"}}, orders)

	require.NoError(t, table2.DragStart("status"))
	table2.DragCancel()
	assert.Len(t, orders, 1)
}

func TestTableGridUsesRowSetIdentity(t *testing.T) {
	set := NewRowSet([]Row{{"agreementNumber": "A-1"}})
	table := NewTable(TableProps{Rows: set.Rows, RowSetID: set.ID, Columns: tableBindings(), Loading: true})
	grid := table.Grid()

	assert.Equal(t, set.ID, grid.RowSet().ID)
	frame := grid.Render(Viewport{Width: 2000, Height: 400})
	assert.True(t, frame.Pending)
	assert.Len(t, frame.Headers, 3)
}
