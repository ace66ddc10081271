package datagrid

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sampleFilters() []FilterDescriptor {
	return []FilterDescriptor{
		{ID: "search", Title: "Search", Kind: FilterText},
		{ID: "status", Title: "Status", Kind: FilterSelect, Default: strPtr("false"), Options: []FilterOption{
			{Value: "true", Label: "Open"},
			{Value: "false", Label: "Closed"},
		}},
		{ID: "branch", Title: "Branch", Kind: FilterMultiSelect, Options: []FilterOption{
			{Value: "north", Label: "North"},
			{Value: "south", Label: "South"},
		}},
		{ID: "pickupDate", Title: "Pickup", Kind: FilterDate},
		{ID: "sortDirection", Kind: FilterHidden, Default: strPtr("ASC")},
	}
}

func TestFilterStateClearWhitespaceTextRemovesEntry(t *testing.T) {
	state := NewFilterState(sampleFilters())
	state.SetValue("search", TextValue("  "))

	_, ok := state.Value("search")
	assert.False(t, ok)
	assert.Equal(t, 0, state.Len())
}

func TestFilterStateClearSelectRestoresDefault(t *testing.T) {
	state := NewFilterState(sampleFilters())
	state.SetValue("status", TextValue("true"))
	state.Clear("status")

	v, ok := state.Value("status")
	require.True(t, ok)
	assert.Equal(t, "false", v.String())
}

func TestFilterStateTrimsText(t *testing.T) {
	state := NewFilterState(sampleFilters())
	state.SetValue("search", TextValue("  smith "))

	assert.Equal(t, map[string]any{"search": "smith"}, state.ToQueryObject())
}

func TestFilterStateFromQuery(t *testing.T) {
	query := url.Values{
		"search":     {"smith"},
		"status":     {"bogus"},
		"branch":     {"north,west", "south"},
		"pickupDate": {"2024-03-05T15:04:05Z"},
		"unknown":    {"ignored"},
	}
	state := FilterStateFromQuery(sampleFilters(), query)

	obj := state.ToQueryObject()
	assert.Equal(t, "smith", obj["search"])
	assert.Equal(t, "false", obj["status"], "disallowed option clears to default")
	assert.Equal(t, []string{"north", "south"}, obj["branch"])
	assert.Equal(t, "2024-03-05", obj["pickupDate"])
	assert.NotContains(t, obj, "unknown")
	assert.NotContains(t, obj, "sortDirection", "absent keys are not reconstructed")
}

func TestFilterStateDatesSerializeAsCalendarDates(t *testing.T) {
	state := NewFilterState(sampleFilters())
	state.SetValue("pickupDate", DateValue(time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)))
	morning := state.Encode()

	state.SetValue("pickupDate", DateValue(time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, morning, state.Encode())
	assert.Equal(t, "2024-03-05", state.Encode().Get("pickupDate"))
}

func TestFilterStateEncodeJoinsMultiSelect(t *testing.T) {
	state := NewFilterState(sampleFilters())
	state.SetValue("branch", ListValue("north", "south"))

	assert.Equal(t, "north,south", state.Encode().Get("branch"))
	assert.Equal(t, []string{"north", "south"}, state.ToQueryObject()["branch"])
}

func TestFilterStateClearAllIgnoresDefaults(t *testing.T) {
	state := NewFilterState(sampleFilters())
	state.SetValue("status", TextValue("true"))
	state.SetValue("search", TextValue("smith"))

	next := state.ClearAll(PaginationState{PageIndex: 4, PageSize: 50})

	assert.Equal(t, PaginationState{PageIndex: 0, PageSize: 50}, next)
	assert.Equal(t, 0, state.Len())
	assert.Empty(t, state.ToQueryObject())
}

func TestFilterStateSearchNavigationStartsAtFirstPage(t *testing.T) {
	state := NewFilterState(sampleFilters())
	state.SetValue("search", TextValue("smith"))

	nav := state.SearchNavigation(25)
	assert.Equal(t, 0, nav.Page.PageIndex)
	q := nav.Query()
	assert.Equal(t, "1", q.Get(QueryPage))
	assert.Equal(t, "25", q.Get(QuerySize))
	assert.Equal(t, "smith", q.Get("search"))
}

func TestFilterStateCloneIsIndependent(t *testing.T) {
	state := NewFilterState(sampleFilters())
	state.SetValue("branch", ListValue("north"))
	clone := state.Clone()
	clone.SetValue("branch", ListValue("south"))

	v, _ := state.Value("branch")
	if got := v.Strings(); len(got) != 1 || got[0] != "north" {
		t.Fatalf("expected original untouched, got %v", got)
	}
}

func TestFilterStateActiveIDsOrder(t *testing.T) {
	state := NewFilterState(sampleFilters())
	state.SetValue("zeta", TextValue("x"))
	state.SetValue("pickupDate", DateValue(time.Now()))
	state.SetValue("search", TextValue("a"))

	assert.Equal(t, []string{"search", "pickupDate", "zeta"}, state.ActiveIDs())
}
