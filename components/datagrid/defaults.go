package datagrid

// Module keys of the rental list views.
const (
	ModuleAgreements   = "agreements"
	ModuleReservations = "reservations"
	ModuleCustomers    = "customers"
	ModuleVehicles     = "vehicles"
	ModuleFleetReport  = "fleet-report"
)

// Shared filter ids.
const (
	FilterIDSearch        = "search"
	FilterIDStatus        = "status"
	FilterIDSortBy        = "sortBy"
	FilterIDSortDirection = "sortDirection"
)

// DefaultSortDirection is the canonical sort default of every module.
const DefaultSortDirection = "ASC"

func defaultValue(v string) *string { return &v }

func columnSet(entries ...[2]string) []ColumnDescriptor {
	out := make([]ColumnDescriptor, len(entries))
	for i, e := range entries {
		out[i] = ColumnDescriptor{ColumnHeader: e[0], ColumnHeaderDescription: e[1], OrderIndex: i, IsSelected: true}
	}
	return out
}

func hide(cols []ColumnDescriptor, headers ...string) []ColumnDescriptor {
	for _, h := range headers {
		for i := range cols {
			if cols[i].ColumnHeader == h {
				cols[i].IsSelected = false
			}
		}
	}
	return cols
}

func searchFilter() FilterDescriptor {
	return FilterDescriptor{ID: FilterIDSearch, Title: "Search", Kind: FilterText}
}

func sortFilters(defaultSortBy string) []FilterDescriptor {
	return []FilterDescriptor{
		{ID: FilterIDSortBy, Kind: FilterHidden, Default: defaultValue(defaultSortBy)},
		{ID: FilterIDSortDirection, Kind: FilterHidden, Default: defaultValue(DefaultSortDirection)},
	}
}

func activeFilter(title string) FilterDescriptor {
	return FilterDescriptor{
		ID:      FilterIDStatus,
		Title:   title,
		Kind:    FilterSelect,
		Default: defaultValue("true"),
		Options: []FilterOption{
			{Value: "true", Label: "Active"},
			{Value: "false", Label: "Inactive"},
		},
	}
}

// DefaultModules returns the built-in list modules.
func DefaultModules() []ModuleDefinition {
	return []ModuleDefinition{
		{
			Key:   ModuleAgreements,
			Title: "Agreements",
			Columns: hide(columnSet(
				[2]string{"agreementNumber", "Agreement #"},
				[2]string{"customerName", "Customer"},
				[2]string{"vehicleNo", "Vehicle"},
				[2]string{"pickupDate", "Pickup"},
				[2]string{"returnDate", "Return"},
				[2]string{"status", "Status"},
				[2]string{"totalAmount", "Total"},
				[2]string{"branch", "Branch"},
			), "branch"),
			Filters: append([]FilterDescriptor{
				searchFilter(),
				{ID: "agreementStatus", Title: "Status", Kind: FilterMultiSelect, Options: []FilterOption{
					{Value: "open", Label: "Open"},
					{Value: "closed", Label: "Closed"},
					{Value: "void", Label: "Void"},
				}},
				{ID: "pickupDate", Title: "Pickup date", Kind: FilterDate},
			}, sortFilters("agreementNumber")...),
		},
		{
			Key:   ModuleReservations,
			Title: "Reservations",
			Columns: columnSet(
				[2]string{"reservationNumber", "Reservation #"},
				[2]string{"customerName", "Customer"},
				[2]string{"vehicleType", "Vehicle type"},
				[2]string{"pickupDate", "Pickup"},
				[2]string{"returnDate", "Return"},
				[2]string{"status", "Status"},
			),
			Filters: append([]FilterDescriptor{
				searchFilter(),
				{ID: "reservationStatus", Title: "Status", Kind: FilterSelect, Options: []FilterOption{
					{Value: "open", Label: "Open"},
					{Value: "cancelled", Label: "Cancelled"},
					{Value: "noShow", Label: "No show"},
				}},
				{ID: "pickupDate", Title: "Pickup date", Kind: FilterDate},
			}, sortFilters("pickupDate")...),
		},
		{
			Key:   ModuleCustomers,
			Title: "Customers",
			Columns: hide(columnSet(
				[2]string{"customerId", "Customer #"},
				[2]string{"firstName", "First name"},
				[2]string{"lastName", "Last name"},
				[2]string{"email", "Email"},
				[2]string{"phone", "Phone"},
				[2]string{"licenseNumber", "License"},
			), "licenseNumber"),
			Filters: append([]FilterDescriptor{
				searchFilter(),
				activeFilter("Active"),
			}, sortFilters("lastName")...),
		},
		{
			Key:   ModuleVehicles,
			Title: "Vehicles",
			Columns: columnSet(
				[2]string{"vehicleNo", "Vehicle #"},
				[2]string{"licensePlate", "Plate"},
				[2]string{"make", "Make"},
				[2]string{"model", "Model"},
				[2]string{"year", "Year"},
				[2]string{"odometer", "Odometer"},
				[2]string{"branch", "Branch"},
			),
			Filters: append([]FilterDescriptor{
				searchFilter(),
				activeFilter("In fleet"),
				{ID: "branch", Title: "Branch", Kind: FilterMultiSelect, Options: []FilterOption{
					{Value: "north", Label: "North"},
					{Value: "south", Label: "South"},
					{Value: "airport", Label: "Airport"},
				}},
			}, sortFilters("vehicleNo")...),
		},
		{
			Key:             ModuleFleetReport,
			Title:           "Fleet utilization report",
			Variant:         VariantReport,
			DefaultPageSize: 100,
			Columns: columnSet(
				[2]string{"vehicleNo", "Vehicle #"},
				[2]string{"licensePlate", "Plate"},
				[2]string{"branch", "Branch"},
				[2]string{"daysRented", "Days rented"},
				[2]string{"utilization", "Utilization %"},
				[2]string{"revenue", "Revenue"},
			),
			Filters: []FilterDescriptor{
				{ID: "fromDate", Title: "From", Kind: FilterDate},
				{ID: "toDate", Title: "To", Kind: FilterDate},
				{ID: "branch", Title: "Branch", Kind: FilterMultiSelect, Options: []FilterOption{
					{Value: "north", Label: "North"},
					{Value: "south", Label: "South"},
					{Value: "airport", Label: "Airport"},
				}},
			},
		},
	}
}
