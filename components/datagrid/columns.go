package datagrid

import "sort"

// SortColumnsByOrderIndex returns a copy of list ordered by OrderIndex.
// The sort is stable so ties keep their original relative order.
func SortColumnsByOrderIndex(list []ColumnDescriptor) []ColumnDescriptor {
	out := cloneColumns(list)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}

// RenumberColumns stable-sorts list by OrderIndex and rewrites the indices
// densely from 0, so ties left by a partial order change become unique.
func RenumberColumns(list []ColumnDescriptor) []ColumnDescriptor {
	out := SortColumnsByOrderIndex(list)
	for i := range out {
		out[i].OrderIndex = i
	}
	return out
}

// ApplyOrderChange re-maps OrderIndex of every descriptor named in accessorKeys
// to its position in that list. Descriptors not present keep their index. Keys
// that do not match a descriptor, and repeated keys, are dropped before
// positions are computed. The input is never modified.
func ApplyOrderChange(descriptors []ColumnDescriptor, accessorKeys []string) []ColumnDescriptor {
	out := cloneColumns(descriptors)
	known := make(map[string]struct{}, len(out))
	for _, d := range out {
		known[d.ColumnHeader] = struct{}{}
	}
	positions := make(map[string]int, len(accessorKeys))
	for _, key := range accessorKeys {
		if _, ok := known[key]; !ok {
			continue
		}
		if _, seen := positions[key]; seen {
			continue
		}
		positions[key] = len(positions)
	}
	for i := range out {
		if pos, ok := positions[out[i].ColumnHeader]; ok {
			out[i].OrderIndex = pos
		}
	}
	return out
}

// ApplyVisibilityChange sets IsSelected from visibility; headers missing from
// the map become hidden. OrderIndex is left untouched.
func ApplyVisibilityChange(descriptors []ColumnDescriptor, visibility map[string]bool) []ColumnDescriptor {
	out := cloneColumns(descriptors)
	for i := range out {
		out[i].IsSelected = visibility[out[i].ColumnHeader]
	}
	return out
}

// VisibilityMap reads the current visibility flags keyed by column header.
func VisibilityMap(descriptors []ColumnDescriptor) map[string]bool {
	out := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		out[d.ColumnHeader] = d.IsSelected
	}
	return out
}

// ColumnOrder returns the column headers in display order.
func ColumnOrder(descriptors []ColumnDescriptor) []string {
	sorted := SortColumnsByOrderIndex(descriptors)
	keys := make([]string, len(sorted))
	for i, d := range sorted {
		keys[i] = d.ColumnHeader
	}
	return keys
}

// VisibleColumns returns the selected descriptors in display order.
func VisibleColumns(descriptors []ColumnDescriptor) []ColumnDescriptor {
	sorted := SortColumnsByOrderIndex(descriptors)
	out := sorted[:0]
	for _, d := range sorted {
		if d.IsSelected {
			out = append(out, d)
		}
	}
	return out
}

func cloneColumns(list []ColumnDescriptor) []ColumnDescriptor {
	if list == nil {
		return nil
	}
	out := make([]ColumnDescriptor, len(list))
	copy(out, list)
	return out
}

func withModuleKey(descriptors []ColumnDescriptor, moduleKey string) []ColumnDescriptor {
	out := cloneColumns(descriptors)
	for i := range out {
		if out[i].ModuleKey == "" {
			out[i].ModuleKey = moduleKey
		}
	}
	return out
}
