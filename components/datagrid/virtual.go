package datagrid

import "sort"

// VirtualItem is one materialized row or column of a virtual window.
type VirtualItem struct {
	Index int `json:"index"`
	Start int `json:"start"`
	Size  int `json:"size"`
	End   int `json:"end"`
}

// Virtualizer lays out count items along one axis and answers which of them
// intersect a viewport. Sizes come from an estimator evaluated once at build.
type Virtualizer struct {
	offsets  []int
	overscan int
}

// NewVirtualizer measures count items. Negative estimates are treated as 0 and
// a negative overscan as none.
func NewVirtualizer(count int, estimate func(index int) int, overscan int) *Virtualizer {
	if count < 0 {
		count = 0
	}
	if overscan < 0 {
		overscan = 0
	}
	offsets := make([]int, count+1)
	for i := 0; i < count; i++ {
		size := 0
		if estimate != nil {
			size = max(estimate(i), 0)
		}
		offsets[i+1] = offsets[i] + size
	}
	return &Virtualizer{offsets: offsets, overscan: overscan}
}

// Count returns the number of items laid out.
func (v *Virtualizer) Count() int { return len(v.offsets) - 1 }

// TotalSize is the scrollable extent of all items.
func (v *Virtualizer) TotalSize() int { return v.offsets[len(v.offsets)-1] }

// Item returns the layout of index.
func (v *Virtualizer) Item(index int) VirtualItem {
	start, end := v.offsets[index], v.offsets[index+1]
	return VirtualItem{Index: index, Start: start, Size: end - start, End: end}
}

// Window returns the items intersecting [scrollOffset, scrollOffset+viewport)
// plus overscan items on both sides.
func (v *Virtualizer) Window(scrollOffset, viewport int) []VirtualItem {
	count := v.Count()
	if count == 0 || viewport <= 0 {
		return nil
	}
	scrollOffset = min(max(scrollOffset, 0), v.TotalSize())
	limit := scrollOffset + viewport

	// first item whose end lies past the offset
	first := sort.Search(count, func(i int) bool { return v.offsets[i+1] > scrollOffset })
	if first == count {
		first = count - 1
	}
	last := first
	for last+1 < count && v.offsets[last+1] < limit {
		last++
	}

	first = max(first-v.overscan, 0)
	last = min(last+v.overscan, count-1)
	out := make([]VirtualItem, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, v.Item(i))
	}
	return out
}
