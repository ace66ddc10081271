package datagrid

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for date filters in URLs.
const DateLayout = "2006-01-02"

// multiValueSeparator joins multi-select values for legacy query consumers.
const multiValueSeparator = ","

// FilterKind enumerates the faceted filter controls.
type FilterKind string

const (
	FilterText        FilterKind = "text"
	FilterSelect      FilterKind = "select"
	FilterMultiSelect FilterKind = "multi-select"
	FilterDate        FilterKind = "date"
	FilterHidden      FilterKind = "hidden"
)

// FilterOption is one value/label pair of a select filter.
type FilterOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FilterDescriptor declares one facet of search.
type FilterDescriptor struct {
	ID      string         `json:"id" yaml:"id"`
	Title   string         `json:"title" yaml:"title"`
	Kind    FilterKind     `json:"kind" yaml:"kind"`
	Options []FilterOption `json:"options,omitempty" yaml:"options,omitempty"`
	// Default is restored when the filter is cleared. Nil means the filter
	// clears to absent.
	Default *string `json:"default,omitempty" yaml:"default,omitempty"`
}

// usesDefault reports whether clearing this filter restores Default.
func (d FilterDescriptor) usesDefault() bool {
	if d.Default == nil {
		return false
	}
	switch d.Kind {
	case FilterSelect, FilterMultiSelect, FilterHidden:
		return true
	default:
		return false
	}
}

func (d FilterDescriptor) defaultValue() FilterValue {
	return parseFilterValue(d.Kind, []string{*d.Default})
}

func (d FilterDescriptor) allows(value string) bool {
	if len(d.Options) == 0 {
		return true
	}
	for _, opt := range d.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

type valueKind int

const (
	valueNone valueKind = iota
	valueText
	valueList
	valueDate
)

// FilterValue holds a string, a string list or a calendar date.
type FilterValue struct {
	kind valueKind
	text string
	list []string
	date time.Time
}

// TextValue wraps a single string value.
func TextValue(s string) *FilterValue {
	return &FilterValue{kind: valueText, text: s}
}

// ListValue wraps a multi-select value.
func ListValue(values ...string) *FilterValue {
	return &FilterValue{kind: valueList, list: append([]string(nil), values...)}
}

// DateValue wraps a date; the time of day is discarded.
func DateValue(t time.Time) *FilterValue {
	y, m, d := t.Date()
	return &FilterValue{kind: valueDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the value carries nothing worth storing.
func (v FilterValue) IsEmpty() bool {
	switch v.kind {
	case valueText:
		return strings.TrimSpace(v.text) == ""
	case valueList:
		return len(v.list) == 0
	case valueDate:
		return v.date.IsZero()
	default:
		return true
	}
}

// String returns the URL form: text as is, lists joined, dates as calendar dates.
func (v FilterValue) String() string {
	switch v.kind {
	case valueText:
		return v.text
	case valueList:
		return strings.Join(v.list, multiValueSeparator)
	case valueDate:
		return v.date.Format(DateLayout)
	default:
		return ""
	}
}

// Strings returns the value as a list.
func (v FilterValue) Strings() []string {
	switch v.kind {
	case valueList:
		return append([]string(nil), v.list...)
	case valueNone:
		return nil
	default:
		return []string{v.String()}
	}
}

// Date returns the calendar date for date values.
func (v FilterValue) Date() (time.Time, bool) {
	return v.date, v.kind == valueDate
}

func (v FilterValue) queryValue() any {
	if v.kind == valueList {
		return v.Strings()
	}
	return v.String()
}

// FilterState maps filter id to its current value. It is transient UI state
// reconstructed from the URL; the page stays the owner of the committed value.
type FilterState struct {
	descriptors map[string]FilterDescriptor
	order       []string
	values      map[string]FilterValue
}

// NewFilterState builds an empty state for the declared filters.
func NewFilterState(descriptors []FilterDescriptor) *FilterState {
	s := &FilterState{
		descriptors: make(map[string]FilterDescriptor, len(descriptors)),
		values:      map[string]FilterValue{},
	}
	for _, d := range descriptors {
		if d.ID == "" {
			continue
		}
		if _, dup := s.descriptors[d.ID]; !dup {
			s.order = append(s.order, d.ID)
		}
		s.descriptors[d.ID] = d
	}
	return s
}

// FilterStateFromQuery reconstructs the state from URL search parameters. Only
// declared filters are read; select values outside the option list are dropped.
func FilterStateFromQuery(descriptors []FilterDescriptor, query url.Values) *FilterState {
	s := NewFilterState(descriptors)
	for _, id := range s.order {
		raw, ok := query[id]
		if !ok {
			continue
		}
		desc := s.descriptors[id]
		value := parseFilterValue(desc.Kind, raw)
		if value.kind == valueList || desc.Kind == FilterSelect {
			value = s.keepAllowed(desc, value)
		}
		s.SetValue(id, &value)
	}
	return s
}

// Descriptors returns the declared filters in declaration order.
func (s *FilterState) Descriptors() []FilterDescriptor {
	out := make([]FilterDescriptor, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.descriptors[id])
	}
	return out
}

// Descriptor returns the declaration for id.
func (s *FilterState) Descriptor(id string) (FilterDescriptor, bool) {
	d, ok := s.descriptors[id]
	return d, ok
}

// Value returns the stored value for id.
func (s *FilterState) Value(id string) (FilterValue, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Len returns the number of stored entries.
func (s *FilterState) Len() int {
	return len(s.values)
}

// SetValue upserts a value. A nil or empty value removes the entry, unless the
// filter declares a default it must revert to. Undeclared ids are treated as
// free text.
func (s *FilterState) SetValue(id string, value *FilterValue) {
	if id == "" {
		return
	}
	if value == nil || value.IsEmpty() {
		if desc, ok := s.descriptors[id]; ok && desc.usesDefault() {
			if def := desc.defaultValue(); !def.IsEmpty() {
				s.values[id] = def
				return
			}
		}
		delete(s.values, id)
		return
	}
	stored := *value
	if stored.kind == valueText {
		stored.text = strings.TrimSpace(stored.text)
	}
	if stored.kind == valueList {
		stored.list = append([]string(nil), stored.list...)
	}
	s.values[id] = stored
}

// Clear applies the per-filter clear: default when declared, absent otherwise.
func (s *FilterState) Clear(id string) {
	s.SetValue(id, nil)
}

// ClearAll discards every entry, ignoring per-filter defaults, and returns the
// pagination to use next: first page, current size.
func (s *FilterState) ClearAll(current PaginationState) PaginationState {
	s.values = map[string]FilterValue{}
	return PaginationState{PageIndex: 0, PageSize: current.PageSize}
}

// ApplyDefaults seeds every absent filter that declares a default, so the
// first load sends the same values a clear would restore.
func (s *FilterState) ApplyDefaults() {
	for _, id := range s.order {
		if _, ok := s.values[id]; ok {
			continue
		}
		s.SetValue(id, nil)
	}
}

// ActiveIDs lists ids with a stored value, declared ones first in declaration
// order, then undeclared ones sorted.
func (s *FilterState) ActiveIDs() []string {
	out := make([]string, 0, len(s.values))
	for _, id := range s.order {
		if _, ok := s.values[id]; ok {
			out = append(out, id)
		}
	}
	var extra []string
	for id := range s.values {
		if _, declared := s.descriptors[id]; !declared {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// ToQueryObject serializes the non-empty entries. Multi-select values are
// slices, everything else a string; dates use DateLayout.
func (s *FilterState) ToQueryObject() map[string]any {
	out := make(map[string]any, len(s.values))
	for id, v := range s.values {
		out[id] = v.queryValue()
	}
	return out
}

// Encode writes the entries as URL values with multi-select values delimited.
func (s *FilterState) Encode() url.Values {
	out := url.Values{}
	for _, id := range s.ActiveIDs() {
		out.Set(id, s.values[id].String())
	}
	return out
}

// SearchNavigation is the intent for "search with filters": always page one.
func (s *FilterState) SearchNavigation(pageSize int) Navigation {
	return Navigation{
		Page:    PaginationState{PageIndex: 0, PageSize: pageSize},
		Filters: s.ToQueryObject(),
	}
}

// Clone returns an independent copy.
func (s *FilterState) Clone() *FilterState {
	out := &FilterState{
		descriptors: s.descriptors,
		order:       s.order,
		values:      make(map[string]FilterValue, len(s.values)),
	}
	for id, v := range s.values {
		if v.kind == valueList {
			v.list = append([]string(nil), v.list...)
		}
		out.values[id] = v
	}
	return out
}

func (s *FilterState) keepAllowed(desc FilterDescriptor, value FilterValue) FilterValue {
	if value.kind == valueList {
		kept := value.list[:0:0]
		for _, item := range value.list {
			if desc.allows(item) {
				kept = append(kept, item)
			}
		}
		value.list = kept
		return value
	}
	if !desc.allows(value.text) {
		return FilterValue{}
	}
	return value
}

func parseFilterValue(kind FilterKind, raw []string) FilterValue {
	switch kind {
	case FilterMultiSelect:
		var list []string
		for _, item := range raw {
			for _, part := range strings.Split(item, multiValueSeparator) {
				if part = strings.TrimSpace(part); part != "" {
					list = append(list, part)
				}
			}
		}
		return FilterValue{kind: valueList, list: list}
	case FilterDate:
		if len(raw) == 0 {
			return FilterValue{}
		}
		if t, ok := parseDate(raw[0]); ok {
			return *DateValue(t)
		}
		return FilterValue{}
	default:
		if len(raw) == 0 {
			return FilterValue{}
		}
		return FilterValue{kind: valueText, text: raw[0]}
	}
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
