package datagrid

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// FilterMatcher decides whether a row passes one filter value.
type FilterMatcher func(row Row, value any) bool

// StaticRowSource serves rows from memory, applying the module filters, the
// sortBy/sortDirection pair and pagination the way the REST search endpoints do.
type StaticRowSource struct {
	Rows    []Row
	Filters []FilterDescriptor
	// SearchFields limits the free text search filter; empty searches every field.
	SearchFields []string
	Matchers     map[string]FilterMatcher
}

var _ RowSource = (*StaticRowSource)(nil)

// FetchRows satisfies RowSource.
func (s *StaticRowSource) FetchRows(ctx context.Context, query RowQuery) (RowPage, error) {
	if err := ctx.Err(); err != nil {
		return RowPage{}, err
	}
	kinds := make(map[string]FilterKind, len(s.Filters))
	for _, f := range s.Filters {
		kinds[f.ID] = f.Kind
	}
	matched := make([]Row, 0, len(s.Rows))
	for _, row := range s.Rows {
		if s.matches(row, query.Filters, kinds) {
			matched = append(matched, row)
		}
	}
	sortRows(matched, query.Filters)

	total := len(matched)
	size := query.Page.PageSize
	if size <= 0 {
		return RowPage{Rows: []Row{}, TotalRecords: total}, nil
	}
	start := max(query.Page.PageIndex, 0) * size
	if start >= total {
		return RowPage{Rows: []Row{}, TotalRecords: total}, nil
	}
	end := min(start+size, total)
	return RowPage{Rows: append([]Row(nil), matched[start:end]...), TotalRecords: total}, nil
}

func (s *StaticRowSource) matches(row Row, filters map[string]any, kinds map[string]FilterKind) bool {
	for id, value := range filters {
		if id == FilterIDSortBy || id == FilterIDSortDirection {
			continue
		}
		if m, ok := s.Matchers[id]; ok && m != nil {
			if !m(row, value) {
				return false
			}
			continue
		}
		if id == FilterIDSearch {
			if !s.search(row, fmt.Sprint(value)) {
				return false
			}
			continue
		}
		if !matchValue(row[id], value, kinds[id]) {
			return false
		}
	}
	return true
}

func (s *StaticRowSource) search(row Row, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	fields := s.SearchFields
	if len(fields) == 0 {
		for k := range row {
			fields = append(fields, k)
		}
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(fmt.Sprint(row[f])), term) {
			return true
		}
	}
	return false
}

func matchValue(field, value any, kind FilterKind) bool {
	switch v := value.(type) {
	case []string:
		if len(v) == 0 {
			return true
		}
		got := fmt.Sprint(field)
		for _, want := range v {
			if got == want {
				return true
			}
		}
		return false
	case string:
		switch kind {
		case FilterDate:
			want, ok := parseDate(v)
			if !ok {
				return true
			}
			got, ok := fieldDate(field)
			return ok && got.Format(DateLayout) == want.Format(DateLayout)
		case FilterText:
			return strings.Contains(strings.ToLower(fmt.Sprint(field)), strings.ToLower(v))
		default:
			return fmt.Sprint(field) == v
		}
	default:
		return fmt.Sprint(field) == fmt.Sprint(v)
	}
}

func fieldDate(field any) (time.Time, bool) {
	switch v := field.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		return parseDate(v)
	default:
		return time.Time{}, false
	}
}

func sortRows(rows []Row, filters map[string]any) {
	by, _ := filters[FilterIDSortBy].(string)
	if by == "" {
		return
	}
	dir, _ := filters[FilterIDSortDirection].(string)
	desc := strings.EqualFold(dir, "DESC")
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][by], rows[j][by]
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		if desc {
			return compareValues(b, a) < 0
		}
		return compareValues(a, b) < 0
	})
}
