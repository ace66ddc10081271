package datagrid

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Reserved query parameter names.
const (
	QueryPage = "page"
	QuerySize = "size"
)

// Navigation is the URL-bound intent the table hands to its page: the next
// pagination and filter values. The page turns it into a navigation call.
type Navigation struct {
	Page    PaginationState `json:"page"`
	Filters map[string]any  `json:"filters"`
}

// Query encodes the navigation as search parameters with a 1-based page.
// Multi-select values are written as a delimited string.
func (n Navigation) Query() url.Values {
	out := url.Values{}
	out.Set(QueryPage, strconv.Itoa(n.Page.PageNumber()))
	if n.Page.PageSize > 0 {
		out.Set(QuerySize, strconv.Itoa(n.Page.PageSize))
	}
	keys := make([]string, 0, len(n.Filters))
	for k := range n.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == QueryPage || k == QuerySize {
			continue
		}
		switch v := n.Filters[k].(type) {
		case nil:
		case []string:
			if len(v) > 0 {
				out.Set(k, strings.Join(v, multiValueSeparator))
			}
		case string:
			if v != "" {
				out.Set(k, v)
			}
		default:
			out.Set(k, fmt.Sprint(v))
		}
	}
	return out
}

// URL renders the navigation against a base path.
func (n Navigation) URL(basePath string) string {
	return basePath + "?" + n.Query().Encode()
}

// SearchParams is the table's view of the current URL: page, size and filters.
type SearchParams struct {
	Pagination PaginationState
	Filters    *FilterState
}

// ParseSearchParams reconciles URL values against the declared filters.
func ParseSearchParams(query url.Values, filters []FilterDescriptor, defaultSize int) SearchParams {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	return SearchParams{
		Pagination: PaginationFromQuery(query, defaultSize),
		Filters:    FilterStateFromQuery(filters, query),
	}
}

// IsFirstLoad reports whether query was not produced by a table navigation.
// Every navigation carries the page key, so filter defaults only seed loads
// without it; after a global clear the defaults stay cleared.
func IsFirstLoad(query url.Values) bool {
	return !query.Has(QueryPage)
}

// QueryFromLookup rebuilds URL values for the reserved keys and declared
// filters from a single-value lookup such as a router's query accessor.
func QueryFromLookup(filters []FilterDescriptor, lookup func(string) string) url.Values {
	out := url.Values{}
	keys := []string{QueryPage, QuerySize}
	for _, f := range filters {
		keys = append(keys, f.ID)
	}
	for _, k := range keys {
		if v := lookup(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}
