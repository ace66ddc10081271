package datagrid

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageSize is used when neither the URL nor the viewer provides one.
const DefaultPageSize = 25

// PaginationState is the internal, 0-based page position.
type PaginationState struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// PageNumber returns the external 1-based page number.
func (p PaginationState) PageNumber() int {
	if p.PageIndex < 0 {
		return 1
	}
	return p.PageIndex + 1
}

// ToInternal converts an external 1-based page number. Zero and negative
// numbers clamp to the first page, as does any page when size is not positive.
func ToInternal(pageNumber, size int) PaginationState {
	index := 0
	if pageNumber > 0 && size > 0 {
		index = pageNumber - 1
	}
	return PaginationState{PageIndex: index, PageSize: size}
}

// ComputeTotalPages returns ceil(totalRecords/pageSize), or 0 when there are no
// records or the page size is not positive.
func ComputeTotalPages(totalRecords, pageSize int) int {
	if totalRecords <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalRecords + pageSize - 1) / pageSize
}

// PaginationFromQuery reads "page" and "size" from URL values. Malformed page
// numbers land on the first page; a missing or invalid size uses defaultSize.
func PaginationFromQuery(query url.Values, defaultSize int) PaginationState {
	page := parseInt(query.Get(QueryPage))
	size := parseInt(query.Get(QuerySize))
	if size <= 0 {
		size = defaultSize
	}
	return ToInternal(page, size)
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// Pager summarizes the pagination controls for one render.
type Pager struct {
	PageNumber   int  `json:"pageNumber"`
	PageSize     int  `json:"pageSize"`
	TotalPages   int  `json:"totalPages"`
	TotalRecords int  `json:"totalRecords"`
	HasPrev      bool `json:"hasPrev"`
	HasNext      bool `json:"hasNext"`
}

// NewPager derives the controls from the current state and record count.
func NewPager(p PaginationState, totalRecords int) Pager {
	if p.PageIndex < 0 {
		p.PageIndex = 0
	}
	total := ComputeTotalPages(totalRecords, p.PageSize)
	return Pager{
		PageNumber:   p.PageNumber(),
		PageSize:     p.PageSize,
		TotalPages:   total,
		TotalRecords: max(totalRecords, 0),
		HasPrev:      p.PageIndex > 0,
		HasNext:      p.PageIndex+1 < total,
	}
}

// clampPage keeps a requested 1-based page number inside [1, totalPages]. With
// no known pages the request is passed through the bridge unchanged.
func clampPage(pageNumber, totalPages int) int {
	if totalPages > 0 && pageNumber > totalPages {
		return totalPages
	}
	return pageNumber
}
