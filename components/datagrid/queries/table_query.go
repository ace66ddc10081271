package queries

import (
	"context"
	"net/url"

	gocommand "github.com/goliatone/go-command"
	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

type tableService interface {
	LoadTable(ctx context.Context, req datagrid.TableRequest) (datagrid.TablePayload, error)
}

// TableQuery loads one page of a list module.
type TableQuery struct {
	service tableService
}

// NewTableQuery builds the query.
func NewTableQuery(service tableService) *TableQuery {
	return &TableQuery{service: service}
}

var _ gocommand.Querier[datagrid.TableRequest, datagrid.TablePayload] = (*TableQuery)(nil)

// Query resolves the table for the request.
func (q *TableQuery) Query(ctx context.Context, req datagrid.TableRequest) (datagrid.TablePayload, error) {
	return q.service.LoadTable(ctx, req)
}

// ReportInput identifies a report run.
type ReportInput struct {
	Viewer    datagrid.ViewerContext
	ModuleKey string
	Filters   url.Values
}

type reportService interface {
	RunReport(ctx context.Context, viewer datagrid.ViewerContext, moduleKey string, query url.Values) (datagrid.ReportResult, error)
}

// ReportQuery loads a full report row set.
type ReportQuery struct {
	service reportService
}

// NewReportQuery builds the query.
func NewReportQuery(service reportService) *ReportQuery {
	return &ReportQuery{service: service}
}

var _ gocommand.Querier[ReportInput, datagrid.ReportResult] = (*ReportQuery)(nil)

// Query runs the report.
func (q *ReportQuery) Query(ctx context.Context, input ReportInput) (datagrid.ReportResult, error) {
	return q.service.RunReport(ctx, input.Viewer, input.ModuleKey, input.Filters)
}
