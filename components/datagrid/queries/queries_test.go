package queries

import (
	"context"
	"net/url"
	"testing"

	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

type stubService struct {
	calls     int
	lastQuery url.Values
}

func (s *stubService) LoadTable(context.Context, datagrid.TableRequest) (datagrid.TablePayload, error) {
	s.calls++
	return datagrid.TablePayload{}, nil
}

func (s *stubService) RunReport(_ context.Context, _ datagrid.ViewerContext, _ string, query url.Values) (datagrid.ReportResult, error) {
	s.calls++
	s.lastQuery = query
	return datagrid.ReportResult{}, nil
}

func (s *stubService) Columns(context.Context, datagrid.ViewerContext, string) ([]datagrid.ColumnDescriptor, error) {
	s.calls++
	return nil, nil
}

func (s *stubService) WidgetTiles(context.Context, datagrid.ViewerContext) ([]datagrid.WidgetTile, error) {
	s.calls++
	return nil, nil
}

func TestQueriesDelegate(t *testing.T) {
	service := &stubService{}
	ctx := context.Background()
	if _, err := NewTableQuery(service).Query(ctx, datagrid.TableRequest{ModuleKey: "agreements"}); err != nil {
		t.Fatalf("table query returned error: %v", err)
	}
	if _, err := NewReportQuery(service).Query(ctx, ReportInput{ModuleKey: "fleet-report", Filters: url.Values{"search": {"kia"}}}); err != nil {
		t.Fatalf("report query returned error: %v", err)
	}
	if service.lastQuery.Get("search") != "kia" {
		t.Fatalf("expected report filters to pass through, got %v", service.lastQuery)
	}
	if _, err := NewColumnsQuery(service).Query(ctx, ColumnsInput{ModuleKey: "agreements"}); err != nil {
		t.Fatalf("columns query returned error: %v", err)
	}
	if _, err := NewTilesQuery(service).Query(ctx, datagrid.ViewerContext{UserID: "u"}); err != nil {
		t.Fatalf("tiles query returned error: %v", err)
	}
	if service.calls != 4 {
		t.Fatalf("expected 4 calls, got %d", service.calls)
	}
}

func TestQueriesAgainstService(t *testing.T) {
	service := datagrid.NewService(datagrid.Options{Tiles: datagrid.NewInMemoryTileStore()})
	cols, err := NewColumnsQuery(service).Query(context.Background(), ColumnsInput{
		Viewer:    datagrid.ViewerContext{UserID: "u"},
		ModuleKey: datagrid.ModuleAgreements,
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(cols) == 0 {
		t.Fatalf("expected default columns")
	}
	tiles, err := NewTilesQuery(service).Query(context.Background(), datagrid.ViewerContext{UserID: "u"})
	if err != nil || len(tiles) == 0 {
		t.Fatalf("expected default tiles, got %d err=%v", len(tiles), err)
	}
}
