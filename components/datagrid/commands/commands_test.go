package commands

import (
	"context"
	"errors"
	"testing"

	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

type stubService struct {
	reorderCalls    int
	visibilityCalls int
	resetCalls      int
	moveCalls       int
	orderCalls      int
	toggleCalls     int
	settingCalls    int
	refreshCalls    int
	lastEvent       datagrid.TableEvent
	err             error
	columns         []datagrid.ColumnDescriptor
}

func (s *stubService) ReorderColumns(context.Context, datagrid.ViewerContext, string, []string) ([]datagrid.ColumnDescriptor, error) {
	s.reorderCalls++
	return s.columns, s.err
}

func (s *stubService) SetColumnVisibility(context.Context, datagrid.ViewerContext, string, map[string]bool) ([]datagrid.ColumnDescriptor, error) {
	s.visibilityCalls++
	return s.columns, s.err
}

func (s *stubService) ResetColumns(context.Context, datagrid.ViewerContext, string) ([]datagrid.ColumnDescriptor, error) {
	s.resetCalls++
	return s.columns, s.err
}

func (s *stubService) ReorderWidgets(context.Context, datagrid.ViewerContext, string, string) ([]datagrid.WidgetTile, error) {
	s.moveCalls++
	return nil, s.err
}

func (s *stubService) SaveWidgetOrder(context.Context, datagrid.ViewerContext, []string) ([]datagrid.WidgetTile, error) {
	s.orderCalls++
	return nil, s.err
}

func (s *stubService) SetWidgetDeleted(context.Context, datagrid.ViewerContext, string, bool) ([]datagrid.WidgetTile, error) {
	s.toggleCalls++
	return nil, s.err
}

func (s *stubService) SaveSetting(context.Context, datagrid.ViewerContext, string, string) error {
	s.settingCalls++
	return s.err
}

func (s *stubService) NotifyTableUpdated(_ context.Context, event datagrid.TableEvent) error {
	s.refreshCalls++
	s.lastEvent = event
	return s.err
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}

var viewer = datagrid.ViewerContext{UserID: "user-1"}

func TestReorderColumnsCommandSettlesOnFailure(t *testing.T) {
	service := &stubService{
		columns: []datagrid.ColumnDescriptor{{ColumnHeader: "make", IsSelected: true}},
		err:     errors.New("write failed"),
	}
	telemetry := &stubTelemetry{}
	var settled []datagrid.ColumnDescriptor
	cmd := NewReorderColumnsCommand(service, telemetry)
	err := cmd.Execute(context.Background(), ReorderColumnsInput{
		Viewer:       viewer,
		ModuleKey:    datagrid.ModuleVehicles,
		AccessorKeys: []string{"make"},
		OnSettled:    func(cols []datagrid.ColumnDescriptor) { settled = cols },
	})
	if err == nil {
		t.Fatalf("expected service error")
	}
	if len(settled) != 1 {
		t.Fatalf("expected settled columns on failure, got %+v", settled)
	}
	if telemetry.calls != 0 {
		t.Fatalf("telemetry must not record failed commands")
	}
}

func TestColumnCommands(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	ctx := context.Background()
	if err := NewReorderColumnsCommand(service, telemetry).Execute(ctx, ReorderColumnsInput{Viewer: viewer, ModuleKey: "vehicles"}); err != nil {
		t.Fatalf("reorder returned error: %v", err)
	}
	if err := NewSetColumnVisibilityCommand(service, telemetry).Execute(ctx, SetColumnVisibilityInput{Viewer: viewer, ModuleKey: "vehicles"}); err != nil {
		t.Fatalf("visibility returned error: %v", err)
	}
	if err := NewResetColumnsCommand(service, nil).Execute(ctx, ResetColumnsInput{Viewer: viewer, ModuleKey: "vehicles"}); err != nil {
		t.Fatalf("reset returned error: %v", err)
	}
	if service.reorderCalls != 1 || service.visibilityCalls != 1 || service.resetCalls != 1 {
		t.Fatalf("unexpected calls: %+v", service)
	}
	if telemetry.calls != 2 {
		t.Fatalf("expected 2 telemetry records, got %d", telemetry.calls)
	}
	if err := NewReorderColumnsCommand(nil, nil).Execute(ctx, ReorderColumnsInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestWidgetCommands(t *testing.T) {
	service := &stubService{}
	ctx := context.Background()
	if err := NewMoveWidgetCommand(service, nil).Execute(ctx, MoveWidgetInput{Viewer: viewer, ActiveID: "a", OverID: "b"}); err != nil {
		t.Fatalf("move returned error: %v", err)
	}
	if err := NewMoveWidgetCommand(service, nil).Execute(ctx, MoveWidgetInput{Viewer: viewer, ActiveID: "a"}); err == nil {
		t.Fatalf("expected error for missing over id")
	}
	if err := NewReorderWidgetsCommand(service, nil).Execute(ctx, ReorderWidgetsInput{Viewer: viewer, TileIDs: []string{"a"}}); err != nil {
		t.Fatalf("reorder returned error: %v", err)
	}
	if err := NewToggleWidgetCommand(service, nil).Execute(ctx, ToggleWidgetInput{Viewer: viewer, TileID: "a", Deleted: true}); err != nil {
		t.Fatalf("toggle returned error: %v", err)
	}
	if service.moveCalls != 1 || service.orderCalls != 1 || service.toggleCalls != 1 {
		t.Fatalf("unexpected calls: %+v", service)
	}
}

func TestSaveSettingCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewSaveSettingCommand(service, nil)
	if err := cmd.Execute(context.Background(), SaveSettingInput{Key: datagrid.SettingPageSize, Value: "50"}); err == nil {
		t.Fatalf("expected error for anonymous viewer")
	}
	if err := cmd.Execute(context.Background(), SaveSettingInput{Viewer: viewer, Key: datagrid.SettingPageSize, Value: "50"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.settingCalls != 1 {
		t.Fatalf("expected setting call")
	}
}

func TestRefreshTableCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshTableCommand(service, nil)
	if err := cmd.Execute(context.Background(), RefreshTableInput{Event: datagrid.TableEvent{ModuleKey: "agreements"}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.refreshCalls != 1 || service.lastEvent.Reason != "rows" {
		t.Fatalf("expected refresh with default reason, got %+v", service.lastEvent)
	}
}

func TestSeedViewerCommand(t *testing.T) {
	columns := datagrid.NewInMemoryColumnRegistry()
	telemetry := &stubTelemetry{}
	cmd := NewSeedViewerCommand(datagrid.NewRegistry(), columns, datagrid.NewInMemoryTileStore(), telemetry)
	if err := cmd.Execute(context.Background(), SeedViewerInput{Viewer: viewer}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	cols, _ := columns.Columns(context.Background(), viewer, datagrid.ModuleAgreements)
	if len(cols) == 0 {
		t.Fatalf("expected seeded agreement columns")
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry record")
	}
}
