package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/goliatone/go-datagrid/components/datagrid/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
	run   func(T)
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	if s.run != nil {
		s.run(msg)
	}
	return s.err
}

type stubQuerier struct {
	last    datagrid.TableRequest
	payload datagrid.TablePayload
	err     error
}

func (s *stubQuerier) Query(ctx context.Context, req datagrid.TableRequest) (datagrid.TablePayload, error) {
	s.last = req
	return s.payload, s.err
}

func settledColumns() []datagrid.ColumnDescriptor {
	return []datagrid.ColumnDescriptor{
		{ModuleKey: "customers", ColumnHeader: "lastName", ColumnHeaderDescription: "Last Name", IsSelected: true, OrderIndex: 0},
		{ModuleKey: "customers", ColumnHeader: "firstName", ColumnHeaderDescription: "First Name", IsSelected: true, OrderIndex: 1},
	}
}

func TestHandleReorderColumnsReturnsSettledColumns(t *testing.T) {
	reorder := &stubCommander[commands.ReorderColumnsInput]{}
	reorder.run = func(in commands.ReorderColumnsInput) { in.OnSettled(settledColumns()) }
	api := &Handlers{API: &CommandExecutor{ReorderColumnsCommander: reorder}}

	req := httptest.NewRequest(http.MethodPost, "/tables/customers/columns/order", strings.NewReader(`{"order":["lastName","firstName"]}`))
	req.Header.Set("X-User-ID", "agent-1")
	rec := httptest.NewRecorder()
	api.HandleReorderColumns(rec, req, "customers")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customers", reorder.last.ModuleKey)
	assert.Equal(t, "agent-1", reorder.last.Viewer.UserID)
	assert.Equal(t, []string{"lastName", "firstName"}, reorder.last.AccessorKeys)

	var resp ColumnsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Columns, 2)
	assert.Equal(t, "lastName", resp.Columns[0].ColumnHeader)
	assert.Empty(t, resp.Error)
}

func TestHandleReorderColumnsFailureStillReturnsColumns(t *testing.T) {
	reorder := &stubCommander[commands.ReorderColumnsInput]{err: errors.New("store down")}
	reorder.run = func(in commands.ReorderColumnsInput) { in.OnSettled(settledColumns()) }
	api := &Handlers{API: &CommandExecutor{ReorderColumnsCommander: reorder}}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"order":["firstName"]}`))
	rec := httptest.NewRecorder()
	api.HandleReorderColumns(rec, req, "customers")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp ColumnsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Columns, 2)
	assert.Equal(t, "store down", resp.Error)
}

func TestHandleReorderColumnsRejectsBadJSON(t *testing.T) {
	reorder := &stubCommander[commands.ReorderColumnsInput]{}
	api := &Handlers{API: &CommandExecutor{ReorderColumnsCommander: reorder}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	api.HandleReorderColumns(rec, req, "customers")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if reorder.calls != 0 {
		t.Fatalf("expected command not to run")
	}
}

func TestHandleColumnVisibility(t *testing.T) {
	visibility := &stubCommander[commands.SetColumnVisibilityInput]{}
	api := &Handlers{
		API:    &CommandExecutor{VisibilityCommander: visibility},
		Viewer: func(*http.Request) datagrid.ViewerContext { return datagrid.ViewerContext{UserID: "resolved"} },
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"visibility":{"email":false}}`))
	rec := httptest.NewRecorder()
	api.HandleColumnVisibility(rec, req, "customers")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"email": false}, visibility.last.Visibility)
	assert.Equal(t, "resolved", visibility.last.Viewer.UserID)
}

func TestHandleResetColumns(t *testing.T) {
	reset := &stubCommander[commands.ResetColumnsInput]{}
	api := &Handlers{API: &CommandExecutor{ResetColumnsCommander: reset}}
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	api.HandleResetColumns(rec, req, "vehicles")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vehicles", reset.last.ModuleKey)
}

func TestHandleMoveWidget(t *testing.T) {
	move := &stubCommander[commands.MoveWidgetInput]{}
	api := &Handlers{API: &CommandExecutor{MoveWidgetCommander: move}}
	buf, _ := json.Marshal(commands.MoveWidgetInput{ActiveID: "vehicles", OverID: "customers"})
	req := httptest.NewRequest(http.MethodPost, "/widgets/move", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleMoveWidget(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	assert.Equal(t, "vehicles", move.last.ActiveID)
	assert.Equal(t, "customers", move.last.OverID)
}

func TestHandleReorderWidgets(t *testing.T) {
	reorder := &stubCommander[commands.ReorderWidgetsInput]{}
	api := &Handlers{API: &CommandExecutor{ReorderWidgetsCommander: reorder}}
	buf, _ := json.Marshal(commands.ReorderWidgetsInput{TileIDs: []string{"b", "a"}})
	req := httptest.NewRequest(http.MethodPost, "/widgets/order", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleReorderWidgets(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if reorder.calls != 1 {
		t.Fatalf("expected reorder to execute")
	}
}

func TestHandleToggleWidget(t *testing.T) {
	toggle := &stubCommander[commands.ToggleWidgetInput]{}
	api := &Handlers{API: &CommandExecutor{ToggleWidgetCommander: toggle}}
	req := httptest.NewRequest(http.MethodPost, "/widgets/t1/deleted", strings.NewReader(`{"deleted":true}`))
	rec := httptest.NewRecorder()
	api.HandleToggleWidget(rec, req, "t1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	assert.Equal(t, "t1", toggle.last.TileID)
	assert.True(t, toggle.last.Deleted)
}

func TestHandleSaveSettingFailure(t *testing.T) {
	setting := &stubCommander[commands.SaveSettingInput]{err: errors.New("invalid")}
	api := &Handlers{API: &CommandExecutor{SettingCommander: setting}}
	req := httptest.NewRequest(http.MethodPost, "/settings", strings.NewReader(`{"key":"theme","value":"neon"}`))
	rec := httptest.NewRecorder()
	api.HandleSaveSetting(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	assert.Equal(t, "theme", setting.last.Key)
}

func TestHandleRefresh(t *testing.T) {
	refresh := &stubCommander[commands.RefreshTableInput]{}
	api := &Handlers{API: &CommandExecutor{RefreshCommander: refresh}}
	buf, _ := json.Marshal(commands.RefreshTableInput{Event: datagrid.TableEvent{ModuleKey: "vehicles"}})
	req := httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	assert.Equal(t, "vehicles", refresh.last.Event.ModuleKey)
}

func TestMissingCommanderFails(t *testing.T) {
	api := &Handlers{API: &CommandExecutor{}}
	req := httptest.NewRequest(http.MethodPost, "/widgets/move", strings.NewReader(`{"active_id":"a","over_id":"b"}`))
	rec := httptest.NewRecorder()
	api.HandleMoveWidget(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), errCommandMissing.Error())
}

func TestMuxRoutesTableQuery(t *testing.T) {
	query := &stubQuerier{payload: datagrid.TablePayload{TotalRecords: 3}}
	api := &Handlers{API: &CommandExecutor{}, Table: query}
	server := httptest.NewServer(api.Mux("/api/datagrid"))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/datagrid/tables/agreements?page=2&size=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "agreements", query.last.ModuleKey)
	assert.Equal(t, "2", query.last.Query.Get("page"))

	var payload datagrid.TablePayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 3, payload.TotalRecords)
}

func TestMuxRoutesColumnIntents(t *testing.T) {
	reset := &stubCommander[commands.ResetColumnsInput]{}
	api := &Handlers{API: &CommandExecutor{ResetColumnsCommander: reset}}
	server := httptest.NewServer(api.Mux("/api/datagrid"))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/datagrid/tables/customers/columns", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "customers", reset.last.ModuleKey)
}
