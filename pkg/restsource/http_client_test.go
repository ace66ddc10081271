package restsource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agreements/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "25", q.Get("size"))
		assert.Equal(t, "open,void", q.Get("agreementStatus"))
		assert.Equal(t, "ASC", q.Get("sortDirection"))
		assert.False(t, q.Has("search"), "empty values are omitted")
		_ = json.NewEncoder(w).Encode(searchResponse{
			Content:       []map[string]any{{"agreementNumber": "A-1"}, {"agreementNumber": "A-2"}},
			TotalElements: 42,
		})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL + "/", APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	page, err := client.Search(context.Background(), "agreements", datagrid.RowQuery{
		Page: datagrid.PaginationState{PageIndex: 1, PageSize: 25},
		Filters: map[string]any{
			"agreementStatus": []string{"open", "void"},
			"sortDirection":   "ASC",
			"search":          "",
		},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "A-1", page.Rows[0]["agreementNumber"])
	assert.Equal(t, 42, page.TotalRecords)
}

func TestHTTPClientRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, _ := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	_, err := client.Search(context.Background(), "vehicles", datagrid.RowQuery{})
	if err == nil {
		t.Fatalf("expected remote error")
	}
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPClientColumns(t *testing.T) {
	var saved saveColumnsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/column-registry" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("userId") == "new-user" {
				http.NotFound(w, r)
				return
			}
			assert.Equal(t, "customers", r.URL.Query().Get("moduleKey"))
			_ = json.NewEncoder(w).Encode([]columnPayload{
				{ColumnHeader: "lastName", ColumnHeaderDescription: "Last name", OrderIndex: 0, IsSelected: true},
			})
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&saved); err != nil {
				t.Fatalf("decode: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))
	t.Cleanup(server.Close)

	client, _ := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	registry := NewColumnRegistry(client)
	viewer := datagrid.ViewerContext{UserID: "agent"}

	cols, err := registry.Columns(context.Background(), viewer, "customers")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "customers", cols[0].ModuleKey)
	assert.True(t, cols[0].IsSelected)

	cols, err = registry.Columns(context.Background(), datagrid.ViewerContext{UserID: "new-user"}, "customers")
	require.NoError(t, err)
	assert.Nil(t, cols)

	err = registry.SaveColumns(context.Background(), viewer, "customers", []datagrid.ColumnDescriptor{
		{ColumnHeader: "email", OrderIndex: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "agent", saved.UserID)
	require.Len(t, saved.Columns, 1)
	assert.Equal(t, "email", saved.Columns[0].ColumnHeader)
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatalf("expected base url error")
	}
}

func TestRowSourceFeedsService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(searchResponse{
			Content:       []map[string]any{{"vehicleNo": "V-9"}},
			TotalElements: 1,
		})
	}))
	t.Cleanup(server.Close)

	client, _ := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	reg := datagrid.NewRegistry()
	require.NoError(t, RegisterSources(reg, client, datagrid.ModuleVehicles))
	service := datagrid.NewService(datagrid.Options{Modules: reg})

	payload, err := service.LoadTable(context.Background(), datagrid.TableRequest{
		Viewer:    datagrid.ViewerContext{UserID: "agent"},
		ModuleKey: datagrid.ModuleVehicles,
	})
	require.NoError(t, err)
	require.Len(t, payload.Rows, 1)
	assert.Equal(t, "V-9", payload.Rows[0]["vehicleNo"])
}
