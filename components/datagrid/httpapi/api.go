package httpapi

import (
	"encoding/json"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/goliatone/go-datagrid/components/datagrid/commands"
)

// ViewerFunc resolves the acting viewer of a request.
type ViewerFunc func(r *http.Request) datagrid.ViewerContext

// Handlers exposes net/http endpoints backed by shared commands and queries.
type Handlers struct {
	API    Executor
	Table  gocommand.Querier[datagrid.TableRequest, datagrid.TablePayload]
	Viewer ViewerFunc
}

// ColumnsResponse is returned by every column intent. Columns are the
// descriptors re-read after the attempt, also when it failed.
type ColumnsResponse struct {
	Columns []datagrid.ColumnDescriptor `json:"columns"`
	Error   string                      `json:"error,omitempty"`
}

// HandleTable serves one page of a module as JSON.
func (h *Handlers) HandleTable(w http.ResponseWriter, r *http.Request, moduleKey string) {
	if h.Table == nil {
		http.Error(w, errCommandMissing.Error(), http.StatusNotImplemented)
		return
	}
	payload, err := h.Table.Query(r.Context(), datagrid.TableRequest{
		Viewer:    h.viewer(r),
		ModuleKey: moduleKey,
		Query:     r.URL.Query(),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// HandleReorderColumns persists a column drag result.
func (h *Handlers) HandleReorderColumns(w http.ResponseWriter, r *http.Request, moduleKey string) {
	var payload struct {
		Order []string `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var settled []datagrid.ColumnDescriptor
	err := h.API.ReorderColumns(r.Context(), commands.ReorderColumnsInput{
		Viewer:       h.viewer(r),
		ModuleKey:    moduleKey,
		AccessorKeys: payload.Order,
		OnSettled:    func(cols []datagrid.ColumnDescriptor) { settled = cols },
	})
	writeColumns(w, settled, err)
}

// HandleColumnVisibility persists a full visibility map.
func (h *Handlers) HandleColumnVisibility(w http.ResponseWriter, r *http.Request, moduleKey string) {
	var payload struct {
		Visibility map[string]bool `json:"visibility"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var settled []datagrid.ColumnDescriptor
	err := h.API.SetColumnVisibility(r.Context(), commands.SetColumnVisibilityInput{
		Viewer:     h.viewer(r),
		ModuleKey:  moduleKey,
		Visibility: payload.Visibility,
		OnSettled:  func(cols []datagrid.ColumnDescriptor) { settled = cols },
	})
	writeColumns(w, settled, err)
}

// HandleResetColumns restores the module defaults.
func (h *Handlers) HandleResetColumns(w http.ResponseWriter, r *http.Request, moduleKey string) {
	var settled []datagrid.ColumnDescriptor
	err := h.API.ResetColumns(r.Context(), commands.ResetColumnsInput{
		Viewer:    h.viewer(r),
		ModuleKey: moduleKey,
		OnSettled: func(cols []datagrid.ColumnDescriptor) { settled = cols },
	})
	writeColumns(w, settled, err)
}

// HandleMoveWidget applies one tile drop.
func (h *Handlers) HandleMoveWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.MoveWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.API.MoveWidget(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleReorderWidgets commits a full tile order.
func (h *Handlers) HandleReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderWidgetsInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.API.ReorderWidgets(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleToggleWidget hides or restores a tile.
func (h *Handlers) HandleToggleWidget(w http.ResponseWriter, r *http.Request, tileID string) {
	var payload struct {
		Deleted bool `json:"deleted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.ToggleWidgetInput{Viewer: h.viewer(r), TileID: tileID, Deleted: payload.Deleted}
	if err := h.API.ToggleWidget(r.Context(), input); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSaveSetting stores a viewer setting.
func (h *Handlers) HandleSaveSetting(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveSettingInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.API.SaveSetting(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh announces upstream row changes to subscribers.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshTableInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.Refresh(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Mux mounts the handlers on a ServeMux under prefix, e.g. "/api/datagrid".
func (h *Handlers) Mux(prefix string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+prefix+"/tables/{module}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleTable(w, r, r.PathValue("module"))
	})
	mux.HandleFunc("POST "+prefix+"/tables/{module}/columns/order", func(w http.ResponseWriter, r *http.Request) {
		h.HandleReorderColumns(w, r, r.PathValue("module"))
	})
	mux.HandleFunc("POST "+prefix+"/tables/{module}/columns/visibility", func(w http.ResponseWriter, r *http.Request) {
		h.HandleColumnVisibility(w, r, r.PathValue("module"))
	})
	mux.HandleFunc("DELETE "+prefix+"/tables/{module}/columns", func(w http.ResponseWriter, r *http.Request) {
		h.HandleResetColumns(w, r, r.PathValue("module"))
	})
	mux.HandleFunc("POST "+prefix+"/widgets/move", h.HandleMoveWidget)
	mux.HandleFunc("POST "+prefix+"/widgets/order", h.HandleReorderWidgets)
	mux.HandleFunc("POST "+prefix+"/widgets/{id}/deleted", func(w http.ResponseWriter, r *http.Request) {
		h.HandleToggleWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+prefix+"/settings", h.HandleSaveSetting)
	mux.HandleFunc("POST "+prefix+"/refresh", h.HandleRefresh)
	return mux
}

func (h *Handlers) viewer(r *http.Request) datagrid.ViewerContext {
	if h.Viewer == nil {
		return datagrid.ViewerContext{UserID: r.Header.Get("X-User-ID")}
	}
	return h.Viewer(r)
}

func writeColumns(w http.ResponseWriter, cols []datagrid.ColumnDescriptor, err error) {
	resp := ColumnsResponse{Columns: cols}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
